package billing

import (
	"context"

	"github.com/jhoicas/courier-pro/internal/domain/entity"
)

// SigningCredential referencia el material de firma de un emisor: la ruta al
// archivo .p12 y su contraseña. La contraseña nunca se loguea.
type SigningCredential struct {
	CertPath string
	Password string
}

// CredentialProvider resuelve la credencial de firma del emisor. Se inyecta
// para poder sustituirla en tests y para soportar credenciales por tenant.
type CredentialProvider interface {
	SigningCredential(ctx context.Context, enterprise *entity.Enterprise) (*SigningCredential, error)
}

// Signer firma un comprobante ya generado. Recibe la ruta del XML sin firmar
// y el directorio destino; devuelve la ruta del XML firmado. Las
// implementaciones pueden firmar en proceso o delegar en un firmador externo.
type Signer interface {
	Sign(ctx context.Context, unsignedPath, signedDir string, cred *SigningCredential) (string, error)
}

// InvoicePDFGenerator genera la representación impresa (RIDE) de una factura.
type InvoicePDFGenerator interface {
	Generate(invoice *entity.Invoice, enterprise *entity.Enterprise, client *entity.Client, details []*entity.InvoiceDetail) ([]byte, error)
}

// TxRunner ejecuta fn dentro de una transacción de base de datos. Se usa para
// que la asignación del secuencial y la inserción de la factura sean atómicas.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
