package billing

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jhoicas/courier-pro/internal/domain/entity"
	"github.com/jhoicas/courier-pro/pkg/logger"
)

// SigningGateway coordina la firma de un comprobante: resuelve la credencial
// del emisor, verifica que el XML generado exista, delega en el Signer
// inyectado y valida el artefacto resultante. Un solo intento, sin reintentos.
type SigningGateway struct {
	credentials CredentialProvider
	signer      Signer
	signedDir   string
	log         *logger.Logger
}

// NewSigningGateway construye el gateway de firma.
func NewSigningGateway(credentials CredentialProvider, signer Signer, signedDir string, log *logger.Logger) *SigningGateway {
	return &SigningGateway{
		credentials: credentials,
		signer:      signer,
		signedDir:   signedDir,
		log:         log.Component("signing-gateway"),
	}
}

// Sign firma el XML en unsignedPath y devuelve la ruta del XML firmado.
func (g *SigningGateway) Sign(ctx context.Context, enterprise *entity.Enterprise, unsignedPath string) (string, error) {
	cred, err := g.credentials.SigningCredential(ctx, enterprise)
	if err != nil {
		return "", err
	}
	if cred == nil || cred.CertPath == "" {
		return "", &ConfigurationError{Field: "cert_path", Err: ErrMissingCredential}
	}
	if cred.Password == "" {
		return "", &ConfigurationError{Field: "cert_password", Err: ErrMissingCredential}
	}

	if _, err := os.Stat(unsignedPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrArtifactNotFound, unsignedPath)
		}
		return "", &SigningError{Path: unsignedPath, Err: err}
	}

	if err := os.MkdirAll(g.signedDir, 0o755); err != nil {
		return "", &SigningError{Path: unsignedPath, Err: err}
	}

	signedPath, err := g.signer.Sign(ctx, unsignedPath, g.signedDir, cred)
	if err != nil {
		var sigErr *SigningError
		if errors.As(err, &sigErr) {
			return "", err
		}
		return "", &SigningError{Path: unsignedPath, Err: err}
	}

	// El firmador reportó éxito; el artefacto debe existir y no estar vacío.
	info, err := os.Stat(signedPath)
	if err != nil {
		return "", &SigningVerificationError{Path: signedPath, Reason: "el firmador terminó sin error pero el archivo no existe"}
	}
	if info.Size() == 0 {
		return "", &SigningVerificationError{Path: signedPath, Reason: "archivo firmado vacío"}
	}

	g.log.Info().
		Str("unsigned", unsignedPath).
		Str("signed", signedPath).
		Msg("comprobante firmado")
	return signedPath, nil
}

// EnterpriseCredentialProvider resuelve la credencial desde los datos del
// tenant, con caída a los valores globales de configuración.
type EnterpriseCredentialProvider struct {
	DefaultCertPath string
	DefaultPassword string
}

// SigningCredential implementa CredentialProvider.
func (p *EnterpriseCredentialProvider) SigningCredential(_ context.Context, ent *entity.Enterprise) (*SigningCredential, error) {
	cred := &SigningCredential{
		CertPath: p.DefaultCertPath,
		Password: p.DefaultPassword,
	}
	if ent != nil {
		if ent.CertPath != "" {
			cred.CertPath = ent.CertPath
		}
		if ent.CertPassword != "" {
			cred.Password = ent.CertPassword
		}
	}
	if cred.CertPath == "" {
		return nil, &ConfigurationError{Field: "cert_path", Err: ErrMissingCredential}
	}
	if cred.Password == "" {
		return nil, &ConfigurationError{Field: "cert_password", Err: ErrMissingCredential}
	}
	return cred, nil
}
