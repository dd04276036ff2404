// Package sri implementa la integración con el WS de comprobantes
// electrónicos del SRI (Ecuador): generación del XML de factura, firma
// digital y envío/consulta SOAP.
package sri

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/courier-pro/internal/domain/entity"
)

// ── Puertos (interfaces) ──────────────────────────────────────────────────────

// ReceptionResult resultado de la llamada de recepción (validarComprobante).
type ReceptionResult struct {
	Estado   string    // "RECIBIDA" o "DEVUELTA"
	Mensajes []Mensaje // mensajes de rechazo cuando Estado != RECIBIDA
	Raw      []byte    // cuerpo crudo de la respuesta, para auditoría
}

// AuthorizationRecord registro de autorización devuelto por el SRI.
// Puede no existir aún si el SRI sigue procesando el comprobante.
type AuthorizationRecord struct {
	Estado             string // "AUTORIZADO", "NO AUTORIZADO", ...
	NumeroAutorizacion string
	FechaAutorizacion  string // tal como la devuelve el WS (ISO 8601)
	Ambiente           string
	Comprobante        string // XML del comprobante autorizado, embebido
	Mensajes           []Mensaje
}

// PollResult resultado de una consulta de autorización: el registro (nil si
// el SRI aún no tiene respuesta) y el cuerpo crudo para auditoría.
type PollResult struct {
	Record *AuthorizationRecord
	Raw    []byte
}

// Mensaje detalle informativo o de error devuelto por el WS SRI.
type Mensaje struct {
	Identificador        string
	Mensaje              string
	InformacionAdicional string
	Tipo                 string
}

// TaxAuthorityGateway define el puerto de salida hacia el SRI.
// La implementación concreta usa SOAP; para tests se puede inyectar un stub.
type TaxAuthorityGateway interface {
	// Submit envía el XML firmado al endpoint de recepción.
	Submit(ctx context.Context, signedXML []byte) (*ReceptionResult, error)
	// PollAuthorization consulta la autorización por clave de acceso.
	// Record es nil cuando el SRI aún no registra autorización para la clave.
	PollAuthorization(ctx context.Context, claveAcceso string) (*PollResult, error)
}

// ── Contexto de construcción del XML ─────────────────────────────────────────

// InvoiceLineXML línea de factura con los datos necesarios para el XML.
type InvoiceLineXML struct {
	Detail      *entity.InvoiceDetail
	CodigoPrincipal string // código sintético del servicio (guía o secuencia)
	Descripcion string
	Cantidad    decimal.Decimal
	PrecioUnitario decimal.Decimal
	Descuento   decimal.Decimal
	Subtotal    decimal.Decimal
}

// FacturaBuildContext contexto con todos los datos para construir el XML de la factura.
type FacturaBuildContext struct {
	Invoice    *entity.Invoice
	Enterprise *entity.Enterprise
	Client     *entity.Client
	Details    []InvoiceLineXML

	ClaveAcceso string // generada previamente (49 dígitos)
	Ambiente    string // "1" pruebas, "2" producción
	TipoEmision string // "1" emisión normal
}
