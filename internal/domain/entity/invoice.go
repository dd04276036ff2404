package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Estados del comprobante ante el SRI (Ecuador).
const (
	SRIStatusDraft        = "DRAFT"         // Guardada para reservar el secuencial
	SRIStatusGenerated    = "GENERADO"      // XML generado, pendiente de firma
	SRIStatusSigned       = "FIRMADO"       // XML firmado, pendiente de envío al WS
	SRIStatusReceived     = "RECIBIDA"      // Recibida por el SRI, autorización pendiente
	SRIStatusAuthorized   = "AUTORIZADO"    // Autorizada por el SRI
	SRIStatusRejected     = "NO_AUTORIZADO" // Rechazada por el SRI
	SRIStatusUndetermined = "SIN_RESPUESTA" // Agotados los intentos de consulta sin veredicto
	SRIStatusError        = "ERROR"         // Falló generación, firma o envío
)

// Invoice representa la cabecera de una factura de servicios courier.
type Invoice struct {
	ID            string
	EnterpriseID  string
	ClientID      string
	AgencyID      string
	Establecimiento string // Copiados de la empresa al emitir (quedan fijos en la factura)
	PuntoEmision  string
	Secuencial    int64
	Date          time.Time
	PaymentMethod string // Forma de pago libre ("CASH", "CARD", ...); se mapea a código SRI
	Subtotal      decimal.Decimal // Total sin impuestos
	Discount      decimal.Decimal
	TaxAmount     decimal.Decimal // IVA 15 %
	GrandTotal    decimal.Decimal
	SRIStatus     string
	AccessKey     string // Clave de acceso de 49 dígitos
	XMLPath       string // Ruta del XML generado (sin firma)
	SignedXMLPath string // Ruta del XML firmado
	AuthNumber    string // Número de autorización devuelto por el SRI
	AuthDate      *time.Time
	SRIErrors     string // Mensajes de rechazo devueltos por el SRI
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NumeroCompleto devuelve estab-ptoEmi-secuencial (ej: 001-001-000000045).
func (i *Invoice) NumeroCompleto() string {
	return i.Establecimiento + "-" + i.PuntoEmision + "-" + SecuencialString(i.Secuencial)
}

// SecuencialString rellena el secuencial a 9 dígitos.
func SecuencialString(n int64) string {
	return fmt.Sprintf("%09d", n)
}
