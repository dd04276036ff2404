// Package sri contiene catálogos y validaciones alineados a la Ficha Técnica
// de Comprobantes Electrónicos del SRI (Ecuador), esquema factura v1.1.0.
package sri

import "strings"

// =============================================================================
// Tabla 3 - Tipo de comprobante (codDoc)
// =============================================================================

const (
	DocTypeFactura            = "01" // Factura
	DocTypeNotaCredito        = "04" // Nota de crédito
	DocTypeNotaDebito         = "05" // Nota de débito
	DocTypeGuiaRemision       = "06" // Guía de remisión
	DocTypeComprobanteRetencion = "07" // Comprobante de retención
)

// =============================================================================
// Tabla 4 - Tipo de ambiente
// =============================================================================

const (
	AmbientePruebas    = "1" // Pruebas (certificación)
	AmbienteProduccion = "2" // Producción
)

// =============================================================================
// Tabla 2 - Tipo de emisión
// =============================================================================

const (
	EmisionNormal = "1" // Emisión normal (en línea)
)

// =============================================================================
// Tabla 6 - Tipos de identificación del comprador
// =============================================================================

const (
	IdentificationTypeRUC             = "04" // RUC
	IdentificationTypeCedula          = "05" // Cédula
	IdentificationTypePasaporte       = "06" // Pasaporte
	IdentificationTypeConsumidorFinal = "07" // Venta a consumidor final
	IdentificationTypeExterior        = "08" // Identificación del exterior
)

// IdentificationTypeCode mapea el tipo de identificación libre del cliente al
// código SRI. El mapeo es total: cualquier valor no reconocido cae en
// pasaporte ("06"), nunca retorna vacío.
func IdentificationTypeCode(identType string) string {
	switch strings.ToUpper(strings.TrimSpace(identType)) {
	case "RUC":
		return IdentificationTypeRUC
	case "CEDULA", "CÉDULA":
		return IdentificationTypeCedula
	case "PASAPORTE":
		return IdentificationTypePasaporte
	case "CONSUMIDOR_FINAL", "CONSUMIDOR FINAL":
		return IdentificationTypeConsumidorFinal
	default:
		return IdentificationTypePasaporte
	}
}

// =============================================================================
// Tabla 24 - Formas de pago
// =============================================================================

const (
	PaymentMethodTarjetaEtc        = "19" // Tarjetas de débito/crédito y otros
	PaymentMethodOtrosConSistema   = "20" // Otros con utilización del sistema financiero
)

// PaymentMethodCode mapea la forma de pago libre de la factura al código SRI.
// Solo el efectivo ("CASH") usa el código 20; todo lo demás va al 19.
func PaymentMethodCode(method string) string {
	if strings.EqualFold(strings.TrimSpace(method), "CASH") {
		return PaymentMethodOtrosConSistema
	}
	return PaymentMethodTarjetaEtc
}

// =============================================================================
// Tablas 16/17 - Impuestos (IVA)
// =============================================================================

const (
	TaxCodeIVA = "2" // Impuesto al Valor Agregado

	// TaxRateCodeIVA15 es el código de porcentaje para la tarifa vigente 15 %.
	TaxRateCodeIVA15 = "4"

	// IVARatePercent tarifa IVA vigente, expresada como porcentaje.
	IVARatePercent = "15.00"
)

// =============================================================================
// Estados del WS del SRI
// =============================================================================

const (
	// ReceptionStatusRecibida es el único estado de recepción que permite
	// continuar con la consulta de autorización.
	ReceptionStatusRecibida = "RECIBIDA"

	// AuthorizationStatusAutorizado estado final exitoso de autorización.
	AuthorizationStatusAutorizado = "AUTORIZADO"
)
