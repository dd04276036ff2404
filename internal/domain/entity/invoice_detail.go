package entity

import "github.com/shopspring/decimal"

// InvoiceDetail representa una línea de detalle de una factura (un servicio o encomienda).
type InvoiceDetail struct {
	ID          string
	InvoiceID   string
	PackageID   string // Encomienda facturada (vacío para servicios sueltos)
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	Subtotal    decimal.Decimal // Quantity * UnitPrice - Discount
}
