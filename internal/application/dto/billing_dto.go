package dto

import "github.com/shopspring/decimal"

// CreateInvoiceRequest body para POST /api/invoices.
// Una factura se arma desde encomiendas ya recibidas (package_ids) y/o líneas
// de servicio sueltas (items).
type CreateInvoiceRequest struct {
	ClientID      string               `json:"client_id"`
	AgencyID      string               `json:"agency_id,omitempty"`
	PaymentMethod string               `json:"payment_method"` // CASH, CARD, TRANSFER...
	PackageIDs    []string             `json:"package_ids,omitempty"`
	Items         []InvoiceItemRequest `json:"items,omitempty"`
}

// InvoiceItemRequest línea de servicio suelta (sin encomienda asociada).
type InvoiceItemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// InvoiceResponse factura con detalle para GET /api/invoices/:id.
type InvoiceResponse struct {
	ID             string                  `json:"id"`
	EnterpriseID   string                  `json:"enterprise_id"`
	ClientID       string                  `json:"client_id"`
	ClientName     string                  `json:"client_name,omitempty"`
	NumeroCompleto string                  `json:"numero_completo"` // estab-ptoEmi-secuencial
	Date           string                  `json:"date"`
	PaymentMethod  string                  `json:"payment_method"`
	Subtotal       decimal.Decimal         `json:"subtotal"`
	TaxAmount      decimal.Decimal         `json:"tax_amount"`
	GrandTotal     decimal.Decimal         `json:"grand_total"`
	SRIStatus      string                  `json:"sri_status"`
	AccessKey      string                  `json:"access_key,omitempty"`
	AuthNumber     string                  `json:"auth_number,omitempty"`
	AuthDate       string                  `json:"auth_date,omitempty"`
	SRIErrors      string                  `json:"sri_errors,omitempty"`
	Details        []InvoiceDetailResponse `json:"details"`
}

// InvoiceDetailResponse línea de detalle en la respuesta.
type InvoiceDetailResponse struct {
	ID          string          `json:"id"`
	PackageID   string          `json:"package_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// InvoiceSRIStatusDTO respuesta ligera para GET /api/invoices/:id/status.
// El frontend consulta este endpoint hasta que sri_status sea AUTORIZADO,
// NO_AUTORIZADO o ERROR.
type InvoiceSRIStatusDTO struct {
	ID         string `json:"id"`
	SRIStatus  string `json:"sri_status"`
	AccessKey  string `json:"access_key"`
	AuthNumber string `json:"auth_number"`
	Errors     string `json:"errors"` // Mensajes de rechazo del SRI (vacío si OK)
}
