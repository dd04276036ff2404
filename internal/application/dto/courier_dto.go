package dto

import "github.com/shopspring/decimal"

// CreateClientRequest body para POST /api/clients.
type CreateClientRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=300"`
	IdentType   string `json:"ident_type" validate:"required,oneof=RUC CEDULA PASAPORTE CONSUMIDOR_FINAL"`
	IdentNumber string `json:"ident_number" validate:"required"`
	Address     string `json:"address,omitempty"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       string `json:"phone,omitempty"`
}

// ClientResponse cliente en respuestas.
type ClientResponse struct {
	ID           string `json:"id"`
	EnterpriseID string `json:"enterprise_id"`
	Name         string `json:"name"`
	IdentType    string `json:"ident_type"`
	IdentNumber  string `json:"ident_number"`
	Address      string `json:"address,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// ReceivePackageRequest body para POST /api/packages (recepción de encomienda).
type ReceivePackageRequest struct {
	SenderID       string          `json:"sender_id" validate:"required,uuid"`
	ReceiverID     string          `json:"receiver_id" validate:"required,uuid"`
	OriginAgencyID string          `json:"origin_agency_id" validate:"required,uuid"`
	DestAgencyID   string          `json:"dest_agency_id" validate:"required,uuid"`
	Description    string          `json:"description" validate:"required,min=1,max=500"`
	Weight         decimal.Decimal `json:"weight"`
	DeclaredValue  decimal.Decimal `json:"declared_value"`
	FreightPrice   decimal.Decimal `json:"freight_price"`
}

// PackageResponse encomienda en respuestas.
type PackageResponse struct {
	ID             string          `json:"id"`
	EnterpriseID   string          `json:"enterprise_id"`
	GuideNumber    string          `json:"guide_number"`
	SenderID       string          `json:"sender_id"`
	ReceiverID     string          `json:"receiver_id"`
	OriginAgencyID string          `json:"origin_agency_id"`
	DestAgencyID   string          `json:"dest_agency_id"`
	Description    string          `json:"description"`
	Weight         decimal.Decimal `json:"weight"`
	DeclaredValue  decimal.Decimal `json:"declared_value"`
	FreightPrice   decimal.Decimal `json:"freight_price"`
	Status         string          `json:"status"`
	ReceivedAt     string          `json:"received_at"`
}
