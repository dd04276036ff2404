package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una encomienda dentro de la operación courier.
const (
	PackageStatusReceived  = "RECIBIDA"   // Recibida en agencia origen
	PackageStatusInTransit = "EN_TRANSITO"
	PackageStatusDelivered = "ENTREGADA"
	PackageStatusInvoiced  = "FACTURADA"
)

// Package representa una encomienda recibida en una agencia.
type Package struct {
	ID              string
	EnterpriseID    string
	GuideNumber     string // Número de guía (único por empresa)
	SenderID        string // Cliente remitente
	ReceiverID      string // Cliente destinatario
	OriginAgencyID  string
	DestAgencyID    string
	Description     string
	Weight          decimal.Decimal // kg
	DeclaredValue   decimal.Decimal
	FreightPrice    decimal.Decimal // Valor del flete (lo que se factura)
	Status          string
	ReceivedAt      time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
