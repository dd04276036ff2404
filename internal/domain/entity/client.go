package entity

import "time"

// Client representa un cliente de la empresa (remitente o destinatario de encomiendas).
type Client struct {
	ID           string
	EnterpriseID string
	Name         string
	IdentType    string // "RUC", "CEDULA", "PASAPORTE", "CONSUMIDOR_FINAL"
	IdentNumber  string
	Address      string
	Email        string
	Phone        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
