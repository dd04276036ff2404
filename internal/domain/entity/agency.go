package entity

import "time"

// Agency representa una agencia (sucursal) de la empresa courier.
type Agency struct {
	ID           string
	EnterpriseID string
	Name         string
	City         string
	Address      string
	Phone        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
