package entity

import "time"

// Roles de usuario dentro de una empresa courier.
const (
	RoleAdmin    = "admin"
	RoleOperador = "operador" // recepción de encomiendas
	RoleCajero   = "cajero"   // facturación
)

// User representa un usuario del back-office.
type User struct {
	ID           string
	EnterpriseID string
	Name         string
	Email        string
	PasswordHash string
	Role         string // ver constantes Role*
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
