package entity

import "time"

// Enterprise representa una empresa/tenant del sistema courier (multi-tenant, enfoque Ecuador).
type Enterprise struct {
	ID              string
	RUC             string // RUC del emisor (13 dígitos)
	RazonSocial     string
	NombreComercial string
	DirMatriz       string // Dirección de la matriz (obligatoria en infoTributaria)
	Establecimiento string // Código de establecimiento (3 dígitos, ej: "001")
	PuntoEmision    string // Punto de emisión (3 dígitos, ej: "001")
	Ambiente        string // "1" pruebas, "2" producción (puede diferir del global)
	CertPath        string // Ruta al certificado de firma .p12 del tenant
	CertPassword    string // Contraseña del .p12
	Phone           string
	Email           string
	Status          string // active, suspended, inactive
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Serie devuelve establecimiento+punto de emisión (6 dígitos) para la clave de acceso.
func (e *Enterprise) Serie() string {
	return e.Establecimiento + e.PuntoEmision
}
