package dto

import "time"

// CreateEnterpriseRequest body para POST /api/enterprises (alta de tenant).
type CreateEnterpriseRequest struct {
	RUC             string `json:"ruc" validate:"required,len=13"`
	RazonSocial     string `json:"razon_social" validate:"required,min=1,max=300"`
	NombreComercial string `json:"nombre_comercial,omitempty"`
	DirMatriz       string `json:"dir_matriz" validate:"required"`
	Establecimiento string `json:"establecimiento" validate:"required,len=3"`
	PuntoEmision    string `json:"punto_emision" validate:"required,len=3"`
	Ambiente        string `json:"ambiente" validate:"omitempty,oneof=1 2"`
	CertPath        string `json:"cert_path,omitempty"`
	CertPassword    string `json:"cert_password,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Email           string `json:"email,omitempty" validate:"omitempty,email"`
}

// EnterpriseResponse empresa en respuestas. Nunca expone la contraseña del certificado.
type EnterpriseResponse struct {
	ID              string    `json:"id"`
	RUC             string    `json:"ruc"`
	RazonSocial     string    `json:"razon_social"`
	NombreComercial string    `json:"nombre_comercial,omitempty"`
	DirMatriz       string    `json:"dir_matriz"`
	Establecimiento string    `json:"establecimiento"`
	PuntoEmision    string    `json:"punto_emision"`
	Ambiente        string    `json:"ambiente"`
	Phone           string    `json:"phone,omitempty"`
	Email           string    `json:"email,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateAgencyRequest body para POST /api/agencies.
type CreateAgencyRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	City    string `json:"city" validate:"required"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// AgencyResponse agencia en respuestas.
type AgencyResponse struct {
	ID           string `json:"id"`
	EnterpriseID string `json:"enterprise_id"`
	Name         string `json:"name"`
	City         string `json:"city"`
	Address      string `json:"address,omitempty"`
	Phone        string `json:"phone,omitempty"`
}
