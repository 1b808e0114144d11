package dto

import "time"

// UpdateCompanyRequest body para PUT /api/company.
type UpdateCompanyRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	RUC     string `json:"ruc" validate:"required,max=20"`
	Address string `json:"address" validate:"max=255"`
}

// CompanyResponse configuración de la empresa emisora (sin la contraseña del certificado).
type CompanyResponse struct {
	Name           string    `json:"name"`
	RUC            string    `json:"ruc"`
	Address        string    `json:"address"`
	HasCertificate bool      `json:"has_certificate"`
	SignatureMode  string    `json:"signature_mode"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// CertificateUploadResponse resultado de subir el certificado.
type CertificateUploadResponse struct {
	Subject       string    `json:"subject"`
	NotAfter      time.Time `json:"not_after"`
	SignatureMode string    `json:"signature_mode"`
}
