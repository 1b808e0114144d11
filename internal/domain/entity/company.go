package entity

import (
	"time"

	"github.com/jhoicas/sifen-api/pkg/sifen"
)

// IssuerProfile datos fijos del emisor que antes estaban como literales:
// razón social, establecimiento, punto de expedición y tipos SIFEN.
type IssuerProfile struct {
	RUC             string // RUC por defecto si la transacción no trae uno
	LegalName       string // dNomEm
	Address         string // dDirEmi (opcional)
	Establishment   string // 3 dígitos
	ExpeditionPoint string // 3 dígitos
	DocumentType    string // iTiDE, 01 = factura electrónica
	EmissionType    string // iTipEmi, 1 = normal
}

// WithDefaults completa los campos vacíos con los valores por defecto del catálogo SIFEN.
func (p IssuerProfile) WithDefaults() IssuerProfile {
	if p.Establishment == "" {
		p.Establishment = sifen.DefaultEstablishment
	}
	if p.ExpeditionPoint == "" {
		p.ExpeditionPoint = sifen.DefaultExpeditionPoint
	}
	if p.DocumentType == "" {
		p.DocumentType = sifen.DocTypeFacturaElectronica
	}
	if p.EmissionType == "" {
		p.EmissionType = sifen.EmissionNormal
	}
	return p
}

// Company configuración de la empresa emisora (una sola fila, la aplicación no es multi-tenant).
type Company struct {
	Name                string
	RUC                 string
	Address             string
	CertificatePath     string // ruta al .p12/.pfx subido
	CertificatePassword string
	UpdatedAt           time.Time
}

// Profile arma el IssuerProfile a partir de la configuración guardada.
func (c *Company) Profile() IssuerProfile {
	return IssuerProfile{
		RUC:       c.RUC,
		LegalName: c.Name,
		Address:   c.Address,
	}.WithDefaults()
}
