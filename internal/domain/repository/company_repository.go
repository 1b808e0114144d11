package repository

import (
	"context"

	"github.com/jhoicas/sifen-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para la configuración de la empresa emisora
// (una sola fila). La implementación vive en infrastructure.
type CompanyRepository interface {
	// Get devuelve (nil, nil) si la empresa todavía no fue configurada.
	Get(ctx context.Context) (*entity.Company, error)
	SaveSettings(ctx context.Context, company *entity.Company) error
	SaveCertificate(ctx context.Context, path, password string) error
}
