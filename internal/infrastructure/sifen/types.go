// Package sifen implementa la generación del XML del documento electrónico (rDE) SIFEN (Paraguay).
package sifen

import (
	"time"

	"github.com/jhoicas/sifen-api/internal/domain/entity"
	domainsifen "github.com/jhoicas/sifen-api/internal/domain/sifen"
)

// DocumentBuildContext datos necesarios para construir el rDE sin firma.
type DocumentBuildContext struct {
	Transaction entity.Transaction
	CDC         string
	Tax         domainsifen.TaxBreakdown
	Issuer      entity.IssuerProfile
	IssuedAt    time.Time // dFeEmiDE
}
