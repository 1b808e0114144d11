package sifen

import (
	"time"

	"github.com/jhoicas/sifen-api/internal/domain/entity"
	pkgsifen "github.com/jhoicas/sifen-api/pkg/sifen"
)

// SignedDocument resultado de una emisión. Se crea una vez y no se modifica;
// el llamador se encarga de persistirlo y de generar el PDF.
type SignedDocument struct {
	CDC            string
	UnsignedXML    []byte // rDE canónico sin firma
	SignatureBlock []byte // nodo <Signature> agregado
	SignedXML      []byte // rDE con la firma como último hijo
	Mode           pkgsifen.SignatureMode
	Tax            TaxBreakdown
	Transaction    entity.Transaction
	Issuer         entity.IssuerProfile
	IssuedAt       time.Time
}

// Simulated indica que el documento no tiene validez legal (firma simulada).
func (d *SignedDocument) Simulated() bool {
	return d.Mode != pkgsifen.SignatureModeReal
}

// QRURL URL de consulta pública del documento.
func (d *SignedDocument) QRURL(host string) string {
	return pkgsifen.QRURL(host, d.CDC)
}
