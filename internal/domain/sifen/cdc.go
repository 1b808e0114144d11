package sifen

import (
	"crypto/rand"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/sifen-api/internal/domain"
	pkgsifen "github.com/jhoicas/sifen-api/pkg/sifen"
)

// CDCLength largo fijo del Código de Control.
const CDCLength = 44

// Anchos de cada campo del CDC, en orden.
const (
	widthDocType       = 2
	widthRUC           = 8
	widthCheckDigit    = 1
	widthEstablishment = 3
	widthPoint         = 3
	widthSequence      = 7
	widthDate          = 8
	widthEmission      = 1
	widthSecurity      = 11
)

// CDCParams datos que componen el CDC.
type CDCParams struct {
	IssuerRUC       string // <número>-<dv>
	DocumentType    string // iTiDE (2)
	Establishment   string // (3)
	ExpeditionPoint string // (3)
	Sequence        int64  // número de documento (7)
	IssueDate       time.Time
	EmissionType    string // iTipEmi (1)
}

// CDCGenerator deriva el CDC. El segmento de seguridad se toma de Random para poder
// fijarlo en pruebas; en producción es crypto/rand.
type CDCGenerator struct {
	random io.Reader
}

// NewCDCGenerator crea el generador. Si random es nil usa crypto/rand.Reader.
func NewCDCGenerator(random io.Reader) *CDCGenerator {
	if random == nil {
		random = rand.Reader
	}
	return &CDCGenerator{random: random}
}

// Generate arma el CDC de 44 dígitos:
//
//	TipoDoc(2) + RUC(8) + DV(1) + Est(3) + Pto(3) + Num(7) + Fecha(8) + TipoEmi(1) + Seguridad(11)
//
// Cada campo se rellena con ceros a la izquierda y se trunca a su ancho si viene más largo
// (un RUC de más de 8 dígitos se trunca, no es error).
func (g *CDCGenerator) Generate(p CDCParams) (string, error) {
	ruc, err := pkgsifen.ParseRUC(p.IssuerRUC)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedTransaction, err)
	}
	if p.Sequence < 0 {
		return "", fmt.Errorf("%w: número de documento negativo", domain.ErrMalformedTransaction)
	}
	security, err := g.securityCode()
	if err != nil {
		return "", fmt.Errorf("generar código de seguridad: %w", err)
	}

	docType := p.DocumentType
	if docType == "" {
		docType = pkgsifen.DocTypeFacturaElectronica
	}
	emission := p.EmissionType
	if emission == "" {
		emission = pkgsifen.EmissionNormal
	}

	var sb strings.Builder
	sb.WriteString(fixed(docType, widthDocType))
	sb.WriteString(fixed(ruc.Number, widthRUC))
	sb.WriteString(fixed(ruc.CheckDigit, widthCheckDigit))
	sb.WriteString(fixed(orDefault(p.Establishment, pkgsifen.DefaultEstablishment), widthEstablishment))
	sb.WriteString(fixed(orDefault(p.ExpeditionPoint, pkgsifen.DefaultExpeditionPoint), widthPoint))
	sb.WriteString(fixed(strconv.FormatInt(p.Sequence, 10), widthSequence))
	sb.WriteString(fixed(p.IssueDate.Format("20060102"), widthDate))
	sb.WriteString(fixed(emission, widthEmission))
	sb.WriteString(security)

	cdc := sb.String()
	if len(cdc) > CDCLength {
		cdc = cdc[:CDCLength]
	}
	return cdc, nil
}

// securityCode extrae 11 dígitos uniformes del lector aleatorio (muestreo por rechazo sobre bytes < 250).
func (g *CDCGenerator) securityCode() (string, error) {
	out := make([]byte, 0, widthSecurity)
	buf := make([]byte, widthSecurity)
	for len(out) < widthSecurity {
		n, err := io.ReadFull(g.random, buf[:widthSecurity-len(out)])
		if err != nil {
			return "", err
		}
		for _, b := range buf[:n] {
			if b < 250 {
				out = append(out, '0'+b%10)
			}
		}
	}
	return string(out), nil
}

// ValidCDC indica si s tiene exactamente 44 dígitos ASCII.
func ValidCDC(s string) bool {
	if len(s) != CDCLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// fixed deja solo dígitos, rellena con ceros a la izquierda hasta width y, si es más largo,
// conserva los primeros width caracteres.
func fixed(s string, width int) string {
	s = strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if len(s) >= width {
		return s[:width]
	}
	return strings.Repeat("0", width-len(s)) + s
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
