// Package sifen contiene las reglas de dominio del documento electrónico SIFEN:
// cálculo del IVA, derivación del CDC y validación de la transacción.
package sifen

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sifen-api/internal/domain"
)

// TaxRate tasa de IVA vigente. La SET solo define 10% y 5%.
type TaxRate int

const (
	IVA10 TaxRate = 10
	IVA5  TaxRate = 5
)

// Valid indica si la tasa está definida por la autoridad.
func (r TaxRate) Valid() bool {
	return r == IVA10 || r == IVA5
}

// ParseTaxRate convierte la tasa recibida en la transacción. 0 se interpreta como 10%.
func ParseTaxRate(n int) (TaxRate, error) {
	if n == 0 {
		return IVA10, nil
	}
	r := TaxRate(n)
	if !r.Valid() {
		return 0, fmt.Errorf("%w: %d%%", domain.ErrUnsupportedTaxRate, n)
	}
	return r, nil
}

// TaxBreakdown base gravada e IVA de un total con IVA incluido.
type TaxBreakdown struct {
	Rate TaxRate
	Base decimal.Decimal
	Tax  decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// CalculateIVA aplica la fórmula oficial: base = round(total / (1 + tasa/100), 2), iva = round(total - base, 2).
// El redondeo es "half away from zero" (round-half-up para montos no negativos).
func CalculateIVA(total decimal.Decimal, rate TaxRate) (TaxBreakdown, error) {
	if !rate.Valid() {
		return TaxBreakdown{}, fmt.Errorf("%w: %d%%", domain.ErrUnsupportedTaxRate, int(rate))
	}
	divisor := decimal.NewFromInt(1).Add(decimal.NewFromInt(int64(rate)).Div(hundred))
	base := total.DivRound(divisor, 2)
	tax := total.Sub(base).Round(2)
	return TaxBreakdown{Rate: rate, Base: base, Tax: tax}, nil
}
