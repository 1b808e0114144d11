package sifen

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sifen-api/internal/domain"
	"github.com/jhoicas/sifen-api/internal/domain/entity"
	pkgsifen "github.com/jhoicas/sifen-api/pkg/sifen"
)

// ValidateTransaction verifica la forma de la transacción antes de emitir.
// Todos los problemas encontrados se devuelven juntos, envueltos en ErrMalformedTransaction.
func ValidateTransaction(tx entity.Transaction) error {
	var errs []error

	if _, err := pkgsifen.ParseRUC(tx.IssuerRUC); err != nil {
		errs = append(errs, fmt.Errorf("RUC emisor: %w", err))
	}
	if strings.TrimSpace(tx.BuyerName) == "" {
		errs = append(errs, errors.New("nombre del receptor vacío"))
	} else if !xmlText(tx.BuyerName) {
		errs = append(errs, errors.New("nombre del receptor con UTF-8 inválido o caracteres de control"))
	}
	if !tx.Total.IsPositive() {
		errs = append(errs, fmt.Errorf("total declarado debe ser mayor a cero (%s)", tx.Total.String()))
	} else if !centAmount(tx.Total) {
		errs = append(errs, fmt.Errorf("total declarado con más de 2 decimales (%s)", tx.Total.String()))
	}
	if len(tx.Items) == 0 {
		errs = append(errs, errors.New("la transacción debe tener al menos un ítem"))
	}
	for i, it := range tx.Items {
		if strings.TrimSpace(it.Description) == "" {
			errs = append(errs, fmt.Errorf("ítem %d: descripción vacía", i+1))
		} else if !xmlText(it.Description) {
			errs = append(errs, fmt.Errorf("ítem %d: descripción con UTF-8 inválido o caracteres de control", i+1))
		}
		if !xmlText(it.ProductCode) {
			errs = append(errs, fmt.Errorf("ítem %d: código con UTF-8 inválido o caracteres de control", i+1))
		}
		if it.Quantity < 0 {
			errs = append(errs, fmt.Errorf("ítem %d: cantidad negativa (%d)", i+1, it.Quantity))
		}
		if it.UnitPrice.IsNegative() {
			errs = append(errs, fmt.Errorf("ítem %d: precio unitario negativo (%s)", i+1, it.UnitPrice.String()))
		} else if !centAmount(it.UnitPrice) {
			errs = append(errs, fmt.Errorf("ítem %d: precio unitario con más de 2 decimales (%s)", i+1, it.UnitPrice.String()))
		}
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{domain.ErrMalformedTransaction}, errs...)...)
	}
	return nil
}

// xmlText: UTF-8 válido y sin caracteres de control salvo tab y saltos de línea.
// etree reemplaza lo demás por U+FFFD y el XML firmado dejaría de coincidir con lo guardado.
func xmlText(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
		case unicode.IsControl(r), r == 0xFFFE, r == 0xFFFF:
			return false
		}
	}
	return true
}

// centAmount: el monto no tiene fracciones menores al céntimo.
func centAmount(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}
