package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice factura emitida y persistida (metadatos + XML firmado), indexada por CDC.
type Invoice struct {
	ID            string
	CDC           string // Código de Control de 44 dígitos
	IssuerRUC     string
	BuyerName     string
	Total         decimal.Decimal
	TaxBase       decimal.Decimal
	TaxAmount     decimal.Decimal
	TaxRate       int
	Items         []LineItem
	XMLSigned     string
	SignatureMode string // REAL | SIMULADA
	IssuedAt      time.Time
	CreatedAt     time.Time
}

// InvoiceSummary fila del historial de facturas.
type InvoiceSummary struct {
	ID            string
	CDC           string
	BuyerName     string
	Total         decimal.Decimal
	SignatureMode string
	IssuedAt      time.Time
}
