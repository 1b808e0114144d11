package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmitInvoiceRequest body para POST /api/invoices.
// Total es el monto declarado por el punto de venta y no se recalcula con los ítems.
type EmitInvoiceRequest struct {
	IssuerRUC string               `json:"issuer_ruc,omitempty" validate:"omitempty,max=20"` // vacío = RUC de la empresa
	BuyerName string               `json:"buyer_name" validate:"required,max=255"`
	Items     []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
	Total     decimal.Decimal      `json:"total" swaggertype:"string" example:"110000"`
	TaxRate   int                  `json:"tax_rate,omitempty" example:"10"`
}

// InvoiceItemRequest línea de la operación.
type InvoiceItemRequest struct {
	ProductCode string          `json:"product_code,omitempty" validate:"omitempty,max=50"`
	Description string          `json:"description" validate:"required,max=500"`
	Quantity    int             `json:"quantity" validate:"min=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" swaggertype:"string" example:"55000"`
}

// EmitInvoiceResponse resultado de emitir una factura.
type EmitInvoiceResponse struct {
	ID            string          `json:"id"`
	CDC           string          `json:"cdc"`
	QRURL         string          `json:"qr_url"`
	PDFURL        string          `json:"pdf_url"`
	XMLURL        string          `json:"xml_url"`
	SignatureMode string          `json:"signature_mode"` // REAL | SIMULADA
	Total         decimal.Decimal `json:"total" swaggertype:"string"`
	TaxBase       decimal.Decimal `json:"tax_base" swaggertype:"string"`
	TaxAmount     decimal.Decimal `json:"tax_amount" swaggertype:"string"`
	TaxRate       int             `json:"tax_rate"`
	Warning       string          `json:"warning,omitempty"` // presente si la firma es simulada
}

// InvoiceResponse factura con detalle para GET /api/invoices/:cdc.
type InvoiceResponse struct {
	ID            string                `json:"id"`
	CDC           string                `json:"cdc"`
	IssuerRUC     string                `json:"issuer_ruc"`
	BuyerName     string                `json:"buyer_name"`
	Total         decimal.Decimal       `json:"total" swaggertype:"string"`
	TaxBase       decimal.Decimal       `json:"tax_base" swaggertype:"string"`
	TaxAmount     decimal.Decimal       `json:"tax_amount" swaggertype:"string"`
	TaxRate       int                   `json:"tax_rate"`
	SignatureMode string                `json:"signature_mode"`
	QRURL         string                `json:"qr_url"`
	IssuedAt      time.Time             `json:"issued_at"`
	Items         []InvoiceItemResponse `json:"items"`
}

// InvoiceItemResponse línea de detalle en la respuesta.
type InvoiceItemResponse struct {
	ProductCode string          `json:"product_code,omitempty"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" swaggertype:"string"`
	Subtotal    decimal.Decimal `json:"subtotal" swaggertype:"string"`
}

// InvoiceSummaryResponse fila del historial.
type InvoiceSummaryResponse struct {
	ID            string          `json:"id"`
	CDC           string          `json:"cdc"`
	BuyerName     string          `json:"buyer_name"`
	Total         decimal.Decimal `json:"total" swaggertype:"string"`
	SignatureMode string          `json:"signature_mode"`
	IssuedAt      time.Time       `json:"issued_at"`
}

// InvoiceListResponse historial paginado.
type InvoiceListResponse struct {
	Items []InvoiceSummaryResponse `json:"items"`
	Page  PageResponse             `json:"page"`
}

// VerifyResponse resultado de verificar un rDE firmado. Valid=false no es error HTTP.
type VerifyResponse struct {
	Valid         bool   `json:"valid"`
	CDC           string `json:"cdc,omitempty"`
	SignatureMode string `json:"signature_mode,omitempty"`
	Subject       string `json:"subject,omitempty"` // titular del certificado
	Reason        string `json:"reason,omitempty"`
}
