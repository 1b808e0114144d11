package repository

import (
	"context"

	"github.com/jhoicas/sifen-api/internal/domain/entity"
)

// InvoiceFilter filtros del historial de facturas.
type InvoiceFilter struct {
	Query  string // busca en receptor o CDC (ILIKE)
	Limit  int
	Offset int
}

// InvoiceRepository define el puerto de persistencia para facturas emitidas.
type InvoiceRepository interface {
	// Create persiste la factura firmada. El CDC es único.
	Create(ctx context.Context, invoice *entity.Invoice) error
	// GetByCDC devuelve (nil, nil) si no existe.
	GetByCDC(ctx context.Context, cdc string) (*entity.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]entity.InvoiceSummary, error)
}
