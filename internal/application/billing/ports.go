package billing

import (
	"context"

	"github.com/jhoicas/sifen-api/internal/domain/entity"
	"github.com/jhoicas/sifen-api/internal/domain/repository"
)

// SequenceSource entrega el número de documento (7 dígitos del CDC), monótono por emisor.
type SequenceSource interface {
	Next(ctx context.Context, issuerRUC string) (int64, error)
}

// InvoiceTxRunner ejecuta fn dentro de una transacción con la numeración y el repositorio de facturas
// atados a ella. Si fn devuelve error se revierte todo, también el número reservado.
type InvoiceTxRunner interface {
	RunInvoice(ctx context.Context, fn func(seq repository.SequenceRepository, invoiceRepo repository.InvoiceRepository) error) error
}

// InvoicePDFGenerator genera la representación gráfica (KuDE) de una factura persistida.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, invoice *entity.Invoice, company *entity.Company, qrURL string) ([]byte, error)
}
