package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/sifen-api/internal/domain"
	"github.com/jhoicas/sifen-api/internal/domain/entity"
	"github.com/jhoicas/sifen-api/internal/domain/repository"
	domainsifen "github.com/jhoicas/sifen-api/internal/domain/sifen"
	pkgsifen "github.com/jhoicas/sifen-api/pkg/sifen"
)

// PDFUseCase genera la representación gráfica (KuDE) de una factura emitida.
type PDFUseCase struct {
	invoiceRepo repository.InvoiceRepository
	companyRepo repository.CompanyRepository
	generator   InvoicePDFGenerator
	fallback    entity.Company // emisor por configuración si la empresa no fue guardada
	qrHost      string
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(
	invoiceRepo repository.InvoiceRepository,
	companyRepo repository.CompanyRepository,
	generator InvoicePDFGenerator,
	fallback entity.Company,
	qrHost string,
) *PDFUseCase {
	return &PDFUseCase{
		invoiceRepo: invoiceRepo,
		companyRepo: companyRepo,
		generator:   generator,
		fallback:    fallback,
		qrHost:      qrHost,
	}
}

// DownloadInvoicePDF carga la factura por CDC y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrInvalidInput     si el CDC no tiene 44 dígitos.
//   - domain.ErrNotFound         si la factura no existe.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, cdc string) (pdfBytes []byte, filename string, err error) {
	if !domainsifen.ValidCDC(cdc) {
		return nil, "", fmt.Errorf("%w: CDC debe tener 44 dígitos", domain.ErrInvalidInput)
	}
	inv, err := uc.invoiceRepo.GetByCDC(ctx, cdc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}

	company, err := uc.companyRepo.Get(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener empresa: %w", err)
	}
	if company == nil {
		c := uc.fallback
		company = &c
	}

	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, inv, company, pkgsifen.QRURL(uc.qrHost, inv.CDC))
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("factura_%s.pdf", inv.CDC), nil
}
