package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/sifen-api/internal/application/dto"
	"github.com/jhoicas/sifen-api/internal/domain"
	"github.com/jhoicas/sifen-api/internal/domain/entity"
	"github.com/jhoicas/sifen-api/internal/domain/repository"
	domainsifen "github.com/jhoicas/sifen-api/internal/domain/sifen"
	pkgsifen "github.com/jhoicas/sifen-api/pkg/sifen"
)

// SimulatedSignatureWarning aviso que acompaña a toda factura con firma simulada.
const SimulatedSignatureWarning = "firma simulada: el documento no tiene validez legal hasta configurar el certificado"

// EmitInvoiceUseCase emite la factura con el pipeline y la persiste solo si la firma terminó bien.
// El número de documento se reserva en la misma transacción que el INSERT.
type EmitInvoiceUseCase struct {
	pipeline    *IssuancePipeline
	txRunner    InvoiceTxRunner
	invoiceRepo repository.InvoiceRepository
	qrHost      string
}

// NewEmitInvoiceUseCase construye el caso de uso.
func NewEmitInvoiceUseCase(
	pipeline *IssuancePipeline,
	txRunner InvoiceTxRunner,
	invoiceRepo repository.InvoiceRepository,
	qrHost string,
) *EmitInvoiceUseCase {
	return &EmitInvoiceUseCase{
		pipeline:    pipeline,
		txRunner:    txRunner,
		invoiceRepo: invoiceRepo,
		qrHost:      qrHost,
	}
}

// Emit emite y guarda la factura.
func (uc *EmitInvoiceUseCase) Emit(ctx context.Context, in dto.EmitInvoiceRequest) (*dto.EmitInvoiceResponse, error) {
	tx := entity.Transaction{
		IssuerRUC: strings.TrimSpace(in.IssuerRUC),
		BuyerName: strings.TrimSpace(in.BuyerName),
		Total:     in.Total,
		TaxRate:   in.TaxRate,
		Items:     make([]entity.LineItem, 0, len(in.Items)),
	}
	for _, it := range in.Items {
		tx.Items = append(tx.Items, entity.LineItem{
			ProductCode: strings.TrimSpace(it.ProductCode),
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}

	// Número, firma e INSERT en la misma transacción: un fallo no deja huecos en la numeración.
	var (
		doc *domainsifen.SignedDocument
		inv *entity.Invoice
	)
	err := uc.txRunner.RunInvoice(ctx, func(seq repository.SequenceRepository, invoiceRepo repository.InvoiceRepository) error {
		var err error
		doc, err = uc.pipeline.IssueWithSequence(ctx, tx, seq)
		if err != nil {
			return err
		}
		inv = invoiceFromDocument(doc)
		if err := invoiceRepo.Create(ctx, inv); err != nil {
			return fmt.Errorf("guardar factura %s: %w", doc.CDC, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.EmitInvoiceResponse{
		ID:            inv.ID,
		CDC:           inv.CDC,
		QRURL:         doc.QRURL(uc.qrHost),
		PDFURL:        "/api/invoices/" + inv.CDC + "/pdf",
		XMLURL:        "/api/invoices/" + inv.CDC + "/xml",
		SignatureMode: inv.SignatureMode,
		Total:         inv.Total,
		TaxBase:       inv.TaxBase,
		TaxAmount:     inv.TaxAmount,
		TaxRate:       inv.TaxRate,
	}
	if doc.Simulated() {
		resp.Warning = SimulatedSignatureWarning
	}
	return resp, nil
}

// GetByCDC devuelve la factura o domain.ErrNotFound.
func (uc *EmitInvoiceUseCase) GetByCDC(ctx context.Context, cdc string) (*dto.InvoiceResponse, error) {
	inv, err := uc.find(ctx, cdc)
	if err != nil {
		return nil, err
	}
	resp := &dto.InvoiceResponse{
		ID:            inv.ID,
		CDC:           inv.CDC,
		IssuerRUC:     inv.IssuerRUC,
		BuyerName:     inv.BuyerName,
		Total:         inv.Total,
		TaxBase:       inv.TaxBase,
		TaxAmount:     inv.TaxAmount,
		TaxRate:       inv.TaxRate,
		SignatureMode: inv.SignatureMode,
		QRURL:         pkgsifen.QRURL(uc.qrHost, inv.CDC),
		IssuedAt:      inv.IssuedAt,
		Items:         make([]dto.InvoiceItemResponse, 0, len(inv.Items)),
	}
	for _, it := range inv.Items {
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			ProductCode: it.ProductCode,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal(),
		})
	}
	return resp, nil
}

// SignedXML devuelve el rDE firmado tal como se guardó.
func (uc *EmitInvoiceUseCase) SignedXML(ctx context.Context, cdc string) ([]byte, error) {
	inv, err := uc.find(ctx, cdc)
	if err != nil {
		return nil, err
	}
	return []byte(inv.XMLSigned), nil
}

// List historial con búsqueda por receptor o CDC.
func (uc *EmitInvoiceUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.InvoiceListResponse, error) {
	page = page.Normalize()
	rows, err := uc.invoiceRepo.List(ctx, repository.InvoiceFilter{
		Query:  page.Query,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listar facturas: %w", err)
	}
	out := &dto.InvoiceListResponse{
		Items: make([]dto.InvoiceSummaryResponse, 0, len(rows)),
		Page:  dto.PageResponse{Query: page.Query, Limit: page.Limit, Offset: page.Offset, Count: len(rows)},
	}
	for _, r := range rows {
		out.Items = append(out.Items, dto.InvoiceSummaryResponse{
			ID:            r.ID,
			CDC:           r.CDC,
			BuyerName:     r.BuyerName,
			Total:         r.Total,
			SignatureMode: r.SignatureMode,
			IssuedAt:      r.IssuedAt,
		})
	}
	return out, nil
}

func (uc *EmitInvoiceUseCase) find(ctx context.Context, cdc string) (*entity.Invoice, error) {
	if !domainsifen.ValidCDC(cdc) {
		return nil, fmt.Errorf("%w: CDC debe tener 44 dígitos", domain.ErrInvalidInput)
	}
	inv, err := uc.invoiceRepo.GetByCDC(ctx, cdc)
	if err != nil {
		return nil, fmt.Errorf("obtener factura: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

func invoiceFromDocument(doc *domainsifen.SignedDocument) *entity.Invoice {
	now := time.Now()
	return &entity.Invoice{
		ID:            uuid.New().String(),
		CDC:           doc.CDC,
		IssuerRUC:     doc.Transaction.IssuerRUC,
		BuyerName:     doc.Transaction.BuyerName,
		Total:         doc.Transaction.Total,
		TaxBase:       doc.Tax.Base,
		TaxAmount:     doc.Tax.Tax,
		TaxRate:       int(doc.Tax.Rate),
		Items:         doc.Transaction.Items,
		XMLSigned:     string(doc.SignedXML),
		SignatureMode: string(doc.Mode),
		IssuedAt:      doc.IssuedAt,
		CreatedAt:     now,
	}
}
