package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/sifen-api/internal/domain"
	"github.com/jhoicas/sifen-api/internal/domain/entity"
	"github.com/jhoicas/sifen-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// itemRow forma de cada ítem dentro de la columna items (JSONB).
type itemRow struct {
	ProductCode string          `json:"product_code,omitempty"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Create persiste la factura con su XML firmado. Un CDC repetido devuelve domain.ErrDuplicate.
func (r *InvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	rows := make([]itemRow, 0, len(invoice.Items))
	for _, it := range invoice.Items {
		rows = append(rows, itemRow(it))
	}
	items, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("serializar ítems: %w", err)
	}

	query := `
		INSERT INTO invoices (id, cdc, issuer_ruc, buyer_name, total, tax_base, tax_amount, tax_rate,
		                      items, xml_signed, signature_mode, issued_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = r.q.Exec(ctx, query,
		invoice.ID, invoice.CDC, invoice.IssuerRUC, invoice.BuyerName,
		invoice.Total, invoice.TaxBase, invoice.TaxAmount, invoice.TaxRate,
		items, invoice.XMLSigned, invoice.SignatureMode, invoice.IssuedAt, invoice.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: CDC %s ya registrado", domain.ErrDuplicate, invoice.CDC)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByCDC obtiene la factura completa; (nil, nil) si no existe.
func (r *InvoiceRepo) GetByCDC(ctx context.Context, cdc string) (*entity.Invoice, error) {
	query := `
		SELECT id, cdc, issuer_ruc, buyer_name, total, tax_base, tax_amount, tax_rate,
		       items, xml_signed, signature_mode, issued_at, created_at
		FROM invoices WHERE cdc = $1`
	var inv entity.Invoice
	var items []byte
	err := r.q.QueryRow(ctx, query, cdc).Scan(
		&inv.ID, &inv.CDC, &inv.IssuerRUC, &inv.BuyerName,
		&inv.Total, &inv.TaxBase, &inv.TaxAmount, &inv.TaxRate,
		&items, &inv.XMLSigned, &inv.SignatureMode, &inv.IssuedAt, &inv.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	var rows []itemRow
	if err := json.Unmarshal(items, &rows); err != nil {
		return nil, fmt.Errorf("leer ítems de %s: %w", cdc, err)
	}
	inv.Items = make([]entity.LineItem, 0, len(rows))
	for _, it := range rows {
		inv.Items = append(inv.Items, entity.LineItem(it))
	}
	return &inv, nil
}

// List historial ordenado por fecha de emisión descendente, con búsqueda opcional por receptor o CDC.
func (r *InvoiceRepo) List(ctx context.Context, filter repository.InvoiceFilter) ([]entity.InvoiceSummary, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if filter.Query == "" {
		rows, err = r.q.Query(ctx, `
			SELECT id, cdc, buyer_name, total, signature_mode, issued_at
			FROM invoices
			ORDER BY issued_at DESC, created_at DESC
			LIMIT $1 OFFSET $2`, filter.Limit, filter.Offset)
	} else {
		rows, err = r.q.Query(ctx, `
			SELECT id, cdc, buyer_name, total, signature_mode, issued_at
			FROM invoices
			WHERE buyer_name ILIKE $1 OR cdc LIKE $1
			ORDER BY issued_at DESC, created_at DESC
			LIMIT $2 OFFSET $3`, likePattern(filter.Query), filter.Limit, filter.Offset)
	}
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var out []entity.InvoiceSummary
	for rows.Next() {
		var s entity.InvoiceSummary
		if err := rows.Scan(&s.ID, &s.CDC, &s.BuyerName, &s.Total, &s.SignatureMode, &s.IssuedAt); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
