package billing_test

import (
	"context"
	"maps"
	"strings"
	"sync"

	"github.com/jhoicas/sifen-api/internal/domain"
	"github.com/jhoicas/sifen-api/internal/domain/entity"
	"github.com/jhoicas/sifen-api/internal/domain/repository"
)

type memInvoiceRepo struct {
	mu    sync.Mutex
	byCDC map[string]*entity.Invoice
	order []string
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{byCDC: make(map[string]*entity.Invoice)}
}

func (r *memInvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byCDC[inv.CDC]; ok {
		return domain.ErrDuplicate
	}
	r.byCDC[inv.CDC] = inv
	r.order = append(r.order, inv.CDC)
	return nil
}

func (r *memInvoiceRepo) GetByCDC(_ context.Context, cdc string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byCDC[cdc], nil
}

func (r *memInvoiceRepo) List(_ context.Context, f repository.InvoiceFilter) ([]entity.InvoiceSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.InvoiceSummary
	for _, cdc := range r.order {
		inv := r.byCDC[cdc]
		if f.Query != "" && !strings.Contains(strings.ToLower(inv.BuyerName), strings.ToLower(f.Query)) && !strings.Contains(inv.CDC, f.Query) {
			continue
		}
		out = append(out, entity.InvoiceSummary{
			ID: inv.ID, CDC: inv.CDC, BuyerName: inv.BuyerName, Total: inv.Total,
			SignatureMode: inv.SignatureMode, IssuedAt: inv.IssuedAt,
		})
	}
	return out, nil
}

// memTxRunner ejecuta fn sobre el repositorio en memoria. Los números que fn reserva solo
// pasan a committed si fn termina sin error, como el ROLLBACK de Postgres.
type memTxRunner struct {
	repo      *memInvoiceRepo
	err       error
	calls     int
	mu        sync.Mutex
	committed map[string]int64
}

func (t *memTxRunner) RunInvoice(_ context.Context, fn func(repository.SequenceRepository, repository.InvoiceRepository) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	if t.err != nil {
		return t.err
	}
	if t.committed == nil {
		t.committed = make(map[string]int64)
	}
	seq := &stagedSequence{committed: t.committed, pending: make(map[string]int64)}
	if err := fn(seq, t.repo); err != nil {
		return err
	}
	maps.Copy(t.committed, seq.pending)
	return nil
}

type stagedSequence struct {
	committed map[string]int64
	pending   map[string]int64
}

func (s *stagedSequence) Next(_ context.Context, issuerRUC string) (int64, error) {
	last, ok := s.pending[issuerRUC]
	if !ok {
		last = s.committed[issuerRUC]
	}
	s.pending[issuerRUC] = last + 1
	return last + 1, nil
}

type memCompanyRepo struct {
	company *entity.Company
}

func (r *memCompanyRepo) Get(context.Context) (*entity.Company, error) {
	if r.company == nil {
		return nil, nil
	}
	c := *r.company
	return &c, nil
}

func (r *memCompanyRepo) SaveSettings(_ context.Context, c *entity.Company) error {
	if r.company == nil {
		r.company = &entity.Company{}
	}
	r.company.Name, r.company.RUC, r.company.Address, r.company.UpdatedAt = c.Name, c.RUC, c.Address, c.UpdatedAt
	return nil
}

func (r *memCompanyRepo) SaveCertificate(_ context.Context, path, password string) error {
	if r.company == nil {
		r.company = &entity.Company{}
	}
	r.company.CertificatePath, r.company.CertificatePassword = path, password
	return nil
}
