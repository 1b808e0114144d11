package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/sifen-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo número de documento por emisor sobre la tabla issuer_sequences.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa y devuelve el último número del emisor (1 para el primero).
func (r *SequenceRepo) Next(ctx context.Context, issuerRUC string) (int64, error) {
	query := `
		INSERT INTO issuer_sequences (issuer_ruc, last_value) VALUES ($1, 1)
		ON CONFLICT (issuer_ruc) DO UPDATE SET last_value = issuer_sequences.last_value + 1
		RETURNING last_value`
	var n int64
	if err := r.q.QueryRow(ctx, query, issuerRUC).Scan(&n); err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", issuerRUC, err)
	}
	return n, nil
}
