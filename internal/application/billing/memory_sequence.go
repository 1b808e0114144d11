package billing

import (
	"context"
	"sync"
)

// MemorySequence contador en memoria por emisor. Se pierde al reiniciar; sirve para desarrollo y pruebas.
type MemorySequence struct {
	mu   sync.Mutex
	last map[string]int64
}

// NewMemorySequence crea el contador.
func NewMemorySequence() *MemorySequence {
	return &MemorySequence{last: make(map[string]int64)}
}

// Next implementa SequenceSource: 1, 2, 3… por RUC.
func (s *MemorySequence) Next(ctx context.Context, issuerRUC string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[issuerRUC]++
	return s.last[issuerRUC], nil
}

var _ SequenceSource = (*MemorySequence)(nil)
