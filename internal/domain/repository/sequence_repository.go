package repository

import "context"

// SequenceRepository numeración de documentos por emisor (7 dígitos del CDC).
// Dentro de una transacción el número solo queda consumido si la transacción confirma.
type SequenceRepository interface {
	Next(ctx context.Context, issuerRUC string) (int64, error)
}
