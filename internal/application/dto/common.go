package dto

import "strings"

// Límites del historial de facturas.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest búsqueda paginada del historial (GET /api/invoices?q=&limit=&offset=).
type PageRequest struct {
	Query  string `query:"q"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

// Normalize recorta la búsqueda, aplica el límite por defecto, lo acota a MaxPageLimit
// y lleva un offset negativo a cero.
func (p PageRequest) Normalize() PageRequest {
	p.Query = strings.TrimSpace(p.Query)
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageLimit
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// PageResponse metadatos de la página devuelta. Count es la cantidad de filas de esta página.
type PageResponse struct {
	Query  string `json:"q,omitempty"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Count  int    `json:"count"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
