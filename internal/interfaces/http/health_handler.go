package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// Pinger lo cumple *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler estado del servicio.
type HealthHandler struct {
	db   Pinger
	mode func() string
}

// NewHealthHandler db puede ser nil (sin base de datos).
func NewHealthHandler(db Pinger, mode func() string) *HealthHandler {
	return &HealthHandler{db: db, mode: mode}
}

// Health godoc
// @Summary      Estado del servicio
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	body := fiber.Map{"status": "ok", "signature_mode": h.mode()}
	if h.db != nil {
		if err := h.db.Ping(c.UserContext()); err != nil {
			body["status"] = "degraded"
			body["database"] = "unreachable"
			return c.Status(fiber.StatusServiceUnavailable).JSON(body)
		}
		body["database"] = "ok"
	}
	return c.JSON(body)
}
