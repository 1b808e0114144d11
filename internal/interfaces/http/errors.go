package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/sifen-api/internal/application/dto"
	"github.com/jhoicas/sifen-api/internal/domain"
)

// errorMapping código HTTP y código de error para cada sentinela del dominio.
var errorMapping = []struct {
	target error
	status int
	code   string
}{
	{domain.ErrMalformedTransaction, fiber.StatusBadRequest, "MALFORMED_TRANSACTION"},
	{domain.ErrUnsupportedTaxRate, fiber.StatusBadRequest, "UNSUPPORTED_TAX_RATE"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidCredential, fiber.StatusUnprocessableEntity, "INVALID_CREDENTIAL"},
	{domain.ErrSigningFailed, fiber.StatusInternalServerError, "SIGNING_FAILED"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
}

// writeError responde con dto.ErrorResponse según el error de dominio; lo demás es 500.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			if m.status >= fiber.StatusInternalServerError {
				log.Error().Err(err).Str("path", c.Path()).Msg(m.code)
			}
			msg := err.Error()
			if m.target == domain.ErrUnauthorized {
				msg = "credenciales inválidas"
			}
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: msg})
		}
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
