package http

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/sifen-api/internal/application/dto"
	"github.com/jhoicas/sifen-api/internal/application/usecase"
)

// Tamaño máximo aceptado para el .p12 subido.
const maxCertificateSize = 1 << 20

// CompanyHandler configuración de la empresa emisora (protegido, admin).
type CompanyHandler struct {
	uc  *usecase.CompanyUseCase
	log zerolog.Logger
}

// NewCompanyHandler construye el handler inyectando el caso de uso.
func NewCompanyHandler(uc *usecase.CompanyUseCase, log zerolog.Logger) *CompanyHandler {
	return &CompanyHandler{uc: uc, log: log}
}

// Get godoc
// @Summary      Configuración de la empresa
// @Tags         company
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.CompanyResponse
// @Router       /api/company [get]
func (h *CompanyHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar datos de la empresa
// @Tags         company
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.UpdateCompanyRequest  true  "Razón social, RUC y dirección"
// @Success      200   {object}  dto.CompanyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/company [put]
func (h *CompanyHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCompanyRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// UploadCertificate godoc
// @Summary      Subir certificado de firma (.p12/.pfx)
// @Tags         company
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        certificate  formData  file    true  "Archivo .p12 o .pfx"
// @Param        password     formData  string  true  "Contraseña del certificado"
// @Success      200  {object}  dto.CertificateUploadResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/company/certificate [post]
func (h *CompanyHandler) UploadCertificate(c *fiber.Ctx) error {
	fh, err := c.FormFile("certificate")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "campo certificate requerido"})
	}
	if fh.Size > maxCertificateSize {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "el certificado supera 1 MB"})
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, h.log, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return writeError(c, h.log, err)
	}

	out, err := h.uc.UploadCertificate(c.UserContext(), fh.Filename, data, c.FormValue("password"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
