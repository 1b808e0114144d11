package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/sifen-api/internal/application/billing"
	"github.com/jhoicas/sifen-api/internal/application/dto"
)

// InvoiceHandler maneja las peticiones HTTP de facturación electrónica (protegido).
type InvoiceHandler struct {
	emit   *billing.EmitInvoiceUseCase
	pdf    *billing.PDFUseCase
	verify *billing.VerifyUseCase
	log    zerolog.Logger
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(emit *billing.EmitInvoiceUseCase, pdf *billing.PDFUseCase, verify *billing.VerifyUseCase, log zerolog.Logger) *InvoiceHandler {
	return &InvoiceHandler{emit: emit, pdf: pdf, verify: verify, log: log}
}

// Create godoc
// @Summary      Emitir factura electrónica
// @Description  Calcula el IVA, genera el CDC, arma el rDE y lo firma. Con firma simulada la respuesta trae warning.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.EmitInvoiceRequest  true  "Operación a facturar"
// @Success      201   {object}  dto.EmitInvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.EmitInvoiceRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.emit.Emit(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Historial de facturas
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        q       query  string  false  "Búsqueda por receptor o CDC"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.InvoiceListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros de búsqueda inválidos"})
	}
	out, err := h.emit.List(c.UserContext(), page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByCDC godoc
// @Summary      Obtener factura por CDC
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        cdc  path  string  true  "CDC de 44 dígitos"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{cdc} [get]
func (h *InvoiceHandler) GetByCDC(c *fiber.Ctx) error {
	out, err := h.emit.GetByCDC(c.UserContext(), c.Params("cdc"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// XML godoc
// @Summary      Descargar rDE firmado
// @Tags         invoices
// @Produce      application/xml
// @Security     BearerAuth
// @Param        cdc  path  string  true  "CDC de 44 dígitos"
// @Success      200  {string}  string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{cdc}/xml [get]
func (h *InvoiceHandler) XML(c *fiber.Ctx) error {
	cdc := c.Params("cdc")
	out, err := h.emit.SignedXML(c.UserContext(), cdc)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+cdc+`.xml"`)
	return c.Send(out)
}

// PDF godoc
// @Summary      Descargar KuDE (PDF)
// @Tags         invoices
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        cdc  path  string  true  "CDC de 44 dígitos"
// @Success      200  {file}  file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{cdc}/pdf [get]
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	out, filename, err := h.pdf.DownloadInvoicePDF(c.UserContext(), c.Params("cdc"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(out)
}

// Verify godoc
// @Summary      Verificar un rDE firmado
// @Description  Recalcula el digest y valida la firma con el certificado embebido. valid=false no es error.
// @Tags         invoices
// @Accept       application/xml
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  string  true  "rDE firmado"
// @Success      200   {object}  dto.VerifyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/invoices/verify [post]
func (h *InvoiceHandler) Verify(c *fiber.Ctx) error {
	out, err := h.verify.Verify(c.UserContext(), c.Body())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
