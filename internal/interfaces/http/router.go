package http

import (
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/swaggo/swag"

	"github.com/jhoicas/sifen-api/internal/application/auth"
	"github.com/jhoicas/sifen-api/internal/application/billing"
	"github.com/jhoicas/sifen-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	EmitInvoice *billing.EmitInvoiceUseCase
	InvoicePDF  *billing.PDFUseCase
	Verify      *billing.VerifyUseCase
	CompanyUC   *usecase.CompanyUseCase
	AuthUC      *auth.AuthUseCase
	DB          Pinger // nil = sin chequeo de base en /health
	Mode        func() string
	JWTSecret   string
	SwaggerFile string // ruta a swagger.json para la UI; vacío o inexistente = sin UI
	Log         zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	mountDocs(app, deps)

	app.Get("/health", NewHealthHandler(deps.DB, deps.Mode).Health)

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.Log)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.EmitInvoice, deps.InvoicePDF, deps.Verify, deps.Log)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Post("/verify", invoiceHandler.Verify)
	invoices.Get("/:cdc", invoiceHandler.GetByCDC)
	invoices.Get("/:cdc/xml", invoiceHandler.XML)
	invoices.Get("/:cdc/pdf", invoiceHandler.PDF)

	// Empresa y certificado (solo admin)
	company := protected.Group("/company", RequireRole(auth.RoleAdmin))
	companyHandler := NewCompanyHandler(deps.CompanyUC, deps.Log)
	company.Get("/", companyHandler.Get)
	company.Put("/", companyHandler.Update)
	company.Post("/certificate", companyHandler.UploadCertificate)
}

// mountDocs expone el documento OpenAPI registrado con swag y, si existe el archivo, la UI en /docs.
func mountDocs(app *fiber.App, deps RouterDeps) {
	app.Get("/docs/doc.json", func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc()
		if err != nil {
			return c.Status(fiber.StatusNotFound).SendString("documentación no registrada")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.SendString(doc)
	})

	if deps.SwaggerFile == "" {
		return
	}
	if _, err := os.Stat(deps.SwaggerFile); err != nil {
		deps.Log.Warn().Str("file", deps.SwaggerFile).Msg("swagger.json no encontrado, UI deshabilitada")
		return
	}
	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: deps.SwaggerFile,
		Path:     "docs",
		Title:    "SIFEN API",
	}))
}
