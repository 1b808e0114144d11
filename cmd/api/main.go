package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/sifen-api/docs"
	"github.com/jhoicas/sifen-api/internal/application/auth"
	"github.com/jhoicas/sifen-api/internal/application/billing"
	"github.com/jhoicas/sifen-api/internal/application/usecase"
	"github.com/jhoicas/sifen-api/internal/domain/entity"
	domainsifen "github.com/jhoicas/sifen-api/internal/domain/sifen"
	infrapdf "github.com/jhoicas/sifen-api/internal/infrastructure/pdf"
	"github.com/jhoicas/sifen-api/internal/infrastructure/postgres"
	infrasifen "github.com/jhoicas/sifen-api/internal/infrastructure/sifen"
	"github.com/jhoicas/sifen-api/internal/infrastructure/sifen/signer"
	httpRouter "github.com/jhoicas/sifen-api/internal/interfaces/http"
	"github.com/jhoicas/sifen-api/pkg/config"
	"github.com/jhoicas/sifen-api/pkg/logger"
	pkgsifen "github.com/jhoicas/sifen-api/pkg/sifen"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	zl := log.Zerolog()
	log.Info().
		Str("env", cfg.App.Env).
		Str("cert_source", cfg.SIFEN.CertSource).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(cfg.DB.ConnectionString(), zl); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	companyRepo := postgres.NewCompanyRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	sequenceRepo := postgres.NewSequenceRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Emisor: configuración, reemplazada por la empresa guardada si existe
	profile := entity.IssuerProfile{
		RUC:             cfg.SIFEN.RUC,
		LegalName:       cfg.SIFEN.LegalName,
		Address:         cfg.SIFEN.Address,
		Establishment:   cfg.SIFEN.Establishment,
		ExpeditionPoint: cfg.SIFEN.ExpeditionPoint,
	}
	company, err := companyRepo.Get(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("leer empresa")
	}
	if company != nil && company.RUC != "" {
		profile.RUC, profile.LegalName, profile.Address = company.RUC, company.Name, company.Address
	}

	// Firmador: se elige una vez; la subida de certificado lo reemplaza solo en modo db
	var store signer.CredentialStore
	var signerOnUpload func() pkgsifen.Signer
	switch cfg.SIFEN.CertSource {
	case config.CertSourceDB:
		if company != nil && company.CertificatePath != "" {
			store = companyRepo
		}
		signerOnUpload = func() pkgsifen.Signer { return signer.NewDigitalSignatureService(companyRepo) }
	default:
		if cfg.SIFEN.CertPath != "" {
			store = signer.NewFileCredentialStore(cfg.SIFEN.CertPath, cfg.SIFEN.CertPassword)
		}
	}
	signerSvc := signer.New(signer.Options{Store: store, Logger: zl})

	pipeline := billing.NewIssuancePipeline(
		profile,
		domainsifen.NewCDCGenerator(nil),
		infrasifen.NewXMLBuilderService(),
		signerSvc,
		sequenceRepo,
		zl,
	)

	emitUC := billing.NewEmitInvoiceUseCase(pipeline, txRunner, invoiceRepo, cfg.SIFEN.QRHost)
	verifyUC := billing.NewVerifyUseCase()

	// PDF: KuDE de la factura electrónica SIFEN
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	invoicePDFUC := billing.NewPDFUseCase(invoiceRepo, companyRepo, pdfGenerator, entity.Company{
		Name:    cfg.SIFEN.LegalName,
		RUC:     cfg.SIFEN.RUC,
		Address: cfg.SIFEN.Address,
	}, cfg.SIFEN.QRHost)

	companyUC := usecase.NewCompanyUseCase(companyRepo, pipeline, usecase.CompanyConfig{
		CertDir:        cfg.SIFEN.CertDir,
		SignerOnUpload: signerOnUpload,
	})
	authUC := auth.NewAuthUseCase(
		auth.Operator{Username: cfg.Auth.AdminUser, PasswordHash: cfg.Auth.AdminPasswordHash},
		auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		},
	)
	if cfg.Auth.AdminPasswordHash == "" {
		log.Warn().Msg("AUTH_ADMIN_PASSWORD_HASH vacío: el login queda deshabilitado")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    2 * 1024 * 1024,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		EmitInvoice: emitUC,
		InvoicePDF:  invoicePDFUC,
		Verify:      verifyUC,
		CompanyUC:   companyUC,
		AuthUC:      authUC,
		DB:          pool,
		Mode:        func() string { return string(pipeline.SignatureMode()) },
		JWTSecret:   cfg.JWT.Secret,
		SwaggerFile: "./docs/swagger.json",
		Log:         zl,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()
	log.Info().
		Str("addr", cfg.HTTP.Addr()).
		Str("signature_mode", string(pipeline.SignatureMode())).
		Msg("servidor HTTP escuchando")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
