package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/courier-pro/internal/application/auth"
	"github.com/jhoicas/courier-pro/internal/application/billing"
	"github.com/jhoicas/courier-pro/internal/application/courier"
	"github.com/jhoicas/courier-pro/internal/application/usecase"
	infrapdf "github.com/jhoicas/courier-pro/internal/infrastructure/pdf"
	"github.com/jhoicas/courier-pro/internal/infrastructure/postgres"
	infrasri "github.com/jhoicas/courier-pro/internal/infrastructure/sri"
	"github.com/jhoicas/courier-pro/internal/infrastructure/sri/signer"
	httpRouter "github.com/jhoicas/courier-pro/internal/interfaces/http"
	"github.com/jhoicas/courier-pro/pkg/config"
	"github.com/jhoicas/courier-pro/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	enterpriseRepo := postgres.NewEnterpriseRepository(pool)
	agencyRepo := postgres.NewAgencyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	packageRepo := postgres.NewPackageRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	enterpriseUC := usecase.NewEnterpriseUseCase(enterpriseRepo)
	agencyUC := usecase.NewAgencyUseCase(agencyRepo)
	clientUC := billing.NewClientUseCase(clientRepo)
	receivePackageUC := courier.NewReceivePackageUseCase(packageRepo, clientRepo, agencyRepo, log)
	createInvoiceUC := billing.NewCreateInvoiceUseCase(
		txRunner, invoiceRepo, enterpriseRepo, clientRepo, packageRepo,
	)

	// Cadena SRI: generación de XML → firma XAdES-BES → recepción/autorización SOAP
	assembler := infrasri.NewAssemblerService(cfg.SRI.GeneratedDir)

	// Firmador externo (java + jar) si está configurado; si no, firmador nativo.
	var signerImpl billing.Signer
	if cfg.SRI.SignerScript != "" {
		signerImpl = signer.NewSubprocessSigner(cfg.SRI.SignerCommand, cfg.SRI.SignerScript)
	} else {
		signerImpl = signer.NewXadesSigner()
	}
	signingGateway := billing.NewSigningGateway(
		&billing.EnterpriseCredentialProvider{
			DefaultCertPath: cfg.SRI.CertPath,
			DefaultPassword: cfg.SRI.CertPassword,
		},
		signerImpl, cfg.SRI.SignedDir, log,
	)

	soapClient := infrasri.NewSOAPAuthorityClient(cfg.SRI.ReceptionURL, cfg.SRI.AuthorizationURL)
	authClient := billing.NewAuthorizationClient(
		soapClient, cfg.SRI.AuthorizedDir, cfg.SRI.NotAuthorizedDir, log,
	)
	orchestrator := billing.NewSRIOrchestrator(
		invoiceRepo, enterpriseRepo, clientRepo,
		assembler, signingGateway, authClient,
		cfg.SRI.Environment, cfg.SRI.EmissionType, log,
	)

	// PDF: representación impresa (RIDE) de la factura electrónica
	pdfGenerator := infrapdf.NewRIDEGenerator()
	invoicePDFUC := billing.NewPDFUseCase(invoiceRepo, enterpriseRepo, clientRepo, pdfGenerator)

	authUC := auth.NewAuthUseCase(userRepo, enterpriseRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Courier Pro API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		EnterpriseUC:   enterpriseUC,
		AgencyUC:       agencyUC,
		ClientUC:       clientUC,
		ReceivePackage: receivePackageUC,
		CreateInvoice:  createInvoiceUC,
		Orchestrator:   orchestrator,
		InvoicePDF:     invoicePDFUC,
		AuthUC:         authUC,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

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
