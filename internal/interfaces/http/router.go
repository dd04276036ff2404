package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/courier-pro/internal/application/auth"
	"github.com/jhoicas/courier-pro/internal/application/billing"
	"github.com/jhoicas/courier-pro/internal/application/courier"
	"github.com/jhoicas/courier-pro/internal/application/usecase"
	"github.com/jhoicas/courier-pro/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	EnterpriseUC   *usecase.EnterpriseUseCase
	AgencyUC       *usecase.AgencyUseCase
	ClientUC       *billing.ClientUseCase
	ReceivePackage *courier.ReceivePackageUseCase
	CreateInvoice  *billing.CreateInvoiceUseCase
	Orchestrator   *billing.SRIOrchestrator
	InvoicePDF     *billing.PDFUseCase
	AuthUC         *auth.AuthUseCase
	JWTSecret      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Enterprises (público por ahora; alta inicial de tenants)
	enterprises := api.Group("/enterprises")
	enterpriseHandler := NewEnterpriseHandler(deps.EnterpriseUC)
	enterprises.Get("/", enterpriseHandler.List)
	enterprises.Post("/", enterpriseHandler.Create)
	enterprises.Get("/:id", enterpriseHandler.GetByID)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Agencies (protegido, solo admin)
	agencies := protected.Group("/agencies")
	agencyHandler := NewAgencyHandler(deps.AgencyUC)
	agencies.Post("/", RequireRole(entity.RoleAdmin), agencyHandler.Create)
	agencies.Get("/", agencyHandler.List)
	agencies.Get("/:id", agencyHandler.GetByID)

	// Clients (protegido)
	clients := protected.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)

	// Packages (protegido; recepción solo operador o admin)
	packages := protected.Group("/packages")
	packageHandler := NewPackageHandler(deps.ReceivePackage)
	packages.Post("/", RequireRole(entity.RoleAdmin, entity.RoleOperador), packageHandler.Receive)
	packages.Get("/", packageHandler.List)
	packages.Get("/guide/:guide", packageHandler.GetByGuide)
	packages.Patch("/:id/status", RequireRole(entity.RoleAdmin, entity.RoleOperador), packageHandler.UpdateStatus)

	// Invoices (protegido; emisión solo cajero o admin)
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.CreateInvoice, deps.Orchestrator, deps.InvoicePDF)
	invoices.Post("/", RequireRole(entity.RoleAdmin, entity.RoleCajero), invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Get("/:id/status", invoiceHandler.GetStatus)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)
	invoices.Post("/:id/emit", RequireRole(entity.RoleAdmin, entity.RoleCajero), invoiceHandler.Emit)
}
