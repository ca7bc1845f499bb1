package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/seguros-api/internal/application/aiprocessor"
	appanalytics "github.com/jhoicas/seguros-api/internal/application/analytics"
	"github.com/jhoicas/seguros-api/internal/application/auth"
	"github.com/jhoicas/seguros-api/internal/application/usecase"
	"github.com/jhoicas/seguros-api/internal/domain/entity"
)

// Módulos que se pueden desactivar desde system_config ("module.<nombre>").
const (
	ModuleCampaigns = "campaigns"
	ModuleAI        = "ai"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	LeadUC         *usecase.LeadUseCase
	ClientUC       *usecase.ClientUseCase
	ProductUC      *usecase.ProductUseCase
	SaleUC         *usecase.SaleUseCase
	CommissionUC   *usecase.CommissionUseCase
	PolicyUC       *usecase.PolicyUseCase
	NotificationUC *usecase.NotificationUseCase
	UserUC         *usecase.UserUseCase
	ConfigUC       *usecase.ConfigUseCase
	AuditUC        *usecase.AuditUseCase
	CampaignUC     *usecase.CampaignUseCase
	JobUC          *usecase.JobUseCase
	DashboardUC    *appanalytics.DashboardUseCase
	AIUC           *aiprocessor.UseCase
	Functions      functionInvoker
	ModuleService  moduleChecker
	Realtime       *RealtimeHandler // nil = sin endpoint SSE
	JWTSecret      string
	// FilesDir directorio servido en /files cuando el storage es local; vacío = no se sirve.
	FilesDir string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.FilesDir != "" {
		app.Static("/files", deps.FilesDir)
	}

	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/signup", authHandler.SignUp)
	authGroup.Post("/signin", authHandler.SignIn)
	authGroup.Post("/password-reset", authHandler.RequestPasswordReset)
	authGroup.Post("/password-reset/confirm", authHandler.ConfirmPasswordReset)
	authGroup.Get("/session", AuthMiddleware(deps.JWTSecret), authHandler.Session)

	// Realtime (SSE). Va antes del grupo protegido: es la única ruta que acepta
	// el token en la query.
	if deps.Realtime != nil {
		api.Get("/realtime", StreamAuthMiddleware(deps.JWTSecret), deps.Realtime.Stream)
	}

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	backOffice := RequireRole(entity.RoleAdmin, entity.RoleManager)
	admin := RequireRole(entity.RoleAdmin)
	auditors := RequireRole(entity.RoleAdmin, entity.RoleCompliance)

	// Leads
	leads := protected.Group("/leads")
	leadHandler := NewLeadHandler(deps.LeadUC)
	leads.Post("/", leadHandler.Create)
	leads.Get("/", leadHandler.List)
	leads.Get("/:id", leadHandler.GetByID)
	leads.Put("/:id", leadHandler.Update)
	leads.Patch("/:id/status", leadHandler.UpdateStatus)
	leads.Patch("/:id/assign", backOffice, leadHandler.Assign)
	leads.Delete("/:id", backOffice, leadHandler.Delete)

	// Clients
	clients := protected.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Put("/:id", clientHandler.Update)

	// Products (lectura para todos, escritura back-office)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", backOffice, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", backOffice, productHandler.Update)

	// Sales y pagos
	sales := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC)
	sales.Post("/", saleHandler.Create)
	sales.Get("/", saleHandler.List)
	sales.Get("/:id", saleHandler.GetByID)
	sales.Post("/:id/pay", saleHandler.MarkPaid)
	sales.Post("/:id/cancel", backOffice, saleHandler.Cancel)
	sales.Get("/:id/payments", saleHandler.ListPayments)
	sales.Post("/:id/payments", backOffice, saleHandler.RecordPayment)

	// Commissions
	commissions := protected.Group("/commissions")
	commissionHandler := NewCommissionHandler(deps.CommissionUC)
	commissions.Get("/", commissionHandler.List)
	commissions.Post("/:id/approve", backOffice, commissionHandler.Approve)
	commissions.Post("/:id/pay", admin, commissionHandler.Pay)
	commissions.Post("/:id/cancel", backOffice, commissionHandler.Cancel)

	// Policies
	policies := protected.Group("/policies")
	policyHandler := NewPolicyHandler(deps.PolicyUC)
	policies.Get("/", policyHandler.List)
	policies.Get("/:id", policyHandler.GetByID)
	policies.Get("/:id/welcome-kit", policyHandler.WelcomeKit)

	// Notifications del usuario
	notifications := protected.Group("/notifications")
	notificationHandler := NewNotificationHandler(deps.NotificationUC)
	notifications.Get("/", notificationHandler.List)
	notifications.Post("/read-all", notificationHandler.MarkAllRead)
	notifications.Post("/:id/read", notificationHandler.MarkRead)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard/summary", dashboardHandler.GetSummary)

	// Users (admin)
	users := protected.Group("/users", admin)
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Post("/invite", userHandler.Invite)
	users.Get("/:id", userHandler.GetByID)
	users.Patch("/:id", userHandler.Update)

	// System config (admin)
	cfgGroup := protected.Group("/config", admin)
	configHandler := NewConfigHandler(deps.ConfigUC)
	cfgGroup.Get("/", configHandler.List)
	cfgGroup.Get("/:key", configHandler.Get)
	cfgGroup.Put("/:key", configHandler.Upsert)

	// Auditoría y cumplimiento
	auditHandler := NewAuditHandler(deps.AuditUC)
	protected.Get("/audit-logs", auditors, auditHandler.List)
	protected.Get("/compliance/report", auditors, auditHandler.Compliance)

	// Cola de automatización
	jobHandler := NewJobHandler(deps.JobUC)
	protected.Get("/jobs", backOffice, jobHandler.List)

	// Campañas de recuperación (módulo desactivable)
	campaigns := protected.Group("/campaigns", RequireModule(ModuleCampaigns, deps.ModuleService), backOffice)
	campaignHandler := NewCampaignHandler(deps.CampaignUC)
	campaigns.Post("/", campaignHandler.Create)
	campaigns.Get("/", campaignHandler.List)
	campaigns.Get("/:id", campaignHandler.GetByID)
	campaigns.Post("/:id/launch", campaignHandler.Launch)
	campaigns.Post("/:id/pause", campaignHandler.Pause)

	// Funciones nombradas (solo back-office; los vendedores llegan a ellas por
	// los casos de uso)
	functionHandler := NewFunctionHandler(deps.Functions)
	protected.Post("/functions/:name", backOffice, RequireFunctionModule(deps.ModuleService), functionHandler.Invoke)

	// IA
	if deps.AIUC != nil {
		aiHandler := NewAIHandler(deps.AIUC)
		protected.Post("/ai/score-lead", RequireModule(ModuleAI, deps.ModuleService), aiHandler.ScoreLead)
	}
}
