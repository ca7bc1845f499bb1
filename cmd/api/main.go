package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/seguros-api/internal/application/aiprocessor"
	appanalytics "github.com/jhoicas/seguros-api/internal/application/analytics"
	"github.com/jhoicas/seguros-api/internal/application/auth"
	"github.com/jhoicas/seguros-api/internal/application/automation"
	appfn "github.com/jhoicas/seguros-api/internal/application/functions"
	"github.com/jhoicas/seguros-api/internal/application/policy"
	"github.com/jhoicas/seguros-api/internal/application/ports"
	"github.com/jhoicas/seguros-api/internal/application/usecase"
	"github.com/jhoicas/seguros-api/internal/application/welcomekit"
	"github.com/jhoicas/seguros-api/internal/domain/repository"
	infraai "github.com/jhoicas/seguros-api/internal/infrastructure/ai"
	"github.com/jhoicas/seguros-api/internal/infrastructure/cache"
	infrafn "github.com/jhoicas/seguros-api/internal/infrastructure/functions"
	"github.com/jhoicas/seguros-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/seguros-api/internal/infrastructure/pdf"
	"github.com/jhoicas/seguros-api/internal/infrastructure/postgres"
	"github.com/jhoicas/seguros-api/internal/infrastructure/realtime"
	"github.com/jhoicas/seguros-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/seguros-api/internal/interfaces/http"
	"github.com/jhoicas/seguros-api/pkg/config"
	"github.com/jhoicas/seguros-api/pkg/logger"
)

// repositories agrupa los repositorios según el driver configurado.
type repositories struct {
	leads         repository.LeadRepository
	clients       repository.ClientRepository
	products      repository.ProductRepository
	sales         repository.SaleRepository
	payments      repository.PaymentRepository
	policies      repository.PolicyRepository
	commissions   repository.CommissionRepository
	users         repository.UserRepository
	resets        repository.PasswordResetRepository
	notifications repository.NotificationRepository
	campaigns     repository.RecoveryCampaignRepository
	auditLogs     repository.AuditLogRepository
	configs       repository.SystemConfigRepository
	jobs          repository.JobRepository
	analytics     repository.AnalyticsRepository
	tx            ports.TxRunner
}

func postgresRepositories(pool *pgxpool.Pool) repositories {
	return repositories{
		leads:         postgres.NewLeadRepository(pool),
		clients:       postgres.NewClientRepository(pool),
		products:      postgres.NewProductRepository(pool),
		sales:         postgres.NewSaleRepository(pool),
		payments:      postgres.NewPaymentRepository(pool),
		policies:      postgres.NewPolicyRepository(pool),
		commissions:   postgres.NewCommissionRepository(pool),
		users:         postgres.NewUserRepository(pool),
		resets:        postgres.NewPasswordResetRepository(pool),
		notifications: postgres.NewNotificationRepository(pool),
		campaigns:     postgres.NewCampaignRepository(pool),
		auditLogs:     postgres.NewAuditLogRepository(pool),
		configs:       postgres.NewConfigRepository(pool),
		jobs:          postgres.NewJobRepository(pool),
		analytics:     postgres.NewAnalyticsRepository(pool),
		tx:            postgres.NewTxRunner(pool),
	}
}

func memoryRepositories(s *memory.Store) repositories {
	return repositories{
		leads:         s.Leads(),
		clients:       s.Clients(),
		products:      s.Products(),
		sales:         s.Sales(),
		payments:      s.Payments(),
		policies:      s.Policies(),
		commissions:   s.Commissions(),
		users:         s.Users(),
		resets:        s.PasswordResets(),
		notifications: s.Notifications(),
		campaigns:     s.Campaigns(),
		auditLogs:     s.AuditLogs(),
		configs:       s.Configs(),
		jobs:          s.Jobs(),
		analytics:     s.Analytics(),
		tx:            s.TxRunner(),
	}
}

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
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Str("storage_driver", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Persistencia
	var repos repositories
	switch cfg.DB.Driver {
	case "memory":
		log.Warn().Msg("usando almacenamiento en memoria: los datos se pierden al reiniciar")
		repos = memoryRepositories(memory.NewStore())
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		results, err := postgres.Migrate(ctx, pool)
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Int("aplicadas", len(results)).Msg("migraciones al día")
		repos = postgresRepositories(pool)
	}

	// Archivos (pólizas y kits de bienvenida)
	var objects ports.ObjectStorage
	var filesDir string
	switch cfg.Storage.Driver {
	case "s3":
		s3, err := storage.NewS3Storage(ctx, storage.S3Config{
			Endpoint:     cfg.Storage.Endpoint,
			Region:       cfg.Storage.Region,
			Bucket:       cfg.Storage.Bucket,
			AccessKey:    cfg.Storage.AccessKey,
			SecretKey:    cfg.Storage.SecretKey,
			UseSSL:       cfg.Storage.UseSSL,
			UsePathStyle: cfg.Storage.UsePathStyle,
			PresignTTL:   cfg.Storage.PresignTTL,
		}, log.Component("storage"))
		if err != nil {
			log.Fatal().Err(err).Msg("storage S3")
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			log.Fatal().Err(err).Msg("bucket S3")
		}
		objects = s3
	default:
		local, err := storage.NewLocalStorage(cfg.Storage.LocalDir, strings.TrimRight(cfg.HTTP.PublicURL, "/")+"/files")
		if err != nil {
			log.Fatal().Err(err).Msg("storage local")
		}
		objects = local
		filesDir = local.Dir()
	}

	// Tiempo real e idempotencia: Redis si está configurado, memoria si no.
	hub := realtime.NewHub(64)
	var publisher ports.RealtimePublisher = hub
	var idempotency ports.IdempotencyStore
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		broker := realtime.NewRedisBroker(rdb, cfg.Redis.Channel, hub, log.Component("realtime"))
		go func() {
			if err := broker.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("broker realtime detenido")
			}
		}()
		publisher = broker
		idempotency = cache.NewRedisIdempotencyStore(rdb, "idem:")
	} else {
		log.Warn().Msg("Redis no configurado: realtime e idempotencia solo en esta instancia")
		idempotency = cache.NewMemoryIdempotencyStore()
	}

	// Proveedor de IA (opcional)
	var llm ports.LLMService
	if cfg.AI.APIKey != "" {
		switch cfg.AI.Provider {
		case "gemini":
			llm = infraai.NewGeminiService(cfg.AI.APIKey, cfg.AI.Model)
		default:
			llm = infraai.NewAnthropicService(cfg.AI.APIKey, cfg.AI.Model)
		}
	}

	// Funciones: las de dominio corren en proceso; el resto va al runtime remoto.
	local := infrafn.NewLocalRegistry()
	local.Register(appfn.EmitPolicy, policy.NewEmitPolicyUseCase(
		repos.sales, repos.products, repos.policies, publisher, log.Component("emit-policy")).Handle)
	local.Register(appfn.GenerateWelcomeKit, welcomekit.NewUseCase(welcomekit.Deps{
		Sales:         repos.sales,
		Policies:      repos.policies,
		Clients:       repos.clients,
		Products:      repos.products,
		Users:         repos.users,
		Notifications: repos.notifications,
		PDF:           infrapdf.NewWelcomeKitGenerator(cfg.HTTP.PublicURL),
		Storage:       objects,
		Publisher:     publisher,
	}, log.Component("welcome-kit")).Handle)

	var aiUC *aiprocessor.UseCase
	if llm != nil {
		aiUC = aiprocessor.NewUseCase(llm, repos.leads, repos.products)
		local.Register(appfn.AIProcessor, aiUC.Handle)
	}

	var remote ports.FunctionInvoker
	if cfg.Functions.BaseURL != "" {
		remote = infrafn.NewHTTPInvoker(cfg.Functions.BaseURL, cfg.Functions.ServiceKey, cfg.Functions.Timeout)
	}
	gateway := appfn.NewGateway(infrafn.NewRouter(local, remote), idempotency, cfg.Functions.IdempotencyTTL, log.Component("functions"))

	autoCfg := automation.Config{
		WelcomeKitDelay: cfg.Automation.WelcomeKitDelay,
		MaxAttempts:     cfg.Automation.MaxAttempts,
		BackoffBase:     cfg.Automation.BackoffBase,
		BackoffMax:      cfg.Automation.BackoffMax,
		Workers:         cfg.Automation.Workers,
		PollInterval:    cfg.Automation.PollInterval,
		LockFor:         cfg.Automation.LockFor,
		JobTimeout:      cfg.Automation.JobTimeout,
	}
	closure := automation.NewLeadClosure(repos.jobs, autoCfg, log.Component("automation"))

	// Casos de uso
	changes := usecase.NewChanges(repos.auditLogs, publisher, log.Component("changes"))
	authUC := auth.NewAuthUseCase(repos.users, repos.resets, repos.auditLogs, gateway, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))
	campaignUC := usecase.NewCampaignUseCase(repos.campaigns, repos.leads, repos.jobs, changes, log.Component("campaigns"))
	leadUC := usecase.NewLeadUseCase(repos.leads, repos.products, repos.users, repos.notifications,
		repos.tx, closure, changes).WithRecoveryTracker(campaignUC)
	saleUC := usecase.NewSaleUseCase(repos.sales, repos.payments, repos.leads, repos.clients, repos.products,
		repos.tx, closure, changes).WithRecoveryTracker(campaignUC)

	var wg sync.WaitGroup
	if cfg.Automation.Enabled {
		exec := automation.NewExecutor(automation.ExecutorDeps{
			Functions:     gateway,
			Jobs:          repos.jobs,
			Sales:         repos.sales,
			AuditLogs:     repos.auditLogs,
			Campaigns:     repos.campaigns,
			Notifications: repos.notifications,
			Publisher:     publisher,
		}, autoCfg, log.Component("executor"))
		runner := automation.NewRunner(repos.jobs, exec, autoCfg, log.Component("runner"))
		wg.Add(1)
		go func() {
			defer wg.Done()
			runner.Run(ctx)
		}()
	}

	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		ReadTimeout: time.Second * 10,
		// Sin WriteTimeout: el stream SSE de /api/realtime es de larga duración.
		IdleTimeout: time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HTTP.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
	}))
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Seguros API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		LeadUC:         leadUC,
		ClientUC:       usecase.NewClientUseCase(repos.clients, changes),
		ProductUC:      usecase.NewProductUseCase(repos.products, changes),
		SaleUC:         saleUC,
		CommissionUC:   usecase.NewCommissionUseCase(repos.commissions, repos.users, repos.notifications, changes),
		PolicyUC:       usecase.NewPolicyUseCase(repos.policies, objects),
		NotificationUC: usecase.NewNotificationUseCase(repos.notifications, changes),
		UserUC:         usecase.NewUserUseCase(repos.users, authUC, gateway, changes),
		ConfigUC:       usecase.NewConfigUseCase(repos.configs, changes),
		AuditUC:        usecase.NewAuditUseCase(repos.auditLogs, repos.analytics),
		CampaignUC:     campaignUC,
		JobUC:          usecase.NewJobUseCase(repos.jobs),
		DashboardUC:    appanalytics.NewDashboardUseCase(repos.analytics),
		AIUC:           aiUC,
		Functions:      gateway,
		ModuleService:  usecase.NewModuleService(repos.configs),
		Realtime:       httpRouter.NewRealtimeHandler(ctx, hub, log.Component("realtime")),
		JWTSecret:      cfg.JWT.Secret,
		FilesDir:       filesDir,
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

	// Cancelar primero cierra los streams SSE y detiene el runner.
	stop()

	shutdownTimeout := cfg.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	wg.Wait()

	log.Info().Msg("aplicación detenida")
}
