package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"janmitra/internal/config"
	"janmitra/internal/domain"
	"janmitra/internal/handler"
	"janmitra/internal/jobs"
	"janmitra/internal/kv"
	"janmitra/internal/logging"
	"janmitra/internal/middleware"
	"janmitra/internal/pkg/messages"
	"janmitra/internal/repository"
	"janmitra/internal/service"
	"janmitra/internal/service/audit"
)

const shutdownTimeout = 15 * time.Second

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		Output: os.Stderr,
	})
	if envErr != nil {
		logging.Info().Msg("No .env file found, using environment variables")
	}
	if cfg.JWTSecret == "" {
		logging.Fatal().Msg("JWT_SECRET is required")
	}
	if cfg.NotificationMessagesFile != "" {
		dir, name := filepath.Split(cfg.NotificationMessagesFile)
		if err := messages.Load(os.DirFS(filepath.Clean(dir)), name); err != nil {
			logging.Fatal().Err(err).Str("file", cfg.NotificationMessagesFile).Msg("Failed to load notification messages")
		}
	}

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	store := newStore(cfg)
	defer store.Close()

	minioClient, err := config.NewMinIOClient(cfg)
	if err != nil {
		if !errors.Is(err, config.ErrMinIODisabled) {
			logging.Warn().Err(err).Msg("Failed to connect to MinIO, audit exports will be returned inline")
		}
		minioClient = nil
	}

	repos := repository.NewRepositories(db)
	recorder := audit.NewRecorder(repos.AuditLog, cfg.AuditBufferSize)
	services := service.NewServices(repos, store, minioClient, recorder, cfg)
	handlers := handler.NewHandlers(services, recorder, db, store, cfg.IsProduction())

	app := fiber.New(fiber.Config{
		AppName:      "janmitra",
		ErrorHandler: middleware.ErrorHandler(cfg.IsProduction()),
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		BodyLimit:    10 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Device-ID, X-Request-ID",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))
	app.Use(middleware.AuditTrail(recorder))
	app.Use(middleware.OptionalAuth(services.Auth))

	limiterStorage := kv.NewFiberStorage(store, "ratelimit:")
	app.Use(middleware.RateLimit(limiterStorage, middleware.GeneralRateLimit))

	setupRoutes(app, handlers, services, store, limiterStorage, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	autoResolver := jobs.NewAutoResolver(services.Complaint, cfg.AutoResolveInterval)
	go func() {
		if err := autoResolver.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("auto-resolve job stopped")
		}
	}()

	go func() {
		logging.Info().Str("port", cfg.Port).Str("store", store.Name()).Msg("Server starting")
		if err := app.Listen(":" + cfg.Port); err != nil {
			logging.Error().Err(err).Msg("Server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("Shutting down")

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}
	if err := recorder.Close(); err != nil {
		logging.Error().Err(err).Msg("Failed to drain audit recorder")
	}
}

// newStore prefers Redis and falls back to process memory, which keeps a
// single instance fully functional.
func newStore(cfg *config.Config) kv.Store {
	client, err := config.NewRedisClient(cfg)
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to connect to Redis, using in-memory store")
		return kv.NewMemoryStore(10 * time.Minute)
	}
	if client == nil {
		return kv.NewMemoryStore(10 * time.Minute)
	}
	return kv.NewRedisStore(client)
}

func setupRoutes(app *fiber.App, h *handler.Handlers, services *service.Services, store kv.Store, limiterStorage fiber.Storage, cfg *config.Config) {
	app.Get("/health", h.Health.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	var (
		authn        = middleware.Authenticate(services.Auth)
		citizenOnly  = middleware.RequireRole(domain.RoleCitizen)
		officialOnly = middleware.RequireRole(domain.RoleStaff, domain.RoleSupervisor)
		supervisor   = middleware.RequireRole(domain.RoleSupervisor)
		invalidate   = middleware.InvalidateCache(store, middleware.ComplaintCachePatterns)
		ownership    = middleware.DepartmentOwnership(services.Complaint)
	)
	cache := func(keyFn middleware.CacheKeyFunc) fiber.Handler {
		return middleware.Cache(store, cfg.CacheTTL, keyFn)
	}

	api := app.Group("/api")

	authLimit := middleware.RateLimit(limiterStorage, middleware.AuthRateLimit)
	auth := api.Group("/auth")
	auth.Post("/start-verification", authLimit, h.Auth.StartVerification)
	auth.Post("/verify-phone", authLimit, h.Auth.VerifyPhone)
	auth.Post("/staff/login", authLimit, h.Auth.StaffLogin)
	auth.Get("/me", authn, h.Auth.Me)

	complaints := api.Group("/complaints")
	complaints.Post("/", middleware.RateLimit(limiterStorage, middleware.ComplaintRateLimit), invalidate, h.Complaint.Create)
	complaints.Get("/", authn, officialOnly, cache(middleware.StaffComplaintsCacheKey), h.Complaint.List)
	complaints.Get("/mine", authn, citizenOnly, cache(middleware.CitizenComplaintsCacheKey), h.Complaint.ListMine)
	complaints.Get("/nearby", authn, cache(middleware.NearbyComplaintsCacheKey), h.Complaint.ListNearby)
	complaints.Get("/:id", authn, cache(middleware.ComplaintCacheKey), h.Complaint.Get)
	complaints.Patch("/:id/status", authn, officialOnly, ownership, invalidate, h.Complaint.UpdateStatus)
	complaints.Put("/:id/status", authn, officialOnly, ownership, invalidate, h.Complaint.UpdateStatus)
	complaints.Post("/:id/refile", authn, citizenOnly, invalidate, h.Complaint.Refile)
	complaints.Post("/:id/confirm-resolution", authn, citizenOnly, invalidate, h.Complaint.ConfirmResolution)
	complaints.Post("/:id/upvote", authn, citizenOnly, invalidate, h.Complaint.Upvote)

	escalateLimit := middleware.RateLimit(limiterStorage, middleware.EscalateRateLimit)
	sup := api.Group("/supervisor", authn, supervisor)
	sup.Get("/dashboard", cache(middleware.DashboardCacheKey), h.Supervisor.Dashboard)
	sup.Post("/complaints/:id/mark-urgent", escalateLimit, invalidate, h.Supervisor.MarkUrgent)
	sup.Post("/complaints/:id/escalate", escalateLimit, invalidate, h.Supervisor.Escalate)
	sup.Post("/auto-resolve", invalidate, h.Supervisor.AutoResolve)

	notifications := api.Group("/notifications", authn)
	notifications.Get("/", h.Notification.List)
	notifications.Get("/unread-count", h.Notification.GetUnreadCount)
	notifications.Patch("/:id/read", h.Notification.MarkAsRead)
	notifications.Post("/mark-all-read", h.Notification.MarkAllAsRead)

	auditLogs := api.Group("/audit-logs", authn, supervisor)
	auditLogs.Get("/", h.Audit.List)
	auditLogs.Get("/export", h.Audit.Export)
	auditLogs.Get("/actions", h.Audit.Actions)
	auditLogs.Get("/resource-types", h.Audit.ResourceTypes)
}
