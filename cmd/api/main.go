// Package main is the entrypoint for the LeadLens API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/leadlens/leadlens/internal/auth"
	"github.com/leadlens/leadlens/internal/cache"
	"github.com/leadlens/leadlens/internal/config"
	"github.com/leadlens/leadlens/internal/handler"
	"github.com/leadlens/leadlens/internal/mailer"
	"github.com/leadlens/leadlens/internal/metrics"
	"github.com/leadlens/leadlens/internal/middleware"
	"github.com/leadlens/leadlens/internal/provider"
	"github.com/leadlens/leadlens/internal/repository"
	"github.com/leadlens/leadlens/internal/server"
	"github.com/leadlens/leadlens/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	searchProvider := provider.NewOpenAIClient(provider.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.OpenAITimeout,
	})

	var mail mailer.Mailer
	if cfg.SMTPConfigured() {
		smtp, err := mailer.NewSMTP(mailer.Config{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		})
		if err != nil {
			logger.Error("failed to initialize SMTP client", "error", err)
			os.Exit(1)
		}
		mail = smtp
		logger.Info("SMTP configured", "host", cfg.SMTPHost)
	} else {
		mail = unconfiguredMailer{}
		logger.Warn("SMTP not configured, email dispatch will fail")
	}

	var recorder metrics.Recorder = metrics.NewNoop()
	var snapshotter metrics.Snapshotter
	if cfg.MetricsEnabled {
		inMem := metrics.NewInMemory()
		recorder = inMem
		snapshotter = inMem
	}

	authService := service.NewAuthService(repo, tokens)
	companyService := service.NewCompanyService(repo)
	searchService := service.NewSearchService(searchProvider, repo, repo, recorder)
	historyService := service.NewHistoryService(repo)
	templateService := service.NewTemplateService(repo)
	exportService := service.NewExportService(repo, recorder, cfg.ExportMaxRows)

	var emailOpts []service.EmailOption
	if cfg.EmailTestMode {
		emailOpts = append(emailOpts, service.WithTestMode(cfg.EmailTestRecipient))
		logger.Warn("email test mode enabled", "recipient", cfg.EmailTestRecipient)
	}
	emailService := service.NewEmailService(repo, repo, mail, recorder, logger, emailOpts...)

	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	authHandler := handler.NewAuthHandler(authService, logger)
	companyHandler := handler.NewCompanyHandler(companyService, logger)
	searchHandler := handler.NewSearchHandler(searchService, logger)
	historyHandler := handler.NewHistoryHandler(historyService, logger)
	emailHandler := handler.NewEmailHandler(emailService, logger)
	templateHandler := handler.NewTemplateHandler(templateService, logger)
	exportHandler := handler.NewExportHandler(exportService, logger)

	var metricsHandler *handler.MetricsHandler
	if cfg.MetricsEnabled {
		metricsHandler = handler.NewMetricsHandler(snapshotter)
	}

	r := setupRouter(routerDeps{
		health:    healthHandler,
		auth:      authHandler,
		companies: companyHandler,
		search:    searchHandler,
		history:   historyHandler,
		email:     emailHandler,
		templates: templateHandler,
		export:    exportHandler,
		metrics:   metricsHandler,
		tokens:    tokens,
		cache:     cacheClient,
		cfg:       cfg,
		logger:    logger,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("database", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(ctx context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// unconfiguredMailer fails every send with a clear error.
type unconfiguredMailer struct{}

func (unconfiguredMailer) Send(ctx context.Context, msg mailer.Message) error {
	return mailer.ErrNotConfigured
}

// routerDeps bundles everything setupRouter needs.
type routerDeps struct {
	health    *handler.HealthHandler
	auth      *handler.AuthHandler
	companies *handler.CompanyHandler
	search    *handler.SearchHandler
	history   *handler.HistoryHandler
	email     *handler.EmailHandler
	templates *handler.TemplateHandler
	export    *handler.ExportHandler
	metrics   *handler.MetricsHandler
	tokens    *auth.TokenManager
	cache     *cache.Cache
	cfg       *config.Config
	logger    *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: deps.cfg.IsDevelopment()}))
	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = deps.cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)

	if deps.metrics != nil {
		r.Get("/metrics", deps.metrics.Metrics)
	}

	authCfg := middleware.AuthConfig{
		Logger: deps.logger,
		Tokens: deps.tokens,
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:          deps.logger,
		Cache:           deps.cache,
		AuthEnabled:     deps.cfg.RateLimitAuthEnabled,
		AuthRPS:         deps.cfg.RateLimitAuthRPS,
		AuthBurst:       deps.cfg.RateLimitAuthBurst,
		SearchEnabled:   deps.cfg.RateLimitSearchEnabled,
		SearchPerMinute: deps.cfg.RateLimitSearchPerMin,
		SearchBurst:     deps.cfg.RateLimitSearchBurst,
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Registration and login are rate limited per IP, not authenticated.
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimitAuth(rateLimitCfg)).Post("/register", deps.auth.Register)
			r.With(middleware.RateLimitAuth(rateLimitCfg)).Post("/login", deps.auth.Login)
			r.With(middleware.Auth(authCfg)).Get("/profile", deps.auth.Profile)
		})

		// Everything else requires a valid token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))

			r.Route("/companies", func(r chi.Router) {
				r.Get("/", deps.companies.List)
				r.Delete("/batch", deps.companies.DeleteBatch)
				r.Get("/{id}", deps.companies.Get)
				r.Delete("/{id}", deps.companies.Delete)
			})

			r.With(middleware.RateLimitSearch(rateLimitCfg)).
				Post("/search/companies", deps.search.Search)

			r.Route("/search-history", func(r chi.Router) {
				r.Get("/", deps.history.List)
				r.Get("/statistics", deps.history.Statistics)
				r.Get("/keywords/{keywords}/companies", deps.history.CompaniesByKeywords)
				r.Delete("/keywords/{keywords}", deps.history.DeleteByKeywords)
				r.Delete("/clear/all", deps.history.Clear)
				r.Get("/{id}", deps.history.Get)
				r.Delete("/{id}", deps.history.Delete)
			})

			r.Route("/email", func(r chi.Router) {
				r.Post("/send", deps.email.Send)
				r.Post("/batch-send", deps.email.SendBatch)
			})

			r.Route("/email-templates", func(r chi.Router) {
				r.Get("/", deps.templates.List)
				r.Post("/", deps.templates.Create)
				r.Get("/default", deps.templates.GetDefault)
				r.Post("/init-defaults", deps.templates.InitDefaults)
				r.Get("/{id}", deps.templates.Get)
				r.Put("/{id}", deps.templates.Update)
				r.Put("/{id}/set-default", deps.templates.SetDefault)
				r.Delete("/{id}", deps.templates.Delete)
			})

			r.Get("/export/excel", deps.export.Excel)
		})
	})

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// redactURL strips credentials from a connection URL for logging.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

// sanitizeError removes known secrets from an error message.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		msg = strings.ReplaceAll(msg, secret, "[redacted]")
	}
	return msg
}
