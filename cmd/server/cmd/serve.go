package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ourevents/config"
	_ "ourevents/docs"
	"ourevents/internal/adapters/auth"
	"ourevents/internal/adapters/broker"
	"ourevents/internal/adapters/email"
	delivery "ourevents/internal/delivery/http"
	"ourevents/internal/delivery/http/controllers"
	"ourevents/internal/delivery/http/middleware"
	"ourevents/internal/repository/cache"
	"ourevents/internal/repository/postgres"
	"ourevents/internal/services"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server.

The server applies the database schema, connects to the optional Redis cache and
RabbitMQ broker, and shuts down gracefully on SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}
	cmd.Flags().StringVar(&opts.port, "port", "", "listen port; overrides PORT")
	return cmd
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(opts *options) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config error: %w", err)
	}
	if opts.port != "" {
		cfg.Port = opts.port
	}
	return cfg, config.NewLogger(cfg.Environment, opts.logLevel), nil
}

func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return db, nil
}

func runServe(ctx context.Context, opts *options) error {
	cfg, logger, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger.Info("starting server", "env", cfg.Environment, "port", cfg.Port)

	db, err := openDB(ctx, cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.ApplySchema(ctx, db); err != nil {
		return err
	}

	redisClient := cache.NewRedisClient(ctx, cfg.RedisURL)
	if redisClient != nil {
		defer redisClient.Close()
		logger.Info("listing cache enabled")
	} else if cfg.RedisURL != "" {
		logger.Warn("redis unreachable, listing cache disabled")
	}

	handler, err := buildHandler(cfg, db, redisClient, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// buildHandler wires repositories, adapters, services and controllers into the router.
// redisClient may be nil.
func buildHandler(cfg *config.Config, db *sql.DB, redisClient *redis.Client, logger *slog.Logger) (http.Handler, error) {
	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	premiseRepo := postgres.NewPremiseRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	registrationRepo := postgres.NewEventRegistrationRepository(db)

	listingCache := cache.NewEventListCache(redisClient, cfg.CacheTTL)
	publisher := broker.NewRegistrationPublisher(cfg.AMQPURL, logger)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.SESRegion,
			AccessKeyID:        cfg.Email.SESAccessKeyID,
			SecretAccessKey:    cfg.Email.SESSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
		ResendAPIKey: cfg.Email.ResendAPIKey,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("mailer: %w", err)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return nil, fmt.Errorf("email templates: %w", err)
	}
	emailService := services.NewEmailService(mailer, renderer, logger)

	hasher := auth.NewBcryptHasher(0)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	eventService := services.NewEventService(eventRepo, premiseRepo, listingCache, logger, cfg.ContextTimeout)
	registrationService := services.NewRegistrationService(registrationRepo, userRepo, eventRepo, publisher, emailService, logger, cfg.ContextTimeout)
	categoryService := services.NewCategoryService(categoryRepo, listingCache, logger, cfg.ContextTimeout)
	premiseService := services.NewPremiseService(premiseRepo, listingCache, logger, cfg.ContextTimeout)
	authService := services.NewAuthService(userRepo, hasher, issuer, cfg.JWTExpiry, emailService, logger, cfg.ContextTimeout)
	userService := services.NewUserService(userRepo, cfg.ContextTimeout)

	return delivery.NewRouter(delivery.Controllers{
		Events:        controllers.NewEventController(logger, eventService),
		Registrations: controllers.NewRegistrationController(logger, registrationService),
		Categories:    controllers.NewCategoryController(logger, categoryService),
		Premises:      controllers.NewPremiseController(logger, premiseService),
		Users:         controllers.NewUserController(logger, userService, eventService),
		Auth:          controllers.NewAuthController(logger, authService),
		Health:        controllers.NewHealthController(logger, db, cfg.ContextTimeout),
	}, delivery.RouterOptions{
		Logger:         logger,
		Verifier:       verifier,
		LoginLimiter:   middleware.NewRateLimiter(cfg.LoginRatePerMinute),
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}), nil
}
