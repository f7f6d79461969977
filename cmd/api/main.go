package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	_ "github.com/redmonkez12/users-api/docs" // Swagger docs
	"github.com/redmonkez12/users-api/internal/auth"
	"github.com/redmonkez12/users-api/internal/config"
	"github.com/redmonkez12/users-api/internal/database"
	httpServer "github.com/redmonkez12/users-api/internal/http"
	"github.com/redmonkez12/users-api/internal/logging"
	"github.com/redmonkez12/users-api/internal/metrics"
	"github.com/redmonkez12/users-api/internal/telemetry"
	"github.com/redmonkez12/users-api/internal/user"
)

// @title           Users API
// @version         1.0
// @description     User management REST API with bearer token authentication.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"token_format", cfg.Auth.TokenFormat,
	)

	ctx := context.Background()

	// Initialize tracing
	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Insecure:    cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("failed to flush traces", "error", err.Error())
		}
	}()

	// Initialize database
	db, err := database.Open(ctx, cfg.Database.ConnectionString(), database.PoolConfig{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("database connection established")

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db.DB); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	// Initialize token service
	tokenService, err := auth.NewTokenService(cfg.Auth.TokenFormat, []byte(cfg.Auth.SecretKey))
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Initialize services
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, user.NewBcryptHasher(cfg.Auth.BcryptCost), logger)
	authService := auth.NewService(userService, tokenService, logger, cfg.Auth.TokenDuration)

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Initialize router
	router := httpServer.NewRouter(httpServer.RouterDeps{
		AuthHandler:    auth.NewHandler(authService),
		UserHandler:    user.NewHandler(userService),
		AuthMiddleware: auth.NewMiddleware(tokenService),
		Metrics:        metrics.NewCollector(registry),
		Logger:         logger,
		TrustedOrigins: cfg.Server.TrustedOrigins,
		EnableSwagger:  cfg.Server.IsDevelopment(),
	})

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}
