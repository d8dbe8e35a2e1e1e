package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	portssvc "github.com/SscSPs/secure_pay/internal/core/ports/services"
	"github.com/SscSPs/secure_pay/internal/core/services"
	"github.com/SscSPs/secure_pay/internal/handlers"
	"github.com/SscSPs/secure_pay/internal/middleware"
	"github.com/SscSPs/secure_pay/internal/platform/metrics"
	"github.com/SscSPs/secure_pay/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, outbox dispatcher and maintenance jobs",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var (
		registry *metrics.Registry
		opts     []services.ContainerOption
	)
	if cfg.MetricsEnabled {
		registry = metrics.NewRegistry()
		opts = append(opts, services.WithOperationRecorder(registry))
	}
	container := services.NewServiceContainer(cfg, repos, opts...)

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	}
	loginLimiter, err := middleware.NewLimiter(cfg.LoginRateLimit, "securepay:login", redisClient)
	if err != nil {
		return fmt.Errorf("invalid LOGIN_RATE_LIMIT: %w", err)
	}

	var publisher portssvc.EventPublisher
	if cfg.RabbitMQURL != "" {
		publisher = services.NewRabbitPublisher(cfg.RabbitMQURL, cfg.EventsExchange)
	} else {
		logger.Warn("RABBITMQ_URL not set. Ledger events will only be logged.")
		publisher = services.NewLogPublisher(logger)
	}
	dispatcher := services.NewOutboxDispatcher(repos.OutboxRepo, publisher, logger, cfg.OutboxBatchSize, cfg.OutboxPollInterval)

	scheduler := services.NewMaintenanceScheduler(repos.OutboxRepo, logger, cfg.OutboxPruneSchedule, cfg.OutboxRetention)
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("invalid OUTBOX_PRUNE_SCHEDULE: %w", err)
	}
	defer func() { <-scheduler.Stop().Done() }()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}
	handlers.RegisterRoutes(r, cfg, container, handlers.RouteOptions{
		LoginLimiter: loginLimiter,
		Metrics:      registry,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return dispatcher.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
