package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"infinite-experiment/werewolf/internal/api"
	"infinite-experiment/werewolf/internal/config"
	"infinite-experiment/werewolf/internal/jobs"
	"infinite-experiment/werewolf/internal/logging"
	"infinite-experiment/werewolf/internal/metrics"
	"infinite-experiment/werewolf/internal/routes"
	"infinite-experiment/werewolf/internal/workers"
)

const (
	shutdownTimeout      = 15 * time.Second
	queueMonitorInterval = 30 * time.Second
	queueWarnDepth       = 100
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatalf("❌ Failed to load .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Initialize structured logging
	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Werewolf moderator starting up",
		"environment", cfg.AppEnv,
		"db_driver", cfg.DBDriver,
		"redis", cfg.RedisEnabled,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	if err := run(cfg); err != nil {
		logging.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	deps, err := api.InitDependencies(cfg, metricsReg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logging.Warn("Failed to close dependencies", "error", err)
		}
	}()

	upSince := time.Now()
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           routes.RegisterRoutes(cfg, deps, prometheus.DefaultGatherer, upSince),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info("Server starting", "port", cfg.Port, "environment", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	container := workers.InitWorkers(deps)
	if container.Reactions != nil {
		g.Go(func() error {
			return container.Reactions.Start(gctx)
		})
		monitor := jobs.NewQueueMonitorJob(deps.Queue, metricsReg, queueWarnDepth)
		g.Go(func() error {
			monitor.RunScheduled(gctx, queueMonitorInterval)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logging.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
