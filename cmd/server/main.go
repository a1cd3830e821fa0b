package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"jobharvest/internal/api/routes"
	"jobharvest/internal/background"
	"jobharvest/internal/config"
	"jobharvest/internal/logging"
	"jobharvest/internal/pipeline"
	"jobharvest/internal/publisher"
	"jobharvest/internal/scraper/workers"
	"jobharvest/internal/store"
	"jobharvest/pkg/models"
)

// harvestCycle runs a harvest pass and, when publishing is enabled, pushes
// the backlog to WordPress afterwards. A failed publish pass never fails
// the harvest that produced the records.
type harvestCycle struct {
	config    *config.Config
	runner    *pipeline.Runner
	publisher *publisher.Publisher
}

func (h *harvestCycle) Run(ctx context.Context, req *models.HarvestRequest) (*models.HarvestResult, error) {
	result, err := h.runner.Run(ctx, req)
	if err != nil {
		return nil, err
	}

	if h.config.Publisher.Enabled && len(result.NewJobs) > 0 {
		publishReq := &models.PublishRequest{}
		if req != nil && req.Options != nil {
			publishReq.Site = req.Options.PublishSite
		}
		if _, perr := h.publisher.Publish(ctx, publishReq); perr != nil {
			logging.GetGlobalLogger().Error("Post-harvest publish pass failed", map[string]interface{}{
				"error": perr.Error(),
			})
		}
	}

	return result, nil
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logging
	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()

	logger := logging.GetGlobalLogger()
	logger.Info("Starting jobharvest", map[string]interface{}{
		"sources": cfg.Harvest.Sources,
		"roles":   len(cfg.Harvest.Roles),
	})

	ctx := context.Background()

	// Redis seen-cache is optional; the store stays correct without it.
	var cache *store.SeenCache
	if cfg.Redis.URL != "" {
		cache, err = store.NewSeenCache(ctx, cfg.Redis.URL, cfg.Redis.SeenTTL, logger)
		if err != nil {
			logger.Warn("Redis unavailable, continuing without seen-cache", map[string]interface{}{
				"error": err.Error(),
			})
			cache = nil
		}
	}

	jobStore, err := store.NewPostgresStore(ctx, cfg.Database.URL, cache, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Postgres", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer jobStore.Close()

	// Politeness rate limiter shared by every fetch engine
	rateLimiter := workers.NewRateLimiter(cfg)
	defer rateLimiter.Stop()

	// Harvest pipeline
	runner := pipeline.NewRunner(cfg, jobStore, rateLimiter)

	// Article rewriter and WordPress publisher
	rewriter, err := publisher.NewRewriter(cfg)
	if err != nil {
		logger.Fatal("Failed to create article rewriter", map[string]interface{}{
			"error": err.Error(),
		})
	}
	pub := publisher.NewPublisher(cfg, jobStore, rewriter)

	// Background task manager
	taskManager := background.NewTaskManager(cfg)
	if err := taskManager.Start(ctx); err != nil {
		logger.Fatal("Failed to start task manager", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	harvester := &harvestCycle{config: cfg, runner: runner, publisher: pub}
	routes.SetupRoutes(e, cfg, jobStore, harvester, pub, taskManager)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...", map[string]interface{}{})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Stop accepting and draining background tasks first
		if err := taskManager.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping task manager", map[string]interface{}{
				"error": err.Error(),
			})
		}

		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{
				"error": err.Error(),
			})
		}

		if cache != nil {
			if err := cache.Close(); err != nil {
				logger.Error("Error closing seen-cache", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}

		logger.Info("Server shutdown complete", map[string]interface{}{})
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{"address": address})

	if err := e.Start(address); err != nil {
		logger.Fatal("Server stopped", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
