package routes

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"jobharvest/internal/api/handlers"
	"jobharvest/internal/api/middleware"
	"jobharvest/internal/background"
	"jobharvest/internal/config"
	"jobharvest/internal/store"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, st store.Store, harvester background.HarvestRunner, publisher background.PublishRunner, taskManager background.TaskManager) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.RequestValidation())
	e.Use(middleware.TimeoutConfig(cfg.Server.ReadTimeout))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler(taskManager))
		health.GET("/live", handlers.LivenessHandler)
	}

	// Status route
	e.GET("/status", handlers.StatusHandler(taskManager))

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		v1.POST("/harvest", handlers.HarvestHandler(harvester, taskManager))
		v1.POST("/publish", handlers.PublishHandler(publisher, taskManager))

		v1.GET("/tasks", handlers.TaskListHandler(taskManager))
		v1.GET("/tasks/:id", handlers.TaskStatusHandler(taskManager))

		v1.GET("/jobs", handlers.JobsHandler(st))
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"service": "jobharvest",
			"version": "1.0.0",
			"status":  "running",
		})
	})
}
