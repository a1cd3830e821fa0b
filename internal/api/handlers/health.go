package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"jobharvest/internal/background"
	"jobharvest/internal/logging"
	"jobharvest/pkg/models"
)

const serviceVersion = "1.0.0"

var startTime = time.Now()

// HealthHandler handles health check requests
func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Version:   serviceVersion,
		Timestamp: time.Now(),
		Uptime:    time.Since(startTime).String(),
		Services: map[string]string{
			"api": "ok",
		},
	})
}

// ReadinessHandler reports whether the service can accept harvest work.
func ReadinessHandler(taskManager background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		services := map[string]string{"api": "ok"}
		status := "ready"
		code := http.StatusOK

		if taskManager.IsHealthy() {
			services["task_manager"] = "ok"
		} else {
			services["task_manager"] = "unavailable"
			status = "not_ready"
			code = http.StatusServiceUnavailable
		}

		return c.JSON(code, models.HealthResponse{
			Status:    status,
			Version:   serviceVersion,
			Timestamp: time.Now(),
			Uptime:    time.Since(startTime).String(),
			Services:  services,
		})
	}
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "alive",
		Version:   serviceVersion,
		Timestamp: time.Now(),
		Uptime:    time.Since(startTime).String(),
	})
}

// StatusHandler provides detailed service status
func StatusHandler(taskManager background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := logging.GetGlobalLogger()
		logger.Debug("Status check requested", map[string]interface{}{
			"request_id": c.Response().Header().Get("X-Request-ID"),
		})

		tasks, err := taskManager.ListTasks(c.Request().Context())
		activeTasks := 0
		if err == nil {
			for _, task := range tasks {
				if task.Status == background.TaskStatusAccepted || task.Status == background.TaskStatusProcessing {
					activeTasks++
				}
			}
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":       "operational",
			"version":      serviceVersion,
			"uptime":       time.Since(startTime).String(),
			"active_tasks": activeTasks,
		})
	}
}
