package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"jobharvest/internal/background"
	"jobharvest/internal/logging"
	"jobharvest/pkg/models"
	"jobharvest/pkg/utils"
)

var validate = validator.New()

// HarvestHandler accepts a harvest request, submits it to the background
// task manager and immediately returns the process id for polling.
func HarvestHandler(runner background.HarvestRunner, taskManager background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		logger := logging.GetGlobalLogger()

		var req models.HarvestRequest
		if err := c.Bind(&req); err != nil {
			logger.Warn("Failed to bind harvest request", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "invalid_request",
				Message:   "Invalid request format",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		if err := validate.Struct(&req); err != nil {
			logger.Warn("Harvest request validation failed", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "validation_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		processID := utils.GenerateRequestID()
		if err := taskManager.SubmitHarvestTask(c.Request().Context(), processID, &req, runner); err != nil {
			logger.Error("Failed to submit harvest task", map[string]interface{}{
				"request_id": requestID,
				"process_id": processID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
				Error:     "task_submission_failed",
				Message:   "Unable to accept harvest task right now",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		logger.Info("Harvest task accepted", map[string]interface{}{
			"request_id": requestID,
			"process_id": processID,
			"roles":      req.Roles,
			"sources":    req.Sources,
		})

		return c.JSON(http.StatusAccepted,
			models.CreateAsyncAcceptedResponse(processID, "Harvest accepted for background processing"))
	}
}

// TaskStatusHandler returns the current status of a background task.
func TaskStatusHandler(taskManager background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		processID := c.Param("id")

		result, err := taskManager.GetTaskResult(c.Request().Context(), processID)
		if err != nil {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:     "task_not_found",
				Message:   "No task found for the given process id",
				RequestID: processID,
				Timestamp: time.Now(),
			})
		}

		return c.JSON(http.StatusOK, taskStatusResponse(result))
	}
}

// TaskListHandler lists all tracked background tasks.
func TaskListHandler(taskManager background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		results, err := taskManager.ListTasks(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "task_list_failed",
				Message:   err.Error(),
				Timestamp: time.Now(),
			})
		}

		tasks := make([]models.AsyncTaskStatusResponse, 0, len(results))
		for _, result := range results {
			tasks = append(tasks, *taskStatusResponse(result))
		}

		return c.JSON(http.StatusOK, models.AsyncTaskListResponse{
			Success: true,
			Tasks:   tasks,
			Count:   len(tasks),
		})
	}
}

func taskStatusResponse(result *background.TaskResult) *models.AsyncTaskStatusResponse {
	return &models.AsyncTaskStatusResponse{
		ProcessID:      result.ProcessID,
		Status:         models.AsyncStatus(result.Status),
		Data:           result.Data,
		Error:          result.Error,
		CreatedAt:      result.CreatedAt,
		CompletedAt:    result.CompletedAt,
		ProcessingTime: result.ProcessingTime,
		Metadata:       result.Metadata,
	}
}
