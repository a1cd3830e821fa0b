package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"jobharvest/internal/background"
	"jobharvest/internal/logging"
	"jobharvest/pkg/models"
	"jobharvest/pkg/utils"
)

// PublishHandler accepts a publish request and runs the publishing pass in
// the background.
func PublishHandler(runner background.PublishRunner, taskManager background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		logger := logging.GetGlobalLogger()

		var req models.PublishRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "invalid_request",
				Message:   "Invalid request format",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		if err := validate.Struct(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "validation_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		processID := utils.GenerateRequestID()
		if err := taskManager.SubmitPublishTask(c.Request().Context(), processID, &req, runner); err != nil {
			logger.Error("Failed to submit publish task", map[string]interface{}{
				"request_id": requestID,
				"process_id": processID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
				Error:     "task_submission_failed",
				Message:   "Unable to accept publish task right now",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		logger.Info("Publish task accepted", map[string]interface{}{
			"request_id": requestID,
			"process_id": processID,
			"site":       req.Site,
			"limit":      req.Limit,
		})

		return c.JSON(http.StatusAccepted,
			models.CreateAsyncAcceptedResponse(processID, "Publishing accepted for background processing"))
	}
}
