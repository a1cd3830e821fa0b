package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"jobharvest/internal/store"
	"jobharvest/pkg/models"
)

const (
	defaultJobsLimit = 50
	maxJobsLimit     = 200
)

// JobsHandler lists the most recently scraped job records. Supports
// ?limit= and ?source= query parameters.
func JobsHandler(st store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := defaultJobsLimit
		if raw := c.QueryParam("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				return c.JSON(http.StatusBadRequest, models.ErrorResponse{
					Error:     "invalid_limit",
					Message:   "limit must be a positive integer",
					Timestamp: time.Now(),
				})
			}
			limit = parsed
		}
		if limit > maxJobsLimit {
			limit = maxJobsLimit
		}

		source := c.QueryParam("source")

		records, err := st.ListRecent(c.Request().Context(), limit, source)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "jobs_query_failed",
				Message:   err.Error(),
				Timestamp: time.Now(),
			})
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"jobs":  records,
			"count": len(records),
		})
	}
}
