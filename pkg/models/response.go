package models

import (
	"time"
)

// RoleSummary reports the outcome of one role's batch. Every scraped card
// is accounted for: scraped == saved + skipped + failed + dropped.
type RoleSummary struct {
	Source  string `json:"source"`
	Role    string `json:"role"`
	Scraped int    `json:"scraped"`
	Saved   int    `json:"saved"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
	Dropped int    `json:"dropped"`
}

// HarvestResult is the completion payload for a harvest run.
type HarvestResult struct {
	Summaries []RoleSummary `json:"summaries"`
	NewJobs   []*JobRecord  `json:"new_jobs"`
	Duration  string        `json:"duration"`
}

// PublishResult is the completion payload for a publish pass.
type PublishResult struct {
	Published int      `json:"published"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
	PostURLs  []string `json:"post_urls,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services,omitempty"`
	Uptime    string            `json:"uptime,omitempty"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(errorType, message, requestID string) *ErrorResponse {
	return &ErrorResponse{
		Error:     errorType,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now(),
	}
}
