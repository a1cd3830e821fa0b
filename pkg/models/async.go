package models

import (
	"time"
)

// AsyncStatus represents the status of an async operation
type AsyncStatus string

const (
	AsyncStatusAccepted   AsyncStatus = "ACCEPTED"
	AsyncStatusProcessing AsyncStatus = "PROCESSING"
	AsyncStatusSuccess    AsyncStatus = "SUCCESS"
	AsyncStatusFailure    AsyncStatus = "FAILURE"
)

// AsyncAcceptedResponse is the immediate response from async endpoints
type AsyncAcceptedResponse struct {
	ProcessID string      `json:"processId"`
	Status    AsyncStatus `json:"status"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
}

// AsyncTaskStatusResponse represents the response for task status queries
type AsyncTaskStatusResponse struct {
	ProcessID      string                 `json:"processId"`
	Status         AsyncStatus            `json:"status"`
	Data           interface{}            `json:"data,omitempty"`
	Error          string                 `json:"error,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
	CompletedAt    *time.Time             `json:"completedAt,omitempty"`
	ProcessingTime *time.Duration         `json:"processingTime,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// AsyncTaskListResponse represents the response for listing tasks
type AsyncTaskListResponse struct {
	Success bool                      `json:"success"`
	Tasks   []AsyncTaskStatusResponse `json:"tasks"`
	Count   int                       `json:"count"`
}

// CreateAsyncAcceptedResponse creates a successful async accepted response
func CreateAsyncAcceptedResponse(processID, message string) *AsyncAcceptedResponse {
	return &AsyncAcceptedResponse{
		ProcessID: processID,
		Status:    AsyncStatusAccepted,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// IsCompleted checks if the async task has completed (success or failure)
func (r *AsyncTaskStatusResponse) IsCompleted() bool {
	return r.Status == AsyncStatusSuccess || r.Status == AsyncStatusFailure
}

// IsSuccessful checks if the async task completed successfully
func (r *AsyncTaskStatusResponse) IsSuccessful() bool {
	return r.Status == AsyncStatusSuccess
}

// HarvestData returns the harvest payload if this is a harvest task
func (r *AsyncTaskStatusResponse) HarvestData() *HarvestResult {
	if data, ok := r.Data.(*HarvestResult); ok {
		return data
	}
	return nil
}
