package background

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jobharvest/internal/config"
	"jobharvest/internal/logging"
	"jobharvest/internal/logging/types"
	"jobharvest/pkg/models"
)

// Task manager configuration constants
const (
	DefaultMaxWorkers   = 10
	DefaultMaxQueueSize = 100

	MinWorkers   = 1
	MaxWorkers   = 1000
	MaxQueueSize = 10000
)

// HarvestRunner executes one harvest pass. Satisfied by pipeline.Runner.
type HarvestRunner interface {
	Run(ctx context.Context, req *models.HarvestRequest) (*models.HarvestResult, error)
}

// PublishRunner executes one publishing pass. Satisfied by
// publisher.Publisher.
type PublishRunner interface {
	Publish(ctx context.Context, req *models.PublishRequest) (*models.PublishResult, error)
}

// TaskManager defines the interface for managing background tasks
type TaskManager interface {
	// Start starts the task manager
	Start(ctx context.Context) error

	// Stop stops the task manager gracefully
	Stop(ctx context.Context) error

	// SubmitHarvestTask submits a harvest pass for background processing
	SubmitHarvestTask(ctx context.Context, processID string, request *models.HarvestRequest, runner HarvestRunner) error

	// SubmitPublishTask submits a publishing pass for background processing
	SubmitPublishTask(ctx context.Context, processID string, request *models.PublishRequest, runner PublishRunner) error

	// GetTaskResult retrieves the result of a task by process ID
	GetTaskResult(ctx context.Context, processID string) (*TaskResult, error)

	// GetTaskStatus retrieves the status of a task by process ID
	GetTaskStatus(ctx context.Context, processID string) (TaskStatus, error)

	// ListTasks lists all active tasks (for monitoring)
	ListTasks(ctx context.Context) ([]*TaskResult, error)

	// IsHealthy checks if the task manager is healthy
	IsHealthy() bool
}

// TaskManagerImpl implements the TaskManager interface
type TaskManagerImpl struct {
	config       *config.Config
	store        TaskStore
	logger       *TaskCompletionLogger
	appLogger    types.Logger
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	mu           sync.RWMutex
	running      bool
	taskChan     chan *TaskExecution
	maxWorkers   int
	maxQueueSize int
}

// TaskExecution represents a task execution context
type TaskExecution struct {
	ProcessID   string
	Type        TaskType
	Context     context.Context
	Cancel      context.CancelFunc
	ExecuteFunc func(context.Context) (*TaskResult, error)
}

// validateTaskManagerConfig validates and returns safe configuration values
func validateTaskManagerConfig(cfg *config.Config) (maxWorkers, maxQueueSize int, err error) {
	maxWorkers = cfg.BackgroundTasks.MaxConcurrentTasks
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	} else if maxWorkers > MaxWorkers {
		return 0, 0, fmt.Errorf("max concurrent tasks (%d) exceeds maximum (%d)", maxWorkers, MaxWorkers)
	}

	maxQueueSize = DefaultMaxQueueSize
	return maxWorkers, maxQueueSize, nil
}

// NewTaskManager creates a new task manager
func NewTaskManager(cfg *config.Config) *TaskManagerImpl {
	logger := logging.GetGlobalLogger()

	maxWorkers, maxQueueSize, err := validateTaskManagerConfig(cfg)
	if err != nil {
		logger.Warn("Task manager configuration validation failed, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		maxWorkers = DefaultMaxWorkers
		maxQueueSize = DefaultMaxQueueSize
	}

	return &TaskManagerImpl{
		config:       cfg,
		store:        NewInMemoryTaskStore(),
		logger:       NewTaskCompletionLogger(),
		appLogger:    logger,
		maxWorkers:   maxWorkers,
		maxQueueSize: maxQueueSize,
		taskChan:     make(chan *TaskExecution, maxQueueSize),
	}
}

// Start starts the task manager
func (tm *TaskManagerImpl) Start(ctx context.Context) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.running {
		return fmt.Errorf("task manager already running")
	}

	tm.ctx, tm.cancel = context.WithCancel(ctx)
	tm.running = true

	for i := 0; i < tm.maxWorkers; i++ {
		tm.wg.Add(1)
		go tm.worker(i)
	}

	tm.wg.Add(1)
	go tm.cleanupRoutine()

	tm.appLogger.Info("Task manager started", map[string]interface{}{
		"max_workers": tm.maxWorkers,
	})
	return nil
}

// Stop stops the task manager gracefully
func (tm *TaskManagerImpl) Stop(ctx context.Context) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if !tm.running {
		return nil
	}

	tm.appLogger.Info("Stopping task manager...", map[string]interface{}{})

	tm.cancel()
	close(tm.taskChan)

	done := make(chan struct{})
	go func() {
		tm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		tm.appLogger.Info("Task manager stopped gracefully", map[string]interface{}{})
	case <-ctx.Done():
		tm.appLogger.Warn("Task manager shutdown timed out", map[string]interface{}{})
	}

	tm.running = false
	return nil
}

// SubmitHarvestTask submits a harvest pass for background processing
func (tm *TaskManagerImpl) SubmitHarvestTask(ctx context.Context, processID string, request *models.HarvestRequest, runner HarvestRunner) error {
	if !tm.IsHealthy() {
		return fmt.Errorf("task manager is not healthy")
	}

	result := &TaskResult{
		ProcessID: processID,
		Type:      TaskTypeHarvest,
		Status:    TaskStatusAccepted,
		CreatedAt: time.Now(),
		Metadata: map[string]interface{}{
			"roles":   request.Roles,
			"sources": request.Sources,
		},
	}

	if err := tm.store.Store(ctx, result); err != nil {
		return fmt.Errorf("failed to store task result: %w", err)
	}

	tm.logger.LogTaskAccepted(processID, TaskTypeHarvest)

	return tm.enqueue(ctx, processID, TaskTypeHarvest, func(execCtx context.Context) (*TaskResult, error) {
		return tm.executeHarvestTask(execCtx, processID, request, runner)
	})
}

// SubmitPublishTask submits a publishing pass for background processing
func (tm *TaskManagerImpl) SubmitPublishTask(ctx context.Context, processID string, request *models.PublishRequest, runner PublishRunner) error {
	if !tm.IsHealthy() {
		return fmt.Errorf("task manager is not healthy")
	}

	site := ""
	if request != nil {
		site = request.Site
	}

	result := &TaskResult{
		ProcessID: processID,
		Type:      TaskTypePublish,
		Status:    TaskStatusAccepted,
		CreatedAt: time.Now(),
		Metadata: map[string]interface{}{
			"site": site,
		},
	}

	if err := tm.store.Store(ctx, result); err != nil {
		return fmt.Errorf("failed to store task result: %w", err)
	}

	tm.logger.LogTaskAccepted(processID, TaskTypePublish)

	return tm.enqueue(ctx, processID, TaskTypePublish, func(execCtx context.Context) (*TaskResult, error) {
		return tm.executePublishTask(execCtx, processID, request, runner)
	})
}

// enqueue wraps the execute function in a derived context and hands it to
// the worker pool.
func (tm *TaskManagerImpl) enqueue(ctx context.Context, processID string, taskType TaskType, execute func(context.Context) (*TaskResult, error)) error {
	taskCtx, cancelFunc := context.WithCancel(tm.ctx)
	execution := &TaskExecution{
		ProcessID:   processID,
		Type:        taskType,
		Context:     taskCtx,
		Cancel:      cancelFunc,
		ExecuteFunc: execute,
	}

	select {
	case tm.taskChan <- execution:
		return nil
	case <-ctx.Done():
		cancelFunc()
		return ctx.Err()
	default:
		cancelFunc()
		return fmt.Errorf("task queue is full")
	}
}

// GetTaskResult retrieves the result of a task by process ID
func (tm *TaskManagerImpl) GetTaskResult(ctx context.Context, processID string) (*TaskResult, error) {
	return tm.store.Get(ctx, processID)
}

// GetTaskStatus retrieves the status of a task by process ID
func (tm *TaskManagerImpl) GetTaskStatus(ctx context.Context, processID string) (TaskStatus, error) {
	result, err := tm.store.Get(ctx, processID)
	if err != nil {
		return "", err
	}
	return result.Status, nil
}

// ListTasks lists all active tasks (for monitoring)
func (tm *TaskManagerImpl) ListTasks(ctx context.Context) ([]*TaskResult, error) {
	return tm.store.List(ctx)
}

// IsHealthy checks if the task manager is healthy
func (tm *TaskManagerImpl) IsHealthy() bool {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.running && tm.ctx.Err() == nil
}

// worker processes tasks from the task channel
func (tm *TaskManagerImpl) worker(workerID int) {
	defer tm.wg.Done()

	for {
		select {
		case <-tm.ctx.Done():
			return
		case task, ok := <-tm.taskChan:
			if !ok {
				return
			}
			tm.processTask(workerID, task)
		}
	}
}

// processTask processes a single task
func (tm *TaskManagerImpl) processTask(workerID int, task *TaskExecution) {
	startTime := time.Now()

	tm.appLogger.Info("Processing task", map[string]interface{}{
		"worker_id":  workerID,
		"process_id": task.ProcessID,
		"task_type":  task.Type,
	})

	if err := tm.updateTaskStatus(task.ProcessID, TaskStatusProcessing); err != nil {
		tm.appLogger.Error("Failed to update task status to processing", map[string]interface{}{
			"error": err.Error(),
		})
	}

	tm.logger.LogTaskStart(task.ProcessID, task.Type)

	result, err := task.ExecuteFunc(task.Context)
	processingTime := time.Since(startTime)

	if err != nil {
		tm.appLogger.Error("Task execution failed", map[string]interface{}{
			"worker_id":       workerID,
			"process_id":      task.ProcessID,
			"task_type":       task.Type,
			"processing_time": processingTime,
			"error":           err.Error(),
		})

		// Preserve the original CreatedAt when the stored result is still
		// retrievable.
		existingResult, getErr := tm.store.Get(task.Context, task.ProcessID)
		if getErr != nil {
			result = &TaskResult{
				ProcessID:      task.ProcessID,
				Type:           task.Type,
				Status:         TaskStatusFailure,
				Error:          err.Error(),
				CreatedAt:      time.Now(),
				ProcessingTime: &processingTime,
			}
		} else {
			existingResult.Status = TaskStatusFailure
			existingResult.Error = err.Error()
			existingResult.ProcessingTime = &processingTime
			result = existingResult
		}

		tm.logger.LogTaskError(task.ProcessID, task.Type, err)
	} else {
		result.Status = TaskStatusSuccess
		result.ProcessingTime = &processingTime
		completedAt := time.Now()
		result.CompletedAt = &completedAt

		tm.logger.LogTaskSuccess(task.ProcessID, task.Type, processingTime)
	}

	if err := tm.store.Update(task.Context, result); err != nil {
		tm.appLogger.Error("Failed to store task result", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if err := tm.logger.LogTaskCompletion(result); err != nil {
		tm.appLogger.Error("Failed to log task completion", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Cancel the task context to prevent context leaks
	if task.Cancel != nil {
		task.Cancel()
	}
}

// updateTaskStatus updates the status of a task
func (tm *TaskManagerImpl) updateTaskStatus(processID string, status TaskStatus) error {
	result, err := tm.store.Get(context.Background(), processID)
	if err != nil {
		return err
	}

	result.Status = status
	return tm.store.Update(context.Background(), result)
}

// cleanupRoutine periodically cleans up old task results
func (tm *TaskManagerImpl) cleanupRoutine() {
	defer tm.wg.Done()

	interval := tm.config.BackgroundTasks.CleanupInterval
	if interval <= 0 {
		interval = time.Hour
	}
	maxAge := tm.config.BackgroundTasks.MaxTaskAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-tm.ctx.Done():
			return
		case <-ticker.C:
			if err := tm.store.Cleanup(context.Background(), maxAge); err != nil {
				tm.appLogger.Error("Failed to cleanup old task results", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
}

// executeHarvestTask executes a harvest pass in the background
func (tm *TaskManagerImpl) executeHarvestTask(ctx context.Context, processID string, request *models.HarvestRequest, runner HarvestRunner) (*TaskResult, error) {
	existingResult, err := tm.store.Get(ctx, processID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve existing task result: %w", err)
	}

	if timeout := tm.config.BackgroundTasks.TaskTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	harvestResult, err := runner.Run(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("harvest pass failed: %w", err)
	}

	existingResult.Data = &HarvestTaskData{Result: harvestResult}
	existingResult.Metadata = map[string]interface{}{
		"roles":    request.Roles,
		"sources":  request.Sources,
		"new_jobs": len(harvestResult.NewJobs),
	}

	return existingResult, nil
}

// executePublishTask executes a publishing pass in the background
func (tm *TaskManagerImpl) executePublishTask(ctx context.Context, processID string, request *models.PublishRequest, runner PublishRunner) (*TaskResult, error) {
	existingResult, err := tm.store.Get(ctx, processID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve existing task result: %w", err)
	}

	if timeout := tm.config.BackgroundTasks.TaskTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	publishResult, err := runner.Publish(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("publishing pass failed: %w", err)
	}

	site := ""
	if request != nil {
		site = request.Site
	}

	existingResult.Data = &PublishTaskData{Result: publishResult, Site: site}
	existingResult.Metadata = map[string]interface{}{
		"site":      site,
		"published": publishResult.Published,
		"skipped":   publishResult.Skipped,
		"failed":    publishResult.Failed,
	}

	return existingResult, nil
}
