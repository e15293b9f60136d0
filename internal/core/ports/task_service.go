package ports

import (
	"context"

	"github.com/tasktracker/task-api/internal/core/domain"
)

// CreateTaskInput carries the data needed to create a task.
type CreateTaskInput struct {
	Description string
	// IdempotencyKey is optional. A repeated key returns the task created
	// by the first request instead of inserting again.
	IdempotencyKey string
}

// CreateTaskResult is returned by TaskService.CreateTask.
type CreateTaskResult struct {
	Task *domain.Task
	// AlreadyExisted is true when the Idempotency-Key matched an earlier request.
	AlreadyExisted bool
}

// TaskService defines use-case operations for tasks.
type TaskService interface {
	ListTasks(ctx context.Context) ([]*domain.Task, error)
	CreateTask(ctx context.Context, input CreateTaskInput) (*CreateTaskResult, error)
	DeleteTask(ctx context.Context, id int64) error
}
