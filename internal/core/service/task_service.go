package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/tasktracker/task-api/internal/api/metrics"
	"github.com/tasktracker/task-api/internal/core/domain"
	"github.com/tasktracker/task-api/internal/core/ports"
)

type TaskService struct {
	repo   ports.TaskRepository
	keys   ports.IdempotencyStore
	logger zerolog.Logger
}

// NewTaskService returns a TaskService. keys may be nil, in which case
// Idempotency-Key headers are ignored.
func NewTaskService(repo ports.TaskRepository, keys ports.IdempotencyStore, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, keys: keys, logger: logger}
}

// ListTasks returns every task ordered by ID.
func (s *TaskService) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, domain.WrapStore("list tasks", err)
	}
	return tasks, nil
}

// CreateTask creates a new task. If an idempotency key is provided and
// already seen, the previously created task is returned without side effects.
func (s *TaskService) CreateTask(ctx context.Context, input ports.CreateTaskInput) (*ports.CreateTaskResult, error) {
	description, err := domain.NormalizeDescription(input.Description)
	if err != nil {
		return nil, err
	}

	if existing := s.replay(ctx, input.IdempotencyKey); existing != nil {
		metrics.TasksCreatedTotal.WithLabelValues("true").Inc()
		return &ports.CreateTaskResult{Task: existing, AlreadyExisted: true}, nil
	}

	task, err := s.repo.Create(ctx, description)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create task")
		return nil, domain.WrapStore("create task", err)
	}

	if input.IdempotencyKey != "" && s.keys != nil {
		if err := s.keys.Remember(ctx, input.IdempotencyKey, task.ID); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", input.IdempotencyKey).Msg("failed to remember idempotency key")
		}
	}

	metrics.TasksCreatedTotal.WithLabelValues("false").Inc()
	s.logger.Info().Int64("task_id", task.ID).Msg("task created")
	return &ports.CreateTaskResult{Task: task}, nil
}

// DeleteTask removes a task by ID.
func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return domain.ErrTaskNotFound
		}
		return domain.WrapStore("delete task "+strconv.FormatInt(id, 10), err)
	}
	metrics.TasksDeletedTotal.Inc()
	s.logger.Info().Int64("task_id", id).Msg("task deleted")
	return nil
}

// replay returns the task an earlier request with the same key created, or
// nil. Cache failures degrade to a normal insert.
func (s *TaskService) replay(ctx context.Context, key string) *domain.Task {
	if key == "" || s.keys == nil {
		return nil
	}

	id, ok, err := s.keys.Lookup(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, creating anyway")
		return nil
	}
	if !ok {
		return nil
	}

	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		// The original task was deleted since; treat the key as fresh.
		s.logger.Debug().Err(err).Str("idempotency_key", key).Int64("task_id", id).Msg("idempotent replay target missing")
		return nil
	}

	s.logger.Info().Str("idempotency_key", key).Int64("task_id", task.ID).Msg("idempotent replay")
	return task
}
