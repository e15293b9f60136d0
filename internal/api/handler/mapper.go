package handler

import (
	"github.com/tasktracker/task-api/internal/core/domain"
)

func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{ID: a.ID, Email: a.Email}
}

func toSessionResponse(a *domain.Account, token string) sessionResponse {
	return sessionResponse{ID: a.ID, Email: a.Email, Token: token}
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Description: t.Description,
		CreatedAt:   t.CreatedAt.UTC(),
	}
}

func toTaskListResponse(tasks []*domain.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return out
}
