package ports

import (
	"context"

	"github.com/tasktracker/task-api/internal/core/domain"
)

// Authorizer admits or rejects a presented bearer token.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*domain.Claims, error)
}

// AuthService is the Authentication Gate.
type AuthService interface {
	Authorizer
	Register(ctx context.Context, email, password string) (*domain.Account, error)
	Authenticate(ctx context.Context, email, password string) (string, *domain.Account, error)
}
