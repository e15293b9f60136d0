package ports

import (
	"context"

	"github.com/tasktracker/task-api/internal/core/domain"
)

// AccountRepository is the Credential Store.
type AccountRepository interface {
	// FindByEmail returns domain.ErrAccountNotFound when no account matches.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	// Create inserts the account and returns it with its assigned ID.
	// A unique-constraint violation on email yields domain.ErrAccountExists.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
}
