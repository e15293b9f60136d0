package ports

import (
	"context"

	"github.com/tasktracker/task-api/internal/core/domain"
)

// PasswordHasher produces and checks salted one-way digests.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	// Verify reports whether plaintext matches digest. A mismatch is
	// (false, nil); an error means the comparison could not run.
	Verify(ctx context.Context, plaintext, digest string) (bool, error)
}

// TokenCodec signs and verifies bearer tokens.
type TokenCodec interface {
	Issue(account *domain.Account) (string, error)
	Verify(token string) (*domain.Claims, error)
}
