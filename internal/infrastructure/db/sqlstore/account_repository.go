package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tasktracker/task-api/internal/core/domain"
)

type AccountRepository struct {
	db  DBTX
	now func() time.Time
}

func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db, now: time.Now}
}

// Create inserts account. The UNIQUE constraint on email is the authority on
// duplicates; a violation is reported as domain.ErrAccountExists.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	query := `INSERT INTO users (email, password_digest, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`

	createdAt := r.now().UTC().Truncate(time.Microsecond)

	var id int64
	err := r.db.QueryRowContext(ctx, query, account.Email, account.PasswordDigest, createdAt).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &domain.Account{
		ID:             id,
		Email:          account.Email,
		PasswordDigest: account.PasswordDigest,
		CreatedAt:      createdAt,
	}, nil
}

// FindByEmail matches email exactly; no case folding is applied.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT id, email, password_digest, created_at FROM users WHERE email = $1`

	var (
		a         domain.Account
		createdAt timestamp
	)
	err := r.db.QueryRowContext(ctx, query, email).Scan(&a.ID, &a.Email, &a.PasswordDigest, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	a.CreatedAt = createdAt.Time
	return &a, nil
}
