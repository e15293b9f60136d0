package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tasktracker/task-api/internal/api/metrics"
	"github.com/tasktracker/task-api/internal/core/domain"
	"github.com/tasktracker/task-api/internal/core/ports"
)

// decoyPassword is hashed once and compared against when an email is unknown,
// so a miss costs the same bcrypt work as a wrong password.
const decoyPassword = "decoy-password-for-unknown-accounts"

// AuthService implements registration, authentication and token authorization.
type AuthService struct {
	repo   ports.AccountRepository
	hasher ports.PasswordHasher
	tokens ports.TokenCodec
	log    zerolog.Logger

	decoyMu     sync.Mutex
	decoyDigest string
}

func NewAuthService(repo ports.AccountRepository, hasher ports.PasswordHasher, tokens ports.TokenCodec, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens, log: log}
}

// Register creates a new account. The unique constraint in the store is the
// authority on duplicates; the lookup beforehand only avoids hashing for an
// obvious conflict.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.Account, error) {
	if email == "" || password == "" {
		observe("register", "invalid")
		return nil, domain.ErrCredentialsRequired
	}
	if len(password) > domain.MaxPasswordBytes {
		observe("register", "invalid")
		return nil, domain.ErrPasswordTooLong
	}

	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		observe("register", "conflict")
		return nil, domain.ErrAccountExists
	case !errors.Is(err, domain.ErrAccountNotFound):
		observe("register", "error")
		return nil, domain.WrapStore("register: find account", err)
	}

	digest, err := s.hasher.Hash(ctx, password)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			observe("register", "invalid")
			return nil, err
		}
		observe("register", "error")
		return nil, domain.WrapInternal("register: hash password", err)
	}

	created, err := s.repo.Create(ctx, &domain.Account{Email: email, PasswordDigest: digest})
	if err != nil {
		if errors.Is(err, domain.ErrAccountExists) {
			observe("register", "conflict")
			return nil, domain.ErrAccountExists
		}
		observe("register", "error")
		return nil, domain.WrapStore("register: create account", err)
	}

	observe("register", "ok")
	s.log.Info().Int64("account_id", created.ID).Msg("account registered")
	return created, nil
}

// Authenticate checks the credentials and mints a token. Unknown email and
// wrong password both yield domain.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (string, *domain.Account, error) {
	if email == "" || password == "" {
		observe("authenticate", "invalid")
		return "", nil, domain.ErrCredentialsRequired
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.burnDecoy(ctx, password)
			observe("authenticate", "unauthorized")
			return "", nil, domain.ErrInvalidCredentials
		}
		observe("authenticate", "error")
		return "", nil, domain.WrapStore("authenticate: find account", err)
	}

	ok, err := s.hasher.Verify(ctx, password, account.PasswordDigest)
	if err != nil {
		if ctx.Err() != nil {
			observe("authenticate", "error")
			return "", nil, ctx.Err()
		}
		s.log.Warn().Err(err).Int64("account_id", account.ID).Msg("stored digest could not be compared")
	}
	if !ok {
		observe("authenticate", "unauthorized")
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(account)
	if err != nil {
		observe("authenticate", "error")
		return "", nil, domain.WrapInternal("authenticate: issue token", err)
	}

	observe("authenticate", "ok")
	return token, account, nil
}

// Authorize verifies a bearer token. It never touches the store.
func (s *AuthService) Authorize(_ context.Context, token string) (*domain.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		observe("authorize", "unauthorized")
		return nil, domain.ErrMissingToken
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		observe("authorize", "unauthorized")
		return nil, domain.ErrInvalidToken
	}

	observe("authorize", "ok")
	return claims, nil
}

func (s *AuthService) burnDecoy(ctx context.Context, password string) {
	if digest := s.decoy(); digest != "" {
		_, _ = s.hasher.Verify(ctx, password, digest)
	}
}

// decoy returns the decoy digest, computing it on first use. A failed attempt
// leaves it empty so the next call tries again.
func (s *AuthService) decoy() string {
	s.decoyMu.Lock()
	defer s.decoyMu.Unlock()
	if s.decoyDigest != "" {
		return s.decoyDigest
	}
	digest, err := s.hasher.Hash(context.Background(), decoyPassword)
	if err != nil {
		s.log.Warn().Err(err).Msg("decoy digest unavailable")
		return ""
	}
	s.decoyDigest = digest
	return digest
}

func observe(operation, result string) {
	metrics.AuthOperationsTotal.WithLabelValues(operation, result).Inc()
}
