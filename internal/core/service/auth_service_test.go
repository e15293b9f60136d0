package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tasktracker/task-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	nextID   int64
	findErr  error
	// createHook runs before the insert; used to simulate a concurrent
	// registration slipping in between lookup and insert.
	createHook func()
	creates    int
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	a, ok := r.accounts[email]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	if r.createHook != nil {
		r.createHook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if _, exists := r.accounts[account.Email]; exists {
		return nil, domain.ErrAccountExists
	}
	r.nextID++
	stored := cloneAccount(account)
	stored.ID = r.nextID
	stored.CreatedAt = time.Now().UTC()
	r.accounts[stored.Email] = stored
	return cloneAccount(stored), nil
}

func (r *stubAccountRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.accounts)
}

// stubHasher is a transparent "hash" so tests can inspect digests.
type stubHasher struct {
	mu       sync.Mutex
	hashes   int
	verifies int
	hashErr  error
}

func (h *stubHasher) Hash(_ context.Context, plaintext string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hashes++
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "digest:" + plaintext, nil
}

func (h *stubHasher) Verify(_ context.Context, plaintext, digest string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.verifies++
	return digest == "digest:"+plaintext, nil
}

type stubTokens struct{}

func (stubTokens) Issue(a *domain.Account) (string, error) {
	return "token:" + a.Email, nil
}

func (stubTokens) Verify(token string) (*domain.Claims, error) {
	email, ok := strings.CutPrefix(token, "token:")
	if !ok {
		return nil, errors.New("bad token")
	}
	return &domain.Claims{AccountID: 1, Email: email, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func newAuthSvc(repo *stubAccountRepo, hasher *stubHasher) *AuthService {
	return NewAuthService(repo, hasher, stubTokens{}, zerolog.Nop())
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newAuthSvc(repo, &stubHasher{})

	account, err := svc.Register(context.Background(), "a@test.com", "secret123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if account.ID != 1 || account.Email != "a@test.com" {
		t.Fatalf("unexpected account: %+v", account)
	}
	if account.PasswordDigest == "secret123" {
		t.Fatalf("expected password to be hashed")
	}
	if repo.accounts["a@test.com"].PasswordDigest != "digest:secret123" {
		t.Fatalf("stored digest = %q", repo.accounts["a@test.com"].PasswordDigest)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	repo := newStubAccountRepo()
	hasher := &stubHasher{}
	svc := newAuthSvc(repo, hasher)

	cases := []struct{ email, password string }{
		{"", "secret"},
		{"a@test.com", ""},
		{"", ""},
	}
	for _, tc := range cases {
		_, err := svc.Register(context.Background(), tc.email, tc.password)
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("Register(%q, %q): expected ErrValidation, got %v", tc.email, tc.password, err)
		}
	}
	if hasher.hashes != 0 || repo.creates != 0 {
		t.Fatalf("validation failures must not touch the hasher or store")
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newAuthSvc(repo, &stubHasher{})

	if _, err := svc.Register(context.Background(), "a@test.com", "secret123"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(context.Background(), "a@test.com", "other")
	if !errors.Is(err, domain.ErrAccountExists) || !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
	if repo.count() != 1 {
		t.Fatalf("expected exactly one account, got %d", repo.count())
	}
}

func TestAuthService_Register_RaceResolvedByUniqueConstraint(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newAuthSvc(repo, &stubHasher{})

	// Another registration lands after our lookup but before our insert.
	repo.createHook = func() {
		repo.createHook = nil
		repo.mu.Lock()
		repo.nextID++
		repo.accounts["a@test.com"] = &domain.Account{ID: repo.nextID, Email: "a@test.com"}
		repo.mu.Unlock()
	}

	_, err := svc.Register(context.Background(), "a@test.com", "secret123")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict from insert, got %v", err)
	}
	if repo.count() != 1 {
		t.Fatalf("expected exactly one account, got %d", repo.count())
	}
}

func TestAuthService_Register_StoreError(t *testing.T) {
	repo := newStubAccountRepo()
	repo.findErr = errors.New("connection refused")
	svc := newAuthSvc(repo, &stubHasher{})

	_, err := svc.Register(context.Background(), "a@test.com", "secret123")
	if !errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
	var se *domain.StoreError
	if !errors.As(err, &se) || se.Err.Error() != "connection refused" {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
}

func TestAuthService_Register_HashError(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newAuthSvc(repo, &stubHasher{hashErr: errors.New("pool stopped")})

	_, err := svc.Register(context.Background(), "a@test.com", "secret123")
	if !errors.Is(err, domain.ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
	if errors.Is(err, domain.ErrStore) {
		t.Fatalf("hashing failure must not be reported as a store fault: %v", err)
	}
	if repo.count() != 0 {
		t.Fatalf("no account should be stored when hashing fails")
	}
}

func TestAuthService_Register_PasswordTooLong(t *testing.T) {
	repo := newStubAccountRepo()
	hasher := &stubHasher{}
	svc := newAuthSvc(repo, hasher)

	_, err := svc.Register(context.Background(), "a@test.com", strings.Repeat("p", 80))
	if !errors.Is(err, domain.ErrPasswordTooLong) || !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
	if hasher.hashes != 0 || repo.creates != 0 {
		t.Fatalf("an oversized password must not reach the hasher or store")
	}

	if _, err := svc.Register(context.Background(), "a@test.com", strings.Repeat("p", domain.MaxPasswordBytes)); err != nil {
		t.Fatalf("a %d-byte password should be accepted, got %v", domain.MaxPasswordBytes, err)
	}
}

func TestAuthService_Register_HasherRejectsPassword(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newAuthSvc(repo, &stubHasher{hashErr: domain.ErrPasswordTooLong})

	if _, err := svc.Register(context.Background(), "a@test.com", "secret123"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Authenticate
// ---------------------------------------------------------------------------

func TestAuthService_Authenticate_Success(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newAuthSvc(repo, &stubHasher{})

	if _, err := svc.Register(context.Background(), "a@test.com", "secret123"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, account, err := svc.Authenticate(context.Background(), "a@test.com", "secret123")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}
	if account.ID != 1 || account.Email != "a@test.com" {
		t.Fatalf("unexpected account: %+v", account)
	}
}

func TestAuthService_Authenticate_UniformFailure(t *testing.T) {
	repo := newStubAccountRepo()
	hasher := &stubHasher{}
	svc := newAuthSvc(repo, hasher)

	_, _ = svc.Register(context.Background(), "a@test.com", "secret123")
	before := repo.count()

	_, _, wrongPassword := svc.Authenticate(context.Background(), "a@test.com", "wrong")
	_, _, unknownEmail := svc.Authenticate(context.Background(), "ghost@test.com", "secret123")

	if !errors.Is(wrongPassword, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongPassword)
	}
	if !errors.Is(unknownEmail, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPassword, unknownEmail)
	}
	if repo.count() != before || repo.creates != 1 {
		t.Fatalf("failed authentication must not mutate the store")
	}
}

func TestAuthService_Authenticate_UnknownEmailStillVerifies(t *testing.T) {
	hasher := &stubHasher{}
	svc := newAuthSvc(newStubAccountRepo(), hasher)

	for i := 0; i < 3; i++ {
		_, _, _ = svc.Authenticate(context.Background(), "ghost@test.com", "pwd")
	}
	if hasher.hashes != 1 {
		t.Fatalf("decoy digest should be computed once, got %d", hasher.hashes)
	}
	if hasher.verifies != 3 {
		t.Fatalf("expected a decoy comparison per attempt, got %d", hasher.verifies)
	}
}

func TestAuthService_Authenticate_DecoyRetriedAfterFailure(t *testing.T) {
	hasher := &stubHasher{hashErr: errors.New("pool stopped")}
	svc := newAuthSvc(newStubAccountRepo(), hasher)

	_, _, _ = svc.Authenticate(context.Background(), "ghost@test.com", "pwd")
	if hasher.verifies != 0 {
		t.Fatalf("no comparison is possible without a decoy digest")
	}

	hasher.mu.Lock()
	hasher.hashErr = nil
	hasher.mu.Unlock()

	_, _, err := svc.Authenticate(context.Background(), "ghost@test.com", "pwd")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if hasher.hashes != 2 || hasher.verifies != 1 {
		t.Fatalf("expected the decoy to be rebuilt and compared, got hashes=%d verifies=%d", hasher.hashes, hasher.verifies)
	}
}

type failingTokens struct{ stubTokens }

func (failingTokens) Issue(*domain.Account) (string, error) {
	return "", errors.New("sign token: key is invalid")
}

func TestAuthService_Authenticate_TokenError(t *testing.T) {
	repo := newStubAccountRepo()
	hasher := &stubHasher{}
	if _, err := newAuthSvc(repo, hasher).Register(context.Background(), "a@test.com", "secret123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	svc := NewAuthService(repo, hasher, failingTokens{}, zerolog.Nop())

	_, _, err := svc.Authenticate(context.Background(), "a@test.com", "secret123")
	if !errors.Is(err, domain.ErrInternal) || errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}

func TestAuthService_Authenticate_Validation(t *testing.T) {
	svc := newAuthSvc(newStubAccountRepo(), &stubHasher{})

	if _, _, err := svc.Authenticate(context.Background(), "", "pwd"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAuthService_Authenticate_StoreError(t *testing.T) {
	repo := newStubAccountRepo()
	repo.findErr = errors.New("db down")
	svc := newAuthSvc(repo, &stubHasher{})

	if _, _, err := svc.Authenticate(context.Background(), "a@test.com", "pwd"); !errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Authorize
// ---------------------------------------------------------------------------

func TestAuthService_Authorize(t *testing.T) {
	svc := newAuthSvc(newStubAccountRepo(), &stubHasher{})

	if _, err := svc.Authorize(context.Background(), ""); !errors.Is(err, domain.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
	if _, err := svc.Authorize(context.Background(), "garbage"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	claims, err := svc.Authorize(context.Background(), "token:a@test.com")
	if err != nil {
		t.Fatalf("expected admission, got %v", err)
	}
	if claims.Email != "a@test.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}
