package memory

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
)

const defaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore is the in-process IdempotencyStore used when no Redis is
// configured. Entries live for the configured ttl and are lost on restart.
type IdempotencyStore struct {
	cache *bigcache.BigCache
}

func NewIdempotencyStore(ctx context.Context, ttl time.Duration) (*IdempotencyStore, error) {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Verbose = false

	cache, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init idempotency cache: %w", err)
	}
	return &IdempotencyStore{cache: cache}, nil
}

func (s *IdempotencyStore) Lookup(_ context.Context, key string) (int64, bool, error) {
	buf, err := s.cache.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("idempotency lookup: %w", err)
	}
	if len(buf) != 8 {
		return 0, false, fmt.Errorf("idempotency lookup: corrupt entry for %q", key)
	}
	return int64(binary.BigEndian.Uint64(buf)), true, nil
}

func (s *IdempotencyStore) Remember(_ context.Context, key string, taskID int64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(taskID))
	if err := s.cache.Set(key, buf); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

// Close releases the cache's background cleaner.
func (s *IdempotencyStore) Close() error {
	return s.cache.Close()
}
