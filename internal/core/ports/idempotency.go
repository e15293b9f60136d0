package ports

import "context"

// IdempotencyStore remembers which task a client-supplied key produced.
type IdempotencyStore interface {
	// Lookup returns the remembered task ID and true, or false on a miss.
	Lookup(ctx context.Context, key string) (int64, bool, error)
	Remember(ctx context.Context, key string, taskID int64) error
}
