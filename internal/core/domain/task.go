package domain

import (
	"strings"
	"time"
)

// Task is a short text item. Tasks are not linked to accounts.
type Task struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// NormalizeDescription trims surrounding whitespace and rejects blank input.
func NormalizeDescription(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrDescriptionRequired
	}
	return s, nil
}
