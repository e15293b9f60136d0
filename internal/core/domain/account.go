package domain

import "time"

// Account is a registered identity. Email is the natural key and is compared
// case-sensitively.
type Account struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	PasswordDigest string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// Claims is the decoded content of a verified bearer token.
type Claims struct {
	AccountID int64
	Email     string
	ExpiresAt time.Time
}
