package model

import "time"

// User represents a row in the users table. IsAdmin mirrors the boolean
// carried in the JWT; it is the only privilege level the API distinguishes.
type User struct {
	ID           uint64
	Email        string
	PasswordHash string
	IsAdmin      bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RefreshToken models an entry in the refresh_tokens table. Only the SHA-256
// hash of the raw token is stored.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time // nil while active
	CreatedAt time.Time
}
