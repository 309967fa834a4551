package models

import "github.com/google/uuid"

// User is a registered account. Password carries the plaintext only between
// the request decode and the hash in CreateUser; persisted rows hold the
// argon2id encoded hash.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Password string    `json:"password,omitempty"`
	IsAdmin  bool      `json:"is_admin"`
}
