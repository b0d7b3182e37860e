package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Moderator represents a trusted actor stored in the 'moderators' table.
// Only active moderators may invoke privileged status/severity overrides.
type Moderator struct {
	Identifier   string     `db:"identifier" json:"identifier"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	Role         string     `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	PasswordHash string     `db:"password_hash" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	LastActivity *time.Time `db:"last_activity" json:"last_activity,omitempty"`
}

// Claims defines the structure of the JWT claims issued to moderators.
type Claims struct {
	Identifier string `json:"identifier"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}
