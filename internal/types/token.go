package types

import (
	"github.com/google/uuid"
)

// TokenClaims is the session identity carried by a JWT and hydrated into the
// request context by the auth middleware.
type TokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}
