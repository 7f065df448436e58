// Package identity implements the hosted identity provider client.
// All five identity operations go over HTTP to the provider; its error
// messages are passed back to the caller word for word, and no request
// is ever retried at this layer.
package identity

import (
	"time"

	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// WIRE TYPES
// ══════════════════════════════════════════════════════════════════════════════

// UserDTO mirrors the provider's user object.
type UserDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionDTO mirrors the provider's sign-in and sign-up response.
type SessionDTO struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserDTO   `json:"user"`
}

// APIErrorDTO is the provider's error envelope. Message carries the
// human-readable text that must reach the user unchanged.
type APIErrorDTO struct {
	Code    string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

// Error implements the error interface.
func (e *APIErrorDTO) Error() string {
	return e.Message
}

// ══════════════════════════════════════════════════════════════════════════════
// MAPPING
// ══════════════════════════════════════════════════════════════════════════════

func (d UserDTO) toDomain() *user.User {
	return &user.User{
		ID:        shared.UserID(d.ID),
		Email:     d.Email,
		Username:  d.Username,
		CreatedAt: d.CreatedAt,
	}
}

func (d SessionDTO) toDomain() *user.Session {
	return &user.Session{
		User:      *d.User.toDomain(),
		Token:     d.AccessToken,
		ExpiresAt: d.ExpiresAt,
	}
}
