package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserService covers registration and token based sessions
type UserService interface {
	Register(ctx context.Context, cmd RegisterCommand) (*AuthResult, error)
	Login(ctx context.Context, cmd LoginCommand) (*AuthResult, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*Principal, error)
	CurrentUser(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
}

// RegisterCommand contains the sign-up form
type RegisterCommand struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
}

// LoginCommand contains credentials
type LoginCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by register and login
type AuthResult struct {
	User      UserDTO   `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Principal is the authenticated caller of a request
type Principal struct {
	UserID  uuid.UUID
	Email   string
	Role    string
	TokenID string
}

// IsAdmin reports whether the caller holds the admin role
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == "admin"
}

// UserDTO is the public view of a user
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	CreatedAt string    `json:"created_at"`
}
