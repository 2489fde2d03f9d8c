package ports

import (
	"context"
	"time"

	"github.com/99minutos/commerce-api/internal/core/domain"
)

// RegisterInput carries the signup payload. Password is plaintext and is
// discarded after hashing.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Firstname string
	Lastname  string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, principal domain.Principal) error
	CurrentUser(ctx context.Context, principal domain.Principal) (*domain.User, error)
	LookupUser(ctx context.Context, username string) (*domain.User, error)
}
