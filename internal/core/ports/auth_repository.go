package ports

import (
	"context"

	"github.com/99minutos/commerce-api/internal/core/domain"
)

// CredentialStore defines the persistence contract for principals.
// Lookups return domain.ErrUserNotFound when nothing matches.
type CredentialStore interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByUsernameOrEmail returns the first principal matching either field.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	// Create inserts the principal atomically. It returns
	// domain.ErrDuplicateIdentity on a uniqueness conflict and wraps every
	// other fault with domain.ErrPersistence.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
