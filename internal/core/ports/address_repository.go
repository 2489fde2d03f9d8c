package ports

import (
	"context"

	"github.com/99minutos/commerce-api/internal/core/domain"
)

// AddressRepository defines persistence operations for addresses.
// Missing rows are reported as domain.ErrAddressNotFound.
type AddressRepository interface {
	Create(ctx context.Context, a *domain.Address) (*domain.Address, error)
	FindByID(ctx context.Context, id string) (*domain.Address, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Address, error)
	// Update and Delete are additionally filtered by ownerID so a row owned by
	// someone else is never touched, even if a caller skipped the check.
	Update(ctx context.Context, a *domain.Address) error
	Delete(ctx context.Context, id, ownerID string) error
}
