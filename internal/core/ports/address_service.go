package ports

import (
	"context"

	"github.com/99minutos/commerce-api/internal/core/domain"
)

// AddressInput holds the mutable address attributes. The owner is never part
// of the input; it comes from the verified principal.
type AddressInput struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
}

// AddressService defines use-case operations for addresses.
type AddressService interface {
	Create(ctx context.Context, principal domain.Principal, input AddressInput) (*domain.Address, error)
	List(ctx context.Context, principal domain.Principal) ([]*domain.Address, error)
	Get(ctx context.Context, principal domain.Principal, id string) (*domain.Address, error)
	Update(ctx context.Context, principal domain.Principal, id string, input AddressInput) (*domain.Address, error)
	Delete(ctx context.Context, principal domain.Principal, id string) error
}
