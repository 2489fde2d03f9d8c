package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/commerce-api/internal/core/domain"
	"github.com/99minutos/commerce-api/internal/core/ports"
)

// AddressService applies the ownership rule to every address operation.
type AddressService struct {
	repo   ports.AddressRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewAddressService(repo ports.AddressRepository, logger zerolog.Logger) *AddressService {
	return &AddressService{repo: repo, logger: logger, now: time.Now}
}

// Create stores a new address owned by the principal.
func (s *AddressService) Create(ctx context.Context, principal domain.Principal, input ports.AddressInput) (*domain.Address, error) {
	if principal.ID == "" {
		return nil, domain.ErrMissingToken
	}
	if err := validateAddress(input); err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Second)
	a := &domain.Address{UserID: principal.ID, CreatedAt: now, UpdatedAt: now}
	applyAddressInput(a, input)

	created, err := s.repo.Create(ctx, a)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("address_id", created.ID).Str("user_id", principal.ID).Msg("address created")
	return created, nil
}

// List returns only the principal's own addresses.
func (s *AddressService) List(ctx context.Context, principal domain.Principal) ([]*domain.Address, error) {
	if principal.ID == "" {
		return nil, domain.ErrMissingToken
	}
	return s.repo.ListByOwner(ctx, principal.ID)
}

func (s *AddressService) Get(ctx context.Context, principal domain.Principal, id string) (*domain.Address, error) {
	return s.loadOwned(ctx, principal, id)
}

// Update replaces the mutable fields. The owner never changes.
func (s *AddressService) Update(ctx context.Context, principal domain.Principal, id string, input ports.AddressInput) (*domain.Address, error) {
	if err := validateAddress(input); err != nil {
		return nil, err
	}

	a, err := s.loadOwned(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	applyAddressInput(a, input)
	a.UpdatedAt = s.now().UTC().Truncate(time.Second)

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AddressService) Delete(ctx context.Context, principal domain.Principal, id string) error {
	a, err := s.loadOwned(ctx, principal, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, a.ID, principal.ID); err != nil {
		return err
	}
	s.logger.Info().Str("address_id", a.ID).Str("user_id", principal.ID).Msg("address deleted")
	return nil
}

func (s *AddressService) loadOwned(ctx context.Context, principal domain.Principal, id string) (*domain.Address, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(principal, a); err != nil {
		s.logger.Warn().Str("address_id", id).Str("user_id", principal.ID).Msg("address ownership denied")
		return nil, err
	}
	return a, nil
}

func applyAddressInput(a *domain.Address, in ports.AddressInput) {
	a.Street = strings.TrimSpace(in.Street)
	a.City = strings.TrimSpace(in.City)
	a.State = strings.TrimSpace(in.State)
	a.ZipCode = strings.TrimSpace(in.ZipCode)
	a.Country = strings.TrimSpace(in.Country)
}

func validateAddress(in ports.AddressInput) error {
	required := []struct{ name, value string }{
		{"street", in.Street},
		{"city", in.City},
		{"state", in.State},
		{"zip_code", in.ZipCode},
		{"country", in.Country},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", domain.ErrValidation, f.name)
		}
	}
	return nil
}
