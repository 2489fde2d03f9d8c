package service

import "github.com/99minutos/commerce-api/internal/core/domain"

// authorizeOwner is the only place ownership is decided. It compares the
// resource owner with the verified principal and nothing else.
func authorizeOwner(principal domain.Principal, resource domain.OwnedResource) error {
	if principal.ID == "" || resource.OwnerID() != principal.ID {
		return domain.ErrForbidden
	}
	return nil
}
