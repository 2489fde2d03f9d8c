package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/commerce-api/internal/core/domain"
)

// UserResolver loads the stored user behind a verified principal.
type UserResolver interface {
	CurrentUser(ctx context.Context, principal domain.Principal) (*domain.User, error)
}

// RequireAdmin admits only principals whose stored record has is_admin set.
// It must run after Auth.
func RequireAdmin(users UserResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := PrincipalFrom(c)
			if !ok {
				return domain.ErrMissingToken
			}

			user, err := users.CurrentUser(c.Request().Context(), principal)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					return domain.ErrForbidden
				}
				return err
			}
			if !user.IsAdmin {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
