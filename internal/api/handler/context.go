package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/commerce-api/internal/api/middleware"
	"github.com/99minutos/commerce-api/internal/core/domain"
)

// ctxPrincipal returns the principal placed on the context by the Auth
// middleware. Handlers behind Auth that find none treat the request as
// unauthenticated.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return domain.Principal{}, domain.ErrMissingToken
	}
	return p, nil
}
