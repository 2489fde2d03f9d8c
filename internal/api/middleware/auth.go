package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/commerce-api/internal/api/metrics"
	"github.com/99minutos/commerce-api/internal/core/domain"
	"github.com/99minutos/commerce-api/internal/core/ports"
)

// PrincipalKey is the echo context key holding the verified domain.Principal.
const PrincipalKey = "principal"

// TokenQueryParam is the fallback location for the bearer token.
const TokenQueryParam = "token"

// Auth verifies the bearer token and stores the resolved principal on the
// context. The token is read from "Authorization: Bearer <token>" and falls
// back to the ?token= query parameter. denylist may be nil.
func Auth(verifier ports.TokenVerifier, denylist ports.TokenDenylist, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, err := verifier.Verify(extractToken(c))
			if err != nil {
				reject(c, log, err)
				return err
			}

			if denylist != nil {
				revoked, err := denylist.IsRevoked(c.Request().Context(), principal.TokenID)
				if err != nil {
					return err
				}
				if revoked {
					reject(c, log, domain.ErrTokenRevoked)
					return domain.ErrTokenRevoked
				}
			}

			c.Set(PrincipalKey, principal)
			return next(c)
		}
	}
}

// PrincipalFrom returns the principal stored by Auth.
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(PrincipalKey).(domain.Principal)
	if !ok || p.ID == "" {
		return domain.Principal{}, false
	}
	return p, true
}

func extractToken(c echo.Context) string {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return c.QueryParam(TokenQueryParam)
}

func reject(c echo.Context, log zerolog.Logger, err error) {
	reason := rejectionReason(err)
	metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
	log.Debug().
		Str("reason", reason).
		Str("path", c.Path()).
		Str("remote_ip", c.RealIP()).
		Msg("token rejected")
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingToken):
		return "missing"
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, domain.ErrMalformedClaims):
		return "malformed"
	case errors.Is(err, domain.ErrTokenRevoked):
		return "revoked"
	default:
		return "other"
	}
}
