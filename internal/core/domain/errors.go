package domain

import "errors"

// Input and identity errors.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateIdentity  = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
)

// Token errors. Each is a distinct, terminal verification outcome.
var (
	ErrMissingToken     = errors.New("token is missing")
	ErrInvalidSignature = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token has expired")
	ErrMalformedClaims  = errors.New("token claims are malformed")
	ErrTokenRevoked     = errors.New("token has been revoked")
)

// Authorization and persistence errors.
var (
	ErrForbidden       = errors.New("access forbidden")
	ErrAddressNotFound = errors.New("address not found")
	ErrPersistence     = errors.New("persistence failure")
)

// IsAuthError reports whether err is one of the token verification outcomes.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrMalformedClaims) ||
		errors.Is(err, ErrTokenRevoked)
}
