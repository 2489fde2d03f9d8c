package ports

import (
	"context"
	"time"

	"github.com/99minutos/commerce-api/internal/core/domain"
)

// PasswordHasher hashes and verifies passwords. Verify never errors; a
// mismatch or an unparsable hash is simply false.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenIssuer mints signed, time-bounded bearer tokens.
type TokenIssuer interface {
	Issue(principalID string, ttl time.Duration) (token string, expiresAt time.Time, err error)
}

// TokenVerifier validates a bearer token and resolves its principal.
type TokenVerifier interface {
	Verify(token string) (domain.Principal, error)
}

// TokenDenylist records tokens revoked before their natural expiry.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
