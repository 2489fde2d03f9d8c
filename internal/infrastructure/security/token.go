package security

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/99minutos/commerce-api/internal/core/domain"
)

// JWTService issues and verifies HS256 bearer tokens with a single
// process-wide secret. Rotating the secret invalidates every issued token.
type JWTService struct {
	secret []byte
	now    func() time.Time
}

// Option customises a JWTService.
type Option func(*JWTService)

// WithClock overrides the time source used for issuing and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *JWTService) { s.now = now }
}

func NewJWTService(secret []byte, opts ...Option) *JWTService {
	s := &JWTService{secret: secret, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue returns a token whose claims are the principal (sub), the issuance
// time (iat), the expiry now+ttl (exp) and a random token id (jti).
func (s *JWTService) Issue(principalID string, ttl time.Duration) (string, time.Time, error) {
	if principalID == "" {
		return "", time.Time{}, fmt.Errorf("issue token: %w", domain.ErrMalformedClaims)
	}
	if ttl <= 0 {
		return "", time.Time{}, fmt.Errorf("issue token: non-positive ttl %s", ttl)
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   principalID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Verify checks, in order: presence, signature, expiry, claim shape. Exactly
// one domain error is returned on failure.
func (s *JWTService) Verify(token string) (domain.Principal, error) {
	if strings.TrimSpace(token) == "" {
		return domain.Principal{}, domain.ErrMissingToken
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return domain.Principal{}, domain.ErrInvalidSignature
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return domain.Principal{}, domain.ErrMalformedClaims
	}
	if s.now().After(exp.Time) {
		return domain.Principal{}, domain.ErrTokenExpired
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return domain.Principal{}, domain.ErrMalformedClaims
	}
	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return domain.Principal{}, domain.ErrMalformedClaims
	}

	return domain.Principal{ID: sub, TokenID: jti, ExpiresAt: exp.Time}, nil
}
