package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/commerce-api/internal/core/domain"
)

var (
	testSecret = []byte("test-secret-key-for-jwt-signing-0123456789")
	issuedAt   = time.Unix(1_700_000_000, 0)
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func signMap(t *testing.T, claims jwt.MapClaims, secret []byte) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return signed
}

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc := NewJWTService(testSecret)

	token, exp, err := svc.Issue("42", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 2*time.Second)

	p, err := svc.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "42", p.ID)
	require.NotEmpty(t, p.TokenID)
	require.Equal(t, exp.Unix(), p.ExpiresAt.Unix())
}

func TestJWTService_SuccessiveTokensDiffer(t *testing.T) {
	svc := NewJWTService(testSecret, WithClock(fixedClock(issuedAt)))

	first, _, err := svc.Issue("42", time.Minute)
	require.NoError(t, err)
	second, _, err := svc.Issue("42", time.Minute)
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestJWTService_ExpiryBoundary(t *testing.T) {
	const ttl = 120 * time.Second
	issuer := NewJWTService(testSecret, WithClock(fixedClock(issuedAt)))

	token, exp, err := issuer.Issue("7", ttl)
	require.NoError(t, err)
	require.Equal(t, issuedAt.Add(ttl), exp)

	before := NewJWTService(testSecret, WithClock(fixedClock(issuedAt.Add(ttl-time.Second))))
	p, err := before.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "7", p.ID)

	after := NewJWTService(testSecret, WithClock(fixedClock(issuedAt.Add(ttl+time.Second))))
	_, err = after.Verify(token)
	require.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestJWTService_WrongKey(t *testing.T) {
	k1 := NewJWTService([]byte("key-one-key-one-key-one-key-one!"))
	k2 := NewJWTService([]byte("key-two-key-two-key-two-key-two!"))

	token, _, err := k1.Issue("42", time.Hour)
	require.NoError(t, err)

	_, err = k2.Verify(token)
	require.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestJWTService_MissingToken(t *testing.T) {
	svc := NewJWTService(testSecret)

	for _, tok := range []string{"", "   "} {
		_, err := svc.Verify(tok)
		require.ErrorIs(t, err, domain.ErrMissingToken)
	}
}

func TestJWTService_RejectsForgedAndGarbage(t *testing.T) {
	svc := NewJWTService(testSecret)
	valid := jwt.MapClaims{"sub": "42", "jti": "abc", "exp": time.Now().Add(time.Hour).Unix()}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, valid).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, valid).SignedString(testSecret)
	require.NoError(t, err)

	good := signMap(t, valid, testSecret)
	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt-token"},
		{name: "three segments", token: "header.payload.signature"},
		{name: "alg none", token: none},
		{name: "other hmac alg", token: hs512},
		{name: "tampered signature", token: tampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			require.ErrorIs(t, err, domain.ErrInvalidSignature)
		})
	}
}

func TestJWTService_MalformedClaims(t *testing.T) {
	svc := NewJWTService(testSecret, WithClock(fixedClock(issuedAt)))
	future := issuedAt.Add(time.Hour).Unix()

	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{name: "no subject", claims: jwt.MapClaims{"jti": "abc", "exp": future}},
		{name: "empty subject", claims: jwt.MapClaims{"sub": "", "jti": "abc", "exp": future}},
		{name: "numeric subject", claims: jwt.MapClaims{"sub": 42, "jti": "abc", "exp": future}},
		{name: "no expiry", claims: jwt.MapClaims{"sub": "42", "jti": "abc"}},
		{name: "string expiry", claims: jwt.MapClaims{"sub": "42", "jti": "abc", "exp": "tomorrow"}},
		{name: "no token id", claims: jwt.MapClaims{"sub": "42", "exp": future}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(signMap(t, tt.claims, testSecret))
			require.ErrorIs(t, err, domain.ErrMalformedClaims)
		})
	}
}

func TestJWTService_ExpiryCheckedBeforeClaimShape(t *testing.T) {
	svc := NewJWTService(testSecret, WithClock(fixedClock(issuedAt)))
	token := signMap(t, jwt.MapClaims{"exp": issuedAt.Add(-time.Minute).Unix()}, testSecret)

	_, err := svc.Verify(token)
	require.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestJWTService_IssueRejectsBadInput(t *testing.T) {
	svc := NewJWTService(testSecret)

	_, _, err := svc.Issue("", time.Hour)
	require.ErrorIs(t, err, domain.ErrMalformedClaims)

	_, _, err = svc.Issue("42", 0)
	require.Error(t, err)
}
