package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/commerce-api/internal/core/domain"
	"github.com/99minutos/commerce-api/internal/core/ports"
)

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

// AuthService implements registration, login and logout.
type AuthService struct {
	store     ports.CredentialStore
	hasher    ports.PasswordHasher
	issuer    ports.TokenIssuer
	denylist  ports.TokenDenylist
	tokenTTL  time.Duration
	dummyHash string
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService wires the auth use cases. denylist may be nil, in which case
// Logout does not revoke anything and tokens live until they expire.
func NewAuthService(
	store ports.CredentialStore,
	hasher ports.PasswordHasher,
	issuer ports.TokenIssuer,
	denylist ports.TokenDenylist,
	tokenTTL time.Duration,
	logger zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 30 * time.Minute
	}

	// Unknown users are compared against this hash so a failed login costs the
	// same whether or not the username exists.
	dummy, err := hasher.Hash("commerce-api-dummy-password")
	if err != nil {
		logger.Error().Err(err).Msg("dummy password hash unavailable")
	}

	return &AuthService{
		store:     store,
		hasher:    hasher,
		issuer:    issuer,
		denylist:  denylist,
		tokenTTL:  tokenTTL,
		dummyHash: dummy,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	input.Firstname = strings.TrimSpace(input.Firstname)
	input.Lastname = strings.TrimSpace(input.Lastname)
	if err := validateRegistration(input); err != nil {
		return nil, err
	}

	existing, err := s.store.FindByUsernameOrEmail(ctx, input.Username, input.Email)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrDuplicateIdentity
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Second)
	created, err := s.store.Create(ctx, &domain.User{
		Firstname:    input.Firstname,
		Lastname:     input.Lastname,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	// Register stores the trimmed username, so lookups must match it.
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}

	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.issuer.Issue(user.ID, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &ports.LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Logout revokes the presented token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, principal domain.Principal) error {
	if s.denylist == nil {
		s.logger.Debug().Str("user_id", principal.ID).Msg("logout without denylist; token stays valid until expiry")
		return nil
	}
	if err := s.denylist.Revoke(ctx, principal.TokenID, principal.ExpiresAt); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", principal.ID).Str("jti", principal.TokenID).Msg("token revoked")
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context, principal domain.Principal) (*domain.User, error) {
	return s.store.FindByID(ctx, principal.ID)
}

func (s *AuthService) LookupUser(ctx context.Context, username string) (*domain.User, error) {
	return s.store.FindByUsername(ctx, username)
}

func validateRegistration(in ports.RegisterInput) error {
	switch {
	case in.Username == "":
		return fmt.Errorf("%w: username is required", domain.ErrValidation)
	case in.Email == "":
		return fmt.Errorf("%w: email is required", domain.ErrValidation)
	case in.Firstname == "":
		return fmt.Errorf("%w: firstname is required", domain.ErrValidation)
	case in.Lastname == "":
		return fmt.Errorf("%w: lastname is required", domain.ErrValidation)
	case in.Password == "":
		return fmt.Errorf("%w: password is required", domain.ErrValidation)
	case len(in.Password) > maxPasswordBytes:
		return fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, maxPasswordBytes)
	}
	return nil
}
