package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/commerce-api/internal/core/domain"
	"github.com/99minutos/commerce-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubCredentialStore struct {
	users     map[string]*domain.User // keyed by ID
	nextID    int
	createErr error
	findErr   error
	creates   int
}

func newStubCredentialStore() *stubCredentialStore {
	return &stubCredentialStore{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubCredentialStore) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.creates++
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrDuplicateIdentity
		}
	}
	r.nextID++
	created := cloneUser(user)
	created.ID = strconv.Itoa(r.nextID)
	r.users[created.ID] = cloneUser(created)
	return created, nil
}

func (r *stubCredentialStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubCredentialStore) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubCredentialStore) FindByUsernameOrEmail(_ context.Context, username, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// fakeHasher keeps tests fast; bcrypt itself is covered in the security package.
type fakeHasher struct {
	verified []string // hashes passed to Verify
}

func (h *fakeHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }

func (h *fakeHasher) Verify(p, hash string) bool {
	h.verified = append(h.verified, hash)
	return hash != "" && hash == "hashed:"+p
}

type fakeIssuer struct {
	issued []string
	err    error
	now    time.Time
}

func (i *fakeIssuer) Issue(principalID string, ttl time.Duration) (string, time.Time, error) {
	if i.err != nil {
		return "", time.Time{}, i.err
	}
	i.issued = append(i.issued, principalID)
	return "token-for-" + principalID, i.now.Add(ttl), nil
}

type fakeDenylist struct {
	revoked map[string]time.Time
	err     error
}

func (d *fakeDenylist) Revoke(_ context.Context, tokenID string, until time.Time) error {
	if d.err != nil {
		return d.err
	}
	d.revoked[tokenID] = until
	return nil
}

func (d *fakeDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, ok := d.revoked[tokenID]
	return ok, nil
}

type authFixture struct {
	svc      *AuthService
	store    *stubCredentialStore
	hasher   *fakeHasher
	issuer   *fakeIssuer
	denylist *fakeDenylist
}

func newAuthFixture() authFixture {
	f := authFixture{
		store:    newStubCredentialStore(),
		hasher:   &fakeHasher{},
		issuer:   &fakeIssuer{now: time.Unix(1_700_000_000, 0)},
		denylist: &fakeDenylist{revoked: make(map[string]time.Time)},
	}
	f.svc = NewAuthService(f.store, f.hasher, f.issuer, f.denylist, 2*time.Minute, zerolog.Nop())
	return f
}

func aliceInput() ports.RegisterInput {
	return ports.RegisterInput{
		Username:  "alice",
		Email:     "a@x.io",
		Password:  "pw1",
		Firstname: "Alice",
		Lastname:  "Liddell",
	}
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestAuthService_Register_Success(t *testing.T) {
	f := newAuthFixture()

	user, err := f.svc.Register(context.Background(), aliceInput())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if user.PasswordHash != "hashed:pw1" {
		t.Fatalf("expected stored password to be hashed, got %q", user.PasswordHash)
	}
	if user.Firstname != "Alice" || user.Lastname != "Liddell" {
		t.Fatalf("unexpected names: %+v", user)
	}
	if user.CreatedAt.IsZero() || !user.CreatedAt.Equal(user.UpdatedAt) {
		t.Fatalf("expected timestamps to be set, got %v / %v", user.CreatedAt, user.UpdatedAt)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ports.RegisterInput)
	}{
		{"missing username", func(in *ports.RegisterInput) { in.Username = "  " }},
		{"missing email", func(in *ports.RegisterInput) { in.Email = "" }},
		{"missing firstname", func(in *ports.RegisterInput) { in.Firstname = "" }},
		{"blank lastname", func(in *ports.RegisterInput) { in.Lastname = " " }},
		{"missing password", func(in *ports.RegisterInput) { in.Password = "" }},
		{"password too long", func(in *ports.RegisterInput) { in.Password = strings.Repeat("x", 73) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAuthFixture()
			in := aliceInput()
			tc.mutate(&in)

			if _, err := f.svc.Register(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if f.store.creates != 0 {
				t.Fatalf("expected no insert, got %d", f.store.creates)
			}
		})
	}
}

func TestAuthService_Register_DuplicateIdentity(t *testing.T) {
	f := newAuthFixture()
	if _, err := f.svc.Register(context.Background(), aliceInput()); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	sameUsername := aliceInput()
	sameUsername.Email = "other@x.io"
	sameEmail := aliceInput()
	sameEmail.Username = "alice2"

	for _, in := range []ports.RegisterInput{sameUsername, sameEmail} {
		if _, err := f.svc.Register(context.Background(), in); !errors.Is(err, domain.ErrDuplicateIdentity) {
			t.Fatalf("expected ErrDuplicateIdentity for %+v, got %v", in, err)
		}
	}
	if len(f.store.users) != 1 {
		t.Fatalf("expected exactly one stored user, got %d", len(f.store.users))
	}
	if f.store.creates != 1 {
		t.Fatalf("pre-check should stop the insert, got %d creates", f.store.creates)
	}
}

func TestAuthService_Register_StoreRaceSurfacesDuplicate(t *testing.T) {
	f := newAuthFixture()
	f.store.createErr = domain.ErrDuplicateIdentity

	if _, err := f.svc.Register(context.Background(), aliceInput()); !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}
}

func TestAuthService_Register_PersistenceFailure(t *testing.T) {
	f := newAuthFixture()
	f.store.findErr = domain.ErrPersistence

	if _, err := f.svc.Register(context.Background(), aliceInput()); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if f.store.creates != 0 {
		t.Fatalf("expected no insert after failed pre-check")
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture()
	user, _ := f.svc.Register(context.Background(), aliceInput())

	res, err := f.svc.Login(context.Background(), "alice", "pw1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.Token != "token-for-"+user.ID {
		t.Fatalf("unexpected token %q", res.Token)
	}
	if want := f.issuer.now.Add(2 * time.Minute); !res.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, res.ExpiresAt)
	}
	if res.User == nil || res.User.Username != "alice" {
		t.Fatalf("unexpected user: %+v", res.User)
	}
}

func TestAuthService_Login_TrimsUsernameLikeRegister(t *testing.T) {
	f := newAuthFixture()
	in := aliceInput()
	in.Username = " alice "
	user, err := f.svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("expected trimmed username, got %q", user.Username)
	}

	for _, name := range []string{"alice", " alice", "alice\t"} {
		if _, err := f.svc.Login(context.Background(), name, "pw1"); err != nil {
			t.Fatalf("login as %q failed: %v", name, err)
		}
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	f := newAuthFixture()
	_, _ = f.svc.Register(context.Background(), aliceInput())

	if _, err := f.svc.Login(context.Background(), "alice", "nope"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(f.issuer.issued) != 0 {
		t.Fatalf("no token should be issued")
	}
}

func TestAuthService_Login_UnknownUserLooksLikeWrongPassword(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.Login(context.Background(), "ghost", "pw1")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(f.hasher.verified) != 1 || f.hasher.verified[0] != f.svc.dummyHash {
		t.Fatalf("expected one compare against the dummy hash, got %v", f.hasher.verified)
	}
}

func TestAuthService_Login_EmptyInput(t *testing.T) {
	f := newAuthFixture()

	if _, err := f.svc.Login(context.Background(), "", "pw"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := f.svc.Login(context.Background(), "alice", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAuthService_Login_StoreFailure(t *testing.T) {
	f := newAuthFixture()
	f.store.findErr = domain.ErrPersistence

	if _, err := f.svc.Login(context.Background(), "alice", "pw1"); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestAuthService_Login_IssuerFailure(t *testing.T) {
	f := newAuthFixture()
	_, _ = f.svc.Register(context.Background(), aliceInput())
	f.issuer.err = domain.ErrMalformedClaims

	if _, err := f.svc.Login(context.Background(), "alice", "pw1"); !errors.Is(err, domain.ErrMalformedClaims) {
		t.Fatalf("expected wrapped issuer error, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Logout / CurrentUser
// ---------------------------------------------------------------------------

func TestAuthService_Logout_RevokesUntilExpiry(t *testing.T) {
	f := newAuthFixture()
	exp := time.Unix(1_700_000_120, 0)

	if err := f.svc.Logout(context.Background(), domain.Principal{ID: "1", TokenID: "jti-1", ExpiresAt: exp}); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if got, ok := f.denylist.revoked["jti-1"]; !ok || !got.Equal(exp) {
		t.Fatalf("expected jti-1 revoked until %v, got %v (present=%v)", exp, got, ok)
	}
}

func TestAuthService_Logout_WithoutDenylist(t *testing.T) {
	store := newStubCredentialStore()
	svc := NewAuthService(store, &fakeHasher{}, &fakeIssuer{}, nil, time.Minute, zerolog.Nop())

	if err := svc.Logout(context.Background(), domain.Principal{ID: "1", TokenID: "jti"}); err != nil {
		t.Fatalf("expected no-op logout, got %v", err)
	}
}

func TestAuthService_Logout_DenylistFailure(t *testing.T) {
	f := newAuthFixture()
	f.denylist.err = errors.New("redis down")

	if err := f.svc.Logout(context.Background(), domain.Principal{ID: "1", TokenID: "jti"}); err == nil {
		t.Fatalf("expected error from denylist")
	}
}

func TestAuthService_CurrentUserAndLookup(t *testing.T) {
	f := newAuthFixture()
	created, _ := f.svc.Register(context.Background(), aliceInput())

	me, err := f.svc.CurrentUser(context.Background(), domain.Principal{ID: created.ID})
	if err != nil || me.Username != "alice" {
		t.Fatalf("CurrentUser: got %+v, %v", me, err)
	}

	if _, err := f.svc.CurrentUser(context.Background(), domain.Principal{ID: "999"}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	found, err := f.svc.LookupUser(context.Background(), "alice")
	if err != nil || found.ID != created.ID {
		t.Fatalf("LookupUser: got %+v, %v", found, err)
	}
}

func TestNewAuthService_DefaultTTL(t *testing.T) {
	svc := NewAuthService(newStubCredentialStore(), &fakeHasher{}, &fakeIssuer{}, nil, 0, zerolog.Nop())
	if svc.tokenTTL != 30*time.Minute {
		t.Fatalf("expected default ttl 30m, got %v", svc.tokenTTL)
	}
}
