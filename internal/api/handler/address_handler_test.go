package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/commerce-api/internal/api/middleware"
	"github.com/99minutos/commerce-api/internal/core/domain"
	"github.com/99minutos/commerce-api/internal/core/ports"
)

type stubAddressService struct {
	createFn func(ctx context.Context, p domain.Principal, in ports.AddressInput) (*domain.Address, error)
	listFn   func(ctx context.Context, p domain.Principal) ([]*domain.Address, error)
	getFn    func(ctx context.Context, p domain.Principal, id string) (*domain.Address, error)
	updateFn func(ctx context.Context, p domain.Principal, id string, in ports.AddressInput) (*domain.Address, error)
	deleteFn func(ctx context.Context, p domain.Principal, id string) error
}

func (s *stubAddressService) Create(ctx context.Context, p domain.Principal, in ports.AddressInput) (*domain.Address, error) {
	return s.createFn(ctx, p, in)
}

func (s *stubAddressService) List(ctx context.Context, p domain.Principal) ([]*domain.Address, error) {
	return s.listFn(ctx, p)
}

func (s *stubAddressService) Get(ctx context.Context, p domain.Principal, id string) (*domain.Address, error) {
	return s.getFn(ctx, p, id)
}

func (s *stubAddressService) Update(ctx context.Context, p domain.Principal, id string, in ports.AddressInput) (*domain.Address, error) {
	return s.updateFn(ctx, p, id, in)
}

func (s *stubAddressService) Delete(ctx context.Context, p domain.Principal, id string) error {
	return s.deleteFn(ctx, p, id)
}

var testPrincipal = domain.Principal{ID: "1", TokenID: "jti"}

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder) echo.Context {
	c := e.NewContext(req, rec)
	c.Set(middleware.PrincipalKey, testPrincipal)
	return c
}

func TestAddressHandler_Create_IgnoresClientOwner(t *testing.T) {
	e := newTestEcho()
	stub := &stubAddressService{
		createFn: func(_ context.Context, p domain.Principal, in ports.AddressInput) (*domain.Address, error) {
			if p.ID != testPrincipal.ID {
				t.Fatalf("owner must come from the principal, got %q", p.ID)
			}
			if in.Street != "1 Main St" || in.City != "Springfield" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Address{ID: "10", UserID: p.ID, Street: in.Street, City: in.City}, nil
		},
	}

	rec := httptest.NewRecorder()
	body := `{"street":"1 Main St","city":"Springfield","state":"IL","zip_code":"62701","country":"US","user_id":"999"}`
	c := authedContext(e, jsonRequest(http.MethodPost, "/address", body), rec)

	if err := NewAddressHandler(stub).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp addressResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Address == nil || resp.Address.UserID != "1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAddressHandler_Create_Validation(t *testing.T) {
	bodies := map[string]string{
		"missing street":   `{"city":"Springfield","state":"IL","zip_code":"62701","country":"US"}`,
		"missing state":    `{"street":"1 Main St","city":"Springfield","zip_code":"62701","country":"US"}`,
		"missing zip_code": `{"street":"1 Main St","city":"Springfield","state":"IL","country":"US"}`,
		"empty country":    `{"street":"1 Main St","city":"Springfield","state":"IL","zip_code":"62701","country":""}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			e := newTestEcho()
			c := authedContext(e, jsonRequest(http.MethodPost, "/address", body), httptest.NewRecorder())

			if err := NewAddressHandler(&stubAddressService{}).Create(c); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestAddressHandler_List_EmptyIsArray(t *testing.T) {
	e := newTestEcho()
	stub := &stubAddressService{
		listFn: func(context.Context, domain.Principal) ([]*domain.Address, error) { return nil, nil },
	}
	rec := httptest.NewRecorder()
	c := authedContext(e, httptest.NewRequest(http.MethodGet, "/addresses", nil), rec)

	if err := NewAddressHandler(stub).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"addresses":[]`) {
		t.Fatalf("expected empty array, got %s", rec.Body.String())
	}
}

func TestAddressHandler_ForwardsIDAndErrors(t *testing.T) {
	forbidden := func(_ context.Context, _ domain.Principal, id string) error {
		if id != "10" {
			t.Fatalf("unexpected id %q", id)
		}
		return domain.ErrForbidden
	}
	stub := &stubAddressService{
		getFn: func(ctx context.Context, p domain.Principal, id string) (*domain.Address, error) {
			return nil, forbidden(ctx, p, id)
		},
		updateFn: func(ctx context.Context, p domain.Principal, id string, _ ports.AddressInput) (*domain.Address, error) {
			return nil, forbidden(ctx, p, id)
		},
		deleteFn: forbidden,
	}
	h := NewAddressHandler(stub)

	cases := map[string]struct {
		fn  echo.HandlerFunc
		req *http.Request
	}{
		"get":    {h.Get, httptest.NewRequest(http.MethodGet, "/address/10", nil)},
		"update": {h.Update, jsonRequest(http.MethodPut, "/address/10", `{"street":"x","city":"y","state":"IL","zip_code":"62701","country":"US"}`)},
		"delete": {h.Delete, httptest.NewRequest(http.MethodDelete, "/address/10", nil)},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			e := newTestEcho()
			c := authedContext(e, tc.req, httptest.NewRecorder())
			c.SetParamNames("id")
			c.SetParamValues("10")

			if err := tc.fn(c); !errors.Is(err, domain.ErrForbidden) {
				t.Fatalf("expected ErrForbidden, got %v", err)
			}
		})
	}
}

func TestAddressHandler_DeleteSuccess(t *testing.T) {
	e := newTestEcho()
	stub := &stubAddressService{
		deleteFn: func(context.Context, domain.Principal, string) error { return nil },
	}
	rec := httptest.NewRecorder()
	c := authedContext(e, httptest.NewRequest(http.MethodDelete, "/address/10", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("10")

	if err := NewAddressHandler(stub).Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAddressHandler_RequiresPrincipal(t *testing.T) {
	e := newTestEcho()
	c := e.NewContext(jsonRequest(http.MethodPost, "/address", `{"street":"x","city":"y","state":"IL","zip_code":"62701","country":"US"}`), httptest.NewRecorder())

	if err := NewAddressHandler(&stubAddressService{}).Create(c); !errors.Is(err, domain.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}
