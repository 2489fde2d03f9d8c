package handler

import (
	"time"

	"github.com/99minutos/commerce-api/internal/core/domain"
)

// --- Request / Response types ---

type signupRequest struct {
	Username  string `json:"username"  validate:"required,max=80"`
	Email     string `json:"email"     validate:"required,email,max=120"`
	Password  string `json:"password"  validate:"required,max=72"`
	Firstname string `json:"firstname" validate:"required,max=100"`
	Lastname  string `json:"lastname"  validate:"required,max=100"`
}

type signupResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type authProbeResponse struct {
	Message   string    `json:"message"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// addressRequest has no owner field; the owner always comes from the token.
type addressRequest struct {
	Street  string `json:"street"   validate:"required,max=200"`
	City    string `json:"city"     validate:"required,max=100"`
	State   string `json:"state"    validate:"required,max=100"`
	ZipCode string `json:"zip_code" validate:"required,max=20"`
	Country string `json:"country"  validate:"required,max=100"`
}

type addressResponse struct {
	Message string          `json:"message"`
	Address *domain.Address `json:"address"`
}

type addressListResponse struct {
	Addresses []*domain.Address `json:"addresses"`
}
