package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/commerce-api/internal/api/metrics"
	"github.com/99minutos/commerce-api/internal/core/domain"
	"github.com/99minutos/commerce-api/internal/core/ports"
)

const addressResource = "address"

type AddressHandler struct {
	service ports.AddressService
}

func NewAddressHandler(service ports.AddressService) *AddressHandler {
	return &AddressHandler{service: service}
}

// Create stores an address for the authenticated user.
//
// @Summary      Create an address
// @Tags         addresses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addressRequest  true  "Address"
// @Success      200   {object}  addressResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /address [post]
func (h *AddressHandler) Create(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req addressRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	a, err := h.service.Create(c.Request().Context(), principal, toAddressInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, addressResponse{Message: "address created", Address: a})
}

// List returns the authenticated user's addresses.
//
// @Summary      List own addresses
// @Tags         addresses
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  addressListResponse
// @Failure      401  {object}  map[string]string
// @Router       /addresses [get]
func (h *AddressHandler) List(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	list, err := h.service.List(c.Request().Context(), principal)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.Address{}
	}
	return c.JSON(http.StatusOK, addressListResponse{Addresses: list})
}

// Get returns one address owned by the authenticated user.
//
// @Summary      Get an address
// @Tags         addresses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Address ID"
// @Success      200  {object}  domain.Address
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /address/{id} [get]
func (h *AddressHandler) Get(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	a, err := h.service.Get(c.Request().Context(), principal, c.Param("id"))
	if err != nil {
		return countDenial(err)
	}
	return c.JSON(http.StatusOK, a)
}

// Update replaces an address owned by the authenticated user.
//
// @Summary      Update an address
// @Tags         addresses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Address ID"
// @Param        body  body      addressRequest  true  "Address"
// @Success      200   {object}  addressResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /address/{id} [put]
func (h *AddressHandler) Update(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req addressRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	a, err := h.service.Update(c.Request().Context(), principal, c.Param("id"), toAddressInput(req))
	if err != nil {
		return countDenial(err)
	}
	return c.JSON(http.StatusOK, addressResponse{Message: "address updated", Address: a})
}

// Delete removes an address owned by the authenticated user.
//
// @Summary      Delete an address
// @Tags         addresses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Address ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /address/{id} [delete]
func (h *AddressHandler) Delete(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), principal, c.Param("id")); err != nil {
		return countDenial(err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "address deleted"})
}

func toAddressInput(req addressRequest) ports.AddressInput {
	return ports.AddressInput{
		Street:  req.Street,
		City:    req.City,
		State:   req.State,
		ZipCode: req.ZipCode,
		Country: req.Country,
	}
}

func countDenial(err error) error {
	if errors.Is(err, domain.ErrForbidden) {
		metrics.OwnershipDenialsTotal.WithLabelValues(addressResource).Inc()
	}
	return err
}
