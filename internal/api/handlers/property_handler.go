package handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rumahkita/rumahkita-backend/internal/api/response"
	"github.com/rumahkita/rumahkita-backend/internal/inquiry"
	"github.com/rumahkita/rumahkita-backend/internal/repository"
)

// PropertyHandler handles property and unit HTTP requests backing the
// assignment picker
type PropertyHandler struct {
	service      *inquiry.Service
	propertyRepo repository.PropertyRepository
}

// NewPropertyHandler creates a new PropertyHandler
func NewPropertyHandler(service *inquiry.Service, propertyRepo repository.PropertyRepository) *PropertyHandler {
	return &PropertyHandler{
		service:      service,
		propertyRepo: propertyRepo,
	}
}

// List handles GET /api/properties
func (h *PropertyHandler) List(c echo.Context) error {
	managerID, err := strconv.ParseUint(c.QueryParam("manager_id"), 10, 32)
	if err != nil || managerID == 0 {
		return response.BadRequest(c, "manager_id is required")
	}

	properties, err := h.propertyRepo.ListByManager(c.Request().Context(), uint(managerID))
	if err != nil {
		return response.InternalError(c, "failed to list properties")
	}

	return response.Success(c, properties)
}

// Get handles GET /api/properties/:id
func (h *PropertyHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid property ID")
	}

	property, err := h.propertyRepo.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "property not found")
		}
		return response.InternalError(c, "failed to get property")
	}

	return response.Success(c, property)
}

// Units handles GET /api/properties/:id/units. Served through the persisted
// unit cache so the picker keeps working when a fresh fetch fails.
func (h *PropertyHandler) Units(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid property ID")
	}

	units, err := h.service.ListUnits(c.Request().Context(), uint(id))
	if err != nil {
		return response.InternalError(c, "failed to list units")
	}

	return response.Success(c, units)
}
