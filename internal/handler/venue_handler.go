package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/placement-ops/console-api/internal/service"
	appErrors "github.com/placement-ops/console-api/pkg/errors"
	"github.com/placement-ops/console-api/pkg/response"
)

// VenueHandler exposes venue endpoints.
type VenueHandler struct {
	venues *service.VenueService
}

// NewVenueHandler constructs VenueHandler.
func NewVenueHandler(venues *service.VenueService) *VenueHandler {
	return &VenueHandler{venues: venues}
}

// Create godoc
// @Summary Add a venue to a test
// @Tags Venues
// @Accept json
// @Produce json
// @Param payload body service.CreateVenueRequest true "Venue payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /venues [post]
func (h *VenueHandler) Create(c *gin.Context) {
	var req service.CreateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	venue, err := h.venues.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, venue)
}
