package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/placement-ops/console-api/internal/service"
	appErrors "github.com/placement-ops/console-api/pkg/errors"
	"github.com/placement-ops/console-api/pkg/response"
)

// CycleHandler exposes cycle endpoints.
type CycleHandler struct {
	cycles *service.CycleService
	tests  *service.TestService
}

// NewCycleHandler constructs CycleHandler.
func NewCycleHandler(cycles *service.CycleService, tests *service.TestService) *CycleHandler {
	return &CycleHandler{cycles: cycles, tests: tests}
}

// Get godoc
// @Summary Get cycle detail
// @Tags Cycles
// @Produce json
// @Param id path string true "Cycle ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /cycles/{id} [get]
func (h *CycleHandler) Get(c *gin.Context) {
	cycle, err := h.cycles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cycle, nil)
}

// Create godoc
// @Summary Create cycle
// @Tags Cycles
// @Accept json
// @Produce json
// @Param payload body service.CreateCycleRequest true "Cycle payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /cycles [post]
func (h *CycleHandler) Create(c *gin.Context) {
	var req service.CreateCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	cycle, err := h.cycles.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cycle)
}

// ListTests godoc
// @Summary List tests for a cycle
// @Tags Cycles
// @Produce json
// @Param id path string true "Cycle ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /cycles/{id}/tests [get]
func (h *CycleHandler) ListTests(c *gin.Context) {
	tests, err := h.tests.ListByCycle(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tests, nil)
}
