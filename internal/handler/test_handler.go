package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/placement-ops/console-api/internal/models"
	"github.com/placement-ops/console-api/internal/service"
	appErrors "github.com/placement-ops/console-api/pkg/errors"
	"github.com/placement-ops/console-api/pkg/response"
)

// TestHandler exposes test scheduling endpoints.
type TestHandler struct {
	tests      *service.TestService
	venues     *service.VenueService
	applicants *service.ApplicantService
	dashboard  *service.DashboardService
}

// NewTestHandler constructs TestHandler.
func NewTestHandler(tests *service.TestService, venues *service.VenueService, applicants *service.ApplicantService, dashboard *service.DashboardService) *TestHandler {
	return &TestHandler{tests: tests, venues: venues, applicants: applicants, dashboard: dashboard}
}

// ListUpcoming godoc
// @Summary List upcoming tests
// @Tags Tests
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tests/upcoming [get]
func (h *TestHandler) ListUpcoming(c *gin.Context) {
	tests, err := h.tests.ListUpcoming(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tests, nil)
}

// Get godoc
// @Summary Get test detail
// @Tags Tests
// @Produce json
// @Param id path string true "Test ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tests/{id} [get]
func (h *TestHandler) Get(c *gin.Context) {
	test, err := h.tests.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, test, nil)
}

// Create godoc
// @Summary Schedule a test
// @Tags Tests
// @Accept json
// @Produce json
// @Param payload body service.CreateTestRequest true "Test payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /tests [post]
func (h *TestHandler) Create(c *gin.Context) {
	var req service.CreateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	test, err := h.tests.Create(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	response.Created(c, test)
}

// ListVenues godoc
// @Summary List venues for a test
// @Tags Tests
// @Produce json
// @Param id path string true "Test ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tests/{id}/venues [get]
func (h *TestHandler) ListVenues(c *gin.Context) {
	venues, err := h.venues.ListByTest(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, venues, nil)
}

// ListApplicants godoc
// @Summary List applicants for a test
// @Tags Tests
// @Produce json
// @Param id path string true "Test ID"
// @Param search query string false "Search by roll number or name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tests/{id}/applicants [get]
func (h *TestHandler) ListApplicants(c *gin.Context) {
	var filter models.ApplicantFilter
	filter.TestID = c.Param("id")
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	applicants, pagination, err := h.applicants.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, applicants, pagination)
}

// ListSeating godoc
// @Summary List the assigned seating plan for a test
// @Tags Tests
// @Produce json
// @Param id path string true "Test ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tests/{id}/seating [get]
func (h *TestHandler) ListSeating(c *gin.Context) {
	seated, err := h.applicants.ListSeated(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, seated, nil)
}
