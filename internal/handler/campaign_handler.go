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

// CampaignHandler exposes campaign endpoints.
type CampaignHandler struct {
	campaigns *service.CampaignService
	cycles    *service.CycleService
	dashboard *service.DashboardService
}

// NewCampaignHandler constructs CampaignHandler.
func NewCampaignHandler(campaigns *service.CampaignService, cycles *service.CycleService, dashboard *service.DashboardService) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns, cycles: cycles, dashboard: dashboard}
}

// List godoc
// @Summary List campaigns
// @Tags Campaigns
// @Produce json
// @Param search query string false "Search by name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /campaigns [get]
func (h *CampaignHandler) List(c *gin.Context) {
	var filter models.CampaignFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	campaigns, pagination, err := h.campaigns.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, campaigns, pagination)
}

// Get godoc
// @Summary Get campaign detail
// @Tags Campaigns
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /campaigns/{id} [get]
func (h *CampaignHandler) Get(c *gin.Context) {
	campaign, err := h.campaigns.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, campaign, nil)
}

// Create godoc
// @Summary Create campaign
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param payload body service.CreateCampaignRequest true "Campaign payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /campaigns [post]
func (h *CampaignHandler) Create(c *gin.Context) {
	var req service.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	campaign, err := h.campaigns.Create(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	response.Created(c, campaign)
}

// Delete godoc
// @Summary Delete campaign
// @Tags Campaigns
// @Param id path string true "Campaign ID"
// @Success 204
// @Security BearerAuth
// @Router /campaigns/{id} [delete]
func (h *CampaignHandler) Delete(c *gin.Context) {
	if err := h.campaigns.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	response.NoContent(c)
}

// ListCycles godoc
// @Summary List cycles for a campaign
// @Tags Campaigns
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /campaigns/{id}/cycles [get]
func (h *CampaignHandler) ListCycles(c *gin.Context) {
	cycles, err := h.cycles.ListByCampaign(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cycles, nil)
}
