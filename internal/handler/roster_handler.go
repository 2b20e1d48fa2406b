package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/placement-ops/console-api/internal/service"
	appErrors "github.com/placement-ops/console-api/pkg/errors"
	"github.com/placement-ops/console-api/pkg/response"
)

// RosterHandler exposes roster import endpoints.
type RosterHandler struct {
	roster      *service.RosterService
	metrics     *service.MetricsService
	dashboard   *service.DashboardService
	maxFileSize int64
}

// NewRosterHandler constructs RosterHandler.
func NewRosterHandler(roster *service.RosterService, metrics *service.MetricsService, dashboard *service.DashboardService, maxFileSize int64) *RosterHandler {
	if maxFileSize <= 0 {
		maxFileSize = 5 * 1024 * 1024
	}
	return &RosterHandler{roster: roster, metrics: metrics, dashboard: dashboard, maxFileSize: maxFileSize}
}

// Import godoc
// @Summary Import a roster file for a test
// @Tags Roster
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Test ID"
// @Param file formData file true "Roster CSV"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tests/{id}/roster [post]
func (h *RosterHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "roster file is required"))
		return
	}
	if fileHeader.Size > h.maxFileSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "roster file is too large"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read roster file"))
		return
	}
	defer file.Close()

	summary, err := h.roster.Import(c.Request.Context(), c.Param("id"), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordImport(summary.Upserted)
	h.dashboard.Invalidate(c.Request.Context())
	response.JSON(c, http.StatusOK, summary, nil)
}
