package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/placement-ops/console-api/internal/models"
	"github.com/placement-ops/console-api/internal/service"
	appErrors "github.com/placement-ops/console-api/pkg/errors"
	"github.com/placement-ops/console-api/pkg/response"
)

// SeatingHandler exposes seat allocation and export endpoints.
type SeatingHandler struct {
	seating *service.SeatingService
	exports *service.ExportService
	metrics *service.MetricsService
}

// NewSeatingHandler constructs SeatingHandler.
func NewSeatingHandler(seating *service.SeatingService, exports *service.ExportService, metrics *service.MetricsService) *SeatingHandler {
	return &SeatingHandler{seating: seating, exports: exports, metrics: metrics}
}

// Allocate godoc
// @Summary Run seat allocation for a test
// @Tags Seating
// @Produce json
// @Param id path string true "Test ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tests/{id}/allocate [post]
func (h *SeatingHandler) Allocate(c *gin.Context) {
	summary, err := h.seating.Allocate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.metrics.RecordAllocation("error")
		response.Error(c, err)
		return
	}
	h.metrics.RecordAllocation("ok")
	response.JSON(c, http.StatusOK, summary, nil)
}

// RequestExport godoc
// @Summary Request a seating export for a test
// @Tags Seating
// @Produce json
// @Param id path string true "Test ID"
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Success 202 {object} response.Envelope
// @Security BearerAuth
// @Router /tests/{id}/export [post]
func (h *SeatingHandler) RequestExport(c *gin.Context) {
	format := models.ExportFormat(strings.ToLower(c.DefaultQuery("format", "csv")))
	exp, err := h.exports.Request(c.Request.Context(), c.Param("id"), format, currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, exp, nil)
}

// ExportStatus godoc
// @Summary Check the state of an export job
// @Tags Seating
// @Produce json
// @Param id path string true "Export ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /exports/{id} [get]
func (h *SeatingHandler) ExportStatus(c *gin.Context) {
	exp, err := h.exports.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exp, nil)
}

// Download godoc
// @Summary Download a completed export via its signed token
// @Tags Seating
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /exports/download [get]
func (h *SeatingHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	file, filename, err := h.exports.Download(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	contentType := "text/csv"
	if strings.HasSuffix(filename, ".pdf") {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
