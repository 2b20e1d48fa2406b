package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/placement-ops/console-api/internal/service"
	appErrors "github.com/placement-ops/console-api/pkg/errors"
	"github.com/placement-ops/console-api/pkg/response"
)

// MarkAttendanceRequest carries the scanned or typed roll number.
type MarkAttendanceRequest struct {
	RollNumber string `json:"roll_number" binding:"required"`
}

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	metrics    *service.MetricsService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService, metrics *service.MetricsService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, metrics: metrics}
}

// Mark godoc
// @Summary Mark an applicant present
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Test ID"
// @Param payload body MarkAttendanceRequest true "Roll number"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /tests/{id}/attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.attendance.Mark(c.Request.Context(), c.Param("id"), req.RollNumber, currentUserID(c))
	if err != nil {
		if appErrors.Is(err, appErrors.ErrAlreadyMarked) {
			h.metrics.RecordAttendanceMark("already_marked")
		} else {
			h.metrics.RecordAttendanceMark("error")
		}
		response.Error(c, err)
		return
	}
	h.metrics.RecordAttendanceMark("ok")
	response.Created(c, result)
}

// List godoc
// @Summary List attendance for a test
// @Tags Attendance
// @Produce json
// @Param id path string true "Test ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tests/{id}/attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	records, err := h.attendance.ListByTest(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	count, err := h.attendance.CountByTest(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil, map[string]interface{}{"present_count": count})
}
