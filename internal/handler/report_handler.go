package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolconnect/portal-api/internal/service"
	appErrors "github.com/schoolconnect/portal-api/pkg/errors"
	"github.com/schoolconnect/portal-api/pkg/response"
)

// ReportHandler handles academic report endpoints.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler constructs a report handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// ListByStudent godoc
// @Summary List a student's reports
// @Description Returns academic reports, newest term first
// @Tags Reports
// @Produce json
// @Param id path string true "Student id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /students/{id}/reports [get]
func (h *ReportHandler) ListByStudent(c *gin.Context) {
	reports, err := h.service.ListByStudent(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, nil)
}

// Upsert godoc
// @Summary Create or replace a report
// @Description Replaces records and comments wholesale; teachers of the student's class only
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body service.UpsertReportRequest true "Report payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reports [put]
func (h *ReportHandler) Upsert(c *gin.Context) {
	var req service.UpsertReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
		return
	}

	report, err := h.service.Upsert(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
