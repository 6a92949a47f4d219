package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolconnect/portal-api/internal/service"
	"github.com/schoolconnect/portal-api/pkg/response"
)

// TimetableHandler handles schedule endpoints.
type TimetableHandler struct {
	service *service.TimetableService
}

// NewTimetableHandler constructs a timetable handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// ForTeacher godoc
// @Summary Get a teacher's timetables
// @Description Returns one timetable per class the teacher teaches
// @Tags Timetables
// @Produce json
// @Param id path string true "Teacher id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /teachers/{id}/timetables [get]
func (h *TimetableHandler) ForTeacher(c *gin.Context) {
	timetables, err := h.service.ForTeacher(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetables, nil)
}

// ForStudent godoc
// @Summary Get a student's timetable
// @Description Returns the schedule of the student's class
// @Tags Timetables
// @Produce json
// @Param id path string true "Student id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /students/{id}/timetable [get]
func (h *TimetableHandler) ForStudent(c *gin.Context) {
	timetable, err := h.service.ForStudent(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}
