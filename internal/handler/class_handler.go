package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolconnect/portal-api/internal/service"
	appErrors "github.com/schoolconnect/portal-api/pkg/errors"
	"github.com/schoolconnect/portal-api/pkg/response"
)

// ClassHandler handles class listing and roster endpoints.
type ClassHandler struct {
	classes  *service.ClassService
	students *service.StudentService
}

// NewClassHandler constructs a class handler.
func NewClassHandler(classes *service.ClassService, students *service.StudentService) *ClassHandler {
	return &ClassHandler{classes: classes, students: students}
}

// ClassesForTeacher godoc
// @Summary List a teacher's classes
// @Description Returns the classes a teacher teaches, homeroom first, tagged with the teacher's role label
// @Tags Classes
// @Produce json
// @Param id path string true "Teacher id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /teachers/{id}/classes [get]
func (h *ClassHandler) ClassesForTeacher(c *gin.Context) {
	classes, err := h.classes.ClassesForTeacher(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// Get godoc
// @Summary Get a class
// @Tags Classes
// @Produce json
// @Param id path string true "Class id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	classroom, err := h.classes.Get(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classroom, nil)
}

// Students godoc
// @Summary List the students of a class
// @Tags Classes
// @Produce json
// @Param id path string true "Class id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /classes/{id}/students [get]
func (h *ClassHandler) Students(c *gin.Context) {
	students, err := h.classes.Students(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// AddStudent godoc
// @Summary Enroll a new student
// @Description Creates a student in the class, reusing or creating the parent account by email
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class id"
// @Param payload body service.AddStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /classes/{id}/students [post]
func (h *ClassHandler) AddStudent(c *gin.Context) {
	var req service.AddStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}

	student, err := h.students.Add(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}
