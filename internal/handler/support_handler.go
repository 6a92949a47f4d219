package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolconnect/portal-api/internal/service"
	appErrors "github.com/schoolconnect/portal-api/pkg/errors"
	"github.com/schoolconnect/portal-api/pkg/response"
)

// SupportHandler handles support-ticket endpoints.
type SupportHandler struct {
	service *service.SupportService
}

// NewSupportHandler constructs a support handler.
func NewSupportHandler(svc *service.SupportService) *SupportHandler {
	return &SupportHandler{service: svc}
}

// Create godoc
// @Summary File a support request
// @Tags Support
// @Accept json
// @Produce json
// @Param payload body service.CreateSupportRequest true "Support request payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /support-requests [post]
func (h *SupportHandler) Create(c *gin.Context) {
	var req service.CreateSupportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid support request payload"))
		return
	}

	request, err := h.service.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// ListOwn godoc
// @Summary List own support requests
// @Tags Support
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /support-requests [get]
func (h *SupportHandler) ListOwn(c *gin.Context) {
	requests, err := h.service.ListOwn(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// ListAll godoc
// @Summary List every support request
// @Description Returns all tickets joined with requester identity
// @Tags Support
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/support-requests [get]
func (h *SupportHandler) ListAll(c *gin.Context) {
	requests, err := h.service.ListAll(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Update godoc
// @Summary Update a support request
// @Description Moves a ticket through the workflow and records the admin response
// @Tags Support
// @Accept json
// @Produce json
// @Param id path string true "Support request id"
// @Param payload body service.UpdateSupportRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/support-requests/{id} [put]
func (h *SupportHandler) Update(c *gin.Context) {
	var req service.UpdateSupportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid support request payload"))
		return
	}

	request, err := h.service.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}
