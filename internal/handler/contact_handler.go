package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolconnect/portal-api/internal/service"
	appErrors "github.com/schoolconnect/portal-api/pkg/errors"
	"github.com/schoolconnect/portal-api/pkg/response"
)

// ContactHandler handles contact list and messaging endpoints.
type ContactHandler struct {
	service *service.ContactService
}

// NewContactHandler constructs a contact handler.
func NewContactHandler(svc *service.ContactService) *ContactHandler {
	return &ContactHandler{service: svc}
}

// List godoc
// @Summary List messageable contacts
// @Description Returns the users the caller may exchange messages with
// @Tags Messaging
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /contacts [get]
func (h *ContactHandler) List(c *gin.Context) {
	contacts, err := h.service.Contacts(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, contacts, nil)
}

// Conversation godoc
// @Summary Get conversation history
// @Description Returns the two-way message history with a contact, oldest first
// @Tags Messaging
// @Produce json
// @Param contactId path string true "Contact id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /messages/{contactId} [get]
func (h *ContactHandler) Conversation(c *gin.Context) {
	messages, err := h.service.Conversation(c.Request.Context(), claimsFromContext(c), c.Param("contactId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, nil)
}

// Send godoc
// @Summary Send a message
// @Description Stores a message to a mutual contact
// @Tags Messaging
// @Accept json
// @Produce json
// @Param payload body service.SendMessageRequest true "Message payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /messages [post]
func (h *ContactHandler) Send(c *gin.Context) {
	var req service.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid message payload"))
		return
	}

	message, err := h.service.Send(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, message)
}
