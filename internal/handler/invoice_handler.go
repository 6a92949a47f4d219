package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolconnect/portal-api/internal/service"
	"github.com/schoolconnect/portal-api/pkg/response"
)

// InvoiceHandler handles tuition invoice endpoints.
type InvoiceHandler struct {
	service *service.InvoiceService
}

// NewInvoiceHandler constructs an invoice handler.
func NewInvoiceHandler(svc *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: svc}
}

// ListByStudent godoc
// @Summary List a student's invoices
// @Description Returns tuition invoices, newest billing period first
// @Tags Invoices
// @Produce json
// @Param id path string true "Student id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /students/{id}/invoices [get]
func (h *InvoiceHandler) ListByStudent(c *gin.Context) {
	invoices, err := h.service.ListByStudent(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invoices, nil)
}

// Pay godoc
// @Summary Pay an invoice
// @Description Marks an invoice paid; paying an already-paid invoice is a no-op success
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /invoices/{id}/pay [post]
func (h *InvoiceHandler) Pay(c *gin.Context) {
	invoice, err := h.service.Pay(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invoice, nil)
}

// Receipt godoc
// @Summary Download an invoice receipt
// @Description Renders a PDF receipt for a paid invoice
// @Tags Invoices
// @Produce application/pdf
// @Param id path string true "Invoice id"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /invoices/{id}/receipt [get]
func (h *InvoiceHandler) Receipt(c *gin.Context) {
	receipt, err := h.service.Receipt(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="receipt.pdf"`)
	c.Data(http.StatusOK, "application/pdf", receipt)
}
