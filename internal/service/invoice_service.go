package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/schoolconnect/portal-api/internal/models"
	"github.com/schoolconnect/portal-api/internal/policy"
	appErrors "github.com/schoolconnect/portal-api/pkg/errors"
	"github.com/schoolconnect/portal-api/pkg/export"
)

type invoiceStore interface {
	FindByID(ctx context.Context, id string) (*models.Invoice, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Invoice, error)
	MarkPaid(ctx context.Context, id string) error
}

type invoiceStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type receiptRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// InvoiceService covers the parent's tuition views, the idempotent pay
// operation, and receipt rendering.
type InvoiceService struct {
	authz    authorizer
	invoices invoiceStore
	students invoiceStudentReader
	receipts receiptRenderer
	audit    auditLogger
	logger   *zap.Logger
}

// NewInvoiceService constructs an InvoiceService.
func NewInvoiceService(authz authorizer, invoices invoiceStore, students invoiceStudentReader, receipts receiptRenderer, audit auditLogger, logger *zap.Logger) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{authz: authz, invoices: invoices, students: students, receipts: receipts, audit: audit, logger: logger}
}

// ListByStudent returns a student's invoices, newest billing period first.
func (s *InvoiceService) ListByStudent(ctx context.Context, principal *models.JWTClaims, studentID string) ([]models.Invoice, error) {
	if err := s.authz.Authorize(ctx, principal, policy.ActionViewInvoices, policy.Target{StudentID: studentID}); err != nil {
		return nil, err
	}
	invoices, err := s.invoices.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list invoices")
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	return invoices, nil
}

// Pay marks an invoice paid. Paying an already-paid invoice succeeds without
// changing anything, so client retries are safe.
func (s *InvoiceService) Pay(ctx context.Context, principal *models.JWTClaims, invoiceID string) (*models.Invoice, error) {
	if err := s.authz.Authorize(ctx, principal, policy.ActionPayInvoice, policy.Target{InvoiceID: invoiceID}); err != nil {
		return nil, err
	}

	if err := s.invoices.MarkPaid(ctx, invoiceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark invoice paid")
	}

	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload invoice")
	}

	if s.audit != nil {
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &principal.UserID,
			Action:     models.AuditActionInvoicePay,
			Resource:   "invoice",
			ResourceID: &invoiceID,
			NewValues:  []byte(`{"isPaid":true}`),
		}); err != nil {
			s.logger.Warn("failed to record invoice audit", zap.Error(err))
		}
	}
	return invoice, nil
}

// Receipt renders a PDF receipt for a paid invoice.
func (s *InvoiceService) Receipt(ctx context.Context, principal *models.JWTClaims, invoiceID string) ([]byte, error) {
	if err := s.authz.Authorize(ctx, principal, policy.ActionViewInvoices, policy.Target{InvoiceID: invoiceID}); err != nil {
		return nil, err
	}

	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invoice")
	}
	if !invoice.IsPaid {
		return nil, appErrors.Clone(appErrors.ErrConstraint, "receipt is only available for paid invoices")
	}

	studentName := invoice.StudentID
	if student, err := s.students.FindByID(ctx, invoice.StudentID); err == nil {
		studentName = student.FullName
	}

	dataset := export.Dataset{
		Headers: []string{"Description", "Amount"},
	}
	for _, item := range invoice.Items {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Description": item.Description,
			"Amount":      fmt.Sprintf("%.0f", item.Amount),
		})
	}
	dataset.Rows = append(dataset.Rows, map[string]string{
		"Description": "Total",
		"Amount":      fmt.Sprintf("%.0f", invoice.Total),
	})

	title := fmt.Sprintf("Tuition receipt %02d/%d - %s", invoice.Month, invoice.Year, studentName)
	receipt, err := s.receipts.Render(dataset, title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	return receipt, nil
}
