package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolconnect/portal-api/internal/models"
)

// InvoiceRepository persists tuition invoices.
type InvoiceRepository struct {
	db *sqlx.DB
}

// NewInvoiceRepository constructs the repository.
func NewInvoiceRepository(db *sqlx.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

const invoiceColumns = `id, student_id, month, year, items, total, is_paid`

// FindByID returns an invoice by identifier.
func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*models.Invoice, error) {
	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE id = $1 LIMIT 1`, invoiceColumns)
	var invoice models.Invoice
	if err := r.db.GetContext(ctx, &invoice, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find invoice by id: %w", err)
	}
	return &invoice, nil
}

// ListByStudent returns the invoices billed against one student, newest
// billing period first.
func (r *InvoiceRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Invoice, error) {
	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE student_id = $1 ORDER BY year DESC, month DESC`, invoiceColumns)
	var invoices []models.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, studentID); err != nil {
		return nil, fmt.Errorf("list invoices by student: %w", err)
	}
	return invoices, nil
}

// Create inserts a new invoice. Billing rows originate outside the API
// surface, so the derived-total invariant is enforced here at the store
// boundary.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return fmt.Errorf("validate invoice: %w", err)
	}
	if invoice.ID == "" {
		invoice.ID = uuid.NewString()
	}
	const query = `INSERT INTO invoices (id, student_id, month, year, items, total, is_paid)
		VALUES (:id, :student_id, :month, :year, :items, :total, :is_paid)`
	if _, err := r.db.NamedExecContext(ctx, query, invoice); err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}

// MarkPaid sets is_paid unconditionally. The row lock serialises concurrent
// pays and the write is idempotent, so a second call is a harmless no-op.
func (r *InvoiceRepository) MarkPaid(ctx context.Context, id string) error {
	const query = `UPDATE invoices SET is_paid = TRUE WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark invoice paid: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check paid invoice rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
