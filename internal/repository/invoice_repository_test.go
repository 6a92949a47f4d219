package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolconnect/portal-api/internal/models"
)

func TestInvoiceRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "month", "year", "items", "total", "is_paid"}).
		AddRow("inv2", "st1", 1, 2026, []byte(`[{"description":"Học phí","amount":1500000}]`), 1500000.0, false).
		AddRow("inv1", "st1", 12, 2025, []byte(`[{"description":"Học phí","amount":1500000}]`), 1500000.0, true)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, month, year, items, total, is_paid FROM invoices WHERE student_id = $1 ORDER BY year DESC, month DESC")).
		WithArgs("st1").
		WillReturnRows(rows)

	invoices, err := repo.ListByStudent(context.Background(), "st1")
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	assert.Equal(t, "inv2", invoices[0].ID)
	require.Len(t, invoices[0].Items, 1)
	assert.Equal(t, "Học phí", invoices[0].Items[0].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	mock.ExpectExec("INSERT INTO invoices").
		WillReturnResult(sqlmock.NewResult(0, 1))

	invoice := &models.Invoice{
		StudentID: "st1",
		Month:     1,
		Year:      2026,
		Items:     models.FeeItems{{Description: "Học phí", Amount: 1500000}},
		Total:     1500000,
	}
	require.NoError(t, repo.Create(context.Background(), invoice))
	assert.NotEmpty(t, invoice.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepositoryCreateRejectsMismatchedTotal(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	invoice := &models.Invoice{
		StudentID: "st1",
		Month:     1,
		Year:      2026,
		Items:     models.FeeItems{{Description: "Học phí", Amount: 1500000}},
		Total:     1000000,
	}
	// Rejected before any SQL is issued.
	assert.Error(t, repo.Create(context.Background(), invoice))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepositoryMarkPaid(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE invoices SET is_paid = TRUE WHERE id = $1")).
		WithArgs("inv1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkPaid(context.Background(), "inv1"))

	// Paying an already-paid invoice still matches one row; only unknown ids
	// surface as ErrNoRows.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE invoices SET is_paid = TRUE WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.MarkPaid(context.Background(), "missing"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
