package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolconnect/portal-api/internal/models"
)

func TestSupportRequestRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSupportRequestRepository(db)

	mock.ExpectExec("INSERT INTO support_requests").
		WillReturnResult(sqlmock.NewResult(0, 1))

	request := &models.SupportRequest{
		RequesterID:   "p1",
		RequesterType: models.RequesterParent,
		Content:       "Không đăng nhập được",
		Status:        models.SupportStatusNew,
	}
	require.NoError(t, repo.Create(context.Background(), request))
	assert.NotEmpty(t, request.ID)
	assert.False(t, request.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSupportRequestRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSupportRequestRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE support_requests SET status = $2, response = $3 WHERE id = $1")).
		WithArgs("sr1", models.SupportStatusResolved, "Đã xử lý xong").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), "sr1", models.SupportStatusResolved, "Đã xử lý xong"))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE support_requests SET status = $2, response = $3 WHERE id = $1")).
		WithArgs("missing", models.SupportStatusResolved, "").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Update(context.Background(), "missing", models.SupportStatusResolved, ""), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSupportRequestRepositoryListAllJoinsRequester(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSupportRequestRepository(db)

	rows := sqlmock.NewRows([]string{"id", "requester_id", "requester_type", "content", "status", "response", "created_at", "requester_name", "requester_email"}).
		AddRow("sr1", "p1", "PHUHUYNH", "Không đăng nhập được", "Mới", "", time.Now(), "Phụ huynh An", "parent@example.com")
	mock.ExpectQuery("JOIN users u ON u.id = sr.requester_id").
		WillReturnRows(rows)

	requests, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, models.SupportStatusNew, requests[0].Status)
	assert.Equal(t, "Phụ huynh An", requests[0].RequesterName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSupportRequestRepositoryCountPending(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSupportRequestRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM support_requests WHERE status != $1")).
		WithArgs(models.SupportStatusResolved).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
