package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolconnect/portal-api/internal/models"
)

// SupportRequestRepository persists technical-support tickets.
type SupportRequestRepository struct {
	db *sqlx.DB
}

// NewSupportRequestRepository constructs the repository.
func NewSupportRequestRepository(db *sqlx.DB) *SupportRequestRepository {
	return &SupportRequestRepository{db: db}
}

// Create inserts a new request in its initial state.
func (r *SupportRequestRepository) Create(ctx context.Context, request *models.SupportRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO support_requests (id, requester_id, requester_type, content, status, response, created_at)
		VALUES (:id, :requester_id, :requester_type, :content, :status, :response, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create support request: %w", err)
	}
	return nil
}

// FindByID returns a request by identifier.
func (r *SupportRequestRepository) FindByID(ctx context.Context, id string) (*models.SupportRequest, error) {
	const query = `SELECT id, requester_id, requester_type, content, status, response, created_at FROM support_requests WHERE id = $1 LIMIT 1`
	var request models.SupportRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find support request by id: %w", err)
	}
	return &request, nil
}

// ListAll returns every request joined with requester identity, newest first.
func (r *SupportRequestRepository) ListAll(ctx context.Context) ([]models.SupportRequestDetail, error) {
	const query = `
SELECT sr.id, sr.requester_id, sr.requester_type, sr.content, sr.status, sr.response, sr.created_at,
       u.full_name AS requester_name, u.email AS requester_email
FROM support_requests sr
JOIN users u ON u.id = sr.requester_id
ORDER BY sr.created_at DESC`
	var requests []models.SupportRequestDetail
	if err := r.db.SelectContext(ctx, &requests, query); err != nil {
		return nil, fmt.Errorf("list support requests: %w", err)
	}
	return requests, nil
}

// ListByRequester returns the requests filed by one user, newest first.
func (r *SupportRequestRepository) ListByRequester(ctx context.Context, requesterID string) ([]models.SupportRequest, error) {
	const query = `SELECT id, requester_id, requester_type, content, status, response, created_at
FROM support_requests WHERE requester_id = $1 ORDER BY created_at DESC`
	var requests []models.SupportRequest
	if err := r.db.SelectContext(ctx, &requests, query, requesterID); err != nil {
		return nil, fmt.Errorf("list support requests by requester: %w", err)
	}
	return requests, nil
}

// Update replaces status and response in full.
func (r *SupportRequestRepository) Update(ctx context.Context, id string, status models.SupportStatus, response string) error {
	const query = `UPDATE support_requests SET status = $2, response = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, response)
	if err != nil {
		return fmt.Errorf("update support request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated support request rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountPending counts requests not yet resolved.
func (r *SupportRequestRepository) CountPending(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM support_requests WHERE status != $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, models.SupportStatusResolved); err != nil {
		return 0, fmt.Errorf("count pending support requests: %w", err)
	}
	return count, nil
}
