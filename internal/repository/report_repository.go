package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/schoolconnect/portal-api/internal/models"
)

// ReportRepository persists term reports. Records are stored as jsonb and
// replaced wholesale on update.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// ListByStudent returns the reports of one student, most recent year and
// term first.
func (r *ReportRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Report, error) {
	const query = `
SELECT id, student_id, term, year, records, teacher_comments, updated_at
FROM reports
WHERE student_id = $1
ORDER BY year DESC, term DESC`
	var reports []models.Report
	if err := r.db.SelectContext(ctx, &reports, query, studentID); err != nil {
		return nil, fmt.Errorf("list reports by student: %w", err)
	}
	return reports, nil
}

// Upsert creates the report when the id is unseen and otherwise replaces
// records and comments in full.
func (r *ReportRepository) Upsert(ctx context.Context, report *models.Report) error {
	report.UpdatedAt = time.Now().UTC()
	const query = `
INSERT INTO reports (id, student_id, term, year, records, teacher_comments, updated_at)
VALUES (:id, :student_id, :term, :year, :records, :teacher_comments, :updated_at)
ON CONFLICT (id) DO UPDATE
SET records = EXCLUDED.records, teacher_comments = EXCLUDED.teacher_comments, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("upsert report: %w", err)
	}
	return nil
}
