package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/schoolconnect/portal-api/internal/models"
)

// TimetableRepository reads class schedules.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// ListEntriesByClass returns the lesson slots of a classroom in grid order.
func (r *TimetableRepository) ListEntriesByClass(ctx context.Context, classID string) ([]models.TimetableEntry, error) {
	const query = `
SELECT te.day_of_week, te.period, s.name AS subject_name
FROM timetable_entries te
JOIN subjects s ON s.id = te.subject_id
WHERE te.class_id = $1
ORDER BY te.day_of_week ASC, te.period ASC`
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, classID); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}
