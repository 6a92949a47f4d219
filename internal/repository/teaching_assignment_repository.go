package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/schoolconnect/portal-api/internal/models"
)

// TeachingAssignmentRepository reads subject-teacher assignments.
type TeachingAssignmentRepository struct {
	db *sqlx.DB
}

// NewTeachingAssignmentRepository constructs the repository.
func NewTeachingAssignmentRepository(db *sqlx.DB) *TeachingAssignmentRepository {
	return &TeachingAssignmentRepository{db: db}
}

// ListByTeacher returns the teacher's assignments with subject names.
func (r *TeachingAssignmentRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.TeachingAssignmentDetail, error) {
	const query = `
SELECT ta.teacher_id, ta.class_id, ta.subject_id, s.name AS subject_name
FROM teaching_assignments ta
JOIN subjects s ON s.id = ta.subject_id
WHERE ta.teacher_id = $1
ORDER BY ta.class_id ASC, s.name ASC`
	var assignments []models.TeachingAssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, teacherID); err != nil {
		return nil, fmt.Errorf("list assignments by teacher: %w", err)
	}
	return assignments, nil
}

// ListByClass returns the assignments held against a classroom.
func (r *TeachingAssignmentRepository) ListByClass(ctx context.Context, classID string) ([]models.TeachingAssignmentDetail, error) {
	const query = `
SELECT ta.teacher_id, ta.class_id, ta.subject_id, s.name AS subject_name
FROM teaching_assignments ta
JOIN subjects s ON s.id = ta.subject_id
WHERE ta.class_id = $1
ORDER BY s.name ASC`
	var assignments []models.TeachingAssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, classID); err != nil {
		return nil, fmt.Errorf("list assignments by class: %w", err)
	}
	return assignments, nil
}

// ExistsForClass checks whether the teacher holds any assignment for the class.
func (r *TeachingAssignmentRepository) ExistsForClass(ctx context.Context, teacherID, classID string) (bool, error) {
	const query = `SELECT 1 FROM teaching_assignments WHERE teacher_id = $1 AND class_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, teacherID, classID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teaching assignment: %w", err)
	}
	return true, nil
}
