package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/schoolconnect/portal-api/internal/models"
)

// ClassroomRepository reads the static classroom roster.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository constructs the repository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

// FindByID returns a classroom by identifier.
func (r *ClassroomRepository) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	const query = `SELECT id, name, homeroom_teacher_id FROM classrooms WHERE id = $1 LIMIT 1`
	var classroom models.Classroom
	if err := r.db.GetContext(ctx, &classroom, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find classroom by id: %w", err)
	}
	return &classroom, nil
}

// ListByHomeroomTeacher returns the classrooms the teacher administers.
func (r *ClassroomRepository) ListByHomeroomTeacher(ctx context.Context, teacherID string) ([]models.Classroom, error) {
	const query = `SELECT id, name, homeroom_teacher_id FROM classrooms WHERE homeroom_teacher_id = $1 ORDER BY name ASC`
	var classrooms []models.Classroom
	if err := r.db.SelectContext(ctx, &classrooms, query, teacherID); err != nil {
		return nil, fmt.Errorf("list homeroom classrooms: %w", err)
	}
	return classrooms, nil
}
