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

// StudentRepository persists the pupil roster.
type StudentRepository struct {
	db      *sqlx.DB
	metrics QueryObserver
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// WithMetrics attaches a query-timing observer. FindByID sits on nearly
// every student-scoped policy decision, so it is the one worth watching.
func (r *StudentRepository) WithMetrics(obs QueryObserver) *StudentRepository {
	r.metrics = obs
	return r
}

const studentColumns = `id, full_name, date_of_birth, gender, parent_id, class_id, avatar_url, created_at, updated_at`

// FindByID returns a student by identifier.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	defer observeQuery(r.metrics, "students_find_by_id", time.Now())
	query := fmt.Sprintf(`SELECT %s FROM students WHERE id = $1 LIMIT 1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by id: %w", err)
	}
	return &student, nil
}

// ListByClass returns the students enrolled in a classroom.
func (r *StudentRepository) ListByClass(ctx context.Context, classID string) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE class_id = $1 ORDER BY full_name ASC`, studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, classID); err != nil {
		return nil, fmt.Errorf("list students by class: %w", err)
	}
	return students, nil
}

// ListByParent returns the children of a parent.
func (r *StudentRepository) ListByParent(ctx context.Context, parentID string) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE parent_id = $1 ORDER BY full_name ASC`, studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, parentID); err != nil {
		return nil, fmt.Errorf("list students by parent: %w", err)
	}
	return students, nil
}

// CreateWithParent inserts a student and, when no parent account matches the
// email case-insensitively, a parent user. Both writes run inside one
// transaction so a failed student insert never leaves an orphaned parent.
// Returns the parent id that ended up referenced and whether it was newly
// created.
func (r *StudentRepository) CreateWithParent(ctx context.Context, student *models.Student, parent *models.User) (parentID string, created bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("begin add-student tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	err = tx.GetContext(ctx, &parentID,
		`SELECT id FROM users WHERE LOWER(email) = LOWER($1) AND role = $2 LIMIT 1`,
		parent.Email, models.RoleParent)
	switch {
	case err == sql.ErrNoRows:
		if parent.ID == "" {
			parent.ID = uuid.NewString()
		}
		now := time.Now().UTC()
		parent.Role = models.RoleParent
		parent.CreatedAt = now
		parent.UpdatedAt = now
		if _, err = tx.NamedExecContext(ctx,
			`INSERT INTO users (id, email, password_hash, full_name, phone, role, avatar_url, created_at, updated_at)
			 VALUES (:id, :email, :password_hash, :full_name, :phone, :role, :avatar_url, :created_at, :updated_at)`,
			parent); err != nil {
			return "", false, fmt.Errorf("create parent user: %w", err)
		}
		parentID = parent.ID
		created = true
	case err != nil:
		return "", false, fmt.Errorf("lookup parent by email: %w", err)
	}

	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	student.ParentID = parentID
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now
	if _, err = tx.NamedExecContext(ctx,
		`INSERT INTO students (id, full_name, date_of_birth, gender, parent_id, class_id, avatar_url, created_at, updated_at)
		 VALUES (:id, :full_name, :date_of_birth, :gender, :parent_id, :class_id, :avatar_url, :created_at, :updated_at)`,
		student); err != nil {
		return "", false, fmt.Errorf("create student: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return "", false, fmt.Errorf("commit add-student tx: %w", err)
	}
	return parentID, created, nil
}

// Update rewrites the mutable student fields.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET full_name = :full_name, date_of_birth = :date_of_birth, gender = :gender, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated student rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a student from the roster.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM students WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted student rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Count returns the total number of students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM students`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}
