package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolconnect/portal-api/internal/models"
	"github.com/schoolconnect/portal-api/internal/policy"
	appErrors "github.com/schoolconnect/portal-api/pkg/errors"
)

type studentStore interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListByParent(ctx context.Context, parentID string) ([]models.Student, error)
	CreateWithParent(ctx context.Context, student *models.Student, parent *models.User) (string, bool, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type studentClassReader interface {
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
}

// AddStudentRequest carries the student fields plus the parent contact
// fields used for the create-or-reuse parent lookup.
type AddStudentRequest struct {
	StudentName        string `json:"studentName" validate:"required"`
	StudentDateOfBirth string `json:"studentDateOfBirth" validate:"required"`
	StudentGender      string `json:"studentGender" validate:"required"`
	ParentName         string `json:"parentName" validate:"required"`
	ParentEmail        string `json:"parentEmail" validate:"required,email"`
	ParentPhone        string `json:"parentPhone" validate:"required"`
}

// UpdateStudentRequest rewrites a student's own fields; parent and class
// links are not mutable through this operation.
type UpdateStudentRequest struct {
	Name        string `json:"name" validate:"required"`
	DateOfBirth string `json:"dateOfBirth" validate:"required"`
	Gender      string `json:"gender" validate:"required"`
}

// StudentService covers the homeroom teacher's roster mutations and the
// parent's children listing.
type StudentService struct {
	authz      authorizer
	students   studentStore
	classrooms studentClassReader
	audit      auditLogger
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(authz authorizer, students studentStore, classrooms studentClassReader, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{authz: authz, students: students, classrooms: classrooms, audit: audit, validator: validate, logger: logger}
}

// Add enrolls a new student into a class the principal is homeroom teacher
// of. When a parent account with the given email already exists it is
// reused; otherwise one is created in the same transaction, so calling this
// twice with the same email never duplicates the parent.
func (s *StudentService) Add(ctx context.Context, principal *models.JWTClaims, classID string, req AddStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	if _, err := s.classrooms.FindByID(ctx, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConstraint, "classId does not reference an existing classroom")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}

	if err := s.authz.Authorize(ctx, principal, policy.ActionAddStudent, policy.Target{ClassID: classID}); err != nil {
		return nil, err
	}

	student := &models.Student{
		FullName:    req.StudentName,
		DateOfBirth: req.StudentDateOfBirth,
		Gender:      req.StudentGender,
		ClassID:     classID,
	}
	parent := &models.User{
		Email:    req.ParentEmail,
		FullName: req.ParentName,
		Phone:    req.ParentPhone,
	}

	parentID, parentCreated, err := s.students.CreateWithParent(ctx, student, parent)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	s.emitAudit(ctx, principal, models.AuditActionStudentCreate, student.ID, nil, map[string]interface{}{
		"studentId":     student.ID,
		"classId":       classID,
		"parentId":      parentID,
		"parentCreated": parentCreated,
	})
	return student, nil
}

// Update rewrites a student's fields; homeroom teacher only.
func (s *StudentService) Update(ctx context.Context, principal *models.JWTClaims, studentID string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if err := s.authz.Authorize(ctx, principal, policy.ActionEditStudent, policy.Target{StudentID: studentID}); err != nil {
		return nil, err
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	old, _ := json.Marshal(student)
	student.FullName = req.Name
	student.DateOfBirth = req.DateOfBirth
	student.Gender = req.Gender

	if err := s.students.Update(ctx, student); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}

	s.emitAuditRaw(ctx, principal, models.AuditActionStudentUpdate, studentID, old, student)
	return student, nil
}

// Delete removes a student from the roster; homeroom teacher only.
func (s *StudentService) Delete(ctx context.Context, principal *models.JWTClaims, studentID string) error {
	if err := s.authz.Authorize(ctx, principal, policy.ActionDeleteStudent, policy.Target{StudentID: studentID}); err != nil {
		return err
	}
	if err := s.students.Delete(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.emitAudit(ctx, principal, models.AuditActionStudentDelete, studentID, nil, nil)
	return nil
}

// Get returns a single student for a class teacher or the student's parent.
func (s *StudentService) Get(ctx context.Context, principal *models.JWTClaims, studentID string) (*models.Student, error) {
	if err := s.authz.Authorize(ctx, principal, policy.ActionViewReports, policy.Target{StudentID: studentID}); err != nil {
		return nil, err
	}
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// ChildrenOfParent lists a parent's own children.
func (s *StudentService) ChildrenOfParent(ctx context.Context, principal *models.JWTClaims, parentID string) ([]models.Student, error) {
	if principal == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if principal.Role != models.RoleParent || principal.UserID != parentID {
		return nil, appErrors.ErrForbidden
	}
	students, err := s.students.ListByParent(ctx, parentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list children")
	}
	if students == nil {
		students = []models.Student{}
	}
	return students, nil
}

func (s *StudentService) emitAudit(ctx context.Context, principal *models.JWTClaims, action models.AuditAction, resourceID string, oldValues []byte, newPayload interface{}) {
	var newValues []byte
	if newPayload != nil {
		newValues, _ = json.Marshal(newPayload)
	}
	s.writeAudit(ctx, principal, action, resourceID, oldValues, newValues)
}

func (s *StudentService) emitAuditRaw(ctx context.Context, principal *models.JWTClaims, action models.AuditAction, resourceID string, oldValues []byte, newPayload interface{}) {
	newValues, _ := json.Marshal(newPayload)
	s.writeAudit(ctx, principal, action, resourceID, oldValues, newValues)
}

func (s *StudentService) writeAudit(ctx context.Context, principal *models.JWTClaims, action models.AuditAction, resourceID string, oldValues, newValues []byte) {
	if s.audit == nil {
		return
	}
	var userID *string
	if principal != nil {
		userID = &principal.UserID
	}
	log := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   "student",
		ResourceID: &resourceID,
		OldValues:  oldValues,
		NewValues:  newValues,
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record student audit", zap.Error(err))
	}
}
