package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/schoolconnect/portal-api/internal/models"
	"github.com/schoolconnect/portal-api/internal/policy"
	appErrors "github.com/schoolconnect/portal-api/pkg/errors"
)

type classroomResolver interface {
	ClassroomsForTeacher(ctx context.Context, teacherID string) ([]models.ClassroomWithRole, error)
}

type classReader interface {
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
}

type classStudentReader interface {
	ListByClass(ctx context.Context, classID string) ([]models.Student, error)
}

// ClassService exposes the teacher's class list and class rosters.
type ClassService struct {
	authz      authorizer
	resolver   classroomResolver
	classrooms classReader
	students   classStudentReader
	logger     *zap.Logger
}

// NewClassService constructs a ClassService.
func NewClassService(authz authorizer, resolver classroomResolver, classrooms classReader, students classStudentReader, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{authz: authz, resolver: resolver, classrooms: classrooms, students: students, logger: logger}
}

// ClassesForTeacher returns the classrooms of a teacher tagged with the
// teacher's role label. Only the teacher themselves may call it.
func (s *ClassService) ClassesForTeacher(ctx context.Context, principal *models.JWTClaims, teacherID string) ([]models.ClassroomWithRole, error) {
	if err := s.authz.Authorize(ctx, principal, policy.ActionViewClassesOwned, policy.Target{TeacherID: teacherID}); err != nil {
		return nil, err
	}
	classes, err := s.resolver.ClassroomsForTeacher(ctx, principal.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve classrooms")
	}
	if classes == nil {
		classes = []models.ClassroomWithRole{}
	}
	return classes, nil
}

// Get returns one classroom; the caller must be authorized for the class.
func (s *ClassService) Get(ctx context.Context, principal *models.JWTClaims, classID string) (*models.Classroom, error) {
	if err := s.authz.Authorize(ctx, principal, policy.ActionViewStudentsOfClass, policy.Target{ClassID: classID}); err != nil {
		return nil, err
	}
	classroom, err := s.classrooms.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	return classroom, nil
}

// Students lists the roster of a class the teacher has access to.
func (s *ClassService) Students(ctx context.Context, principal *models.JWTClaims, classID string) ([]models.Student, error) {
	if err := s.authz.Authorize(ctx, principal, policy.ActionViewStudentsOfClass, policy.Target{ClassID: classID}); err != nil {
		return nil, err
	}
	students, err := s.students.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if students == nil {
		students = []models.Student{}
	}
	return students, nil
}
