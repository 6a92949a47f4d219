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

type timetableStore interface {
	ListEntriesByClass(ctx context.Context, classID string) ([]models.TimetableEntry, error)
}

type timetableStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// TimetableService resolves class schedules for both sides of the portal:
// teachers see the schedule of every class they teach, parents see their
// child's class schedule.
type TimetableService struct {
	authz      authorizer
	resolver   classroomResolver
	timetables timetableStore
	students   timetableStudentReader
	classrooms classReader
	logger     *zap.Logger
}

// NewTimetableService constructs a TimetableService.
func NewTimetableService(authz authorizer, resolver classroomResolver, timetables timetableStore, students timetableStudentReader, classrooms classReader, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		authz:      authz,
		resolver:   resolver,
		timetables: timetables,
		students:   students,
		classrooms: classrooms,
		logger:     logger,
	}
}

// ForTeacher returns one timetable per class the teacher teaches.
func (s *TimetableService) ForTeacher(ctx context.Context, principal *models.JWTClaims, teacherID string) ([]models.Timetable, error) {
	if err := s.authz.Authorize(ctx, principal, policy.ActionViewTimetable, policy.Target{TeacherID: teacherID}); err != nil {
		return nil, err
	}

	classes, err := s.resolver.ClassroomsForTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve classrooms")
	}

	timetables := make([]models.Timetable, 0, len(classes))
	for _, class := range classes {
		entries, err := s.timetables.ListEntriesByClass(ctx, class.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable entries")
		}
		if entries == nil {
			entries = []models.TimetableEntry{}
		}
		timetables = append(timetables, models.Timetable{
			ClassID:   class.ID,
			ClassName: class.Name,
			Entries:   entries,
		})
	}
	return timetables, nil
}

// ForStudent returns the schedule of the student's class; the student's
// parent and teachers of the class may read it.
func (s *TimetableService) ForStudent(ctx context.Context, principal *models.JWTClaims, studentID string) (*models.Timetable, error) {
	if err := s.authz.Authorize(ctx, principal, policy.ActionViewTimetable, policy.Target{StudentID: studentID}); err != nil {
		return nil, err
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	timetable := &models.Timetable{
		StudentID:   student.ID,
		StudentName: student.FullName,
		ClassID:     student.ClassID,
	}
	if classroom, err := s.classrooms.FindByID(ctx, student.ClassID); err == nil {
		timetable.ClassName = classroom.Name
	}

	entries, err := s.timetables.ListEntriesByClass(ctx, student.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable entries")
	}
	if entries == nil {
		entries = []models.TimetableEntry{}
	}
	timetable.Entries = entries
	return timetable, nil
}
