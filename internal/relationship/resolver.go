package relationship

import (
	"context"
	"fmt"
	"strings"

	"github.com/schoolconnect/portal-api/internal/models"
)

// Role labels shown next to a classroom in the teacher's class list. The
// Vietnamese strings are the wire values expected by the portal client.
const (
	LabelHomeroom       = "Chủ nhiệm"
	labelSubjectPattern = "GV môn %s"
)

type classroomReader interface {
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
	ListByHomeroomTeacher(ctx context.Context, teacherID string) ([]models.Classroom, error)
}

type assignmentReader interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.TeachingAssignmentDetail, error)
	ListByClass(ctx context.Context, classID string) ([]models.TeachingAssignmentDetail, error)
	ExistsForClass(ctx context.Context, teacherID, classID string) (bool, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListByClass(ctx context.Context, classID string) ([]models.Student, error)
	ListByParent(ctx context.Context, parentID string) ([]models.Student, error)
}

type userReader interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

// Resolver computes derived relationships between users, classrooms and
// students. All methods are pure reads over repository snapshots; the
// principal is always passed in explicitly, never taken from ambient state.
type Resolver struct {
	classrooms  classroomReader
	assignments assignmentReader
	students    studentReader
	users       userReader
}

// NewResolver constructs a Resolver.
func NewResolver(classrooms classroomReader, assignments assignmentReader, students studentReader, users userReader) *Resolver {
	return &Resolver{
		classrooms:  classrooms,
		assignments: assignments,
		students:    students,
		users:       users,
	}
}

// ClassroomsForTeacher returns every classroom the teacher is related to,
// tagged with a role label. The homeroom label always sorts first; subject
// labels are deduplicated per subject and comma-joined.
func (r *Resolver) ClassroomsForTeacher(ctx context.Context, teacherID string) ([]models.ClassroomWithRole, error) {
	homerooms, err := r.classrooms.ListByHomeroomTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list homeroom classes: %w", err)
	}
	assignments, err := r.assignments.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list teaching assignments: %w", err)
	}

	order := make([]string, 0, len(homerooms)+len(assignments))
	byID := make(map[string]*models.ClassroomWithRole)
	subjectSeen := make(map[string]map[string]bool)

	for i := range homerooms {
		c := homerooms[i]
		order = append(order, c.ID)
		byID[c.ID] = &models.ClassroomWithRole{Classroom: c, TeacherRole: LabelHomeroom}
	}

	for _, a := range assignments {
		entry, ok := byID[a.ClassID]
		if !ok {
			classroom, err := r.classrooms.FindByID(ctx, a.ClassID)
			if err != nil {
				return nil, fmt.Errorf("resolve assigned class %s: %w", a.ClassID, err)
			}
			entry = &models.ClassroomWithRole{Classroom: *classroom}
			order = append(order, a.ClassID)
			byID[a.ClassID] = entry
		}
		if subjectSeen[a.ClassID] == nil {
			subjectSeen[a.ClassID] = make(map[string]bool)
		}
		if subjectSeen[a.ClassID][a.SubjectName] {
			continue
		}
		subjectSeen[a.ClassID][a.SubjectName] = true
		label := fmt.Sprintf(labelSubjectPattern, a.SubjectName)
		if entry.TeacherRole == "" {
			entry.TeacherRole = label
		} else {
			entry.TeacherRole = strings.Join([]string{entry.TeacherRole, label}, ", ")
		}
	}

	result := make([]models.ClassroomWithRole, 0, len(order))
	for _, id := range order {
		result = append(result, *byID[id])
	}
	return result, nil
}

// ContactsFor returns the users the principal may exchange messages with.
// For a parent: every homeroom and subject teacher across the classrooms of
// their children. For a teacher: every parent of students in the classrooms
// returned by ClassroomsForTeacher. The relation is symmetric by
// construction. Admins have no messaging contacts.
func (r *Resolver) ContactsFor(ctx context.Context, userID string, role models.UserRole) ([]models.User, error) {
	var ids []string
	var err error
	switch role {
	case models.RoleParent:
		ids, err = r.teacherIDsForParent(ctx, userID)
	case models.RoleTeacher:
		ids, err = r.parentIDsForTeacher(ctx, userID)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	users, err := r.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve contact users: %w", err)
	}
	return users, nil
}

// IsContact reports whether other is among the principal's contacts.
func (r *Resolver) IsContact(ctx context.Context, userID string, role models.UserRole, otherID string) (bool, error) {
	contacts, err := r.ContactsFor(ctx, userID, role)
	if err != nil {
		return false, err
	}
	for _, c := range contacts {
		if c.ID == otherID {
			return true, nil
		}
	}
	return false, nil
}

// IsAuthorizedForClass reports whether the teacher is the homeroom teacher
// of the class or holds a teaching assignment for it.
func (r *Resolver) IsAuthorizedForClass(ctx context.Context, teacherID, classID string) (bool, error) {
	classroom, err := r.classrooms.FindByID(ctx, classID)
	if err != nil {
		return false, err
	}
	if classroom.HomeroomTeacherID == teacherID {
		return true, nil
	}
	return r.assignments.ExistsForClass(ctx, teacherID, classID)
}

// IsAuthorizedForStudentRecords reports whether the teacher may view or edit
// the academic records of the student, via class authorization.
func (r *Resolver) IsAuthorizedForStudentRecords(ctx context.Context, teacherID, studentID string) (bool, error) {
	student, err := r.students.FindByID(ctx, studentID)
	if err != nil {
		return false, err
	}
	return r.IsAuthorizedForClass(ctx, teacherID, student.ClassID)
}

// IsHomeroomTeacher is the stricter check used for roster mutations: only
// the classroom's homeroom teacher qualifies, subject assignments do not.
func (r *Resolver) IsHomeroomTeacher(ctx context.Context, teacherID, classID string) (bool, error) {
	classroom, err := r.classrooms.FindByID(ctx, classID)
	if err != nil {
		return false, err
	}
	return classroom.HomeroomTeacherID == teacherID, nil
}

func (r *Resolver) teacherIDsForParent(ctx context.Context, parentID string) ([]string, error) {
	children, err := r.students.ListByParent(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}

	seenClass := make(map[string]bool)
	seenTeacher := make(map[string]bool)
	var ids []string
	for _, child := range children {
		if seenClass[child.ClassID] {
			continue
		}
		seenClass[child.ClassID] = true

		classroom, err := r.classrooms.FindByID(ctx, child.ClassID)
		if err != nil {
			return nil, fmt.Errorf("resolve class %s: %w", child.ClassID, err)
		}
		if !seenTeacher[classroom.HomeroomTeacherID] {
			seenTeacher[classroom.HomeroomTeacherID] = true
			ids = append(ids, classroom.HomeroomTeacherID)
		}

		assignments, err := r.assignments.ListByClass(ctx, child.ClassID)
		if err != nil {
			return nil, fmt.Errorf("list assignments of class %s: %w", child.ClassID, err)
		}
		for _, a := range assignments {
			if !seenTeacher[a.TeacherID] {
				seenTeacher[a.TeacherID] = true
				ids = append(ids, a.TeacherID)
			}
		}
	}
	return ids, nil
}

func (r *Resolver) parentIDsForTeacher(ctx context.Context, teacherID string) ([]string, error) {
	classes, err := r.ClassroomsForTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var ids []string
	for _, class := range classes {
		students, err := r.students.ListByClass(ctx, class.ID)
		if err != nil {
			return nil, fmt.Errorf("list students of class %s: %w", class.ID, err)
		}
		for _, s := range students {
			if !seen[s.ParentID] {
				seen[s.ParentID] = true
				ids = append(ids, s.ParentID)
			}
		}
	}
	return ids, nil
}
