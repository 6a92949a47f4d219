package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolconnect/portal-api/internal/models"
	"github.com/schoolconnect/portal-api/internal/policy"
	appErrors "github.com/schoolconnect/portal-api/pkg/errors"
)

type mockClassResolver struct {
	classes map[string][]models.ClassroomWithRole
}

func (m *mockClassResolver) ClassroomsForTeacher(ctx context.Context, teacherID string) ([]models.ClassroomWithRole, error) {
	return m.classes[teacherID], nil
}

type mockClassReader struct {
	classrooms map[string]models.Classroom
}

func (m *mockClassReader) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	if c, ok := m.classrooms[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

type mockClassStudents struct {
	byClass map[string][]models.Student
}

func (m *mockClassStudents) ListByClass(ctx context.Context, classID string) ([]models.Student, error) {
	return m.byClass[classID], nil
}

func classFixture() (*ClassService, *mockAuthorizer) {
	authz := &mockAuthorizer{}
	resolver := &mockClassResolver{classes: map[string][]models.ClassroomWithRole{
		"t1": {
			{Classroom: models.Classroom{ID: "c1", Name: "10A1"}, TeacherRole: "Chủ nhiệm, GV môn Toán"},
			{Classroom: models.Classroom{ID: "c2", Name: "10A2"}, TeacherRole: "GV môn Toán"},
		},
	}}
	classrooms := &mockClassReader{classrooms: map[string]models.Classroom{
		"c1": {ID: "c1", Name: "10A1", HomeroomTeacherID: "t1"},
	}}
	students := &mockClassStudents{byClass: map[string][]models.Student{
		"c1": {{ID: "st1", FullName: "Bé An", ClassID: "c1"}},
	}}
	svc := NewClassService(authz, resolver, classrooms, students, nil)
	return svc, authz
}

func TestClassesForTeacher(t *testing.T) {
	svc, authz := classFixture()

	classes, err := svc.ClassesForTeacher(context.Background(), teacherClaims("t1"), "t1")
	require.NoError(t, err)
	assert.Equal(t, policy.ActionViewClassesOwned, authz.lastAction)
	assert.Equal(t, "t1", authz.lastTarget.TeacherID)
	require.Len(t, classes, 2)
	assert.Equal(t, "Chủ nhiệm, GV môn Toán", classes[0].TeacherRole)
}

func TestClassesForTeacherEmptySliceNotNil(t *testing.T) {
	svc, _ := classFixture()

	classes, err := svc.ClassesForTeacher(context.Background(), teacherClaims("t-none"), "t-none")
	require.NoError(t, err)
	assert.NotNil(t, classes)
	assert.Empty(t, classes)
}

func TestGetClass(t *testing.T) {
	svc, authz := classFixture()

	classroom, err := svc.Get(context.Background(), teacherClaims("t1"), "c1")
	require.NoError(t, err)
	assert.Equal(t, policy.ActionViewStudentsOfClass, authz.lastAction)
	assert.Equal(t, "10A1", classroom.Name)
}

func TestGetClassMissing(t *testing.T) {
	svc, _ := classFixture()

	_, err := svc.Get(context.Background(), teacherClaims("t1"), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestClassStudents(t *testing.T) {
	svc, authz := classFixture()

	students, err := svc.Students(context.Background(), teacherClaims("t1"), "c1")
	require.NoError(t, err)
	assert.Equal(t, policy.ActionViewStudentsOfClass, authz.lastAction)
	assert.Equal(t, "c1", authz.lastTarget.ClassID)
	require.Len(t, students, 1)
	assert.Equal(t, "st1", students[0].ID)
}

func TestClassStudentsForbidden(t *testing.T) {
	svc, authz := classFixture()
	authz.err = appErrors.ErrForbidden

	_, err := svc.Students(context.Background(), teacherClaims("t2"), "c1")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}
