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

type mockStudentStore struct {
	students      map[string]models.Student
	parentsByMail map[string]string
	created       *models.Student
	createdParent bool
	deleted       []string
}

func (m *mockStudentStore) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentStore) ListByParent(ctx context.Context, parentID string) ([]models.Student, error) {
	var out []models.Student
	for _, s := range m.students {
		if s.ParentID == parentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockStudentStore) CreateWithParent(ctx context.Context, student *models.Student, parent *models.User) (string, bool, error) {
	student.ID = "st-new"
	if id, ok := m.parentsByMail[parent.Email]; ok {
		student.ParentID = id
		m.created = student
		return id, false, nil
	}
	student.ParentID = "p-new"
	m.created = student
	m.createdParent = true
	return "p-new", true, nil
}

func (m *mockStudentStore) Update(ctx context.Context, student *models.Student) error {
	if _, ok := m.students[student.ID]; !ok {
		return sql.ErrNoRows
	}
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.students[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.students, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockStudentClassReader struct {
	classrooms map[string]models.Classroom
}

func (m *mockStudentClassReader) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	if c, ok := m.classrooms[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func addStudentFixture() (*StudentService, *mockAuthorizer, *mockStudentStore, *mockAudit) {
	authz := &mockAuthorizer{}
	store := &mockStudentStore{
		students:      map[string]models.Student{"st1": {ID: "st1", FullName: "Bé An", ParentID: "p1", ClassID: "c1"}},
		parentsByMail: map[string]string{"parent@example.com": "p1"},
	}
	classes := &mockStudentClassReader{classrooms: map[string]models.Classroom{
		"c1": {ID: "c1", Name: "10A1", HomeroomTeacherID: "t1"},
	}}
	audit := &mockAudit{}
	svc := NewStudentService(authz, store, classes, audit, nil, nil)
	return svc, authz, store, audit
}

func validAddRequest() AddStudentRequest {
	return AddStudentRequest{
		StudentName:        "Bé Bình",
		StudentDateOfBirth: "2013-02-15",
		StudentGender:      "Nữ",
		ParentName:         "Phụ huynh Bình",
		ParentEmail:        "parent@example.com",
		ParentPhone:        "0900000001",
	}
}

func TestAddStudentReusesParentByEmail(t *testing.T) {
	svc, authz, store, audit := addStudentFixture()

	student, err := svc.Add(context.Background(), teacherClaims("t1"), "c1", validAddRequest())
	require.NoError(t, err)
	assert.Equal(t, policy.ActionAddStudent, authz.lastAction)
	assert.Equal(t, "c1", authz.lastTarget.ClassID)
	assert.Equal(t, "p1", student.ParentID)
	assert.False(t, store.createdParent)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionStudentCreate, audit.logs[0].Action)
}

func TestAddStudentCreatesParentWhenUnknown(t *testing.T) {
	svc, _, store, _ := addStudentFixture()

	req := validAddRequest()
	req.ParentEmail = "new-parent@example.com"
	student, err := svc.Add(context.Background(), teacherClaims("t1"), "c1", req)
	require.NoError(t, err)
	assert.True(t, store.createdParent)
	assert.Equal(t, "p-new", student.ParentID)
}

func TestAddStudentUnknownClassIsConstraintViolation(t *testing.T) {
	svc, authz, _, _ := addStudentFixture()

	_, err := svc.Add(context.Background(), teacherClaims("t1"), "missing-class", validAddRequest())
	assert.ErrorIs(t, err, appErrors.ErrConstraint)
	// The class reference is checked before the policy gate fires.
	assert.Zero(t, authz.calls)
}

func TestAddStudentForbiddenPropagates(t *testing.T) {
	svc, authz, store, _ := addStudentFixture()
	authz.err = appErrors.ErrForbidden

	_, err := svc.Add(context.Background(), teacherClaims("t2"), "c1", validAddRequest())
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Nil(t, store.created)
}

func TestAddStudentValidatesPayload(t *testing.T) {
	svc, _, _, _ := addStudentFixture()

	req := validAddRequest()
	req.ParentEmail = "not-an-email"
	_, err := svc.Add(context.Background(), teacherClaims("t1"), "c1", req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestUpdateStudent(t *testing.T) {
	svc, authz, store, audit := addStudentFixture()

	student, err := svc.Update(context.Background(), teacherClaims("t1"), "st1", UpdateStudentRequest{
		Name:        "Bé An Sửa",
		DateOfBirth: "2012-09-02",
		Gender:      "Nam",
	})
	require.NoError(t, err)
	assert.Equal(t, policy.ActionEditStudent, authz.lastAction)
	assert.Equal(t, "Bé An Sửa", student.FullName)
	assert.Equal(t, "Bé An Sửa", store.students["st1"].FullName)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionStudentUpdate, audit.logs[0].Action)
	assert.NotEmpty(t, audit.logs[0].OldValues)
}

func TestUpdateStudentMissing(t *testing.T) {
	svc, _, _, _ := addStudentFixture()

	_, err := svc.Update(context.Background(), teacherClaims("t1"), "missing", UpdateStudentRequest{
		Name: "X", DateOfBirth: "2012-01-01", Gender: "Nam",
	})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestDeleteStudent(t *testing.T) {
	svc, authz, store, audit := addStudentFixture()

	require.NoError(t, svc.Delete(context.Background(), teacherClaims("t1"), "st1"))
	assert.Equal(t, policy.ActionDeleteStudent, authz.lastAction)
	assert.Equal(t, []string{"st1"}, store.deleted)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionStudentDelete, audit.logs[0].Action)

	assert.ErrorIs(t, svc.Delete(context.Background(), teacherClaims("t1"), "st1"), appErrors.ErrNotFound)
}

func TestChildrenOfParentSelfOnly(t *testing.T) {
	svc, _, _, _ := addStudentFixture()

	children, err := svc.ChildrenOfParent(context.Background(), parentClaims("p1"), "p1")
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "st1", children[0].ID)

	_, err = svc.ChildrenOfParent(context.Background(), parentClaims("p2"), "p1")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.ChildrenOfParent(context.Background(), nil, "p1")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
