package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolconnect/portal-api/internal/models"
	"github.com/schoolconnect/portal-api/internal/policy"
	appErrors "github.com/schoolconnect/portal-api/pkg/errors"
)

type mockReportStore struct {
	byStudent map[string][]models.Report
	upserted  *models.Report
}

func (m *mockReportStore) ListByStudent(ctx context.Context, studentID string) ([]models.Report, error) {
	return m.byStudent[studentID], nil
}

func (m *mockReportStore) Upsert(ctx context.Context, report *models.Report) error {
	m.upserted = report
	return nil
}

func reportFixture() (*ReportService, *mockAuthorizer, *mockReportStore, *mockAudit) {
	authz := &mockAuthorizer{}
	store := &mockReportStore{byStudent: map[string][]models.Report{
		"st1": {{ID: "r1", StudentID: "st1", Term: "HK1", Year: 2025}},
	}}
	audit := &mockAudit{}
	svc := NewReportService(authz, store, audit, nil, nil)
	return svc, authz, store, audit
}

func validUpsertRequest() UpsertReportRequest {
	return UpsertReportRequest{
		ID:        "r1",
		StudentID: "st1",
		Term:      "HK1",
		Year:      2025,
		Records: models.AcademicRecords{
			{SubjectName: "Toán", AverageScore: 8.5, Absences: 1, Conduct: "Tốt"},
		},
		TeacherComments: "Tiến bộ rõ rệt",
	}
}

func TestListReportsByStudent(t *testing.T) {
	svc, authz, _, _ := reportFixture()

	reports, err := svc.ListByStudent(context.Background(), parentClaims("p1"), "st1")
	require.NoError(t, err)
	assert.Equal(t, policy.ActionViewReports, authz.lastAction)
	assert.Equal(t, "st1", authz.lastTarget.StudentID)
	require.Len(t, reports, 1)
	assert.Equal(t, "r1", reports[0].ID)
}

func TestListReportsEmptySliceNotNil(t *testing.T) {
	svc, _, _, _ := reportFixture()

	reports, err := svc.ListByStudent(context.Background(), parentClaims("p1"), "st-no-reports")
	require.NoError(t, err)
	assert.NotNil(t, reports)
	assert.Empty(t, reports)
}

func TestUpsertReport(t *testing.T) {
	svc, authz, store, audit := reportFixture()

	report, err := svc.Upsert(context.Background(), teacherClaims("t1"), validUpsertRequest())
	require.NoError(t, err)
	assert.Equal(t, policy.ActionEditReport, authz.lastAction)
	assert.Equal(t, "r1", report.ID)
	assert.Equal(t, store.upserted, report)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionReportUpsert, audit.logs[0].Action)
}

func TestUpsertReportReplacesDraftID(t *testing.T) {
	svc, _, store, _ := reportFixture()

	req := validUpsertRequest()
	req.ID = "new_report_1718000000"
	report, err := svc.Upsert(context.Background(), teacherClaims("t1"), req)
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(report.ID, "new_report_"))
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, report.ID, store.upserted.ID)
}

func TestUpsertReportRejectsOutOfRangeScore(t *testing.T) {
	svc, authz, _, _ := reportFixture()

	req := validUpsertRequest()
	req.Records = models.AcademicRecords{{SubjectName: "Toán", AverageScore: 11}}
	_, err := svc.Upsert(context.Background(), teacherClaims("t1"), req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Zero(t, authz.calls)
}

func TestUpsertReportForbiddenForSubjectTeacher(t *testing.T) {
	svc, _, store, _ := reportFixture()
	svc.authz.(*mockAuthorizer).err = appErrors.ErrForbidden

	_, err := svc.Upsert(context.Background(), teacherClaims("t2"), validUpsertRequest())
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Nil(t, store.upserted)
}
