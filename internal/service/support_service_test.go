package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolconnect/portal-api/internal/models"
	"github.com/schoolconnect/portal-api/internal/policy"
	appErrors "github.com/schoolconnect/portal-api/pkg/errors"
)

type mockSupportStore struct {
	requests map[string]models.SupportRequest
	nextID   int
}

func (m *mockSupportStore) Create(ctx context.Context, request *models.SupportRequest) error {
	m.nextID++
	request.ID = fmt.Sprintf("sr%d", m.nextID)
	m.requests[request.ID] = *request
	return nil
}

func (m *mockSupportStore) FindByID(ctx context.Context, id string) (*models.SupportRequest, error) {
	if r, ok := m.requests[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSupportStore) ListAll(ctx context.Context) ([]models.SupportRequestDetail, error) {
	var out []models.SupportRequestDetail
	for _, r := range m.requests {
		out = append(out, models.SupportRequestDetail{SupportRequest: r})
	}
	return out, nil
}

func (m *mockSupportStore) ListByRequester(ctx context.Context, requesterID string) ([]models.SupportRequest, error) {
	var out []models.SupportRequest
	for _, r := range m.requests {
		if r.RequesterID == requesterID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockSupportStore) Update(ctx context.Context, id string, status models.SupportStatus, response string) error {
	request, ok := m.requests[id]
	if !ok {
		return sql.ErrNoRows
	}
	request.Status = status
	request.Response = response
	m.requests[id] = request
	return nil
}

func supportFixture() (*SupportService, *mockAuthorizer, *mockSupportStore, *mockAudit) {
	authz := &mockAuthorizer{}
	store := &mockSupportStore{requests: map[string]models.SupportRequest{
		"sr-open": {
			ID:            "sr-open",
			RequesterID:   "p1",
			RequesterType: models.RequesterParent,
			Content:       "Không xem được hoá đơn",
			Status:        models.SupportStatusNew,
		},
	}}
	audit := &mockAudit{}
	svc := NewSupportService(authz, store, audit, nil, nil)
	return svc, authz, store, audit
}

func TestCreateSupportRequestStartsNew(t *testing.T) {
	svc, _, store, audit := supportFixture()

	request, err := svc.Create(context.Background(), parentClaims("p2"), CreateSupportRequest{Content: "Quên mật khẩu"})
	require.NoError(t, err)
	assert.Equal(t, models.SupportStatusNew, request.Status)
	assert.Equal(t, models.RequesterParent, request.RequesterType)
	assert.Equal(t, "p2", request.RequesterID)
	assert.Contains(t, store.requests, request.ID)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionSupportRequestCreate, audit.logs[0].Action)
}

func TestCreateSupportRequestTeacherType(t *testing.T) {
	svc, _, _, _ := supportFixture()

	request, err := svc.Create(context.Background(), teacherClaims("t1"), CreateSupportRequest{Content: "Lỗi nhập điểm"})
	require.NoError(t, err)
	assert.Equal(t, models.RequesterTeacher, request.RequesterType)
}

func TestCreateSupportRequestAdminForbidden(t *testing.T) {
	svc, _, _, _ := supportFixture()

	_, err := svc.Create(context.Background(), adminClaims("a1"), CreateSupportRequest{Content: "x"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestCreateSupportRequestRequiresPrincipal(t *testing.T) {
	svc, _, _, _ := supportFixture()

	_, err := svc.Create(context.Background(), nil, CreateSupportRequest{Content: "x"})
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestCreateSupportRequestValidatesContent(t *testing.T) {
	svc, _, _, _ := supportFixture()

	_, err := svc.Create(context.Background(), parentClaims("p1"), CreateSupportRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestListOwnSupportRequests(t *testing.T) {
	svc, _, _, _ := supportFixture()

	requests, err := svc.ListOwn(context.Background(), parentClaims("p1"))
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "sr-open", requests[0].ID)

	requests, err = svc.ListOwn(context.Background(), parentClaims("p-other"))
	require.NoError(t, err)
	assert.NotNil(t, requests)
	assert.Empty(t, requests)
}

func TestListAllSupportRequests(t *testing.T) {
	svc, authz, _, _ := supportFixture()

	requests, err := svc.ListAll(context.Background(), adminClaims("a1"))
	require.NoError(t, err)
	assert.Equal(t, policy.ActionViewSupportRequests, authz.lastAction)
	assert.Len(t, requests, 1)
}

func TestUpdateSupportRequest(t *testing.T) {
	svc, authz, store, audit := supportFixture()

	request, err := svc.Update(context.Background(), adminClaims("a1"), "sr-open", UpdateSupportRequest{
		Status:   models.SupportStatusResolved,
		Response: "Đã cấp lại mật khẩu",
	})
	require.NoError(t, err)
	assert.Equal(t, policy.ActionUpdateSupportRequest, authz.lastAction)
	assert.Equal(t, models.SupportStatusResolved, request.Status)
	assert.Equal(t, "Đã cấp lại mật khẩu", request.Response)
	assert.Equal(t, models.SupportStatusResolved, store.requests["sr-open"].Status)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionSupportRequestUpdate, audit.logs[0].Action)
}

func TestUpdateSupportRequestUnknownStatus(t *testing.T) {
	svc, authz, _, _ := supportFixture()

	_, err := svc.Update(context.Background(), adminClaims("a1"), "sr-open", UpdateSupportRequest{Status: "Hoàn tất"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	// Rejected before the policy gate fires.
	assert.Zero(t, authz.calls)
}

func TestUpdateSupportRequestMissing(t *testing.T) {
	svc, _, _, _ := supportFixture()

	_, err := svc.Update(context.Background(), adminClaims("a1"), "missing", UpdateSupportRequest{Status: models.SupportStatusInProgress})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
