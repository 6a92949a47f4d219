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

type mockUserStore struct {
	users map[string]models.User
}

func (m *mockUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func userFixture() (*UserService, *mockAuthorizer) {
	authz := &mockAuthorizer{}
	store := &mockUserStore{users: map[string]models.User{
		"p1": {ID: "p1", Email: "parent@example.com", FullName: "Phụ huynh An", Role: models.RoleParent},
	}}
	return NewUserService(authz, store, nil), authz
}

func TestGetUserSelf(t *testing.T) {
	svc, authz := userFixture()

	user, err := svc.Get(context.Background(), parentClaims("p1"), "p1")
	require.NoError(t, err)
	assert.Equal(t, "parent@example.com", user.Email)
	// Reading your own profile skips the admin gate.
	assert.Zero(t, authz.calls)
}

func TestGetUserAsAdmin(t *testing.T) {
	svc, authz := userFixture()

	user, err := svc.Get(context.Background(), adminClaims("a1"), "p1")
	require.NoError(t, err)
	assert.Equal(t, policy.ActionViewAllUsers, authz.lastAction)
	assert.Equal(t, "p1", user.ID)
}

func TestGetUserOtherForbidden(t *testing.T) {
	svc, authz := userFixture()
	authz.err = appErrors.ErrForbidden

	_, err := svc.Get(context.Background(), teacherClaims("t1"), "p1")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestGetUserMissing(t *testing.T) {
	svc, _ := userFixture()

	_, err := svc.Get(context.Background(), parentClaims("missing"), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestGetUserRequiresPrincipal(t *testing.T) {
	svc, _ := userFixture()

	_, err := svc.Get(context.Background(), nil, "p1")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
