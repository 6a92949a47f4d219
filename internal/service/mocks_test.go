package service

import (
	"context"

	"github.com/schoolconnect/portal-api/internal/models"
	"github.com/schoolconnect/portal-api/internal/policy"
)

// mockAuthorizer records the last decision request and replies with a fixed
// error, so service tests can verify the gate is consulted without
// re-testing the rule table.
type mockAuthorizer struct {
	err        error
	lastAction policy.Action
	lastTarget policy.Target
	calls      int
}

func (m *mockAuthorizer) Authorize(ctx context.Context, principal *models.JWTClaims, action policy.Action, target policy.Target) error {
	m.calls++
	m.lastAction = action
	m.lastTarget = target
	return m.err
}

type mockAudit struct {
	logs []models.AuditLog
	err  error
}

func (m *mockAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if m.err != nil {
		return m.err
	}
	m.logs = append(m.logs, *log)
	return nil
}

func teacherClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleTeacher}
}

func parentClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleParent}
}

func adminClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleAdmin}
}
