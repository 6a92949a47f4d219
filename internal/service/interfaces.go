package service

import (
	"context"

	"github.com/schoolconnect/portal-api/internal/models"
	"github.com/schoolconnect/portal-api/internal/policy"
)

// authorizer is the policy-engine surface the domain operations consume.
type authorizer interface {
	Authorize(ctx context.Context, principal *models.JWTClaims, action policy.Action, target policy.Target) error
}

// auditLogger records mutating operations.
type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}
