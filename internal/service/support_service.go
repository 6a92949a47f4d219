package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolconnect/portal-api/internal/models"
	"github.com/schoolconnect/portal-api/internal/policy"
	appErrors "github.com/schoolconnect/portal-api/pkg/errors"
)

type supportRequestStore interface {
	Create(ctx context.Context, request *models.SupportRequest) error
	FindByID(ctx context.Context, id string) (*models.SupportRequest, error)
	ListAll(ctx context.Context) ([]models.SupportRequestDetail, error)
	ListByRequester(ctx context.Context, requesterID string) ([]models.SupportRequest, error)
	Update(ctx context.Context, id string, status models.SupportStatus, response string) error
}

// CreateSupportRequest is the payload for filing a ticket.
type CreateSupportRequest struct {
	Content string `json:"content" validate:"required"`
}

// UpdateSupportRequest is the admin payload for working a ticket.
type UpdateSupportRequest struct {
	Status   models.SupportStatus `json:"status" validate:"required"`
	Response string               `json:"response"`
}

// SupportService covers the support-ticket workflow: teachers and parents
// file and read their own tickets, admins list and resolve all of them.
type SupportService struct {
	authz     authorizer
	requests  supportRequestStore
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSupportService constructs a SupportService.
func NewSupportService(authz authorizer, requests supportRequestStore, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *SupportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupportService{authz: authz, requests: requests, audit: audit, validator: validate, logger: logger}
}

// Create files a new ticket. Every new ticket starts in SupportStatusNew
// regardless of what the client sends.
func (s *SupportService) Create(ctx context.Context, principal *models.JWTClaims, req CreateSupportRequest) (*models.SupportRequest, error) {
	if principal == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid support request payload")
	}

	var requesterType models.RequesterType
	switch principal.Role {
	case models.RoleParent:
		requesterType = models.RequesterParent
	case models.RoleTeacher:
		requesterType = models.RequesterTeacher
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only teachers and parents may file support requests")
	}

	request := &models.SupportRequest{
		RequesterID:   principal.UserID,
		RequesterType: requesterType,
		Content:       req.Content,
		Status:        models.SupportStatusNew,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create support request")
	}

	s.emitAudit(ctx, principal, models.AuditActionSupportRequestCreate, request.ID, request)
	return request, nil
}

// ListOwn returns the principal's own tickets.
func (s *SupportService) ListOwn(ctx context.Context, principal *models.JWTClaims) ([]models.SupportRequest, error) {
	if principal == nil {
		return nil, appErrors.ErrUnauthorized
	}
	requests, err := s.requests.ListByRequester(ctx, principal.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list support requests")
	}
	if requests == nil {
		requests = []models.SupportRequest{}
	}
	return requests, nil
}

// ListAll returns every ticket with requester identity; admin only.
func (s *SupportService) ListAll(ctx context.Context, principal *models.JWTClaims) ([]models.SupportRequestDetail, error) {
	if err := s.authz.Authorize(ctx, principal, policy.ActionViewSupportRequests, policy.Target{}); err != nil {
		return nil, err
	}
	requests, err := s.requests.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list support requests")
	}
	if requests == nil {
		requests = []models.SupportRequestDetail{}
	}
	return requests, nil
}

// Update moves a ticket through the workflow; admin only. The status must be
// one of the three known values.
func (s *SupportService) Update(ctx context.Context, principal *models.JWTClaims, requestID string, req UpdateSupportRequest) (*models.SupportRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid support request payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown support request status")
	}
	if err := s.authz.Authorize(ctx, principal, policy.ActionUpdateSupportRequest, policy.Target{}); err != nil {
		return nil, err
	}

	if err := s.requests.Update(ctx, requestID, req.Status, req.Response); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update support request")
	}

	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload support request")
	}

	s.emitAudit(ctx, principal, models.AuditActionSupportRequestUpdate, requestID, request)
	return request, nil
}

func (s *SupportService) emitAudit(ctx context.Context, principal *models.JWTClaims, action models.AuditAction, resourceID string, payload interface{}) {
	if s.audit == nil {
		return
	}
	newValues, _ := json.Marshal(payload)
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &principal.UserID,
		Action:     action,
		Resource:   "support_request",
		ResourceID: &resourceID,
		NewValues:  newValues,
	}); err != nil {
		s.logger.Warn("failed to record support request audit", zap.Error(err))
	}
}
