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

type userStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// UserService exposes user profile reads.
type UserService struct {
	authz  authorizer
	users  userStore
	logger *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(authz authorizer, users userStore, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{authz: authz, users: users, logger: logger}
}

// Get returns a user profile. Users may read their own profile; admins may
// read anyone's.
func (s *UserService) Get(ctx context.Context, principal *models.JWTClaims, userID string) (*models.User, error) {
	if principal == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if principal.UserID != userID {
		if err := s.authz.Authorize(ctx, principal, policy.ActionViewAllUsers, policy.Target{}); err != nil {
			return nil, err
		}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}
