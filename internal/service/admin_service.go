package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/schoolconnect/portal-api/internal/models"
	"github.com/schoolconnect/portal-api/internal/policy"
	appErrors "github.com/schoolconnect/portal-api/pkg/errors"
	"github.com/schoolconnect/portal-api/pkg/export"
)

const adminStatsCacheKey = "portal:admin:stats"

type adminUserStore interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	CountByRole(ctx context.Context, role models.UserRole) (int, error)
}

type studentCounter interface {
	Count(ctx context.Context) (int, error)
}

type pendingSupportCounter interface {
	CountPending(ctx context.Context) (int, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// AdminService covers the admin-only surfaces: user directory, CSV export
// and dashboard counters.
type AdminService struct {
	authz    authorizer
	users    adminUserStore
	students studentCounter
	support  pendingSupportCounter
	cache    cacheStore
	csv      csvRenderer
	logger   *zap.Logger
	statsTTL time.Duration
}

// NewAdminService constructs an AdminService. cache may be nil.
func NewAdminService(authz authorizer, users adminUserStore, students studentCounter, support pendingSupportCounter, cache cacheStore, csv csvRenderer, logger *zap.Logger, statsTTL time.Duration) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		authz:    authz,
		users:    users,
		students: students,
		support:  support,
		cache:    cache,
		csv:      csv,
		logger:   logger,
		statsTTL: statsTTL,
	}
}

// ListUsers returns the filtered, paginated user directory.
func (s *AdminService) ListUsers(ctx context.Context, principal *models.JWTClaims, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	if err := s.authz.Authorize(ctx, principal, policy.ActionViewAllUsers, policy.Target{}); err != nil {
		return nil, nil, err
	}
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown role filter")
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	if users == nil {
		users = []models.User{}
	}
	pagination := &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	}
	return users, pagination, nil
}

// ExportUsersCSV renders the full (unpaginated) user directory as CSV.
func (s *AdminService) ExportUsersCSV(ctx context.Context, principal *models.JWTClaims, filter models.UserFilter) ([]byte, error) {
	if err := s.authz.Authorize(ctx, principal, policy.ActionViewAllUsers, policy.Target{}); err != nil {
		return nil, err
	}

	filter.Page = 0
	filter.PageSize = 0
	users, _, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	dataset := export.Dataset{
		Headers: []string{"ID", "Email", "Name", "Phone", "Role"},
	}
	for _, user := range users {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":    user.ID,
			"Email": user.Email,
			"Name":  user.FullName,
			"Phone": user.Phone,
			"Role":  string(user.Role),
		})
	}

	rendered, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return rendered, nil
}

// Stats returns the dashboard counters, cached for a short window since the
// dashboard polls them.
func (s *AdminService) Stats(ctx context.Context, principal *models.JWTClaims) (*models.AdminStats, error) {
	if err := s.authz.Authorize(ctx, principal, policy.ActionViewAdminStats, policy.Target{}); err != nil {
		return nil, err
	}

	if s.cache != nil {
		var cached models.AdminStats
		if err := s.cache.Get(ctx, adminStatsCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	stats := &models.AdminStats{}
	var err error
	if stats.TotalTeachers, err = s.users.CountByRole(ctx, models.RoleTeacher); err != nil {
		return nil, s.statsError("teachers", err)
	}
	if stats.TotalParents, err = s.users.CountByRole(ctx, models.RoleParent); err != nil {
		return nil, s.statsError("parents", err)
	}
	if stats.TotalStudents, err = s.students.Count(ctx); err != nil {
		return nil, s.statsError("students", err)
	}
	if stats.PendingSupportRequests, err = s.support.CountPending(ctx); err != nil {
		return nil, s.statsError("support requests", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, adminStatsCacheKey, stats, s.statsTTL); err != nil {
			s.logger.Warn("admin stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

func (s *AdminService) statsError(what string, err error) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to count %s", what))
}
