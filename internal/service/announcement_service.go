package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolconnect/portal-api/internal/models"
	"github.com/schoolconnect/portal-api/internal/policy"
	appErrors "github.com/schoolconnect/portal-api/pkg/errors"
)

const announcementsCacheKey = "portal:announcements"

type announcementStore interface {
	List(ctx context.Context) ([]models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
}

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type cacheObserver interface {
	RecordCacheOperation(operation string, hit bool)
}

// CreateAnnouncementRequest is the admin payload for publishing a notice.
type CreateAnnouncementRequest struct {
	Content  string `json:"content" validate:"required"`
	SchoolID string `json:"schoolId" validate:"required"`
}

// AnnouncementService serves the school-wide feed with a cache-aside read
// path and the admin publish operation.
type AnnouncementService struct {
	authz         authorizer
	announcements announcementStore
	cache         cacheStore
	metrics       cacheObserver
	audit         auditLogger
	validator     *validator.Validate
	logger        *zap.Logger
	cacheTTL      time.Duration
}

// NewAnnouncementService constructs an AnnouncementService. cache and
// metrics may be nil, in which case every read goes to the database.
func NewAnnouncementService(authz authorizer, announcements announcementStore, cache cacheStore, metrics cacheObserver, audit auditLogger, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{
		authz:         authz,
		announcements: announcements,
		cache:         cache,
		metrics:       metrics,
		audit:         audit,
		validator:     validate,
		logger:        logger,
		cacheTTL:      cacheTTL,
	}
}

// List returns the feed, newest first. Every authenticated role may read it.
func (s *AnnouncementService) List(ctx context.Context, principal *models.JWTClaims) ([]models.Announcement, error) {
	if err := s.authz.Authorize(ctx, principal, policy.ActionViewAnnouncements, policy.Target{}); err != nil {
		return nil, err
	}

	if s.cache != nil {
		var cached []models.Announcement
		if err := s.cache.Get(ctx, announcementsCacheKey, &cached); err == nil {
			s.observeCache("announcements_list", true)
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("announcement cache read failed", zap.Error(err))
		}
		s.observeCache("announcements_list", false)
	}

	announcements, err := s.announcements.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	if announcements == nil {
		announcements = []models.Announcement{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, announcementsCacheKey, announcements, s.cacheTTL); err != nil {
			s.logger.Warn("announcement cache write failed", zap.Error(err))
		}
	}
	return announcements, nil
}

// Create publishes a new announcement; admin only. The cached feed is
// invalidated so the next read sees it.
func (s *AnnouncementService) Create(ctx context.Context, principal *models.JWTClaims, req CreateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}
	if err := s.authz.Authorize(ctx, principal, policy.ActionCreateAnnouncement, policy.Target{}); err != nil {
		return nil, err
	}

	announcement := &models.Announcement{
		Content:   req.Content,
		SchoolID:  req.SchoolID,
		CreatedBy: principal.UserID,
	}
	if err := s.announcements.Create(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, announcementsCacheKey); err != nil {
			s.logger.Warn("announcement cache invalidation failed", zap.Error(err))
		}
	}

	if s.audit != nil {
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &principal.UserID,
			Action:     models.AuditActionAnnouncementCreate,
			Resource:   "announcement",
			ResourceID: &announcement.ID,
			NewValues:  []byte(`{"schoolId":"` + announcement.SchoolID + `"}`),
		}); err != nil {
			s.logger.Warn("failed to record announcement audit", zap.Error(err))
		}
	}
	return announcement, nil
}

func (s *AnnouncementService) observeCache(operation string, hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(operation, hit)
	}
}
