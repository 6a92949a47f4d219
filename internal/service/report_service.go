package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/schoolconnect/portal-api/internal/models"
	"github.com/schoolconnect/portal-api/internal/policy"
	appErrors "github.com/schoolconnect/portal-api/pkg/errors"
)

// Report ids carrying this prefix come from clients that composed a report
// locally before it existed server-side; the upsert replaces the prefixed id
// with a real one.
const draftReportIDPrefix = "new_report_"

type reportStore interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Report, error)
	Upsert(ctx context.Context, report *models.Report) error
}

// UpsertReportRequest replaces a report's records and comments wholesale.
type UpsertReportRequest struct {
	ID              string                 `json:"id" validate:"required"`
	StudentID       string                 `json:"studentId" validate:"required"`
	Term            string                 `json:"term" validate:"required"`
	Year            int                    `json:"year" validate:"required"`
	Records         models.AcademicRecords `json:"records"`
	TeacherComments string                 `json:"teacherComments"`
}

// ReportService covers academic report reads and the class teachers'
// report upsert.
type ReportService struct {
	authz     authorizer
	reports   reportStore
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(authz authorizer, reports reportStore, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{authz: authz, reports: reports, audit: audit, validator: validate, logger: logger}
}

// ListByStudent returns a student's reports, newest term first. Teachers of
// the student's class and the student's parent may read them.
func (s *ReportService) ListByStudent(ctx context.Context, principal *models.JWTClaims, studentID string) ([]models.Report, error) {
	if err := s.authz.Authorize(ctx, principal, policy.ActionViewReports, policy.Target{StudentID: studentID}); err != nil {
		return nil, err
	}
	reports, err := s.reports.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}
	if reports == nil {
		reports = []models.Report{}
	}
	return reports, nil
}

// Upsert creates or replaces a report. Any teacher of the student's class
// may write it. Records and comments are replaced wholesale.
func (s *ReportService) Upsert(ctx context.Context, principal *models.JWTClaims, req UpsertReportRequest) (*models.Report, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}
	for _, record := range req.Records {
		if err := record.Validate(); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
	}

	if err := s.authz.Authorize(ctx, principal, policy.ActionEditReport, policy.Target{StudentID: req.StudentID}); err != nil {
		return nil, err
	}

	report := &models.Report{
		ID:              req.ID,
		StudentID:       req.StudentID,
		Term:            req.Term,
		Year:            req.Year,
		Records:         req.Records,
		TeacherComments: req.TeacherComments,
	}
	if strings.HasPrefix(report.ID, draftReportIDPrefix) {
		report.ID = uuid.NewString()
	}

	if err := s.reports.Upsert(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert report")
	}

	if s.audit != nil {
		newValues, _ := json.Marshal(report)
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &principal.UserID,
			Action:     models.AuditActionReportUpsert,
			Resource:   "report",
			ResourceID: &report.ID,
			NewValues:  newValues,
		}); err != nil {
			s.logger.Warn("failed to record report audit", zap.Error(err))
		}
	}
	return report, nil
}
