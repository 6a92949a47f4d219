package policy

import (
	"context"
	"database/sql"
	"errors"

	"github.com/schoolconnect/portal-api/internal/models"
	appErrors "github.com/schoolconnect/portal-api/pkg/errors"
)

type relationshipResolver interface {
	IsContact(ctx context.Context, userID string, role models.UserRole, otherID string) (bool, error)
	IsAuthorizedForClass(ctx context.Context, teacherID, classID string) (bool, error)
	IsHomeroomTeacher(ctx context.Context, teacherID, classID string) (bool, error)
}

type studentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type invoiceFinder interface {
	FindByID(ctx context.Context, id string) (*models.Invoice, error)
}

// condition is an extra per-resource check evaluated after the role gate.
// Entities that are structurally required to evaluate the check are resolved
// first, so a dangling identifier surfaces as NotFound while a failed check
// surfaces as Forbidden without disclosing whether the resource exists.
type condition func(ctx context.Context, e *Engine, principal *models.JWTClaims, target Target) error

// Engine evaluates the declarative role × action rule table. Every action's
// rule is declared exactly once so it can be unit-tested independently of
// the operation invoking it.
type Engine struct {
	resolver relationshipResolver
	students studentFinder
	invoices invoiceFinder
}

// NewEngine constructs the policy engine.
func NewEngine(resolver relationshipResolver, students studentFinder, invoices invoiceFinder) *Engine {
	return &Engine{resolver: resolver, students: students, invoices: invoices}
}

// rules maps each action to the roles that may perform it and the extra
// condition each role must satisfy. A nil condition means the role gate
// alone decides.
var rules = map[Action]map[models.UserRole]condition{
	ActionViewContacts: {
		models.RoleTeacher: nil,
		models.RoleParent:  nil,
	},
	ActionViewAnnouncements: {
		models.RoleAdmin:   nil,
		models.RoleTeacher: nil,
		models.RoleParent:  nil,
	},
	ActionViewTimetable: {
		models.RoleTeacher: timetableTeacherAccess,
		models.RoleParent:  parentOfStudent,
	},
	ActionSendMessage: {
		models.RoleTeacher: receiverIsContact,
		models.RoleParent:  receiverIsContact,
	},
	ActionCreateAnnouncement: {
		models.RoleAdmin: nil,
	},
	ActionViewClassesOwned: {
		models.RoleTeacher: teacherIsSelf,
	},
	ActionViewStudentsOfClass: {
		models.RoleTeacher: classAccess,
	},
	ActionAddStudent: {
		models.RoleTeacher: homeroomOfClass,
	},
	ActionEditStudent: {
		models.RoleTeacher: homeroomOfStudentClass,
	},
	ActionDeleteStudent: {
		models.RoleTeacher: homeroomOfStudentClass,
	},
	ActionViewReports: {
		models.RoleParent:  parentOfStudent,
		models.RoleTeacher: studentRecordAccess,
	},
	ActionEditReport: {
		models.RoleTeacher: studentRecordAccess,
	},
	ActionViewInvoices: {
		models.RoleParent: invoiceAccess,
	},
	ActionPayInvoice: {
		models.RoleParent: parentOfInvoice,
	},
	ActionViewAllUsers: {
		models.RoleAdmin: nil,
	},
	ActionViewAdminStats: {
		models.RoleAdmin: nil,
	},
	ActionViewSupportRequests: {
		models.RoleAdmin: nil,
	},
	ActionUpdateSupportRequest: {
		models.RoleAdmin: nil,
	},
}

// Authorize returns nil when the principal may perform action on target,
// ErrForbidden when the rule table denies it, and ErrNotFound when an
// identifier needed to evaluate the rule does not resolve.
func (e *Engine) Authorize(ctx context.Context, principal *models.JWTClaims, action Action, target Target) error {
	if principal == nil {
		return appErrors.ErrUnauthorized
	}
	roleRules, ok := rules[action]
	if !ok {
		return appErrors.ErrForbidden
	}
	cond, ok := roleRules[principal.Role]
	if !ok {
		return appErrors.ErrForbidden
	}
	if cond == nil {
		return nil
	}
	return cond(ctx, e, principal, target)
}

func receiverIsContact(ctx context.Context, e *Engine, principal *models.JWTClaims, target Target) error {
	ok, err := e.resolver.IsContact(ctx, principal.UserID, principal.Role, target.ReceiverID)
	if err != nil {
		return resolveErr(err, "failed to resolve contacts")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrForbidden, "receiver is not a contact")
	}
	return nil
}

func teacherIsSelf(_ context.Context, _ *Engine, principal *models.JWTClaims, target Target) error {
	if target.TeacherID != "" && target.TeacherID != principal.UserID {
		return appErrors.ErrForbidden
	}
	return nil
}

func classAccess(ctx context.Context, e *Engine, principal *models.JWTClaims, target Target) error {
	ok, err := e.resolver.IsAuthorizedForClass(ctx, principal.UserID, target.ClassID)
	if err != nil {
		return resolveErr(err, "failed to verify class access")
	}
	if !ok {
		return appErrors.ErrForbidden
	}
	return nil
}

func homeroomOfClass(ctx context.Context, e *Engine, principal *models.JWTClaims, target Target) error {
	ok, err := e.resolver.IsHomeroomTeacher(ctx, principal.UserID, target.ClassID)
	if err != nil {
		return resolveErr(err, "failed to verify homeroom teacher")
	}
	if !ok {
		return appErrors.ErrForbidden
	}
	return nil
}

// homeroomOfStudentClass applies the identical homeroom check as
// homeroomOfClass, against the classroom of the targeted student.
func homeroomOfStudentClass(ctx context.Context, e *Engine, principal *models.JWTClaims, target Target) error {
	student, err := e.students.FindByID(ctx, target.StudentID)
	if err != nil {
		return resolveErr(err, "failed to load student")
	}
	return homeroomOfClass(ctx, e, principal, Target{ClassID: student.ClassID})
}

func parentOfStudent(ctx context.Context, e *Engine, principal *models.JWTClaims, target Target) error {
	student, err := e.students.FindByID(ctx, target.StudentID)
	if err != nil {
		return resolveErr(err, "failed to load student")
	}
	if student.ParentID != principal.UserID {
		return appErrors.ErrForbidden
	}
	return nil
}

func studentRecordAccess(ctx context.Context, e *Engine, principal *models.JWTClaims, target Target) error {
	student, err := e.students.FindByID(ctx, target.StudentID)
	if err != nil {
		return resolveErr(err, "failed to load student")
	}
	ok, err := e.resolver.IsAuthorizedForClass(ctx, principal.UserID, student.ClassID)
	if err != nil {
		return resolveErr(err, "failed to verify class access")
	}
	if !ok {
		return appErrors.ErrForbidden
	}
	return nil
}

// timetableTeacherAccess covers both timetable shapes: a teacher reading
// their own schedule set, or reading the schedule of a taught student's
// class.
func timetableTeacherAccess(ctx context.Context, e *Engine, principal *models.JWTClaims, target Target) error {
	if target.StudentID != "" {
		return studentRecordAccess(ctx, e, principal, target)
	}
	return teacherIsSelf(ctx, e, principal, target)
}

// invoiceAccess covers both invoice read shapes: listing a student's
// invoices (StudentID set) and reading a single invoice, such as its
// receipt (InvoiceID set).
func invoiceAccess(ctx context.Context, e *Engine, principal *models.JWTClaims, target Target) error {
	if target.InvoiceID != "" {
		return parentOfInvoice(ctx, e, principal, target)
	}
	return parentOfStudent(ctx, e, principal, target)
}

func parentOfInvoice(ctx context.Context, e *Engine, principal *models.JWTClaims, target Target) error {
	invoice, err := e.invoices.FindByID(ctx, target.InvoiceID)
	if err != nil {
		return resolveErr(err, "failed to load invoice")
	}
	return parentOfStudent(ctx, e, principal, Target{StudentID: invoice.StudentID})
}

func resolveErr(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.ErrNotFound
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
