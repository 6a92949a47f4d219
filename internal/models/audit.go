package models

import "time"

// AuditAction labels a recorded mutation.
type AuditAction string

const (
	AuditActionLogin                AuditAction = "LOGIN"
	AuditActionStudentCreate        AuditAction = "STUDENT_CREATE"
	AuditActionStudentUpdate        AuditAction = "STUDENT_UPDATE"
	AuditActionStudentDelete        AuditAction = "STUDENT_DELETE"
	AuditActionReportUpsert         AuditAction = "REPORT_UPSERT"
	AuditActionInvoicePay           AuditAction = "INVOICE_PAY"
	AuditActionAnnouncementCreate   AuditAction = "ANNOUNCEMENT_CREATE"
	AuditActionSupportRequestCreate AuditAction = "SUPPORT_REQUEST_CREATE"
	AuditActionSupportRequestUpdate AuditAction = "SUPPORT_REQUEST_UPDATE"
)

// AuditLog is an append-only record of a mutating operation.
type AuditLog struct {
	ID         string      `db:"id" json:"id"`
	UserID     *string     `db:"user_id" json:"user_id,omitempty"`
	Action     AuditAction `db:"action" json:"action"`
	Resource   string      `db:"resource" json:"resource"`
	ResourceID *string     `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte      `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte      `db:"new_values" json:"new_values,omitempty"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
}
