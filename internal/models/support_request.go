package models

import "time"

// SupportStatus is the closed three-value workflow state of a support
// request. The Vietnamese strings are the canonical wire values expected by
// the existing portal client.
type SupportStatus string

const (
	SupportStatusNew        SupportStatus = "Mới"
	SupportStatusInProgress SupportStatus = "Đang xử lý"
	SupportStatusResolved   SupportStatus = "Đã giải quyết"
)

// Valid reports whether the status is one of the known values.
func (s SupportStatus) Valid() bool {
	switch s {
	case SupportStatusNew, SupportStatusInProgress, SupportStatusResolved:
		return true
	}
	return false
}

// RequesterType distinguishes who filed a support request.
type RequesterType string

const (
	RequesterParent  RequesterType = "PHUHUYNH"
	RequesterTeacher RequesterType = "GIAOVIEN"
)

// SupportRequest is a technical-support ticket. Creation always starts in
// SupportStatusNew; only admins may change status or set the response.
type SupportRequest struct {
	ID            string        `db:"id" json:"id"`
	RequesterID   string        `db:"requester_id" json:"requesterId"`
	RequesterType RequesterType `db:"requester_type" json:"requesterType"`
	Content       string        `db:"content" json:"content"`
	Status        SupportStatus `db:"status" json:"status"`
	Response      string        `db:"response" json:"response,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
}

// SupportRequestDetail joins requester identity for the admin view.
type SupportRequestDetail struct {
	SupportRequest
	RequesterName  string `db:"requester_name" json:"requesterName"`
	RequesterEmail string `db:"requester_email" json:"requesterEmail"`
}
