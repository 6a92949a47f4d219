package policy

// Action is the closed set of operations the policy engine can authorize.
type Action string

const (
	ActionViewContacts         Action = "ViewContacts"
	ActionSendMessage          Action = "SendMessage"
	ActionViewAnnouncements    Action = "ViewAnnouncements"
	ActionCreateAnnouncement   Action = "CreateAnnouncement"
	ActionViewClassesOwned     Action = "ViewClassesOwned"
	ActionViewStudentsOfClass  Action = "ViewStudentsOfClass"
	ActionAddStudent           Action = "AddStudent"
	ActionEditStudent          Action = "EditStudent"
	ActionDeleteStudent        Action = "DeleteStudent"
	ActionViewReports          Action = "ViewReports"
	ActionEditReport           Action = "EditReport"
	ActionViewInvoices         Action = "ViewInvoices"
	ActionPayInvoice           Action = "PayInvoice"
	ActionViewAllUsers         Action = "ViewAllUsers"
	ActionViewAdminStats       Action = "ViewAdminStats"
	ActionViewSupportRequests  Action = "ViewSupportRequests"
	ActionUpdateSupportRequest Action = "UpdateSupportRequest"
	ActionViewTimetable        Action = "ViewTimetable"
)

// Target names the concrete resource an action is evaluated against. Only
// the fields relevant to the action need to be set.
type Target struct {
	TeacherID  string
	ClassID    string
	StudentID  string
	InvoiceID  string
	ReceiverID string
}
