package events

import "time"

const AttendanceReconciliationTopic = "hr.attendance.reconciliation.v1"

// ReconciliationConfirmedEvent is emitted by the attendance collaborator
// once it has absorbed a leave gap into its expected-attendance records.
type ReconciliationConfirmedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id"`
	CompanyID  string    `json:"company_id"`
	EmployeeID string    `json:"employee_id"`
	Detail     string    `json:"detail"`
	OccurredAt time.Time `json:"occurred_at"`
}
