package events

import (
	"time"
)

const LeaveApprovedTopic = "hr.leave.approved.v1"

// ApprovedWindow is one contiguous block of approved leave. The attendance
// reconciliation collaborator turns each window into expected-absence days.
type ApprovedWindow struct {
	SegmentType string    `json:"segment_type"`
	Days        float64   `json:"days"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

// LeaveApprovedEvent announces that an approved leave creates a gap in
// expected attendance.
type LeaveApprovedEvent struct {
	EventType  string           `json:"event_type"`
	RequestID  string           `json:"request_id"`
	CompanyID  string           `json:"company_id"`
	EmployeeID string           `json:"employee_id"`
	Reference  string           `json:"reference"`
	Windows    []ApprovedWindow `json:"windows"`
	CreateOOO  bool             `json:"create_ooo"`
	NotifyTeam bool             `json:"notify_team"`
	ApprovedAt time.Time        `json:"approved_at"`
	OccurredAt time.Time        `json:"occurred_at"`
}
