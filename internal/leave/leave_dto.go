package leave

import (
	"time"

	"leave-engine/internal/audit"
	"leave-engine/internal/ledger"
	"leave-engine/internal/split"
)

const (
	SplitProceed         = "PROCEED"
	SplitConvertToUnpaid = "CONVERT_TO_UNPAID"
	SplitReduce          = "REDUCE"
	SplitOverride        = "OVERRIDE"
)

type CalculateRequest struct {
	LeaveType    string `json:"leave_type" binding:"required,oneof=ANNUAL SICK UNPAID"`
	StartDate    string `json:"start_date" binding:"required"`
	EndDate      string `json:"end_date" binding:"required"`
	DurationType string `json:"duration_type" binding:"omitempty,oneof=FULL_DAY HALF_DAY"`
}

type CalculateResponse struct {
	Balance     ledger.SnapshotResponse `json:"balance"`
	WorkingDays float64                 `json:"working_days"`
	NeedsSplit  bool                    `json:"needs_split"`
	Segments    []split.Segment         `json:"segments"`
}

type SubmitRequest struct {
	// EmployeeID is optional: HR may submit on behalf of someone else,
	// everyone else submits for themselves.
	EmployeeID   string `json:"employee_id" binding:"omitempty,uuid"`
	LeaveType    string `json:"leave_type" binding:"required,oneof=ANNUAL SICK UNPAID"`
	StartDate    string `json:"start_date" binding:"required"`
	EndDate      string `json:"end_date" binding:"required"`
	DurationType string `json:"duration_type" binding:"omitempty,oneof=FULL_DAY HALF_DAY"`
	Reason       string `json:"reason" binding:"required,min=3,max=2000"`
	ContactInfo  string `json:"contact_info" binding:"omitempty,max=200"`
	SplitOption  string `json:"split_option" binding:"omitempty,oneof=PROCEED CONVERT_TO_UNPAID REDUCE OVERRIDE"`
}

type ApproveRequest struct {
	ApproveAll bool `json:"approve_all"`
	// Decisions maps segment ID to approve (true) or reject (false).
	// Segments missing from the map are rejected.
	Decisions  map[string]bool `json:"decisions" binding:"omitempty"`
	Comment    string          `json:"comment" binding:"omitempty,max=2000"`
	CreateOOO  bool            `json:"create_ooo"`
	NotifyTeam bool            `json:"notify_team"`
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=2000"`
}

type ImpactPreviewRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
}

type SegmentResponse struct {
	ID               string  `json:"id"`
	SegmentType      string  `json:"segment_type"`
	Days             float64 `json:"days"`
	PayrollDeduction string  `json:"payroll_deduction"`
	Status           string  `json:"status"`
}

type LeaveResponse struct {
	ID              string            `json:"id"`
	Reference       string            `json:"reference"`
	EmployeeID      string            `json:"employee_id"`
	LeaveType       string            `json:"leave_type"`
	StartDate       string            `json:"start_date"`
	EndDate         string            `json:"end_date"`
	DurationType    string            `json:"duration_type"`
	Reason          string            `json:"reason"`
	ContactInfo     string            `json:"contact_info,omitempty"`
	Status          string            `json:"status"`
	Segments        []SegmentResponse `json:"segments"`
	DecidedBy       *string           `json:"decided_by,omitempty"`
	DecidedAt       *time.Time        `json:"decided_at,omitempty"`
	RejectionReason *string           `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

type AuditEntryResponse struct {
	ActorID   string    `json:"actor_id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type LeaveDetailResponse struct {
	LeaveResponse
	EmployeeName string               `json:"employee_name,omitempty"`
	DepartmentID string               `json:"department_id,omitempty"`
	AuditTrail   []AuditEntryResponse `json:"audit_trail"`
}

func toSegmentResponse(seg LeaveSegment) SegmentResponse {
	return SegmentResponse{
		ID:               seg.ID.String(),
		SegmentType:      seg.SegmentType,
		Days:             seg.Days,
		PayrollDeduction: seg.PayrollDeduction.StringFixed(2),
		Status:           seg.Status,
	}
}

func toLeaveResponse(req LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:              req.ID.String(),
		Reference:       req.Reference,
		EmployeeID:      req.EmployeeID.String(),
		LeaveType:       req.LeaveType,
		StartDate:       req.StartDate.Format("2006-01-02"),
		EndDate:         req.EndDate.Format("2006-01-02"),
		DurationType:    req.DurationType,
		Reason:          req.Reason,
		ContactInfo:     req.ContactInfo,
		Status:          req.Status,
		DecidedAt:       req.DecidedAt,
		RejectionReason: req.RejectionReason,
		CreatedAt:       req.CreatedAt,
	}
	if req.DecidedBy != nil {
		deciderID := req.DecidedBy.String()
		resp.DecidedBy = &deciderID
	}
	resp.Segments = make([]SegmentResponse, 0, len(req.Segments))
	for _, seg := range req.Segments {
		resp.Segments = append(resp.Segments, toSegmentResponse(seg))
	}
	return resp
}

func toAuditTrail(entries []audit.Entry) []AuditEntryResponse {
	trail := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		trail = append(trail, AuditEntryResponse{
			ActorID:   e.ActorID.String(),
			Action:    e.Action,
			Detail:    e.Detail,
			CreatedAt: e.CreatedAt,
		})
	}
	return trail
}
