package leave

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StatusSubmitted         = "SUBMITTED"
	StatusApproved          = "APPROVED"
	StatusPartiallyApproved = "PARTIALLY_APPROVED"
	StatusRejected          = "REJECTED"
	StatusCancelled         = "CANCELLED"
)

const (
	SegmentPending  = "PENDING"
	SegmentApproved = "APPROVED"
	SegmentRejected = "REJECTED"
)

const (
	RoleHR    = "HR"
	RoleAdmin = "ADMIN"
)

type LeaveRequest struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_company_status"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_employee_dates"`

	LeaveType    string    `gorm:"type:varchar(20);not null"`
	StartDate    time.Time `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	EndDate      time.Time `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	DurationType string    `gorm:"type:varchar(20);not null;default:'FULL_DAY'"`
	Reason       string    `gorm:"type:text"`
	ContactInfo  string    `gorm:"type:varchar(200)"`

	Status    string    `gorm:"type:varchar(30);not null;default:'SUBMITTED';index:idx_leave_requests_company_status"`
	Reference string    `gorm:"type:varchar(30);not null;uniqueIndex"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null"`

	DecidedBy       *uuid.UUID `gorm:"type:uuid"`
	DecidedAt       *time.Time
	RejectionReason *string `gorm:"type:text"`

	Segments []LeaveSegment `gorm:"foreignKey:RequestID"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// LeaveSegment is one pay-treatment slice of a request. Segments are frozen
// once the parent request reaches a terminal status.
type LeaveSegment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestID uuid.UUID `gorm:"type:uuid;not null;index"`

	SegmentType      string          `gorm:"type:varchar(20);not null"`
	Days             float64         `gorm:"type:numeric(6,1);not null"`
	PayrollDeduction decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Status           string          `gorm:"type:varchar(20);not null;default:'PENDING'"`

	CreatedAt time.Time
}

func (LeaveSegment) TableName() string {
	return "leave_segments"
}

func isAllowedStatusTransition(currentStatus, targetStatus string) bool {
	if currentStatus != StatusSubmitted {
		return false
	}
	switch targetStatus {
	case StatusApproved, StatusPartiallyApproved, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}
