package ledger

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeAnnual = "ANNUAL"
	TypeSick   = "SICK"
	TypeUnpaid = "UNPAID"
)

// LeaveBalance is the authoritative per-employee, per-type balance row.
// UNPAID leave is unlimited and never stored here. Version backs the
// optimistic concurrency check on every mutation.
type LeaveBalance struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_balance_employee_type"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_balance_employee_type"`
	LeaveType  string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_balance_employee_type"`

	Allocated float64 `gorm:"type:numeric(6,1);not null;default:0"`
	Used      float64 `gorm:"type:numeric(6,1);not null;default:0"`
	Pending   float64 `gorm:"type:numeric(6,1);not null;default:0"`

	Version int64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

func (b LeaveBalance) Available() float64 {
	return b.Allocated - b.Used - b.Pending
}

// Tracked reports whether a leave type has a stored balance. UNPAID does
// not: it is unlimited by definition.
func Tracked(leaveType string) bool {
	return leaveType == TypeAnnual || leaveType == TypeSick
}
