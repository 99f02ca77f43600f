package audit

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionSubmitted           = "LEAVE_SUBMITTED"
	ActionApproved            = "LEAVE_APPROVED"
	ActionPartiallyApproved   = "LEAVE_PARTIALLY_APPROVED"
	ActionRejected            = "LEAVE_REJECTED"
	ActionCancelled           = "LEAVE_CANCELLED"
	ActionBalanceGranted      = "BALANCE_GRANTED"
	ActionAttendanceReconcile = "ATTENDANCE_RECONCILED"
)

// Entry is append-only: rows are never updated or deleted.
type Entry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestID uuid.UUID `gorm:"type:uuid;not null;index"`
	ActorID   uuid.UUID `gorm:"type:uuid;not null"`
	Action    string    `gorm:"type:varchar(40);not null"`
	Detail    string    `gorm:"type:text"`
	CreatedAt time.Time
}

func (Entry) TableName() string {
	return "audit_entries"
}
