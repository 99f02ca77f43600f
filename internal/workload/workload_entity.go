package workload

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const PriorityCritical = "CRITICAL"

type CriticalTask struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_tasks_employee_dates"`

	Title    string `gorm:"type:varchar(200);not null"`
	Priority string `gorm:"type:varchar(20);not null;default:'MEDIUM'"`

	StartDate time.Time `gorm:"type:date;not null;index:idx_tasks_employee_dates"`
	DueDate   time.Time `gorm:"type:date;not null;index:idx_tasks_employee_dates"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (CriticalTask) TableName() string {
	return "critical_tasks"
}

// EmployeeRef mirrors the columns of the employees table this package
// reads; the table itself is owned by the employee-management collaborator.
type EmployeeRef struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID    uuid.UUID `gorm:"type:uuid"`
	DepartmentID uuid.UUID `gorm:"type:uuid"`
	FullName     string    `gorm:"column:full_name"`
	WeeklyHours  float64   `gorm:"column:weekly_hours;default:40"`
}

func (EmployeeRef) TableName() string {
	return "employees"
}
