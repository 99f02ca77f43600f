package salary

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EmployeeSalary struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	EmployeeID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	BaseSalary    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	EffectiveDate time.Time       `gorm:"type:date;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (EmployeeSalary) TableName() string {
	return "employee_salaries"
}
