package calendar

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Holiday struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index:idx_holidays_company_date"`

	Title       string    `gorm:"type:varchar(200);not null"`
	HolidayDate time.Time `gorm:"type:date;not null;index:idx_holidays_company_date"`

	// Recurring holidays repeat every year on the same month and day.
	RecurringYearly bool `gorm:"not null;default:false"`
	IsActive        bool `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Holiday) TableName() string {
	return "holidays"
}
