package salary

import (
	"context"

	"leave-engine/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=salary_repo.go -destination=mock/salary_repo_mock.go -package=mock
type Repository interface {
	// FindCurrentByEmployee returns the salary row with the most recent
	// effective date not in the future.
	FindCurrentByEmployee(ctx context.Context, companyID, employeeID string) (*EmployeeSalary, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindCurrentByEmployee(ctx context.Context, companyID, employeeID string) (*EmployeeSalary, error) {
	var s EmployeeSalary
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("effective_date <= NOW()").
		Order("effective_date DESC").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
