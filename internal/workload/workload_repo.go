package workload

import (
	"context"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=workload_repo.go -destination=mock/workload_repo_mock.go -package=mock
type Repository interface {
	FindEmployee(ctx context.Context, companyID, employeeID string) (*EmployeeRef, error)
	TeamSize(ctx context.Context, companyID, departmentID string) (int, error)
	// OverlappingLeaves counts teammates (excluding one employee) whose
	// submitted or approved leave intersects the window.
	OverlappingLeaves(ctx context.Context, companyID, departmentID, excludeEmployeeID string, start, end time.Time) (int, error)
	CriticalTasks(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]CriticalTask, error)
	AvgWeeklyHours(ctx context.Context, companyID, departmentID string) (float64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindEmployee(ctx context.Context, companyID, employeeID string) (*EmployeeRef, error) {
	var e EmployeeRef
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&e, "id = ?", employeeID).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) TeamSize(ctx context.Context, companyID, departmentID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&EmployeeRef{}).
		Where("company_id = ?", companyID).
		Where("department_id = ?", departmentID).
		Count(&count).Error
	return int(count), err
}

func (r *repository) OverlappingLeaves(ctx context.Context, companyID, departmentID, excludeEmployeeID string, start, end time.Time) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("leave_requests AS lr").
		Joins("JOIN employees e ON e.id = lr.employee_id").
		Where("lr.company_id = ?", companyID).
		Where("e.department_id = ?", departmentID).
		Where("lr.employee_id <> ?", excludeEmployeeID).
		Where("lr.status IN ?", []string{"SUBMITTED", "APPROVED", "PARTIALLY_APPROVED"}).
		Where("NOT (lr.end_date < ? OR lr.start_date > ?)", start, end).
		Distinct("lr.employee_id").
		Count(&count).Error
	return int(count), err
}

func (r *repository) CriticalTasks(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]CriticalTask, error) {
	var tasks []CriticalTask
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID).
		Where("priority = ?", PriorityCritical).
		Where("NOT (due_date < ? OR start_date > ?)", start, end).
		Order("start_date ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *repository) AvgWeeklyHours(ctx context.Context, companyID, departmentID string) (float64, error) {
	var avg float64
	err := r.db.WithContext(ctx).
		Model(&EmployeeRef{}).
		Where("company_id = ?", companyID).
		Where("department_id = ?", departmentID).
		Select("COALESCE(AVG(weekly_hours), 40)").
		Scan(&avg).Error
	return avg, err
}
