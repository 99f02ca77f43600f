package salary_test

import (
	"context"
	"testing"

	"leave-engine/internal/salary"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeSalaryRepository struct {
	findCurrentFn func(ctx context.Context, companyID, employeeID string) (*salary.EmployeeSalary, error)
}

func (f *fakeSalaryRepository) FindCurrentByEmployee(ctx context.Context, companyID, employeeID string) (*salary.EmployeeSalary, error) {
	return f.findCurrentFn(ctx, companyID, employeeID)
}

func TestSalaryService_DailyRate(t *testing.T) {
	repo := &fakeSalaryRepository{
		findCurrentFn: func(ctx context.Context, companyID, employeeID string) (*salary.EmployeeSalary, error) {
			return &salary.EmployeeSalary{BaseSalary: decimal.NewFromInt(2200)}, nil
		},
	}
	svc := salary.NewService(repo)

	rate, err := svc.DailyRate(context.Background(), "c", "e")

	assert.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(100)))
}

func TestSalaryService_NoSalaryRowZeroRate(t *testing.T) {
	repo := &fakeSalaryRepository{
		findCurrentFn: func(ctx context.Context, companyID, employeeID string) (*salary.EmployeeSalary, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := salary.NewService(repo)

	rate, err := svc.DailyRate(context.Background(), "c", "e")

	assert.NoError(t, err)
	assert.True(t, rate.IsZero())
}
