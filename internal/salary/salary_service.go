package salary

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// workingDaysPerMonth converts a monthly base salary into a daily rate.
var workingDaysPerMonth = decimal.NewFromInt(22)

//go:generate mockgen -source=salary_service.go -destination=mock/salary_service_mock.go -package=mock
type Service interface {
	// DailyRate prices one working day for the employee. Employees with no
	// salary row get a zero rate: their unpaid segments carry no deduction.
	DailyRate(ctx context.Context, companyID, employeeID string) (decimal.Decimal, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("salary.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("salary.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) DailyRate(ctx context.Context, companyID, employeeID string) (decimal.Decimal, error) {
	row, err := s.repo.FindCurrentByEmployee(ctx, companyID, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("no salary row for employee, zero daily rate",
				zap.String("employee_id", employeeID),
			)
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return row.BaseSalary.Div(workingDaysPerMonth).Round(2), nil
}
