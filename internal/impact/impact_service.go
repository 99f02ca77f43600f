// Package impact scores the operational disruption of a leave window:
// team coverage, productivity loss, critical-task conflicts, and a 0-100
// composite risk score with ranked alternative windows.
package impact

import (
	"context"
	"errors"

	"leave-engine/internal/calendar"
	impacterrors "leave-engine/internal/impact/errors"
	"leave-engine/internal/reschedule"
	"leave-engine/internal/workload"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// Risk score weights. The exact constants are a policy choice; the
	// binding contract is monotonicity: more overlap, a critical task, or
	// higher productivity loss never lowers the score.
	overlapWeight  = 50.0
	criticalWeight = 25.0
	lossWeight     = 25.0

	maxSuggestions = 3

	riskMediumFloor = 30.0
	riskHighFloor   = 60.0
)

//go:generate mockgen -source=impact_service.go -destination=mock/impact_service_mock.go -package=mock
type Service interface {
	Analyze(ctx context.Context, in AnalyzeInput) (Report, error)
}

type service struct {
	workload  workload.Repository
	holidays  calendar.Repository
	suggester reschedule.Suggester
	logger    *zap.Logger
}

func NewService(
	workloadRepo workload.Repository,
	holidayRepo calendar.Repository,
	suggester reschedule.Suggester,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("impact.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("impact.service")
	}
	return &service{
		workload:  workloadRepo,
		holidays:  holidayRepo,
		suggester: suggester,
		logger:    l,
	}
}

func (s *service) Analyze(ctx context.Context, in AnalyzeInput) (Report, error) {
	if in.StartDate.After(in.EndDate) {
		return Report{}, impacterrors.ErrInvalidDateRange
	}

	emp, err := s.workload.FindEmployee(ctx, in.CompanyID, in.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Report{}, impacterrors.ErrEmployeeNotFound
		}
		return Report{}, err
	}
	departmentID := emp.DepartmentID.String()

	teamSize, err := s.workload.TeamSize(ctx, in.CompanyID, departmentID)
	if err != nil {
		return Report{}, err
	}
	if teamSize < 1 {
		teamSize = 1
	}

	overlapping, err := s.workload.OverlappingLeaves(ctx, in.CompanyID, departmentID, in.EmployeeID, in.StartDate, in.EndDate)
	if err != nil {
		return Report{}, err
	}

	tasks, err := s.workload.CriticalTasks(ctx, in.CompanyID, in.EmployeeID, in.StartDate, in.EndDate)
	if err != nil {
		return Report{}, err
	}

	avgHours, err := s.workload.AvgWeeklyHours(ctx, in.CompanyID, departmentID)
	if err != nil {
		return Report{}, err
	}

	holidays, err := s.holidays.FindActiveByCompany(ctx, in.CompanyID)
	if err != nil {
		return Report{}, err
	}
	holidayDates := calendar.HolidayDates(holidays, in.StartDate, in.EndDate)
	workingDays := float64(calendar.WorkingDays(in.StartDate, in.EndDate, holidayDates))

	report := Report{
		TeamSize:          teamSize,
		OverlappingLeaves: overlapping,
		WorkingDays:       workingDays,
	}

	report.CoveragePercent = 100 * float64(teamSize-overlapping) / float64(teamSize)
	if report.CoveragePercent < 0 {
		report.CoveragePercent = 0
	}

	// Hours lost use the department's average contract as the per-employee
	// baseline; capacity spans the same number of leave weeks.
	report.HoursLost = workingDays * avgHours / 5
	weeks := workingDays / 5
	if weeks < 1 {
		weeks = 1
	}
	capacity := float64(teamSize) * avgHours * weeks
	if capacity > 0 {
		report.ProductivityLossPercent = 100 * report.HoursLost / capacity
	}

	for _, t := range tasks {
		report.CriticalTasks = append(report.CriticalTasks, TaskConflict{
			Title:     t.Title,
			StartDate: t.StartDate,
			DueDate:   t.DueDate,
		})
	}
	report.CriticalTaskConflict = len(tasks) > 0

	report.RiskScore = riskScore(overlapping, teamSize, report.CriticalTaskConflict, report.ProductivityLossPercent)
	report.RiskLevel = riskLevel(report.RiskScore)

	windows, err := s.suggester.Suggest(ctx, in.CompanyID, in.EmployeeID, departmentID, in.StartDate, in.EndDate, maxSuggestions)
	if err != nil {
		// Suggestions are advisory; the report is still valid without them.
		s.logger.Warn("reschedule suggestion failed",
			zap.String("employee_id", in.EmployeeID),
			zap.Error(err),
		)
	} else {
		report.SuggestedWindows = windows
	}

	return report, nil
}

func riskScore(overlapping, teamSize int, critical bool, lossPercent float64) float64 {
	peers := teamSize - 1
	if peers < 1 {
		peers = 1
	}
	overlapRatio := float64(overlapping) / float64(peers)
	if overlapRatio > 1 {
		overlapRatio = 1
	}

	lossRatio := lossPercent / 100
	if lossRatio > 1 {
		lossRatio = 1
	}

	score := overlapWeight*overlapRatio + lossWeight*lossRatio
	if critical {
		score += criticalWeight
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

func riskLevel(score float64) string {
	switch {
	case score > riskHighFloor:
		return RiskHigh
	case score >= riskMediumFloor:
		return RiskMedium
	default:
		return RiskLow
	}
}
