package reschedule_test

import (
	"context"
	"testing"
	"time"

	"leave-engine/internal/reschedule"
	"leave-engine/internal/workload"

	"github.com/stretchr/testify/assert"
)

type fakeWorkloadRepository struct {
	teamSizeFn          func(ctx context.Context, companyID, departmentID string) (int, error)
	overlappingLeavesFn func(ctx context.Context, companyID, departmentID, excludeEmployeeID string, start, end time.Time) (int, error)
	criticalTasksFn     func(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]workload.CriticalTask, error)
	avgWeeklyHoursFn    func(ctx context.Context, companyID, departmentID string) (float64, error)
	findEmployeeFn      func(ctx context.Context, companyID, employeeID string) (*workload.EmployeeRef, error)
}

func (f *fakeWorkloadRepository) FindEmployee(ctx context.Context, companyID, employeeID string) (*workload.EmployeeRef, error) {
	if f.findEmployeeFn != nil {
		return f.findEmployeeFn(ctx, companyID, employeeID)
	}
	return &workload.EmployeeRef{}, nil
}

func (f *fakeWorkloadRepository) TeamSize(ctx context.Context, companyID, departmentID string) (int, error) {
	if f.teamSizeFn != nil {
		return f.teamSizeFn(ctx, companyID, departmentID)
	}
	return 5, nil
}

func (f *fakeWorkloadRepository) OverlappingLeaves(ctx context.Context, companyID, departmentID, excludeEmployeeID string, start, end time.Time) (int, error) {
	if f.overlappingLeavesFn != nil {
		return f.overlappingLeavesFn(ctx, companyID, departmentID, excludeEmployeeID, start, end)
	}
	return 0, nil
}

func (f *fakeWorkloadRepository) CriticalTasks(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]workload.CriticalTask, error) {
	if f.criticalTasksFn != nil {
		return f.criticalTasksFn(ctx, companyID, employeeID, start, end)
	}
	return nil, nil
}

func (f *fakeWorkloadRepository) AvgWeeklyHours(ctx context.Context, companyID, departmentID string) (float64, error) {
	if f.avgWeeklyHoursFn != nil {
		return f.avgWeeklyHoursFn(ctx, companyID, departmentID)
	}
	return 40, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func overlaps(a1, a2, b1, b2 time.Time) bool {
	return !(a2.Before(b1) || a1.After(b2))
}

func TestSuggest_RanksConflictFreeWindowFirst(t *testing.T) {
	// One teammate is off during the original week; every other week is
	// clear. The clear windows must score strictly better.
	busyStart := date(2026, 3, 2)
	busyEnd := date(2026, 3, 6)

	repo := &fakeWorkloadRepository{
		overlappingLeavesFn: func(ctx context.Context, companyID, departmentID, excludeEmployeeID string, start, end time.Time) (int, error) {
			if overlaps(start, end, busyStart, busyEnd) {
				return 1, nil
			}
			return 0, nil
		},
	}
	s := reschedule.NewSuggester(repo)

	windows, err := s.Suggest(context.Background(), "c", "e", "d", busyStart, busyEnd, 3)

	assert.NoError(t, err)
	assert.Len(t, windows, 3)
	for _, w := range windows {
		assert.Equal(t, 0.0, w.ConflictScore)
		assert.Equal(t, 0, w.ConflictCount)
		assert.False(t, overlaps(w.StartDate, w.EndDate, busyStart, busyEnd))
	}
}

func TestSuggest_TiesBrokenByEarliestStart(t *testing.T) {
	repo := &fakeWorkloadRepository{}
	s := reschedule.NewSuggester(repo)

	start := date(2026, 3, 2)
	windows, err := s.Suggest(context.Background(), "c", "e", "d", start, date(2026, 3, 6), 3)

	assert.NoError(t, err)
	assert.Len(t, windows, 3)
	for i := 1; i < len(windows); i++ {
		assert.True(t, windows[i-1].StartDate.Before(windows[i].StartDate))
	}
	// Earliest weekday start in the horizon comes first on all-zero
	// scores. Offsets -30 and -29 land on a weekend and are skipped.
	assert.Equal(t, start.AddDate(0, 0, -28), windows[0].StartDate)
}

func TestSuggest_CriticalTaskPenalised(t *testing.T) {
	taskStart := date(2026, 2, 2)
	taskEnd := date(2026, 2, 6)

	repo := &fakeWorkloadRepository{
		criticalTasksFn: func(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]workload.CriticalTask, error) {
			if overlaps(start, end, taskStart, taskEnd) {
				return []workload.CriticalTask{{Title: "quarter close"}}, nil
			}
			return nil, nil
		},
	}
	s := reschedule.NewSuggester(repo)

	windows, err := s.Suggest(context.Background(), "c", "e", "d", date(2026, 2, 3), date(2026, 2, 4), 61)

	assert.NoError(t, err)
	var penalised int
	for _, w := range windows {
		if overlaps(w.StartDate, w.EndDate, taskStart, taskEnd) {
			assert.Equal(t, 20.0, w.ConflictScore)
			assert.Equal(t, 1, w.ConflictCount)
			penalised++
		} else {
			assert.Equal(t, 0.0, w.ConflictScore)
		}
	}
	assert.Greater(t, penalised, 0)
}

func TestSuggest_ExcludesOriginalWindow(t *testing.T) {
	repo := &fakeWorkloadRepository{}
	s := reschedule.NewSuggester(repo)

	start := date(2026, 3, 2)
	windows, err := s.Suggest(context.Background(), "c", "e", "d", start, date(2026, 3, 6), 0)

	assert.NoError(t, err)
	for _, w := range windows {
		assert.NotEqual(t, start, w.StartDate)
	}
}
