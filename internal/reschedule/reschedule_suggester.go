// Package reschedule scans a bounded horizon around a requested leave
// window for alternate windows of the same length with fewer conflicts.
// Team sizes and the horizon are small, so a plain day-step scan is enough.
package reschedule

import (
	"context"
	"sort"
	"time"

	"leave-engine/internal/workload"

	"go.uber.org/zap"
)

const (
	// horizonDays bounds the scan to ±30 days around the original start.
	horizonDays = 30
	// criticalTaskPenalty is added to the conflict score per window that
	// intersects a critical-priority task.
	criticalTaskPenalty = 20.0
)

type SuggestedWindow struct {
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	ConflictScore float64   `json:"conflict_score"`
	ConflictCount int       `json:"conflict_count"`
}

//go:generate mockgen -source=reschedule_suggester.go -destination=mock/reschedule_suggester_mock.go -package=mock
type Suggester interface {
	// Suggest returns up to limit candidate windows, best (lowest conflict
	// score) first, ties broken by earliest start. The requester's own
	// leave never counts as a conflict.
	Suggest(ctx context.Context, companyID, employeeID, departmentID string, start, end time.Time, limit int) ([]SuggestedWindow, error)
}

type suggester struct {
	workload workload.Repository
	logger   *zap.Logger
}

func NewSuggester(repo workload.Repository, logger ...*zap.Logger) Suggester {
	l := zap.L().Named("reschedule.suggester")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("reschedule.suggester")
	}
	return &suggester{workload: repo, logger: l}
}

func (s *suggester) Suggest(ctx context.Context, companyID, employeeID, departmentID string, start, end time.Time, limit int) ([]SuggestedWindow, error) {
	teamSize, err := s.workload.TeamSize(ctx, companyID, departmentID)
	if err != nil {
		return nil, err
	}
	peers := teamSize - 1
	if peers < 1 {
		peers = 1
	}

	var candidates []SuggestedWindow
	for offset := -horizonDays; offset <= horizonDays; offset++ {
		if offset == 0 {
			continue // the original window is not an alternative
		}

		candStart := start.AddDate(0, 0, offset)
		candEnd := end.AddDate(0, 0, offset)
		if candStart.Weekday() == time.Saturday || candStart.Weekday() == time.Sunday {
			continue
		}

		overlaps, err := s.workload.OverlappingLeaves(ctx, companyID, departmentID, employeeID, candStart, candEnd)
		if err != nil {
			return nil, err
		}
		tasks, err := s.workload.CriticalTasks(ctx, companyID, employeeID, candStart, candEnd)
		if err != nil {
			return nil, err
		}

		score := 80.0 * float64(overlaps) / float64(peers)
		if len(tasks) > 0 {
			score += criticalTaskPenalty
		}
		if score > 100 {
			score = 100
		}

		candidates = append(candidates, SuggestedWindow{
			StartDate:     candStart,
			EndDate:       candEnd,
			ConflictScore: score,
			ConflictCount: overlaps + len(tasks),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].ConflictScore != candidates[j].ConflictScore {
			return candidates[i].ConflictScore < candidates[j].ConflictScore
		}
		return candidates[i].StartDate.Before(candidates[j].StartDate)
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}
