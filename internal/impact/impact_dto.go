package impact

import (
	"time"

	"leave-engine/internal/reschedule"
)

const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

type AnalyzeInput struct {
	CompanyID  string
	EmployeeID string
	StartDate  time.Time
	EndDate    time.Time
}

type TaskConflict struct {
	Title     string    `json:"title"`
	StartDate time.Time `json:"start_date"`
	DueDate   time.Time `json:"due_date"`
}

// Report is computed on demand and never persisted; staleness is avoided
// by recomputing from current data on every call.
type Report struct {
	RiskScore float64 `json:"risk_score"`
	RiskLevel string  `json:"risk_level"`

	TeamSize          int     `json:"team_size"`
	OverlappingLeaves int     `json:"overlapping_leaves"`
	CoveragePercent   float64 `json:"coverage_percent"`

	WorkingDays             float64 `json:"working_days"`
	HoursLost               float64 `json:"hours_lost"`
	ProductivityLossPercent float64 `json:"productivity_loss_percent"`

	CriticalTaskConflict bool           `json:"critical_task_conflict"`
	CriticalTasks        []TaskConflict `json:"critical_tasks"`

	SuggestedWindows []reschedule.SuggestedWindow `json:"suggested_windows"`
}
