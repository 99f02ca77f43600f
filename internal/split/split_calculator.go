// Package split turns a leave request's date range into working days and,
// when the balance cannot cover them, an automatic paid/unpaid division.
// The calculator is pure: it never reads or writes the ledger, so calling
// it twice with the same input yields identical output.
package split

import (
	"math"
	"time"

	"leave-engine/internal/calendar"
	"leave-engine/internal/ledger"
	spliterrors "leave-engine/internal/split/errors"

	"github.com/shopspring/decimal"
)

const (
	DurationFullDay = "FULL_DAY"
	DurationHalfDay = "HALF_DAY"
)

type Input struct {
	LeaveType    string
	StartDate    time.Time
	EndDate      time.Time
	DurationType string
	// Holidays are the concrete non-working dates inside the range,
	// already expanded by the calendar package.
	Holidays map[time.Time]struct{}
	// Available is the balance snapshot for the requested type at
	// calculation time. Ignored for unpaid requests.
	Available float64
	// DailyRate prices unpaid days for payroll deduction.
	DailyRate decimal.Decimal
}

type Segment struct {
	SegmentType      string          `json:"segment_type"`
	Days             float64         `json:"days"`
	PayrollDeduction decimal.Decimal `json:"payroll_deduction"`
}

type Plan struct {
	WorkingDays float64   `json:"working_days"`
	NeedsSplit  bool      `json:"needs_split"`
	Segments    []Segment `json:"segments"`
}

// Calculate applies the auto-split rules:
//
//  1. unpaid request: one unpaid segment covering all working days;
//  2. tracked request fitting the balance: one segment, no deduction;
//  3. tracked request exceeding the balance: the available days keep the
//     requested type, the remainder becomes unpaid with a payroll deduction;
//  4. zero balance: the whole request becomes one unpaid segment.
//
// A half-day duration halves the final segment's day count. Every segment
// stays on the half-day grid: a fractional balance is floored to the nearest
// half step before splitting, and the halved segment is snapped back to it.
func Calculate(in Input) (Plan, error) {
	if in.LeaveType != ledger.TypeAnnual && in.LeaveType != ledger.TypeSick && in.LeaveType != ledger.TypeUnpaid {
		return Plan{}, spliterrors.ErrUnknownLeaveType
	}
	if in.DurationType != DurationFullDay && in.DurationType != DurationHalfDay {
		return Plan{}, spliterrors.ErrUnknownDurationType
	}
	if in.StartDate.After(in.EndDate) {
		return Plan{}, spliterrors.ErrInvalidDateRange
	}

	workingDays := calendar.WorkingDays(in.StartDate, in.EndDate, in.Holidays)
	if workingDays == 0 {
		return Plan{}, spliterrors.ErrNoWorkingDays
	}
	days := float64(workingDays)
	// Floored rather than rounded so the paid segment never reserves more
	// than the balance actually holds.
	available := math.Floor(in.Available*2) / 2

	var plan Plan
	switch {
	case in.LeaveType == ledger.TypeUnpaid:
		plan.Segments = []Segment{unpaidSegment(days, in.DailyRate)}

	case days <= available:
		plan.Segments = []Segment{{
			SegmentType:      in.LeaveType,
			Days:             days,
			PayrollDeduction: decimal.Zero,
		}}

	case available <= 0:
		plan.Segments = []Segment{unpaidSegment(days, in.DailyRate)}
		plan.NeedsSplit = true

	default:
		plan.Segments = []Segment{
			{
				SegmentType:      in.LeaveType,
				Days:             available,
				PayrollDeduction: decimal.Zero,
			},
			unpaidSegment(days-available, in.DailyRate),
		}
		plan.NeedsSplit = true
	}

	if in.DurationType == DurationHalfDay {
		last := &plan.Segments[len(plan.Segments)-1]
		last.Days = halfStep(last.Days / 2)
		if last.SegmentType == ledger.TypeUnpaid {
			last.PayrollDeduction = deduction(last.Days, in.DailyRate)
		}
	}

	for _, seg := range plan.Segments {
		plan.WorkingDays = plan.WorkingDays + seg.Days
	}
	return plan, nil
}

// halfStep snaps a day count to the half-day granularity the ledger and the
// segments table track. Never snaps a positive count down to zero.
func halfStep(days float64) float64 {
	snapped := math.Round(days*2) / 2
	if snapped == 0 && days > 0 {
		return 0.5
	}
	return snapped
}

func unpaidSegment(days float64, dailyRate decimal.Decimal) Segment {
	return Segment{
		SegmentType:      ledger.TypeUnpaid,
		Days:             days,
		PayrollDeduction: deduction(days, dailyRate),
	}
}

func deduction(days float64, dailyRate decimal.Decimal) decimal.Decimal {
	return dailyRate.Mul(decimal.NewFromFloat(days)).Round(2)
}
