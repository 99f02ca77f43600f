package split_test

import (
	"testing"
	"time"

	"leave-engine/internal/ledger"
	"leave-engine/internal/split"
	spliterrors "leave-engine/internal/split/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Mon 2026-03-02 through Fri 2026-03-06: five working days.
func fiveDayInput(leaveType string, available float64) split.Input {
	return split.Input{
		LeaveType:    leaveType,
		StartDate:    date(2026, 3, 2),
		EndDate:      date(2026, 3, 6),
		DurationType: split.DurationFullDay,
		Available:    available,
		DailyRate:    decimal.NewFromInt(100),
	}
}

func TestCalculate_SingleSegmentWithinBalance(t *testing.T) {
	plan, err := split.Calculate(fiveDayInput(ledger.TypeAnnual, 10))

	assert.NoError(t, err)
	assert.False(t, plan.NeedsSplit)
	assert.Len(t, plan.Segments, 1)
	assert.Equal(t, ledger.TypeAnnual, plan.Segments[0].SegmentType)
	assert.Equal(t, 5.0, plan.Segments[0].Days)
	assert.True(t, plan.Segments[0].PayrollDeduction.IsZero())
}

func TestCalculate_AutoSplit(t *testing.T) {
	// 5 available, 12 working days requested: 5 paid + 7 unpaid.
	in := split.Input{
		LeaveType:    ledger.TypeAnnual,
		StartDate:    date(2026, 3, 2),
		EndDate:      date(2026, 3, 17), // 16 calendar days, 12 working days
		DurationType: split.DurationFullDay,
		Available:    5,
		DailyRate:    decimal.NewFromInt(100),
	}

	plan, err := split.Calculate(in)

	assert.NoError(t, err)
	assert.True(t, plan.NeedsSplit)
	assert.Len(t, plan.Segments, 2)
	assert.Equal(t, ledger.TypeAnnual, plan.Segments[0].SegmentType)
	assert.Equal(t, 5.0, plan.Segments[0].Days)
	assert.Equal(t, ledger.TypeUnpaid, plan.Segments[1].SegmentType)
	assert.Equal(t, 7.0, plan.Segments[1].Days)
	assert.True(t, plan.Segments[1].PayrollDeduction.Equal(decimal.NewFromInt(700)))
	assert.Equal(t, 12.0, plan.Segments[0].Days+plan.Segments[1].Days)
}

func TestCalculate_ZeroBalanceAllUnpaid(t *testing.T) {
	plan, err := split.Calculate(fiveDayInput(ledger.TypeAnnual, 0))

	assert.NoError(t, err)
	assert.True(t, plan.NeedsSplit)
	assert.Len(t, plan.Segments, 1)
	assert.Equal(t, ledger.TypeUnpaid, plan.Segments[0].SegmentType)
	assert.Equal(t, 5.0, plan.Segments[0].Days)
	assert.True(t, plan.Segments[0].PayrollDeduction.Equal(decimal.NewFromInt(500)))
}

func TestCalculate_UnpaidRequestNeverSplits(t *testing.T) {
	plan, err := split.Calculate(fiveDayInput(ledger.TypeUnpaid, 10))

	assert.NoError(t, err)
	assert.False(t, plan.NeedsSplit)
	assert.Len(t, plan.Segments, 1)
	assert.Equal(t, ledger.TypeUnpaid, plan.Segments[0].SegmentType)
	assert.True(t, plan.Segments[0].PayrollDeduction.Equal(decimal.NewFromInt(500)))
}

func TestCalculate_HolidaysExcluded(t *testing.T) {
	in := fiveDayInput(ledger.TypeAnnual, 10)
	in.Holidays = map[time.Time]struct{}{
		date(2026, 3, 4): {},
	}

	plan, err := split.Calculate(in)

	assert.NoError(t, err)
	assert.Equal(t, 4.0, plan.WorkingDays)
}

func TestCalculate_HalfDayHalvesFinalSegment(t *testing.T) {
	in := split.Input{
		LeaveType:    ledger.TypeAnnual,
		StartDate:    date(2026, 3, 2),
		EndDate:      date(2026, 3, 2),
		DurationType: split.DurationHalfDay,
		Available:    10,
		DailyRate:    decimal.NewFromInt(100),
	}

	plan, err := split.Calculate(in)

	assert.NoError(t, err)
	assert.Equal(t, 0.5, plan.Segments[0].Days)
	assert.Equal(t, 0.5, plan.WorkingDays)
}

func TestCalculate_FractionalBalanceFlooredToHalfStep(t *testing.T) {
	plan, err := split.Calculate(fiveDayInput(ledger.TypeAnnual, 2.3))

	assert.NoError(t, err)
	assert.True(t, plan.NeedsSplit)
	assert.Equal(t, 2.0, plan.Segments[0].Days)
	assert.Equal(t, 3.0, plan.Segments[1].Days)
}

func TestCalculate_HalfDayOnSplitStaysOnHalfDayGrid(t *testing.T) {
	in := fiveDayInput(ledger.TypeAnnual, 2.5)
	in.DurationType = split.DurationHalfDay

	plan, err := split.Calculate(in)

	assert.NoError(t, err)
	assert.Equal(t, 2.5, plan.Segments[0].Days)
	// Halving the 2.5 unpaid days would give 1.25; the segment snaps back
	// to the grid with a matching deduction.
	assert.Equal(t, 1.5, plan.Segments[1].Days)
	assert.True(t, plan.Segments[1].PayrollDeduction.Equal(decimal.NewFromInt(150)))
}

func TestCalculate_InvalidDateRange(t *testing.T) {
	in := fiveDayInput(ledger.TypeAnnual, 10)
	in.StartDate = date(2026, 3, 9)

	_, err := split.Calculate(in)

	assert.ErrorIs(t, err, spliterrors.ErrInvalidDateRange)
}

func TestCalculate_WeekendOnlyRangeRejected(t *testing.T) {
	in := fiveDayInput(ledger.TypeAnnual, 10)
	in.StartDate = date(2026, 3, 7)
	in.EndDate = date(2026, 3, 8)

	_, err := split.Calculate(in)

	assert.ErrorIs(t, err, spliterrors.ErrNoWorkingDays)
}

func TestCalculate_UnknownLeaveType(t *testing.T) {
	in := fiveDayInput("SABBATICAL", 10)

	_, err := split.Calculate(in)

	assert.ErrorIs(t, err, spliterrors.ErrUnknownLeaveType)
}

func TestCalculate_Idempotent(t *testing.T) {
	in := fiveDayInput(ledger.TypeAnnual, 3)

	first, err1 := split.Calculate(in)
	second, err2 := split.Calculate(in)

	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.Equal(t, first, second)
}

func TestCalculate_SickTypeSplitsLikeAnnual(t *testing.T) {
	plan, err := split.Calculate(fiveDayInput(ledger.TypeSick, 2))

	assert.NoError(t, err)
	assert.True(t, plan.NeedsSplit)
	assert.Equal(t, ledger.TypeSick, plan.Segments[0].SegmentType)
	assert.Equal(t, 2.0, plan.Segments[0].Days)
	assert.Equal(t, 3.0, plan.Segments[1].Days)
}
