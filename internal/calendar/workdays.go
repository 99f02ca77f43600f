package calendar

import "time"

// HolidayDates expands the configured holidays into concrete dates inside
// [start, end]. Recurring holidays contribute one date per matching year.
func HolidayDates(holidays []Holiday, start, end time.Time) map[time.Time]struct{} {
	dates := make(map[time.Time]struct{})
	for _, h := range holidays {
		d := truncateDay(h.HolidayDate)
		if h.RecurringYearly {
			for year := start.Year(); year <= end.Year(); year++ {
				occ := time.Date(year, d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
				if !occ.Before(truncateDay(start)) && !occ.After(truncateDay(end)) {
					dates[occ] = struct{}{}
				}
			}
			continue
		}
		if !d.Before(truncateDay(start)) && !d.After(truncateDay(end)) {
			dates[d] = struct{}{}
		}
	}
	return dates
}

// WorkingDays counts the days in the inclusive range [start, end] that are
// neither weekends nor holidays.
func WorkingDays(start, end time.Time, holidays map[time.Time]struct{}) int {
	count := 0
	for d := truncateDay(start); !d.After(truncateDay(end)); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if _, isHoliday := holidays[d]; isHoliday {
			continue
		}
		count++
	}
	return count
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
