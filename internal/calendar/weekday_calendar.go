package calendar

import "time"

// WeekdayCalendar treats Monday through Friday as business days. Holiday
// tables live with the excluded persistence layer; every consumer in this
// module takes the Calendar interface, so a holiday-aware implementation can
// be substituted without changes here.
type WeekdayCalendar struct{}

// NewWeekdayCalendar creates a calendar with Monday-Friday business days.
func NewWeekdayCalendar() *WeekdayCalendar {
	return &WeekdayCalendar{}
}

// IsBusinessDay implements Calendar.
func (c *WeekdayCalendar) IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()

	return wd != time.Saturday && wd != time.Sunday
}

// BusinessDaysBetween implements Calendar. It counts business days strictly
// after a, up to and including b.
func (c *WeekdayCalendar) BusinessDaysBetween(a, b time.Time) int {
	a = truncateToDay(a)
	b = truncateToDay(b)

	if b.Before(a) {
		return -c.BusinessDaysBetween(b, a)
	}

	count := 0
	for d := a.AddDate(0, 0, 1); !d.After(b); d = d.AddDate(0, 0, 1) {
		if c.IsBusinessDay(d) {
			count++
		}
	}

	return count
}

// AddBusinessDays implements Calendar.
func (c *WeekdayCalendar) AddBusinessDays(t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}

	for n > 0 {
		t = t.AddDate(0, 0, step)
		if c.IsBusinessDay(t) {
			n--
		}
	}

	return t
}

// ExpirationDate implements Calendar.
func (c *WeekdayCalendar) ExpirationDate(rule ExpirationRule, year int, month time.Month) time.Time {
	// Shift to the anchor month first; AddDate normalizes month overflow.
	anchor := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, rule.MonthOffset, 0)

	var day time.Time

	switch rule.Kind {
	case DayRuleNthWeekday:
		day = nthWeekday(anchor.Year(), anchor.Month(), rule.Weekday, rule.Nth)
	case DayRuleFixedDay:
		day = time.Date(anchor.Year(), anchor.Month(), rule.Day, 0, 0, 0, 0, time.UTC)
	default:
		day = anchor
	}

	if rule.DaysOffset != 0 {
		if rule.OffsetKind == OffsetBusinessDays {
			day = c.AddBusinessDays(day, rule.DaysOffset)
		} else {
			day = day.AddDate(0, 0, rule.DaysOffset)
		}
	}

	if rule.AdjustToBusinessDay {
		for !c.IsBusinessDay(day) {
			day = day.AddDate(0, 0, -1)
		}
	}

	return day
}

func nthWeekday(year int, month time.Month, weekday time.Weekday, nth int) time.Time {
	if nth < 1 {
		nth = 1
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7

	return first.AddDate(0, 0, offset+(nth-1)*7)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
