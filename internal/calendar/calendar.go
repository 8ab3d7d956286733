// Package calendar evaluates contract-expiration rules and answers
// business-day questions for the continuous-future engine.
package calendar

import "time"

// DayRuleKind selects how the anchor day of an expiration rule is located
// within a month.
type DayRuleKind string

const (
	// DayRuleFixedDay anchors on a fixed day of the month (e.g. the 25th).
	DayRuleFixedDay DayRuleKind = "FIXED_DAY"
	// DayRuleNthWeekday anchors on the Nth weekday of the month
	// (e.g. the 3rd Friday).
	DayRuleNthWeekday DayRuleKind = "NTH_WEEKDAY"
)

// OffsetKind selects whether a day offset is counted in business days or
// calendar days.
type OffsetKind string

const (
	OffsetCalendarDays OffsetKind = "CALENDAR_DAYS"
	OffsetBusinessDays OffsetKind = "BUSINESS_DAYS"
)

// ExpirationRule describes how to find the expiration date of one contract
// month. The anchor day is located in the month shifted by MonthOffset, then
// DaysOffset is applied.
//
// The VIX-style rule "30 calendar days before the 3rd Friday of the following
// month" is {Kind: NthWeekday, Weekday: Friday, Nth: 3, MonthOffset: 1,
// DaysOffset: -30, OffsetKind: CalendarDays, AdjustToBusinessDay: true}.
type ExpirationRule struct {
	Kind    DayRuleKind  `yaml:"kind" json:"kind" validate:"required,oneof=FIXED_DAY NTH_WEEKDAY"`
	Day     int          `yaml:"day" json:"day" validate:"min=0,max=31"`
	Weekday time.Weekday `yaml:"weekday" json:"weekday"`
	Nth     int          `yaml:"nth" json:"nth" validate:"min=0,max=5"`

	MonthOffset int        `yaml:"month_offset" json:"month_offset"`
	DaysOffset  int        `yaml:"days_offset" json:"days_offset"`
	OffsetKind  OffsetKind `yaml:"offset_kind" json:"offset_kind"`

	// AdjustToBusinessDay moves a result landing on a non-business day back to
	// the preceding business day.
	AdjustToBusinessDay bool `yaml:"adjust_to_business_day" json:"adjust_to_business_day"`
}

// Calendar answers expiration and business-day questions.
type Calendar interface {
	// ExpirationDate returns the expiration date of the contract for the given
	// year and month under the rule.
	ExpirationDate(rule ExpirationRule, year int, month time.Month) time.Time
	// IsBusinessDay reports whether t falls on a business day.
	IsBusinessDay(t time.Time) bool
	// BusinessDaysBetween counts business days strictly after a, up to and
	// including b. The result is negative when b precedes a.
	BusinessDaysBetween(a, b time.Time) int
	// AddBusinessDays walks n business days forward (or backward for negative
	// n) from t.
	AddBusinessDays(t time.Time, n int) time.Time
}
