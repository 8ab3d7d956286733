package types

import "time"

// SessionWindow is a single trading window within one day, expressed as
// minutes from midnight in the session's timezone.
type SessionWindow struct {
	OpenMinute  int `yaml:"open_minute" json:"open_minute" validate:"min=0,max=1439"`
	CloseMinute int `yaml:"close_minute" json:"close_minute" validate:"min=0,max=1440"`
}

// Contains reports whether the time of day of t falls inside the window.
func (w SessionWindow) Contains(t time.Time) bool {
	minute := t.Hour()*60 + t.Minute()

	return minute >= w.OpenMinute && minute < w.CloseMinute
}

// SessionSchedule describes an instrument's trading sessions. Regular holds
// the regular-trading-hours windows; Extended holds pre/post-market windows.
// An empty schedule means the instrument trades around the clock.
type SessionSchedule struct {
	Regular  []SessionWindow `yaml:"regular" json:"regular"`
	Extended []SessionWindow `yaml:"extended" json:"extended"`
	// Timezone is the IANA name the windows are expressed in; empty means UTC.
	Timezone string `yaml:"timezone" json:"timezone"`
}

// IsEmpty reports whether no session windows are defined.
func (s SessionSchedule) IsEmpty() bool {
	return len(s.Regular) == 0 && len(s.Extended) == 0
}

// Location resolves the schedule's timezone, falling back to UTC.
func (s SessionSchedule) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}

	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}

	return loc
}

// InRegularHours reports whether t falls inside any regular window.
// An empty schedule accepts everything.
func (s SessionSchedule) InRegularHours(t time.Time) bool {
	if len(s.Regular) == 0 {
		return true
	}

	local := t.In(s.Location())
	for _, w := range s.Regular {
		if w.Contains(local) {
			return true
		}
	}

	return false
}

// RegularOpen returns the time the regular session opens on the day of t.
func (s SessionSchedule) RegularOpen(t time.Time) time.Time {
	if len(s.Regular) == 0 {
		return t
	}

	local := t.In(s.Location())
	w := s.Regular[0]

	return time.Date(local.Year(), local.Month(), local.Day(), w.OpenMinute/60, w.OpenMinute%60, 0, 0, s.Location())
}

// RegularClose returns the time the regular session closes on the day of t.
func (s SessionSchedule) RegularClose(t time.Time) time.Time {
	if len(s.Regular) == 0 {
		return t
	}

	local := t.In(s.Location())
	w := s.Regular[len(s.Regular)-1]

	return time.Date(local.Year(), local.Month(), local.Day(), w.CloseMinute/60, w.CloseMinute%60, 0, 0, s.Location())
}
