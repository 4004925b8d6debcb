package progression

import "time"

// Weeks buckets instants into calendar weeks starting on a fixed weekday
// in a fixed location.
type Weeks struct {
	start time.Weekday
	loc   *time.Location
}

func NewWeeks(start time.Weekday, loc *time.Location) Weeks {
	if loc == nil {
		loc = time.UTC
	}
	return Weeks{start: start, loc: loc}
}

// Start returns midnight of the first day of the week containing t.
func (w Weeks) Start(t time.Time) time.Time {
	if w.loc == nil {
		w.loc = time.UTC
	}
	local := t.In(w.loc)
	back := (int(local.Weekday()) - int(w.start) + 7) % 7
	return time.Date(local.Year(), local.Month(), local.Day()-back, 0, 0, 0, 0, w.loc)
}

func (w Weeks) Location() *time.Location {
	if w.loc == nil {
		return time.UTC
	}
	return w.loc
}

// Next returns the start of the week after weekStart. Calendar arithmetic
// keeps it on midnight across DST changes.
func (w Weeks) Next(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, 7)
}
