package scheduler

import "time"

// WorkCalendar is a single daily shift. A job whose end falls at or after
// EndHour is moved to StartHour on the following day.
type WorkCalendar struct {
	StartHour int
	EndHour   int
	Location  *time.Location
}

// DefaultCalendar is the 08:00-22:00 UTC shift.
func DefaultCalendar() WorkCalendar {
	return WorkCalendar{StartHour: 8, EndHour: 22, Location: time.UTC}
}

func (c WorkCalendar) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// Place returns the interval for a job of length d that would start at
// start. Only the end hour is checked and the job is re-timed at most once,
// so runs longer than the shift still end past EndHour.
func (c WorkCalendar) Place(start time.Time, d time.Duration) (time.Time, time.Time) {
	end := start.Add(d)
	if end.In(c.loc()).Hour() < c.EndHour {
		return start, end
	}
	local := start.In(c.loc())
	next := time.Date(local.Year(), local.Month(), local.Day()+1, c.StartHour, 0, 0, 0, c.loc()).In(start.Location())
	return next, next.Add(d)
}
