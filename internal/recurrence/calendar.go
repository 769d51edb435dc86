package recurrence

import (
	"fmt"
	"strings"
	"time"
)

// Calendar decides which weekdays count as the weekend.
type Calendar struct {
	weekend map[time.Weekday]bool
}

// DefaultCalendar uses the conventional Saturday/Sunday weekend.
func DefaultCalendar() Calendar {
	return NewCalendar(time.Saturday, time.Sunday)
}

// NewCalendar builds a calendar with the given weekend days. With no days it
// falls back to Saturday/Sunday.
func NewCalendar(days ...time.Weekday) Calendar {
	if len(days) == 0 {
		days = []time.Weekday{time.Saturday, time.Sunday}
	}
	weekend := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		weekend[d] = true
	}
	return Calendar{weekend: weekend}
}

// IsWeekend reports whether t falls on a weekend day.
func (c Calendar) IsWeekend(t time.Time) bool {
	if c.weekend == nil {
		return DefaultCalendar().IsWeekend(t)
	}
	return c.weekend[t.Weekday()]
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseWeekend parses a comma separated list such as "fri,sat".
func ParseWeekend(raw string) (Calendar, error) {
	if strings.TrimSpace(raw) == "" {
		return DefaultCalendar(), nil
	}
	var days []time.Weekday
	for _, part := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		d, ok := weekdayNames[name]
		if !ok {
			return Calendar{}, fmt.Errorf("unknown weekday %q", part)
		}
		days = append(days, d)
	}
	if len(days) >= 7 {
		return Calendar{}, fmt.Errorf("weekend cannot cover the whole week")
	}
	return NewCalendar(days...), nil
}
