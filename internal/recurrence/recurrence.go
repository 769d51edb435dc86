// Package recurrence expands a repeating seed task into the concrete dated
// occurrences that follow it.
package recurrence

import (
	"time"

	"todo-planner/internal/model"
)

// MaxOccurrences is the number of records emitted after the seed.
const MaxOccurrences = 10

// maxConsecutiveSkips bounds the search for an acceptable date so a
// calendar whose weekend covers every day cannot spin forever.
const maxConsecutiveSkips = 7

// Expand returns the occurrences that follow seed according to its repeat
// option. The seed itself is not included. RepeatNone yields nothing.
func Expand(seed model.Task, cal Calendar) []model.Task {
	if seed.RepeatOption == model.RepeatNone || !seed.RepeatOption.Valid() {
		return nil
	}

	out := make([]model.Task, 0, MaxOccurrences)
	next := nextDay(seed.Date)
	for len(out) < MaxOccurrences {
		skips := 0
		for skip(seed.RepeatOption, next, cal) {
			if skips == maxConsecutiveSkips {
				return out
			}
			next = nextDay(next)
			skips++
		}

		out = append(out, model.NewTask(seed.Title, next, seed.Time, seed.Category, seed.RepeatOption))
		next = nextDay(next)
	}
	return out
}

func skip(repeat model.RepeatOption, day time.Time, cal Calendar) bool {
	switch repeat {
	case model.RepeatWeekdays:
		// A day right before the weekend is skipped as well.
		return cal.IsWeekend(day) || cal.IsWeekend(nextDay(day))
	case model.RepeatWeekends:
		return !cal.IsWeekend(day)
	default:
		return false
	}
}

func nextDay(t time.Time) time.Time {
	return t.AddDate(0, 0, 1)
}
