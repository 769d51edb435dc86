package model

import (
	"time"

	"github.com/google/uuid"
)

// RepeatOption tells how a task recurs. It is stored as its string value.
type RepeatOption string

const (
	RepeatNone     RepeatOption = "None"
	RepeatDaily    RepeatOption = "Daily"
	RepeatWeekdays RepeatOption = "Weekdays"
	RepeatWeekends RepeatOption = "Weekends"
)

// RepeatOptions lists every valid option in display order.
var RepeatOptions = []RepeatOption{RepeatNone, RepeatDaily, RepeatWeekdays, RepeatWeekends}

// Valid reports whether r is one of the four known options.
func (r RepeatOption) Valid() bool {
	switch r {
	case RepeatNone, RepeatDaily, RepeatWeekdays, RepeatWeekends:
		return true
	}
	return false
}

// Task represents a single dated, timed occurrence in the planner.
// Only the year/month/day of Date and the hour/minute of Time are meaningful.
type Task struct {
	ID           uuid.UUID    `json:"id"`
	Title        string       `json:"title"`
	IsDone       bool         `json:"isDone"`
	Date         time.Time    `json:"date"`
	Time         time.Time    `json:"time"`
	Category     string       `json:"category"`
	RepeatOption RepeatOption `json:"repeatOption"`
}

// NewTask builds a pending task with a fresh identifier.
func NewTask(title string, date, clock time.Time, category string, repeat RepeatOption) Task {
	return Task{
		ID:           uuid.New(),
		Title:        title,
		Date:         date,
		Time:         clock,
		Category:     category,
		RepeatOption: repeat,
	}
}

// InSeries reports whether the task belongs to the series identified by
// title, category and repeat option. The date is deliberately not compared.
func (t Task) InSeries(title, category string, repeat RepeatOption) bool {
	return t.Title == title && t.Category == category && t.RepeatOption == repeat
}

// OnDay reports whether the task is dated on the same calendar day as day.
func (t Task) OnDay(day time.Time) bool {
	return SameDay(t.Date, day)
}

// SameDay compares two instants by year, month and day only.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
