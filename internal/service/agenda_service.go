package service

import (
	"fmt"
	"html"
	"strings"
	"time"

	"todo-planner/internal/model"
)

// AgendaService builds human-readable summaries of a day's tasks.
type AgendaService struct {
	tasks *TaskService
}

func NewAgendaService(tasks *TaskService) *AgendaService {
	return &AgendaService{tasks: tasks}
}

// DailySummary renders the tasks dated on now's day as Telegram HTML.
func (s *AgendaService) DailySummary(now time.Time, category string) string {
	tasks := s.tasks.ListForDay(now, category)

	var pending, done []model.Task
	for _, task := range tasks {
		if task.IsDone {
			done = append(done, task)
		} else {
			pending = append(pending, task)
		}
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily agenda</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s", now.Format("Mon, 02 Jan 2006")))
	if category != "" {
		builder.WriteString(fmt.Sprintf(" · <i>%s</i>", html.EscapeString(category)))
	}
	builder.WriteString("\n\n")

	builder.WriteString("🔥 <b>To do</b>\n")
	if len(pending) == 0 {
		builder.WriteString("— nothing left for today\n")
	} else {
		for _, task := range pending {
			builder.WriteString(FormatAgendaLine(task, now))
		}
	}

	if len(done) > 0 {
		builder.WriteString("\n✅ <b>Done</b>\n")
		for _, task := range done {
			builder.WriteString(FormatAgendaLine(task, now))
		}
	}

	return strings.TrimSpace(builder.String())
}

// FormatAgendaLine renders one task as a single HTML line.
func FormatAgendaLine(task model.Task, now time.Time) string {
	var sb strings.Builder

	icon := "🟢"
	switch {
	case task.IsDone:
		icon = "✅"
	case model.SameDay(task.Date, now) && clockKey(task.Time) < clockKey(now):
		icon = "⚠️"
	case task.RepeatOption != model.RepeatNone:
		icon = "♻️"
	}

	sb.WriteString(fmt.Sprintf("%s %s %s", icon, task.Time.Format("15:04"), html.EscapeString(strings.TrimSpace(task.Title))))
	if name := strings.TrimSpace(task.Category); name != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(name)))
	}
	if task.RepeatOption != model.RepeatNone {
		sb.WriteString(fmt.Sprintf(" · %s", strings.ToLower(string(task.RepeatOption))))
	}

	sb.WriteByte('\n')
	return sb.String()
}
