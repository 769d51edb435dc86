// Package reminder turns tasks into one-shot reminders and hands them to a
// notification subsystem.
package reminder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"todo-planner/internal/model"
)

// Title is the heading every reminder carries; the body is the task title.
const Title = "Todo-List"

// Notifier is the notification subsystem reminders are delivered through.
type Notifier interface {
	RequestPermission(ctx context.Context) (bool, error)
	Schedule(ctx context.Context, id, title, body string, fireAt time.Time) error
	Cancel(ctx context.Context, ids []string) error
}

// Scheduler keys reminders by task id and fires each one once.
// Failures are logged and never returned to the caller.
type Scheduler struct {
	notifier Notifier
	loc      *time.Location
	log      *zap.Logger
}

func NewScheduler(notifier Notifier, loc *time.Location, log *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{notifier: notifier, loc: loc, log: log.Named("reminder")}
}

// FireAt combines the calendar day of task.Date with the hour and minute of
// task.Time in loc.
func FireAt(task model.Task, loc *time.Location) time.Time {
	y, m, d := task.Date.Date()
	hour, minute, _ := task.Time.Clock()
	return time.Date(y, m, d, hour, minute, 0, 0, loc)
}

// Schedule registers a non-repeating reminder for task.
func (s *Scheduler) Schedule(ctx context.Context, task model.Task) {
	id := task.ID.String()
	fireAt := FireAt(task, s.loc)
	if err := s.notifier.Schedule(ctx, id, Title, task.Title, fireAt); err != nil {
		s.log.Error("reminder_schedule_failed",
			zap.String("task_id", id),
			zap.Time("fire_at", fireAt),
			zap.Error(err),
		)
		return
	}
	s.log.Debug("reminder_scheduled", zap.String("task_id", id), zap.Time("fire_at", fireAt))
}

// Cancel drops the pending reminder for id, if any.
func (s *Scheduler) Cancel(ctx context.Context, id uuid.UUID) {
	if err := s.notifier.Cancel(ctx, []string{id.String()}); err != nil {
		s.log.Error("reminder_cancel_failed", zap.String("task_id", id.String()), zap.Error(err))
	}
}

// RequestPermission asks the subsystem for permission to notify. The answer
// is only logged; scheduling never depends on it.
func (s *Scheduler) RequestPermission(ctx context.Context) bool {
	granted, err := s.notifier.RequestPermission(ctx)
	if err != nil {
		s.log.Warn("reminder_permission_request_failed", zap.Error(err))
		return false
	}
	s.log.Info("reminder_permission", zap.Bool("granted", granted))
	return granted
}
