package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"todo-planner/internal/model"
	"todo-planner/internal/recurrence"
	"todo-planner/internal/reminder"
	"todo-planner/internal/store"
	"todo-planner/internal/validation"
)

// ErrTaskNotFound is returned when an id does not match any stored task.
var ErrTaskNotFound = errors.New("task not found")

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title    string `validate:"required,max=200"`
	Category string `validate:"max=64"`
	Date     time.Time
	Time     time.Time
	Repeat   model.RepeatOption `validate:"repeat_option"`
}

// Reminders schedules and cancels per-task reminders.
type Reminders interface {
	Schedule(ctx context.Context, task model.Task)
	Cancel(ctx context.Context, id uuid.UUID)
}

// TaskService wraps task-related business logic.
type TaskService struct {
	store     *store.TaskStore
	reminders Reminders
	calendar  recurrence.Calendar
	loc       *time.Location
	log       *zap.Logger
}

func NewTaskService(taskStore *store.TaskStore, reminders Reminders, calendar recurrence.Calendar, loc *time.Location, log *zap.Logger) *TaskService {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TaskService{
		store:     taskStore,
		reminders: reminders,
		calendar:  calendar,
		loc:       loc,
		log:       log.Named("tasks"),
	}
}

// CreateTask stores the seed task and, for repeating tasks, every expanded
// occurrence, scheduling a reminder for each. The seed comes first.
func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) ([]model.Task, error) {
	input.Title = validation.SanitizeText(input.Title)
	input.Category = validation.SanitizeText(input.Category)
	if input.Repeat == "" {
		input.Repeat = model.RepeatNone
	}
	if err := validation.Validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid task: %w", err)
	}
	if input.Date.IsZero() {
		return nil, fmt.Errorf("invalid task: date is required")
	}

	seed := model.NewTask(input.Title, input.Date, input.Time, input.Category, input.Repeat)
	created := append([]model.Task{seed}, recurrence.Expand(seed, s.calendar)...)
	for _, task := range created {
		s.store.Add(ctx, task)
		s.reminders.Schedule(ctx, task)
	}

	s.log.Info("task_created",
		zap.String("task_id", seed.ID.String()),
		zap.String("repeat", string(seed.RepeatOption)),
		zap.Int("occurrences", len(created)),
	)
	return created, nil
}

func (s *TaskService) Get(id uuid.UUID) (model.Task, error) {
	task, ok := s.store.Get(id)
	if !ok {
		return model.Task{}, ErrTaskNotFound
	}
	return task, nil
}

// ToggleDone flips the completion flag of one task.
func (s *TaskService) ToggleDone(ctx context.Context, id uuid.UUID) (model.Task, error) {
	task, ok := s.store.ToggleDone(ctx, id)
	if !ok {
		return model.Task{}, ErrTaskNotFound
	}
	s.log.Info("task_toggled", zap.String("task_id", id.String()), zap.Bool("done", task.IsDone))
	return task, nil
}

// DeleteTask removes a single task and its reminder.
func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if !s.store.Remove(ctx, id) {
		return ErrTaskNotFound
	}
	s.reminders.Cancel(ctx, id)
	s.log.Info("task_deleted", zap.String("task_id", id.String()))
	return nil
}

// DeleteSeries removes every task sharing title, category and repeat option
// with the given task, on any date, and cancels their reminders.
func (s *TaskService) DeleteSeries(ctx context.Context, id uuid.UUID) ([]model.Task, error) {
	task, ok := s.store.Get(id)
	if !ok {
		return nil, ErrTaskNotFound
	}

	series := s.store.FindBySeries(task.Title, task.Category, task.RepeatOption)
	for _, member := range series {
		s.store.Remove(ctx, member.ID)
		s.reminders.Cancel(ctx, member.ID)
	}
	s.log.Info("series_deleted",
		zap.String("title", task.Title),
		zap.String("category", task.Category),
		zap.String("repeat", string(task.RepeatOption)),
		zap.Int("removed", len(series)),
	)
	return series, nil
}

// ListForDay returns the tasks on day, optionally limited to one category,
// ordered by time of day.
func (s *TaskService) ListForDay(day time.Time, category string) []model.Task {
	tasks := s.store.Filter(&day, category)
	sortByClock(tasks)
	return tasks
}

// ListAll returns every task ordered by date, then time of day.
func (s *TaskService) ListAll(category string) []model.Task {
	tasks := s.store.Filter(nil, category)
	sort.SliceStable(tasks, func(i, j int) bool {
		di, dj := dayKey(tasks[i].Date), dayKey(tasks[j].Date)
		if di != dj {
			return di < dj
		}
		return clockKey(tasks[i].Time) < clockKey(tasks[j].Time)
	})
	return tasks
}

func (s *TaskService) Categories() []string {
	return s.store.Categories()
}

// RestoreReminders schedules reminders for pending tasks whose fire time is
// still ahead of now. It returns how many were scheduled.
func (s *TaskService) RestoreReminders(ctx context.Context, now time.Time) int {
	restored := 0
	for _, task := range s.store.All() {
		if task.IsDone || !reminder.FireAt(task, s.loc).After(now) {
			continue
		}
		s.reminders.Schedule(ctx, task)
		restored++
	}
	s.log.Info("reminders_restored", zap.Int("count", restored))
	return restored
}

func sortByClock(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return clockKey(tasks[i].Time) < clockKey(tasks[j].Time)
	})
}

func clockKey(t time.Time) int {
	h, m, _ := t.Clock()
	return h*60 + m
}

func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
