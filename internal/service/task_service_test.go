package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"todo-planner/internal/model"
	"todo-planner/internal/recurrence"
	"todo-planner/internal/repository"
	"todo-planner/internal/store"
)

type memBackend struct {
	slots map[string][]byte
}

func (m *memBackend) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.slots[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return v, nil
}

func (m *memBackend) Set(_ context.Context, key string, value []byte) error {
	m.slots[key] = value
	return nil
}

type fakeReminders struct {
	scheduled []uuid.UUID
	cancelled []uuid.UUID
}

func (f *fakeReminders) Schedule(_ context.Context, task model.Task) {
	f.scheduled = append(f.scheduled, task.ID)
}

func (f *fakeReminders) Cancel(_ context.Context, id uuid.UUID) {
	f.cancelled = append(f.cancelled, id)
}

func newTestService(t *testing.T) (*TaskService, *fakeReminders, *memBackend) {
	t.Helper()
	backend := &memBackend{slots: make(map[string][]byte)}
	reminders := &fakeReminders{}
	taskStore := store.New(context.Background(), backend, zap.NewNop())
	return NewTaskService(taskStore, reminders, recurrence.DefaultCalendar(), time.UTC, zap.NewNop()), reminders, backend
}

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func clock(h, m int) time.Time {
	return time.Date(2000, time.January, 1, h, m, 0, 0, time.UTC)
}

func TestTaskService_CreateDailyExpandsAndSchedules(t *testing.T) {
	t.Parallel()

	svc, reminders, _ := newTestService(t)
	created, err := svc.CreateTask(context.Background(), TaskInput{
		Title:    "Meditate",
		Category: "health",
		Date:     day(1),
		Time:     clock(7, 0),
		Repeat:   model.RepeatDaily,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(created) != 1+recurrence.MaxOccurrences {
		t.Fatalf("expected seed plus %d occurrences, got %d", recurrence.MaxOccurrences, len(created))
	}
	if !model.SameDay(created[0].Date, day(1)) {
		t.Error("seed should come first")
	}
	if len(reminders.scheduled) != len(created) {
		t.Errorf("expected a reminder per task, got %d", len(reminders.scheduled))
	}
	if len(svc.ListAll("")) != len(created) {
		t.Error("every created task should be stored")
	}
}

func TestTaskService_CreateValidates(t *testing.T) {
	t.Parallel()

	svc, reminders, _ := newTestService(t)
	tests := []struct {
		name  string
		input TaskInput
	}{
		{"blank title", TaskInput{Title: "  ", Date: day(1)}},
		{"bad repeat", TaskInput{Title: "x", Date: day(1), Repeat: "Hourly"}},
		{"no date", TaskInput{Title: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateTask(context.Background(), tt.input); err == nil {
				t.Error("expected validation error")
			}
		})
	}
	if len(reminders.scheduled) != 0 {
		t.Error("invalid input must not schedule reminders")
	}
}

func TestTaskService_DeleteSeriesIsBroadMatch(t *testing.T) {
	t.Parallel()

	svc, reminders, _ := newTestService(t)
	ctx := context.Background()
	series, err := svc.CreateTask(ctx, TaskInput{Title: "Walk", Date: day(1), Time: clock(18, 0), Repeat: model.RepeatDaily})
	if err != nil {
		t.Fatal(err)
	}
	// Same title, category and repeat option, unrelated date.
	stray, err := svc.CreateTask(ctx, TaskInput{Title: "Walk", Date: day(28), Time: clock(9, 0), Repeat: model.RepeatNone})
	if err != nil {
		t.Fatal(err)
	}
	other := model.NewTask("Walk", day(20), clock(9, 0), "", model.RepeatDaily)
	svc.store.Add(ctx, other)

	removed, err := svc.DeleteSeries(ctx, series[3].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(removed) != len(series)+1 {
		t.Fatalf("expected %d removed, got %d", len(series)+1, len(removed))
	}
	if len(reminders.cancelled) != len(removed) {
		t.Errorf("expected a cancellation per removed task, got %d", len(reminders.cancelled))
	}

	left := svc.ListAll("")
	if len(left) != 1 || left[0].ID != stray[0].ID {
		t.Errorf("only the non-repeating task should remain, got %+v", left)
	}
}

func TestTaskService_DeleteTaskSingle(t *testing.T) {
	t.Parallel()

	svc, reminders, _ := newTestService(t)
	ctx := context.Background()
	created, _ := svc.CreateTask(ctx, TaskInput{Title: "Call mom", Date: day(2), Time: clock(12, 0), Repeat: model.RepeatDaily})

	if err := svc.DeleteTask(ctx, created[0].ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(created[0].ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}
	if len(svc.ListAll("")) != len(created)-1 {
		t.Error("single delete should leave the rest of the series")
	}
	if len(reminders.cancelled) != 1 || reminders.cancelled[0] != created[0].ID {
		t.Errorf("unexpected cancellations %v", reminders.cancelled)
	}
	if err := svc.DeleteTask(ctx, created[0].ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound on second delete, got %v", err)
	}
}

func TestTaskService_ToggleAndListForDay(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()
	late, _ := svc.CreateTask(ctx, TaskInput{Title: "Late", Category: "work", Date: day(3), Time: clock(17, 0)})
	early, _ := svc.CreateTask(ctx, TaskInput{Title: "Early", Category: "home", Date: day(3), Time: clock(8, 0)})
	_, _ = svc.CreateTask(ctx, TaskInput{Title: "Tomorrow", Date: day(4), Time: clock(8, 0)})

	list := svc.ListForDay(time.Date(2024, time.January, 3, 22, 0, 0, 0, time.UTC), "")
	if len(list) != 2 || list[0].ID != early[0].ID || list[1].ID != late[0].ID {
		t.Fatalf("unexpected day listing %+v", list)
	}
	if got := svc.ListForDay(day(3), "work"); len(got) != 1 || got[0].ID != late[0].ID {
		t.Errorf("category filter failed: %+v", got)
	}

	toggled, err := svc.ToggleDone(ctx, late[0].ID)
	if err != nil || !toggled.IsDone {
		t.Fatalf("expected done, got %+v %v", toggled, err)
	}
	if _, err := svc.ToggleDone(ctx, uuid.New()); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskService_RestoreReminders(t *testing.T) {
	t.Parallel()

	svc, reminders, _ := newTestService(t)
	ctx := context.Background()
	past, _ := svc.CreateTask(ctx, TaskInput{Title: "Past", Date: day(1), Time: clock(9, 0)})
	future, _ := svc.CreateTask(ctx, TaskInput{Title: "Future", Date: day(10), Time: clock(9, 0)})
	done, _ := svc.CreateTask(ctx, TaskInput{Title: "Done", Date: day(10), Time: clock(10, 0)})
	_, _ = svc.ToggleDone(ctx, done[0].ID)
	reminders.scheduled = nil

	n := svc.RestoreReminders(ctx, time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC))
	if n != 1 || len(reminders.scheduled) != 1 || reminders.scheduled[0] != future[0].ID {
		t.Errorf("expected only the future pending task, got %d %v (past=%s)", n, reminders.scheduled, past[0].ID)
	}
}

func TestAgendaService_DailySummary(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, _ = svc.CreateTask(ctx, TaskInput{Title: "Write <report>", Category: "work", Date: day(3), Time: clock(9, 0)})
	done, _ := svc.CreateTask(ctx, TaskInput{Title: "Gym", Date: day(3), Time: clock(7, 0)})
	_, _ = svc.ToggleDone(ctx, done[0].ID)

	agenda := NewAgendaService(svc)
	text := agenda.DailySummary(time.Date(2024, time.January, 3, 8, 0, 0, 0, time.UTC), "")

	for _, want := range []string{"Daily agenda", "09:00 Write &lt;report&gt;", "<i>(work)</i>", "✅ <b>Done</b>", "07:00 Gym"} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}

	empty := agenda.DailySummary(day(20), "")
	if !strings.Contains(empty, "nothing left for today") {
		t.Errorf("expected empty marker, got:\n%s", empty)
	}
}
