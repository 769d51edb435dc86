package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"todo-planner/internal/model"
)

// TaskStore owns the ordered task collection and writes the whole of it
// to the backend after every mutation.
type TaskStore struct {
	backend Backend
	log     *zap.Logger

	mu    sync.Mutex
	tasks []model.Task
}

// New loads the persisted collection and falls back to an empty one when
// the snapshot is missing or unreadable.
func New(ctx context.Context, backend Backend, log *zap.Logger) *TaskStore {
	if log == nil {
		log = zap.NewNop()
	}
	s := &TaskStore{backend: backend, log: log.Named("store")}

	tasks, err := Load(ctx, backend)
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			s.log.Warn("snapshot_decode_failed_starting_empty", zap.Error(err))
		} else {
			s.log.Warn("snapshot_load_failed_starting_empty", zap.Error(err))
		}
		tasks = []model.Task{}
	}
	s.tasks = tasks
	s.log.Info("store_loaded", zap.Int("tasks", len(tasks)))
	return s
}

// Add appends the task and persists the collection.
func (s *TaskStore) Add(ctx context.Context, task model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = append(s.tasks, task)
	s.saveLocked(ctx)
}

// Remove deletes the task with the given id. It reports whether a task was
// removed; a missing id changes nothing.
func (s *TaskStore) Remove(ctx context.Context, id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.tasks[:0:0]
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(s.tasks) {
		return false
	}
	s.tasks = kept
	s.saveLocked(ctx)
	return true
}

// ToggleDone flips the completion flag of the task with the given id and
// returns the updated task.
func (s *TaskStore) ToggleDone(ctx context.Context, id uuid.UUID) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].IsDone = !s.tasks[i].IsDone
			s.saveLocked(ctx)
			return s.tasks[i], true
		}
	}
	return model.Task{}, false
}

// FindBySeries returns every task sharing title, category and repeat
// option, in collection order.
func (s *TaskStore) FindBySeries(title, category string, repeat model.RepeatOption) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Task
	for _, t := range s.tasks {
		if t.InSeries(title, category, repeat) {
			out = append(out, t)
		}
	}
	return out
}

func (s *TaskStore) Get(id uuid.UUID) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// All returns a copy of the collection in insertion order.
func (s *TaskStore) All() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Filter returns tasks dated on day (when non-nil) whose category equals
// category (when non-empty).
func (s *TaskStore) Filter(day *time.Time, category string) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Task
	for _, t := range s.tasks {
		if day != nil && !t.OnDay(*day) {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Categories lists the distinct non-empty categories, sorted.
func (s *TaskStore) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	var out []string
	for _, t := range s.tasks {
		if t.Category == "" {
			continue
		}
		if _, ok := seen[t.Category]; ok {
			continue
		}
		seen[t.Category] = struct{}{}
		out = append(out, t.Category)
	}
	sort.Strings(out)
	return out
}

// saveLocked writes the full collection. Failures leave memory authoritative.
func (s *TaskStore) saveLocked(ctx context.Context) {
	b, err := Encode(s.tasks)
	if err != nil {
		s.log.Error("snapshot_encode_failed", zap.Error(err))
		return
	}
	if err := s.backend.Set(ctx, SlotKey, b); err != nil {
		s.log.Error("snapshot_write_failed", zap.Error(err), zap.Int("tasks", len(s.tasks)))
	}
}
