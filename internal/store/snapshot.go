package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"todo-planner/internal/model"
	"todo-planner/internal/repository"
)

// SlotKey names the settings slot that holds the serialized collection.
const SlotKey = "todos"

// Backend is a key-value settings store holding byte slots.
// Get must return an error matching repository.ErrNotFound for absent keys.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// DecodeError reports a persisted snapshot that could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s snapshot: %v", SlotKey, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Load reads the persisted collection. An absent slot yields an empty
// collection; an undecodable one yields a *DecodeError.
func Load(ctx context.Context, backend Backend) ([]model.Task, error) {
	raw, err := backend.Get(ctx, SlotKey)
	if errors.Is(err, repository.ErrNotFound) {
		return []model.Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s snapshot: %w", SlotKey, err)
	}

	var tasks []model.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

// Encode serializes the whole collection as one JSON array.
func Encode(tasks []model.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("encode %s snapshot: %w", SlotKey, err)
	}
	return b, nil
}
