package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"todo-planner/internal/model"
)

// ErrNotFound is returned when a settings slot has never been written.
var ErrNotFound = errors.New("setting not found")

// SettingsRepository is a key-value store of named byte slots.
type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the value stored under key, or ErrNotFound.
func (r *SettingsRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var setting model.Setting
	err := r.db.WithContext(ctx).Where(map[string]any{"key": key}).First(&setting).Error
	switch {
	case err == nil:
		return setting.Value, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("find setting %q: %w", key, err)
	}
}

// Set replaces the value stored under key.
func (r *SettingsRepository) Set(ctx context.Context, key string, value []byte) error {
	setting := model.Setting{Key: key, Value: value}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("save setting %q: %w", key, err)
	}
	return nil
}

// Delete removes the slot; deleting a missing key is not an error.
func (r *SettingsRepository) Delete(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Where(map[string]any{"key": key}).Delete(&model.Setting{}).Error; err != nil {
		return fmt.Errorf("delete setting %q: %w", key, err)
	}
	return nil
}
