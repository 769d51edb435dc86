package model

import "time"

// Setting is one named slot of the key-value settings store.
type Setting struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte
	UpdatedAt time.Time
}
