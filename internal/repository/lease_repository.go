package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// WriterLeaseKey names the slot holding the lease that guards the task snapshot.
const WriterLeaseKey = "writer_lease"

// ErrLeaseHeld is returned when another live process owns the lease.
var ErrLeaseHeld = errors.New("lease held by another process")

// Lease marks one process as the only writer of the shared task snapshot.
// A lease whose heartbeat is older than its TTL is considered abandoned.
type Lease struct {
	Owner     string    `json:"owner"`
	Heartbeat time.Time `json:"heartbeat"`
}

// HeldError reports who holds the lease.
type HeldError struct {
	Lease Lease
}

func (e *HeldError) Error() string {
	return fmt.Sprintf("%s since %s", e.Lease.Owner, e.Lease.Heartbeat.Format(time.RFC3339))
}

func (e *HeldError) Unwrap() error { return ErrLeaseHeld }

// LeaseRepository takes, renews and releases writer leases in the settings table.
type LeaseRepository struct {
	db  *gorm.DB
	ttl time.Duration
}

func NewLeaseRepository(db *gorm.DB, ttl time.Duration) *LeaseRepository {
	return &LeaseRepository{db: db, ttl: ttl}
}

// Acquire takes the lease for owner, or renews it when owner already holds it.
// It fails with a *HeldError while a different owner's heartbeat is fresh.
func (r *LeaseRepository) Acquire(ctx context.Context, key, owner string, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		settings := NewSettingsRepository(tx)
		current, err := r.read(ctx, settings, key)
		if err != nil {
			return err
		}
		if current != nil && current.Owner != owner && r.fresh(*current, now) {
			return &HeldError{Lease: *current}
		}

		raw, err := json.Marshal(Lease{Owner: owner, Heartbeat: now.UTC()})
		if err != nil {
			return fmt.Errorf("encode lease: %w", err)
		}
		return settings.Set(ctx, key, raw)
	})
}

// Holder returns the current live lease, or nil when the lease is free or abandoned.
func (r *LeaseRepository) Holder(ctx context.Context, key string, now time.Time) (*Lease, error) {
	current, err := r.read(ctx, NewSettingsRepository(r.db), key)
	if err != nil || current == nil || !r.fresh(*current, now) {
		return nil, err
	}
	return current, nil
}

// Release drops the lease if owner still holds it.
func (r *LeaseRepository) Release(ctx context.Context, key, owner string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		settings := NewSettingsRepository(tx)
		current, err := r.read(ctx, settings, key)
		if err != nil || current == nil || current.Owner != owner {
			return err
		}
		return settings.Delete(ctx, key)
	})
}

func (r *LeaseRepository) fresh(l Lease, now time.Time) bool {
	return now.Sub(l.Heartbeat) < r.ttl
}

func (r *LeaseRepository) read(ctx context.Context, settings *SettingsRepository, key string) (*Lease, error) {
	raw, err := settings.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var l Lease
	if err := json.Unmarshal(raw, &l); err != nil {
		// an unreadable lease cannot be honoured; treat the slot as free
		return nil, nil
	}
	return &l, nil
}
