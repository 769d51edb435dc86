package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"todo-planner/internal/config"
	"todo-planner/internal/logger"
	"todo-planner/internal/reminder"
	"todo-planner/internal/repository"
	"todo-planner/internal/service"
	"todo-planner/internal/store"
)

// app holds the components every command shares.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	db       *gorm.DB
	settings *repository.SettingsRepository
	leases   *repository.LeaseRepository
	store    *store.TaskStore
}

const (
	leaseTTL       = 2 * time.Minute
	leaseHeartbeat = 30 * time.Second
)

// ErrWriterBusy is returned when another process, usually the running bot,
// owns the task snapshot.
var ErrWriterBusy = errors.New("tasks are in use by another planner process; change them through Telegram or stop the bot first")

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	log, err := logger.New(cfg.LogFormat, cfg.LogDebug)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		settings: repository.NewSettingsRepository(db),
		leases:   repository.NewLeaseRepository(db, leaseTTL),
	}, nil
}

// openStore loads the task snapshot. Writers must hold the lease first so the
// loaded collection cannot be overwritten by another process.
func (a *app) openStore(ctx context.Context) *store.TaskStore {
	a.store = store.New(ctx, a.settings, a.log)
	return a.store
}

// claimWriter takes the writer lease for owner and returns the function that
// gives it back.
func claimWriter(ctx context.Context, leases *repository.LeaseRepository, owner string, now time.Time) (func(), error) {
	if err := leases.Acquire(ctx, repository.WriterLeaseKey, owner, now); err != nil {
		if errors.Is(err, repository.ErrLeaseHeld) {
			return nil, fmt.Errorf("%w (%v)", ErrWriterBusy, err)
		}
		return nil, fmt.Errorf("take writer lease: %w", err)
	}
	return func() {
		_ = leases.Release(context.WithoutCancel(ctx), repository.WriterLeaseKey, owner)
	}, nil
}

// keepLease renews the lease until ctx ends.
func keepLease(ctx context.Context, leases *repository.LeaseRepository, owner string, log *zap.Logger) {
	ticker := time.NewTicker(leaseHeartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := leases.Acquire(ctx, repository.WriterLeaseKey, owner, time.Now()); err != nil && ctx.Err() == nil {
				log.Error("writer_lease_renew_failed", zap.String("owner", owner), zap.Error(err))
			}
		}
	}
}

func leaseOwner(role string) string {
	host, _ := os.Hostname()
	return fmt.Sprintf("%s:%s:%d", role, host, os.Getpid())
}

func (a *app) reminders(notifier reminder.Notifier) *reminder.Scheduler {
	return reminder.NewScheduler(notifier, a.cfg.Location, a.log)
}

func (a *app) taskService(reminders service.Reminders) *service.TaskService {
	return service.NewTaskService(a.store, reminders, a.cfg.Calendar, a.cfg.Location, a.log)
}

func (a *app) Close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = logger.Sync(a.log)
}
