package main

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"todo-planner/internal/model"
	"todo-planner/internal/repository"
	"todo-planner/internal/store"
)

func runAdd(ctx context.Context, title string) error {
	cmd := newAddCmd()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"--title", title, "--date", "2024-01-05", "--time", "10:00"})
	return cmd.ExecuteContext(ctx)
}

func TestAddRefusedWhileBotHoldsSnapshot(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "planner.db")
	t.Setenv("DATABASE_URL", dsn)
	t.Setenv("WEEKEND_DAYS", "")
	t.Setenv("TIMEZONE", "UTC")

	ctx := context.Background()
	db, err := repository.NewDB(dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	settings := repository.NewSettingsRepository(db)
	leases := repository.NewLeaseRepository(db, leaseTTL)

	release, err := claimWriter(ctx, leases, "bot:test", time.Now())
	if err != nil {
		t.Fatalf("bot claim: %v", err)
	}
	botStore := store.New(ctx, settings, zap.NewNop())
	day := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	botStore.Add(ctx, model.NewTask("From bot", day, day.Add(9*time.Hour), "", model.RepeatNone))

	if err := runAdd(ctx, "From CLI"); !errors.Is(err, ErrWriterBusy) {
		t.Fatalf("expected ErrWriterBusy, got %v", err)
	}

	botStore.Add(ctx, model.NewTask("Later from bot", day, day.Add(11*time.Hour), "", model.RepeatNone))
	persisted, err := store.Load(ctx, settings)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(persisted) != 2 {
		t.Fatalf("expected 2 persisted tasks, got %d", len(persisted))
	}
	for _, task := range persisted {
		if task.Title == "From CLI" {
			t.Fatalf("refused command must not write")
		}
	}

	release()
	if err := runAdd(ctx, "From CLI"); err != nil {
		t.Fatalf("add after bot stopped: %v", err)
	}
	persisted, err = store.Load(ctx, settings)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(persisted) != 3 || persisted[2].Title != "From CLI" {
		t.Errorf("expected CLI task appended, got %+v", persisted)
	}
	if holder, _ := leases.Holder(ctx, repository.WriterLeaseKey, time.Now()); holder != nil {
		t.Errorf("CLI must release the lease, still held by %s", holder.Owner)
	}
}

func TestBotClaimRefusedWhileCLIWrites(t *testing.T) {
	t.Parallel()

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "planner.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	leases := repository.NewLeaseRepository(db, leaseTTL)
	ctx := context.Background()
	now := time.Now()

	release, err := claimWriter(ctx, leases, "cli:test", now)
	if err != nil {
		t.Fatalf("cli claim: %v", err)
	}
	if _, err := claimWriter(ctx, leases, "bot:test", now); !errors.Is(err, ErrWriterBusy) {
		t.Fatalf("expected second writer refused, got %v", err)
	}
	release()
	if _, err := claimWriter(ctx, leases, "bot:test", now); err != nil {
		t.Errorf("claim after release: %v", err)
	}
}
