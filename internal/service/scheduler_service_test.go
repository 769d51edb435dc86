package service

import (
	"testing"
	"time"
)

func TestBuildDailySpec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"08:00", "0 0 8 * * *", false},
		{"23:59", "0 59 23 * * *", false},
		{" 7:05 ", "0 5 7 * * *", false},
		{"24:00", "", true},
		{"12:60", "", true},
		{"noon", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := buildDailySpec(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestOnceSchedule_Next(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	s := onceSchedule{at: at}

	if got := s.Next(at.Add(-time.Hour)); !got.Equal(at) {
		t.Errorf("expected %s before the instant, got %s", at, got)
	}
	if got := s.Next(at); !got.IsZero() {
		t.Errorf("expected zero at the instant, got %s", got)
	}
	if got := s.Next(at.Add(time.Second)); !got.IsZero() {
		t.Errorf("expected zero after the instant, got %s", got)
	}
}

func TestSchedulerService_ScheduleOnceAndRemove(t *testing.T) {
	t.Parallel()

	s := NewSchedulerService(time.UTC)
	id, err := s.ScheduleOnce(time.Now().Add(time.Hour), func() {})
	if err != nil {
		t.Fatal(err)
	}
	if len(s.cron.Entries()) != 1 {
		t.Fatalf("expected one entry, got %d", len(s.cron.Entries()))
	}
	s.Remove(id)
	if len(s.cron.Entries()) != 0 {
		t.Error("expected entry to be removed")
	}
	if _, err := s.ScheduleOnce(time.Time{}, func() {}); err == nil {
		t.Error("expected zero instant to be rejected")
	}
}
