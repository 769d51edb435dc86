package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// OnceScheduler runs a job once at a given instant.
type OnceScheduler interface {
	ScheduleOnce(at time.Time, job func()) (cron.EntryID, error)
	Remove(id cron.EntryID)
}

// Deliverer shows a reminder to the user.
type Deliverer interface {
	Deliver(ctx context.Context, title, body string) error
	// Ready reports whether there is someone to deliver to.
	Ready(ctx context.Context) bool
}

// CronNotifier keeps pending reminders as one-shot cron entries.
type CronNotifier struct {
	timer     OnceScheduler
	deliverer Deliverer
	timeout   time.Duration
	now       func() time.Time
	log       *zap.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

func NewCronNotifier(timer OnceScheduler, deliverer Deliverer, log *zap.Logger) *CronNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &CronNotifier{
		timer:     timer,
		deliverer: deliverer,
		timeout:   30 * time.Second,
		now:       time.Now,
		log:       log.Named("cron_notifier"),
		entries:   make(map[string]cron.EntryID),
	}
}

func (n *CronNotifier) RequestPermission(ctx context.Context) (bool, error) {
	return n.deliverer.Ready(ctx), nil
}

// Schedule replaces any pending reminder with the same id. Instants that
// have already passed are dropped without error.
func (n *CronNotifier) Schedule(_ context.Context, id, title, body string, fireAt time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.removeLocked(id)
	if !fireAt.After(n.now()) {
		n.log.Debug("reminder_in_past_dropped", zap.String("id", id), zap.Time("fire_at", fireAt))
		return nil
	}

	entryID, err := n.timer.ScheduleOnce(fireAt, func() { n.fire(id, title, body) })
	if err != nil {
		return fmt.Errorf("schedule reminder %s: %w", id, err)
	}
	n.entries[id] = entryID
	return nil
}

func (n *CronNotifier) Cancel(_ context.Context, ids []string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, id := range ids {
		n.removeLocked(id)
	}
	return nil
}

// Pending returns the number of reminders waiting to fire.
func (n *CronNotifier) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.entries)
}

func (n *CronNotifier) fire(id, title, body string) {
	n.mu.Lock()
	entryID, ok := n.entries[id]
	if ok {
		delete(n.entries, id)
		n.timer.Remove(entryID)
	}
	n.mu.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()
	if err := n.deliverer.Deliver(ctx, title, body); err != nil {
		n.log.Error("reminder_delivery_failed", zap.String("id", id), zap.Error(err))
		return
	}
	n.log.Info("reminder_delivered", zap.String("id", id))
}

func (n *CronNotifier) removeLocked(id string) {
	if entryID, ok := n.entries[id]; ok {
		n.timer.Remove(entryID)
		delete(n.entries, id)
	}
}
