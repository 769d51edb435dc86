package reminder

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LogNotifier records reminder requests in the log without delivering
// them. Short-lived CLI commands use it; the bot rebuilds real reminders
// from the store when it starts.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{log: log.Named("log_notifier")}
}

func (n *LogNotifier) RequestPermission(context.Context) (bool, error) {
	return true, nil
}

func (n *LogNotifier) Schedule(_ context.Context, id, title, body string, fireAt time.Time) error {
	n.log.Info("reminder_deferred",
		zap.String("id", id),
		zap.String("title", title),
		zap.String("body", body),
		zap.Time("fire_at", fireAt),
	)
	return nil
}

func (n *LogNotifier) Cancel(_ context.Context, ids []string) error {
	n.log.Info("reminder_cancel_deferred", zap.Strings("ids", ids))
	return nil
}
