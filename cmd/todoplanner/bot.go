package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"todo-planner/internal/bot"
	"todo-planner/internal/reminder"
	"todo-planner/internal/service"
)

func newBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot and deliver reminders",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBot(ctx)
		},
	}
}

func runBot(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.cfg.RequireTelegram(); err != nil {
		return err
	}

	owner := leaseOwner("bot")
	release, err := claimWriter(ctx, a.leases, owner, time.Now())
	if err != nil {
		return err
	}
	defer release()
	leaseCtx, stopLease := context.WithCancel(ctx)
	defer stopLease()
	go keepLease(leaseCtx, a.leases, owner, a.log)
	a.openStore(ctx)

	api, err := tgbotapi.NewBotAPI(a.cfg.TelegramToken)
	if err != nil {
		return err
	}
	a.log.Info("bot_authorized", zap.String("account", api.Self.UserName))

	scheduler := service.NewSchedulerService(a.cfg.Location)
	messenger := bot.NewMessenger(api, a.settings, a.log)
	notifier := reminder.NewCronNotifier(scheduler, messenger, a.log)
	reminders := a.reminders(notifier)
	taskSvc := a.taskService(reminders)
	agendaSvc := service.NewAgendaService(taskSvc)
	telegramBot := bot.New(api, messenger, taskSvc, agendaSvc, a.cfg.Location, a.log)

	reminders.RequestPermission(ctx)
	taskSvc.RestoreReminders(ctx, time.Now())

	if a.cfg.AgendaTime != "" {
		if _, err := scheduler.ScheduleDaily(a.cfg.AgendaTime, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := telegramBot.SendDailyAgenda(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.log.Error("daily_agenda_failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	a.log.Info("planner_started", zap.Int("tasks", len(a.store.All())), zap.Int("pending_reminders", notifier.Pending()))
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.log.Info("shutdown_complete")
	return nil
}
