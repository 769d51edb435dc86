package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"todo-planner/internal/model"
	"todo-planner/internal/reminder"
	"todo-planner/internal/service"
	"todo-planner/internal/validation"
)

// withTasks runs fn against a task service whose reminders are only logged.
// Commands that change tasks hold the writer lease for the whole run and
// refuse to start while the bot owns it.
func withTasks(cmd *cobra.Command, writes bool, fn func(ctx context.Context, a *app, svc *service.TaskService) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if writes {
		release, err := claimWriter(ctx, a.leases, leaseOwner("cli"), time.Now())
		if err != nil {
			return err
		}
		defer release()
	}
	a.openStore(ctx)
	return fn(ctx, a, a.taskService(a.reminders(reminder.NewLogNotifier(a.log))))
}

func newAddCmd() *cobra.Command {
	var title, date, clock, category, repeat string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task, expanding it when it repeats",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTasks(cmd, true, func(ctx context.Context, a *app, svc *service.TaskService) error {
				input, err := parseTaskInput(title, date, clock, category, repeat, time.Now().In(a.cfg.Location))
				if err != nil {
					return err
				}
				created, err := svc.CreateTask(ctx, input)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %d task(s):\n", len(created))
				for _, task := range created {
					printTask(cmd, task)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "task title (required)")
	cmd.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&clock, "time", "09:00", "time of day as HH:MM")
	cmd.Flags().StringVar(&category, "category", "", "optional category")
	cmd.Flags().StringVar(&repeat, "repeat", string(model.RepeatNone), "None, Daily, Weekdays or Weekends")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newListCmd() *cobra.Command {
	var date, category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally for one day and category",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTasks(cmd, false, func(ctx context.Context, a *app, svc *service.TaskService) error {
				var tasks []model.Task
				if date != "" {
					day, err := time.ParseInLocation("2006-01-02", date, a.cfg.Location)
					if err != nil {
						return fmt.Errorf("invalid --date %q: %w", date, err)
					}
					tasks = svc.ListForDay(day, category)
				} else {
					tasks = svc.ListAll(category)
				}
				if len(tasks) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No tasks")
					return nil
				}
				for _, task := range tasks {
					printTask(cmd, task)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "only tasks on this day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&category, "category", "", "only tasks in this category")
	return cmd
}

func newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between done and pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			return withTasks(cmd, true, func(ctx context.Context, a *app, svc *service.TaskService) error {
				task, err := svc.ToggleDone(ctx, id)
				if err != nil {
					return err
				}
				printTask(cmd, task)
				return nil
			})
		},
	}
}

func newDeleteCmd() *cobra.Command {
	var series bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task, or its whole series with --series",
		Long: "Delete a task. With --series every task sharing its title, category and " +
			"repeat option is deleted too, whatever its date.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			return withTasks(cmd, true, func(ctx context.Context, a *app, svc *service.TaskService) error {
				if !series {
					if err := svc.DeleteTask(ctx, id); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Deleted 1 task")
					return nil
				}
				removed, err := svc.DeleteSeries(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d task(s)\n", len(removed))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&series, "series", false, "delete every task of the same series")
	return cmd
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories in use",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTasks(cmd, false, func(ctx context.Context, a *app, svc *service.TaskService) error {
				for _, name := range svc.Categories() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}
}

func parseTaskInput(title, date, clock, category, repeat string, now time.Time) (service.TaskInput, error) {
	loc := now.Location()
	y, m, d := now.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)
	if strings.TrimSpace(date) != "" {
		parsed, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), loc)
		if err != nil {
			return service.TaskInput{}, fmt.Errorf("invalid --date %q: %w", date, err)
		}
		day = parsed
	}

	hour, minute, err := service.ParseClock(clock)
	if err != nil {
		return service.TaskInput{}, fmt.Errorf("invalid --time: %w", err)
	}

	opt, err := validation.ParseRepeatOption(repeat)
	if err != nil {
		return service.TaskInput{}, err
	}

	dy, dm, dd := day.Date()
	return service.TaskInput{
		Title:    title,
		Category: category,
		Date:     day,
		Time:     time.Date(dy, dm, dd, hour, minute, 0, 0, loc),
		Repeat:   opt,
	}, nil
}

func printTask(cmd *cobra.Command, task model.Task) {
	mark := " "
	if task.IsDone {
		mark = "x"
	}
	line := fmt.Sprintf("[%s] %s %s  %s", mark, task.Date.Format("2006-01-02 Mon"), task.Time.Format("15:04"), task.Title)
	if task.Category != "" {
		line += fmt.Sprintf(" (%s)", task.Category)
	}
	if task.RepeatOption != model.RepeatNone {
		line += fmt.Sprintf(" · %s", strings.ToLower(string(task.RepeatOption)))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", line, task.ID)
}
