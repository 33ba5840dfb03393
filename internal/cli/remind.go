package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/fluidtasks/internal/config"
	"github.com/sandeepkv93/fluidtasks/internal/model"
	"github.com/sandeepkv93/fluidtasks/internal/notify"
	"github.com/sandeepkv93/fluidtasks/internal/reminder"
	"github.com/sandeepkv93/fluidtasks/internal/scheduler"
	"github.com/sandeepkv93/fluidtasks/internal/storage"
	"github.com/sandeepkv93/fluidtasks/internal/store"
)

func newDispatcher(cfg config.Config, logger *slog.Logger) *notify.Dispatcher {
	return notify.NewDispatcher(
		scheduler.NewEngine(cfg.SchedulerBuffer),
		notify.WithPlayer(notify.DefaultExecPlayer()),
		notify.WithDesktop(notify.ExecDesktopNotifier{}),
		notify.WithPermission(cfg.Permission()),
		notify.WithConfig(cfg.NotifyConfig()),
		notify.WithLogger(logger),
	)
}

// recordReminder appends every shown reminder to the local history.
func recordReminder(ctx context.Context, repo storage.Repository, logger *slog.Logger) func(taskID, message string, at time.Time) {
	return func(taskID, message string, at time.Time) {
		err := repo.AppendNotification(ctx, storage.NotificationRecord{
			TaskID:    taskID,
			Kind:      storage.NotificationReminder,
			Message:   message,
			CreatedAt: at,
		})
		if err != nil {
			logger.Warn("record reminder failed", "task_id", taskID, "err", err)
		}
	}
}

// printingNotifier echoes reminders to w before handing them on.
type printingNotifier struct {
	w    io.Writer
	next reminder.Notifier
}

func (p printingNotifier) Reminder(ctx context.Context, message string) {
	fmt.Fprintf(p.w, "%s  %s\n", time.Now().Format("15:04:05"), message)
	p.next.Reminder(ctx, message)
}

func newRemindCmd(opts *options) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Run the reminder loop without the board",
		Long: `Checks every pending task with a due date on the configured interval and
prints reminders as they arrive. Desktop notifications and sounds follow the
config. --once performs a single sweep and exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.load()
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := e.loadedStore(ctx)
			if err != nil {
				return err
			}
			repo, _, err := e.openState()
			if err != nil {
				return err
			}
			defer repo.Close()

			disp := newDispatcher(e.cfg, e.logger)
			disp.RequestPermission(ctx)
			go disp.Run(ctx)

			sched := reminder.New(st, e.client,
				printingNotifier{w: cmd.OutOrStdout(), next: disp},
				reminder.WithInterval(e.cfg.ReminderInterval),
				reminder.WithObserver(recordReminder(ctx, repo, e.logger)),
				reminder.WithLogger(e.logger),
			)
			if once {
				return fail(sched.RunOnce(ctx))
			}

			go refreshLoop(ctx, st, e.cfg.ReminderInterval, e.logger)
			fmt.Fprintf(cmd.OutOrStdout(), "watching %d task(s), checking every %s\n", st.Counts().Pending, e.cfg.ReminderInterval)
			if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fail(err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "sweep once and exit")
	return cmd
}

// refreshLoop keeps a headless store in step with the server so new tasks
// get reminders too.
func refreshLoop(ctx context.Context, st *store.TaskStore, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := st.Refresh(ctx); err != nil {
				logger.Debug("background refresh failed", "err", err)
			}
		}
	}
}

// historyPresenter records achievements before showing them.
type historyPresenter struct {
	*notify.Dispatcher
	repo   storage.Repository
	logger *slog.Logger
}

func (p historyPresenter) Achievement(ctx context.Context, ev model.AchievementEvent) {
	err := p.repo.AppendNotification(ctx, storage.NotificationRecord{
		Kind:    storage.NotificationAchievement,
		Message: ev.Message,
	})
	if err != nil {
		p.logger.Warn("record achievement failed", "err", err)
	}
	p.Dispatcher.Achievement(ctx, ev)
}
