package cli

import (
	"context"
	"errors"
	"os/exec"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/fluidtasks/internal/config"
	"github.com/sandeepkv93/fluidtasks/internal/gamification"
	"github.com/sandeepkv93/fluidtasks/internal/reminder"
	"github.com/sandeepkv93/fluidtasks/internal/store"
	"github.com/sandeepkv93/fluidtasks/internal/update"
	"github.com/sandeepkv93/fluidtasks/internal/watcher"
)

func runTUI(cmd *cobra.Command, opts *options) error {
	e, err := opts.load()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	repo, local, err := e.openState()
	if err != nil {
		return err
	}
	defer repo.Close()

	st := store.New(e.client, store.WithLogger(e.logger))
	disp := newDispatcher(e.cfg, e.logger)
	go disp.Run(ctx)

	presenter := historyPresenter{Dispatcher: disp, repo: repo, logger: e.logger}
	sched := reminder.New(st, e.client, disp,
		reminder.WithInterval(e.cfg.ReminderInterval),
		reminder.WithObserver(recordReminder(ctx, repo, e.logger)),
		reminder.WithLogger(e.logger),
	)
	go func() {
		if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			e.logger.Error("reminder loop stopped", "err", err)
		}
	}()

	model := update.NewModel(update.Deps{
		Context:      ctx,
		Store:        st,
		Notifier:     disp,
		Gamification: gamification.New(e.client, presenter, e.logger),
		Reports:      e.client,
		Local:        local,
		Reminders:    sched,
		Logger:       e.logger,
		OpenURL:      openURL,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	path := configFile(opts, e.cfg)
	w, err := watcher.New([]string{path}, func() {
		cfg, err := config.Load(path)
		if err == nil {
			disp.Reconfigure(cfg.NotifyConfig())
		} else {
			e.logger.Warn("config reload failed", "path", path, "err", err)
		}
		program.Send(update.ConfigReloadedMsg{Err: err})
	})
	if err != nil {
		e.logger.Warn("config watch disabled", "path", path, "err", err)
	} else {
		defer w.Close()
		go w.Run(ctx, func(err error) {
			e.logger.Warn("config watch error", "err", err)
		})
	}

	e.logger.Info("board started", "server", e.cfg.ServerURL)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fail(err)
	}
	return nil
}

// openURL hands a workplace link to the desktop's default handler.
func openURL(url string) error {
	var c *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		c = exec.Command("open", url)
	case "windows":
		c = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		c = exec.Command("xdg-open", url)
	}
	if err := c.Start(); err != nil {
		return err
	}
	go func() { _ = c.Wait() }()
	return nil
}
