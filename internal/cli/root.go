// Package cli implements the fluidtasks command tree.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/fluidtasks/internal/api"
	"github.com/sandeepkv93/fluidtasks/internal/clierr"
	"github.com/sandeepkv93/fluidtasks/internal/config"
	"github.com/sandeepkv93/fluidtasks/internal/model"
	"github.com/sandeepkv93/fluidtasks/internal/storage"
	"github.com/sandeepkv93/fluidtasks/internal/store"
)

// version is set at build time via ldflags.
var version = "dev"

type options struct {
	configPath string
	serverURL  string
	jsonOut    bool
}

// NewRootCmd builds a fresh command tree; each call has its own flag state.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "fluidtasks",
		Short: "Terminal client for the FluidTasks task service",
		Long: `fluidtasks manages tasks on a FluidTasks server.

Run it without arguments to open the interactive board. Subcommands cover
scripting use: listing and editing tasks, stats, reports, a headless
reminder loop and a local reference server.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to config.yaml")
	pf.StringVar(&opts.serverURL, "server", "", "task service base URL (overrides config)")
	pf.BoolVar(&opts.jsonOut, "json", false, "output as JSON")

	root.AddCommand(
		newListCmd(opts),
		newAddCmd(opts),
		newToggleCmd(opts),
		newDeleteCmd(opts),
		newBreakdownCmd(opts),
		newStatsCmd(opts),
		newReportCmd(opts),
		newRemindCmd(opts),
		newServeCmd(opts),
		newConfigCmd(opts),
		newProfileCmd(opts),
		newWorkplaceCmd(opts),
		newHistoryCmd(opts),
	)
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	err := NewRootCmd().Execute()
	if err == nil {
		return 0
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	var ce *clierr.Error
	if errors.As(err, &ce) {
		return ce.ExitCode()
	}
	return 1
}

// fail classifies err for Execute.
func fail(err error) error {
	if err == nil {
		return nil
	}
	return clierr.From(err)
}

type env struct {
	cfg    config.Config
	logger *slog.Logger
	client *api.Client
	closer io.Closer
}

func (e *env) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

func (o *options) load() (*env, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fail(err)
	}
	if o.serverURL != "" {
		cfg.ServerURL = o.serverURL
	}
	logger, closer, err := config.OpenLogger(cfg)
	if err != nil {
		return nil, fail(err)
	}
	client, err := api.New(cfg.ServerURL, api.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		_ = closer.Close()
		return nil, clierr.Newf(clierr.InvalidInput, "invalid server url %q: %v", cfg.ServerURL, err)
	}
	return &env{cfg: cfg, logger: logger, client: client, closer: closer}, nil
}

// loadedStore returns a store filled from the server.
func (e *env) loadedStore(ctx context.Context) (*store.TaskStore, error) {
	st := store.New(e.client, store.WithLogger(e.logger))
	if err := st.Refresh(ctx); err != nil {
		return nil, fail(err)
	}
	return st, nil
}

func (e *env) openState() (*storage.SQLiteRepository, *storage.LocalState, error) {
	repo, err := storage.OpenSQLite(e.cfg.StatePath)
	if err != nil {
		return nil, nil, clierr.Newf(clierr.InternalError, "open local state: %v", err)
	}
	return repo, storage.NewLocalState(repo), nil
}

// resolveTask finds a task by exact id or unique id prefix.
func resolveTask(st *store.TaskStore, ref string) (model.Task, error) {
	ref = strings.TrimSpace(ref)
	if t, ok := st.Get(ref); ok {
		return t, nil
	}
	var found []model.Task
	for _, t := range st.ListTasks() {
		if strings.HasPrefix(t.ID, ref) {
			found = append(found, t)
		}
	}
	switch len(found) {
	case 0:
		return model.Task{}, clierr.Newf(clierr.TaskNotFound, "no task matches %q", ref)
	case 1:
		return found[0], nil
	default:
		return model.Task{}, clierr.Newf(clierr.AmbiguousID, "%q matches %d tasks", ref, len(found))
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
