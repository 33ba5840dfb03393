package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/fluidtasks/internal/clierr"
	"github.com/sandeepkv93/fluidtasks/internal/commands"
	"github.com/sandeepkv93/fluidtasks/internal/gamification"
	"github.com/sandeepkv93/fluidtasks/internal/model"
	"github.com/sandeepkv93/fluidtasks/internal/update"
)

func newListCmd(opts *options) *cobra.Command {
	var tag, search string
	var all bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Long:    `Lists pending tasks. Use --all to include completed ones.`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.load()
			if err != nil {
				return err
			}
			defer e.Close()
			st, err := e.loadedStore(cmd.Context())
			if err != nil {
				return err
			}
			tasks := st.Filter(search, tag)
			if !all {
				kept := tasks[:0]
				for _, t := range tasks {
					if !t.Completed {
						kept = append(kept, t)
					}
				}
				tasks = kept
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), tasks)
			}
			printTasks(cmd.OutOrStdout(), tasks, time.Now())
			return nil
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "only tasks carrying this tag")
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive title search")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include completed tasks")
	return cmd
}

func printTasks(w io.Writer, tasks []model.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return
	}
	fmt.Fprintf(w, "%-8s %-3s %-6s %-18s %s\n", "ID", "", "PRI", "DUE", "TITLE")
	for _, t := range tasks {
		check := "[ ]"
		if t.Completed {
			check = "[x]"
		}
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.In(now.Location()).Format("2006-01-02 15:04")
		}
		prio := string(t.Priority)
		if prio == "" {
			prio = "-"
		}
		line := fmt.Sprintf("%-8s %s %-6s %-18s %s", shortID(t.ID), check, prio, due, t.Title)
		if n := len(t.Subtasks); n > 0 {
			line += fmt.Sprintf(" (%d/%d)", t.CompletedSubtasks(), n)
		}
		fmt.Fprintln(w, line)
	}
}

func newAddCmd(opts *options) *cobra.Command {
	var due string
	var tags []string
	cmd := &cobra.Command{
		Use:   "add TITLE...",
		Short: "Create a task",
		Long: `Creates a task. #words in the title become tags. Without --due the task
is due 24 hours from now. --due accepts RFC3339, "YYYY-MM-DD HH:MM",
"YYYY-MM-DD", "HH:MM", "+90m", "today" or "tomorrow".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dueAt *time.Time
			if due != "" {
				at, err := commands.ParseDue(due, time.Now())
				if err != nil {
					return clierr.Newf(clierr.InvalidDate, "invalid --due %q", due)
				}
				dueAt = &at
			}
			e, err := opts.load()
			if err != nil {
				return err
			}
			defer e.Close()
			st, err := e.loadedStore(cmd.Context())
			if err != nil {
				return err
			}
			task, err := st.AddTask(cmd.Context(), strings.Join(args, " "), dueAt, tags...)
			if err != nil {
				return fail(err)
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), task)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", update.TaskAddedMessage, shortID(task.ID), task.Title)
			if task.Priority != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "priority: %s (%s)\n", task.Priority, task.PriorityReasoning)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&due, "due", "", "due date")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "extra tags (repeatable)")
	return cmd
}

// printPresenter writes gamification feedback as plain lines.
type printPresenter struct {
	w io.Writer
}

func (p printPresenter) Achievement(_ context.Context, ev model.AchievementEvent) {
	fmt.Fprintf(p.w, "🏆 %s (+%d XP)\n", ev.Message, ev.XPGained)
}

func (p printPresenter) Completion(message string) {
	fmt.Fprintln(p.w, message)
}

func newToggleCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "toggle ID",
		Aliases: []string{"done"},
		Short:   "Toggle a task's completion",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load()
			if err != nil {
				return err
			}
			defer e.Close()
			ctx := cmd.Context()
			st, err := e.loadedStore(ctx)
			if err != nil {
				return err
			}
			task, err := resolveTask(st, args[0])
			if err != nil {
				return err
			}
			res, err := st.ToggleCompletion(ctx, task.ID)
			if err != nil {
				return fail(err)
			}
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return printJSON(out, map[string]any{
					"task":        res.Task,
					"kind":        res.Kind.String(),
					"xp_gained":   res.XPGained,
					"achievement": res.Achievement,
				})
			}
			g := gamification.New(e.client, printPresenter{w: out}, e.logger)
			if g.Reconcile(ctx, res) == gamification.OutcomeNone {
				fmt.Fprintf(out, "Reopened %s %s\n", shortID(res.Task.ID), res.Task.Title)
			}
			return nil
		},
	}
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load()
			if err != nil {
				return err
			}
			defer e.Close()
			st, err := e.loadedStore(cmd.Context())
			if err != nil {
				return err
			}
			task, err := resolveTask(st, args[0])
			if err != nil {
				return err
			}
			if err := st.DeleteTask(cmd.Context(), task.ID); err != nil {
				return fail(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", update.TaskDeletedMessage, shortID(task.ID), task.Title)
			return nil
		},
	}
}

func newBreakdownCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "breakdown ID",
		Aliases: []string{"split"},
		Short:   "Generate subtasks for a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load()
			if err != nil {
				return err
			}
			defer e.Close()
			st, err := e.loadedStore(cmd.Context())
			if err != nil {
				return err
			}
			task, err := resolveTask(st, args[0])
			if err != nil {
				return err
			}
			subtasks, err := st.GenerateBreakdown(cmd.Context(), task.ID)
			if err != nil {
				return fail(err)
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), subtasks)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", task.Title)
			for _, s := range subtasks {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", s.Title)
			}
			return nil
		},
	}
}
