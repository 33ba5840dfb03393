package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sandeepkv93/fluidtasks/internal/storage"
	"github.com/sandeepkv93/fluidtasks/internal/update"
)

// localCmd runs fn against the local state database, which needs no server.
func localCmd(opts *options, fn func(cmd *cobra.Command, repo *storage.SQLiteRepository, local *storage.LocalState, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := opts.load()
		if err != nil {
			return err
		}
		defer e.Close()
		repo, local, err := e.openState()
		if err != nil {
			return err
		}
		defer repo.Close()
		return fn(cmd, repo, local, args)
	}
}

func newProfileCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit the local user profile",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the stored profile",
		Args:  cobra.NoArgs,
		RunE: localCmd(opts, func(cmd *cobra.Command, _ *storage.SQLiteRepository, local *storage.LocalState, _ []string) error {
			p, ok, err := local.Profile(cmd.Context())
			if err != nil {
				return fail(err)
			}
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				if !ok {
					return printJSON(out, nil)
				}
				return printJSON(out, p)
			}
			if !ok {
				fmt.Fprintln(out, "No profile saved. Use 'fluidtasks profile set --name NAME --username USER'.")
				return nil
			}
			fmt.Fprintln(out, update.Greeting(&p))
			fmt.Fprintf(out, "username:  %s\n", p.Username)
			if p.Email != "" {
				fmt.Fprintf(out, "email:     %s\n", p.Email)
			}
			if p.Gender != "" {
				fmt.Fprintf(out, "gender:    %s\n", p.Gender)
			}
			for _, in := range p.Interests {
				fmt.Fprintf(out, "interest:  %s\n", in)
			}
			return nil
		}),
	}

	var name, username, email, gender string
	var interests []string
	set := &cobra.Command{
		Use:   "set",
		Short: "Create or update the profile",
		Long:  `Only the given flags change; other fields keep their stored values.`,
		Args:  cobra.NoArgs,
		RunE: localCmd(opts, func(cmd *cobra.Command, _ *storage.SQLiteRepository, local *storage.LocalState, _ []string) error {
			ctx := cmd.Context()
			p, _, err := local.Profile(ctx)
			if err != nil {
				return fail(err)
			}
			fs := cmd.Flags()
			if changed(fs, "name") {
				p.Name = name
			}
			if changed(fs, "username") {
				p.Username = username
			}
			if changed(fs, "email") {
				p.Email = email
			}
			if changed(fs, "gender") {
				p.Gender = gender
			}
			if changed(fs, "interest") {
				p.Interests = interests
			}
			if err := local.SaveProfile(ctx, p); err != nil {
				return fail(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "profile saved")
			return nil
		}),
	}
	set.Flags().StringVar(&name, "name", "", "display name")
	set.Flags().StringVar(&username, "username", "", "username")
	set.Flags().StringVar(&email, "email", "", "email address")
	set.Flags().StringVar(&gender, "gender", "", "gender")
	set.Flags().StringSliceVar(&interests, "interest", nil, "interests (repeatable, replaces the list)")

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Forget the profile and workplace shortcuts",
		Args:  cobra.NoArgs,
		RunE: localCmd(opts, func(cmd *cobra.Command, _ *storage.SQLiteRepository, local *storage.LocalState, _ []string) error {
			if err := local.Reset(cmd.Context()); err != nil {
				return fail(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "local state cleared")
			return nil
		}),
	}

	cmd.AddCommand(show, set, reset)
	return cmd
}

func changed(fs *pflag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	return f != nil && f.Changed
}

func newWorkplaceCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workplace",
		Aliases: []string{"wp"},
		Short:   "Manage workplace shortcuts",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List shortcuts",
			Args:  cobra.NoArgs,
			RunE: localCmd(opts, func(cmd *cobra.Command, _ *storage.SQLiteRepository, local *storage.LocalState, _ []string) error {
				list, err := local.Workplaces(cmd.Context())
				if err != nil {
					return fail(err)
				}
				out := cmd.OutOrStdout()
				if opts.jsonOut {
					return printJSON(out, list)
				}
				for _, w := range list {
					fmt.Fprintf(out, "%-10s %-12s %s\n", shortID(w.ID), w.Name, w.URL)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "add NAME URL",
			Short: "Add a shortcut",
			Args:  cobra.ExactArgs(2),
			RunE: localCmd(opts, func(cmd *cobra.Command, _ *storage.SQLiteRepository, local *storage.LocalState, args []string) error {
				w, err := local.AddWorkplace(cmd.Context(), args[0], args[1])
				if err != nil {
					return fail(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", w.Name, shortID(w.ID))
				return nil
			}),
		},
		&cobra.Command{
			Use:     "remove ID|NAME",
			Aliases: []string{"rm"},
			Short:   "Remove a shortcut",
			Args:    cobra.ExactArgs(1),
			RunE: localCmd(opts, func(cmd *cobra.Command, _ *storage.SQLiteRepository, local *storage.LocalState, args []string) error {
				if err := local.RemoveWorkplace(cmd.Context(), args[0]); err != nil {
					return fail(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
				return nil
			}),
		},
	)
	return cmd
}

func newHistoryCmd(opts *options) *cobra.Command {
	var taskID string
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent reminders and achievements",
		Args:  cobra.NoArgs,
		RunE: localCmd(opts, func(cmd *cobra.Command, repo *storage.SQLiteRepository, _ *storage.LocalState, _ []string) error {
			items, err := repo.ListNotifications(cmd.Context(), storage.NotificationListFilter{TaskID: taskID, Limit: limit})
			if err != nil {
				return fail(err)
			}
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return printJSON(out, items)
			}
			if len(items) == 0 {
				fmt.Fprintln(out, "No notifications yet.")
				return nil
			}
			for _, n := range items {
				fmt.Fprintf(out, "%s  %-11s %s\n", n.CreatedAt.Local().Format(time.DateTime), n.Kind, n.Message)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&taskID, "task", "", "only notifications for this task id")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries")
	return cmd
}
