package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show level, XP, streak and badges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.load()
			if err != nil {
				return err
			}
			defer e.Close()
			stats, err := e.client.Stats(cmd.Context())
			if err != nil {
				return fail(err)
			}
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return printJSON(out, stats)
			}
			fmt.Fprintf(out, "level:     %d\n", stats.Level)
			fmt.Fprintf(out, "xp:        %d / %d (%.0f%%)\n", stats.XP, stats.NextLevelXP(), stats.Progress()*100)
			fmt.Fprintf(out, "streak:    %d day(s)\n", stats.StreakDays)
			fmt.Fprintf(out, "today:     %d completed\n", stats.TasksCompletedToday)
			if len(stats.Badges) > 0 {
				fmt.Fprintf(out, "badges:    %s\n", strings.Join(stats.Badges, ", "))
			}
			return nil
		},
	}
}

func newReportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Show the weekly completion report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.load()
			if err != nil {
				return err
			}
			defer e.Close()
			report, err := e.client.WeeklyReport(cmd.Context())
			if err != nil {
				return fail(err)
			}
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return printJSON(out, report)
			}
			fmt.Fprintf(out, "%-5s %6s %8s\n", "DAY", "DONE", "PENDING")
			for i, label := range report.Labels {
				done, pending := 0, 0
				if i < len(report.Completed) {
					done = report.Completed[i]
				}
				if i < len(report.Pending) {
					pending = report.Pending[i]
				}
				fmt.Fprintf(out, "%-5s %6d %8d\n", label, done, pending)
			}
			fmt.Fprintf(out, "total: %d, completed: %d\n", report.Total, report.TotalCompleted)
			return nil
		},
	}
}
