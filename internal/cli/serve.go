package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/fluidtasks/internal/devserver"
)

func newServeCmd(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an in-memory reference task server",
		Long: `Serves the task API from memory so the client can be tried without the
real service. Data is lost on exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.load()
			if err != nil {
				return err
			}
			defer e.Close()
			if addr == "" {
				addr = e.cfg.ServeAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			gin.SetMode(gin.ReleaseMode)
			srv := devserver.NewServer(devserver.WithLogger(e.logger))
			fmt.Fprintf(cmd.OutOrStdout(), "serving on http://%s\n", addr)
			if err := srv.Run(ctx, addr); err != nil {
				return fail(err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to serve_addr)")
	return cmd
}
