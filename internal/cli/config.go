package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/fluidtasks/internal/config"
)

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the merged config as YAML",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				e, err := opts.load()
				if err != nil {
					return err
				}
				defer e.Close()
				out, err := yaml.Marshal(e.cfg)
				if err != nil {
					return fail(err)
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), configFile(opts, config.Config{}))
				return nil
			},
		},
	)
	return cmd
}

// configFile is the file the board watches for live reloads.
func configFile(opts *options, cfg config.Config) string {
	switch {
	case opts.configPath != "":
		return opts.configPath
	case cfg.File != "":
		return cfg.File
	default:
		return filepath.Join(config.Dir(), "config.yaml")
	}
}
