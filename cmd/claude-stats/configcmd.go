package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/olliecrow/claude_stats/internal/config"
	"github.com/olliecrow/claude_stats/internal/errors"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
		Args:  usageArgs(cobra.NoArgs),
	}
	cmd.AddCommand(newConfigPathCmd(), newConfigInitCmd())
	return cmd
}

func newConfigPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, path, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			if path == "" {
				path = config.DefaultPath()
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().String(config.FlagConfig, "", "config file")
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool
	var path string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Long: `Write the default settings to ~/.config/claude-stats/config.yaml, or to
the path given with --config.

Examples:
  claude-stats config init
  claude-stats config init --config ./claude-stats.yaml --force`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := config.Expand(path)
			if target == "" {
				target = config.DefaultPath()
			}
			if target == "" {
				return errors.New(errors.ErrConfig, "Cannot determine home directory", "Pass --config with an explicit path")
			}
			if err := config.WriteDefaults(target, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, config.FlagConfig, "", "destination file")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
