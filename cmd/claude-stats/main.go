package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/olliecrow/claude_stats/internal/config"
	"github.com/olliecrow/claude_stats/internal/errors"
	"github.com/olliecrow/claude_stats/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	err := root.Execute()
	errors.Report(os.Stderr, err)
	return errors.ExitCode(err)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "claude-stats",
		Short: "Live Claude subscription usage in the terminal",
		Long: `claude-stats shows your Claude subscription rate limits as live gauges.

It reads the OAuth token that Claude Code stores in ~/.claude/.credentials.json,
polls the usage endpoint every few seconds and redraws in place. The dashboard
is read-only. Press q, Esc or Ctrl+C to exit.

Examples:
  claude-stats
  claude-stats --interval 10s --no-color
  claude-stats doctor`,
		Version:       version.Version,
		Args:          usageArgs(cobra.NoArgs),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd)
		},
	}
	root.SetVersionTemplate("claude-stats {{.Version}}\n")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.WrapWithCode(err, errors.ErrUsage,
			"Invalid flag for '"+cmd.CommandPath()+"'",
			"Run '"+cmd.CommandPath()+" --help' for usage")
	})
	root.CompletionOptions.DisableDefaultCmd = true

	config.BindFlags(root.Flags())
	root.Flags().BoolP("version", "V", false, "print version and exit")

	root.AddCommand(newDoctorCmd(), newCompletionCmd(), newConfigCmd())
	return root
}

// usageArgs tags argument validation failures so they exit with status 2.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return errors.WrapWithCode(err, errors.ErrUsage,
				"Invalid arguments for '"+cmd.CommandPath()+"'",
				"Run '"+cmd.CommandPath()+" --help' for usage")
		}
		return nil
	}
}
