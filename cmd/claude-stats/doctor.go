package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/olliecrow/claude_stats/internal/config"
	"github.com/olliecrow/claude_stats/internal/errors"
	"github.com/olliecrow/claude_stats/internal/usage"
	"github.com/olliecrow/claude_stats/internal/version"
)

func newDoctorCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check credentials and run one usage fetch",
		Long: `Check that the OAuth credentials file is readable and that the usage
endpoint answers, then print the result. Exits non-zero when a check fails.

Examples:
  claude-stats doctor
  claude-stats doctor --json --timeout 5s`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, jsonOutput)
		},
	}
	fs := cmd.Flags()
	fs.BoolVar(&jsonOutput, "json", false, "output report as JSON")
	fs.Duration(config.FlagTimeout, usage.DefaultTimeout, "fetch timeout")
	fs.String(config.FlagConfig, "", "config file")
	fs.String(config.FlagCredentials, "", "credentials file")
	fs.String(config.FlagEndpoint, "", "usage API endpoint")
	return cmd
}

func runDoctor(cmd *cobra.Command, jsonOutput bool) error {
	cfg, _, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	source := usage.NewOAuthSource(cfg.Endpoint, cfg.FetchTimeout).WithUserAgent(version.UserAgent())
	defer source.Close()

	report := usage.RunDoctor(cmd.Context(), usage.NewFileCredentials(cfg.CredentialsPath), source, cfg.FetchTimeout)

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	} else {
		printDoctorHuman(out, report)
	}

	if !report.Healthy() {
		if !jsonOutput && len(report.Checks) > 0 && !report.Checks[0].OK {
			return errors.New(errors.ErrCredentials,
				"No usable OAuth token in "+cfg.CredentialsPath,
				"Run 'claude' and log in to refresh the credentials file")
		}
		return &errors.ExitError{Code: 1}
	}
	return nil
}

func printDoctorHuman(w io.Writer, report usage.DoctorReport) {
	fmt.Fprintln(w, "claude-stats doctor")
	fmt.Fprintln(w)
	for _, c := range report.Checks {
		state := "FAIL"
		if c.OK {
			state = "PASS"
		}
		fmt.Fprintf(w, "[%s] %s\n", state, c.Name)
		fmt.Fprintf(w, "  %s\n", c.Details)
	}
}
