package main

import (
	"context"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/olliecrow/claude_stats/internal/config"
	"github.com/olliecrow/claude_stats/internal/errors"
	"github.com/olliecrow/claude_stats/internal/logger"
	"github.com/olliecrow/claude_stats/internal/poller"
	"github.com/olliecrow/claude_stats/internal/tui"
	"github.com/olliecrow/claude_stats/internal/usage"
	"github.com/olliecrow/claude_stats/internal/version"
)

const debugLogFile = "claude-stats-debug.log"

func runDashboard(cmd *cobra.Command) error {
	cfg, cfgPath, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New(errors.ErrTerminal,
			"Interactive dashboard requires a TTY",
			"Run claude-stats from a terminal, or use 'claude-stats doctor' for a one-shot check")
	}

	closeLog, err := redirectLogging()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrTerminal, "Cannot open debug log", "Unset "+logger.DebugEnvVar+" or check directory permissions")
	}
	defer closeLog()

	if cfg.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	appLog := logger.NewEnvLogger("[claude-stats]")
	if cfgPath != "" {
		appLog.Debug("config loaded from %s", cfgPath)
	}

	source := usage.NewOAuthSource(cfg.Endpoint, cfg.FetchTimeout).WithUserAgent(version.UserAgent())
	defer source.Close()

	p := poller.New(usage.NewFileCredentials(cfg.CredentialsPath), source,
		poller.WithTimeout(cfg.FetchTimeout),
		poller.WithLogger(logger.NewEnvLogger("[poller]")),
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var changes <-chan struct{}
	if cfg.WatchCredentials {
		ch, err := usage.WatchCredentials(ctx, cfg.CredentialsPath)
		if err != nil {
			appLog.Warn("credentials watcher disabled: %v", err)
		} else {
			changes = ch
		}
	}

	err = tui.Run(tui.Options{
		Poller:            p,
		RefreshInterval:   cfg.RefreshInterval,
		TickRate:          cfg.TickRate,
		SlowThreshold:     cfg.SlowThreshold,
		NoColor:           cfg.NoColor,
		AltScreen:         cfg.AltScreen,
		CredentialChanges: changes,
		Logger:            appLog,
	})
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrTerminal, "Dashboard stopped unexpectedly", "")
	}
	return nil
}

// redirectLogging keeps std log output off the screen while the dashboard
// owns it: into debugLogFile when debugging, nowhere otherwise.
func redirectLogging() (func(), error) {
	if !logger.DebugEnabled() {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(debugLogFile, "claude-stats")
	if err != nil {
		return func() {}, err
	}
	return func() { _ = f.Close() }, nil
}
