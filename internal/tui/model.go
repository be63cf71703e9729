package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/olliecrow/claude_stats/internal/logger"
	"github.com/olliecrow/claude_stats/internal/poller"
)

// Poller is the part of *poller.Poller the loop drives.
type Poller interface {
	Dispatch() error
	TryRecv() (poller.Result, bool)
}

type Options struct {
	Poller          Poller
	RefreshInterval time.Duration
	TickRate        time.Duration
	SlowThreshold   time.Duration
	NoColor         bool
	AltScreen       bool
	// CredentialChanges, when set, requests an early refresh on each signal.
	CredentialChanges <-chan struct{}
	Logger            logger.Logger
}

type Model struct {
	poller        Poller
	interval      time.Duration
	tickRate      time.Duration
	slowThreshold time.Duration
	changes       <-chan struct{}
	log           logger.Logger
	keys          keyMap

	width  int
	height int

	now   time.Time
	state viewState
	// Set by a credentials change; honoured at the next idle tick.
	refreshRequested bool

	styles styles
}

type keyMap struct {
	Quit key.Binding
}

// Raw mode delivers ctrl+c as a key press rather than SIGINT.
func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

type tickMsg struct {
	at time.Time
}

type credentialsChangedMsg struct{}

const (
	defaultInterval      = 5 * time.Second
	defaultTickRate      = 100 * time.Millisecond
	defaultSlowThreshold = 3 * time.Second
)

func NewModel(opts Options) Model {
	interval := opts.RefreshInterval
	if interval <= 0 {
		interval = defaultInterval
	}
	tickRate := opts.TickRate
	if tickRate <= 0 {
		tickRate = defaultTickRate
	}
	slow := opts.SlowThreshold
	if slow <= 0 {
		slow = defaultSlowThreshold
	}
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}

	return Model{
		poller:        opts.Poller,
		interval:      interval,
		tickRate:      tickRate,
		slowThreshold: slow,
		changes:       opts.CredentialChanges,
		log:           log,
		keys:          defaultKeyMap(),
		now:           time.Now(),
		state:         viewState{working: true},
		styles:        defaultStyles(opts.NoColor),
	}
}

// Init dispatches the first fetch right away; the state already shows it as
// in flight.
func (m Model) Init() tea.Cmd {
	if err := m.poller.Dispatch(); err != nil {
		m.log.Error("initial dispatch failed: %v", err)
	}
	return tea.Batch(tickCmd(m.tickRate), waitForCredentialsChange(m.changes))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(v, m.keys.Quit) {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = v.Width
		m.height = v.Height
	case tickMsg:
		m.now = v.at
		m = m.step(v.at)
		return m, tickCmd(m.tickRate)
	case credentialsChangedMsg:
		m.log.Debug("credentials changed, requesting refresh")
		m.refreshRequested = true
		return m, waitForCredentialsChange(m.changes)
	}
	return m, nil
}

// step drains a finished fetch, then dispatches the next one when it is due.
// A fetch is never dispatched while another is in flight.
func (m Model) step(now time.Time) Model {
	if res, ok := m.poller.TryRecv(); ok {
		prev := m.state.health
		m.state.apply(res, now, m.slowThreshold)
		if prev != m.state.health {
			m.log.Info("health %s -> %s", prev, m.state.health)
		}
	}

	due := m.state.refreshDue(now, m.interval) || (m.refreshRequested && !m.state.working)
	if !due {
		return m
	}
	if err := m.poller.Dispatch(); err != nil {
		m.log.Warn("dispatch skipped: %v", err)
		return m
	}
	m.state.working = true
	m.refreshRequested = false
	return m
}

func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return "initializing..."
	}
	return render(m.state, m.width, m.height, m.now, m.styles)
}

func tickCmd(rate time.Duration) tea.Cmd {
	return tea.Tick(rate, func(t time.Time) tea.Msg {
		return tickMsg{at: t}
	})
}

func waitForCredentialsChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return credentialsChangedMsg{}
	}
}

// Run blocks until the user quits. The program restores the terminal on
// every exit path.
func Run(opts Options) error {
	model := NewModel(opts)
	progOpts := []tea.ProgramOption{}
	if opts.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	prog := tea.NewProgram(model, progOpts...)
	_, err := prog.Run()
	return err
}
