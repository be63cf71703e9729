// Package poller runs usage fetches off the UI goroutine.
//
// A Poller has at most one fetch outstanding. Dispatch starts a fresh
// goroutine for each fetch; the goroutine computes a Result and hands it over
// through a one-slot channel, never touching caller state. The caller drains
// that channel without blocking via TryRecv. There are no retries and no
// cancellation: an abandoned fetch ends at its own timeout.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/olliecrow/claude_stats/internal/logger"
	"github.com/olliecrow/claude_stats/internal/usage"
)

// ErrInFlight is returned by Dispatch while a previous result is undrained.
var ErrInFlight = errors.New("fetch already in flight")

// Result is the outcome of one dispatched fetch.
type Result struct {
	// Snapshot is set iff Err is nil.
	Snapshot *usage.Snapshot
	Err      error
	// Elapsed is the wall time of the network call; zero when no call was made.
	Elapsed time.Duration
	// Plan is the subscription display name, empty when unknown.
	Plan string
}

type Poller struct {
	creds   usage.CredentialSource
	source  usage.Source
	timeout time.Duration
	log     logger.Logger

	results     chan Result
	outstanding bool
}

type Option func(*Poller)

func WithTimeout(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.log = l
		}
	}
}

func New(creds usage.CredentialSource, source usage.Source, opts ...Option) *Poller {
	p := &Poller{
		creds:   creds,
		source:  source,
		timeout: usage.DefaultTimeout,
		log:     logger.Noop(),
		results: make(chan Result, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Dispatch starts one fetch. It must be called from the goroutine that also
// calls TryRecv.
func (p *Poller) Dispatch() error {
	if p.outstanding {
		return ErrInFlight
	}
	p.outstanding = true
	p.log.Debug("dispatching fetch")

	results := p.results
	go func() {
		results <- p.run()
	}()
	return nil
}

// TryRecv returns the completed result, if any, without blocking.
func (p *Poller) TryRecv() (Result, bool) {
	select {
	case r := <-p.results:
		p.outstanding = false
		return r, true
	default:
		return Result{}, false
	}
}

// Outstanding reports whether a dispatched result has not been drained yet.
func (p *Poller) Outstanding() bool {
	return p.outstanding
}

func (p *Poller) run() (res Result) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("fetch panicked: %v", r)
			res = Result{Err: fmt.Errorf("fetch panicked: %v", r)}
		}
	}()

	creds, err := p.creds.Load()
	if err != nil {
		p.log.Debug("credentials unavailable: %v", err)
		if located, ok := p.creds.(interface{ Path() string }); ok {
			return Result{Err: usage.NoTokenAt(located.Path())}
		}
		return Result{Err: usage.ErrNoToken}
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	start := time.Now()
	snapshot, err := p.source.Fetch(ctx, creds.Token)
	elapsed := time.Since(start)
	if err == nil && snapshot == nil {
		err = errors.New("empty usage response")
	}
	if err != nil {
		p.log.Debug("fetch failed after %s: %v", elapsed, err)
		return Result{Err: err, Elapsed: elapsed, Plan: creds.Plan}
	}
	p.log.Debug("fetch completed in %s", elapsed)
	return Result{Snapshot: snapshot, Elapsed: elapsed, Plan: creds.Plan}
}
