// Package watchdog runs the idle control loop: it samples user idle time,
// pauses the miner while the user is active and resumes it once the user
// has been idle past the threshold.
package watchdog

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"idlerig/pkg/idle"
)

const exitPauseTimeout = 5 * time.Second

// IdleSource is the part of idle.Source the loop needs
type IdleSource interface {
	IdleTime(ctx context.Context) (time.Duration, error)
}

// Controller issues the remote commands. Failures should be *rpc.Error.
type Controller interface {
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
}

// Recorder persists transitions and iteration failures. Recording is best
// effort; a failing Recorder never stops the loop.
type Recorder interface {
	RecordTransition(from, to string, idle time.Duration, command string) error
	RecordError(kind string, err error) error
}

// Config holds the loop timings. Both values must be positive.
type Config struct {
	IdleThreshold time.Duration
	PollInterval  time.Duration
	PauseOnExit   bool
}

// StepResult describes one iteration
type StepResult struct {
	Idle    time.Duration
	Target  RunState
	State   RunState
	Command string
	Sleep   time.Duration
}

// Changed reports whether the iteration moved the loop to a new state
func (r StepResult) Changed(prev RunState) bool {
	return r.State != prev
}

type Loop struct {
	cfg      Config
	source   IdleSource
	client   Controller
	recorder Recorder
	logger   *slog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

type Option func(*Loop)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(l *Loop) {
		l.recorder = r
	}
}

// WithSleeper replaces the end-of-iteration sleep
func WithSleeper(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Loop) {
		if fn != nil {
			l.sleep = fn
		}
	}
}

func New(cfg Config, source IdleSource, client Controller, opts ...Option) (*Loop, error) {
	if cfg.IdleThreshold <= 0 {
		return nil, errors.Errorf("idle threshold must be positive, got %v", cfg.IdleThreshold)
	}
	if cfg.PollInterval <= 0 {
		return nil, errors.Errorf("poll interval must be positive, got %v", cfg.PollInterval)
	}
	if source == nil || client == nil {
		return nil, errors.New("idle source and controller are required")
	}

	l := &Loop{
		cfg:    cfg,
		source: source,
		client: client,
		logger: slog.Default(),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Step runs a single iteration starting from state. On failure the returned
// result carries the unchanged state and the poll interval as its sleep.
func (l *Loop) Step(ctx context.Context, state RunState) (StepResult, error) {
	res := StepResult{State: state, Sleep: l.cfg.PollInterval}

	idleTime, err := l.source.IdleTime(ctx)
	if err != nil {
		var qe *idle.QueryError
		if !errors.As(err, &qe) {
			err = &idle.QueryError{Source: "unknown", Err: err}
		}
		return res, err
	}

	target, sleep := Decide(idleTime, l.cfg.IdleThreshold, l.cfg.PollInterval)
	res.Idle = idleTime
	res.Target = target

	if state != target {
		command, call := "resume", l.client.Resume
		if target == StatePaused {
			command, call = "pause", l.client.Pause
		}
		res.Command = command

		if err := call(ctx); err != nil {
			return res, err
		}
		res.State = target
	}

	res.Sleep = sleep
	return res, nil
}

// Run loops until ctx is cancelled and then returns ctx.Err(). Iteration
// failures are logged and retried; they never end the loop.
func (l *Loop) Run(ctx context.Context) error {
	state := StateUnknown
	lastPrinted := StateUnknown

	l.logger.Info("Watchdog started",
		"threshold", l.cfg.IdleThreshold,
		"interval", l.cfg.PollInterval)

	for {
		res, err := l.Step(ctx, state)
		switch {
		case err != nil && ctx.Err() != nil:
			return l.shutdown(ctx, state)
		case err != nil:
			l.logger.Error("Iteration failed", "error", err, "state", state, "retry_in", res.Sleep)
			l.recordError(err)
		default:
			if res.Changed(state) {
				l.recordTransition(state, res)
			}
			state = res.State

			if state != lastPrinted {
				l.logger.Info("State changed", "state", state)
				l.logger.Debug("Will check again", "in", res.Sleep)
				lastPrinted = state
			} else {
				l.logger.Debug("State unchanged", "state", state, "idle", res.Idle, "next_check", res.Sleep)
			}
		}

		if err := l.sleep(ctx, res.Sleep); err != nil {
			return l.shutdown(ctx, state)
		}
	}
}

func (l *Loop) shutdown(ctx context.Context, state RunState) error {
	if l.cfg.PauseOnExit && state == StateRunning {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), exitPauseTimeout)
		defer cancel()

		if err := l.client.Pause(pctx); err != nil {
			l.logger.Warn("Failed to pause miner on exit", "error", err)
		} else {
			l.logger.Info("Miner paused on exit")
			l.recordTransition(state, StepResult{State: StatePaused, Command: "pause"})
		}
	}
	l.logger.Info("Watchdog stopped", "state", state)
	return ctx.Err()
}

func (l *Loop) recordTransition(from RunState, res StepResult) {
	if l.recorder == nil {
		return
	}
	if err := l.recorder.RecordTransition(from.String(), res.State.String(), res.Idle, res.Command); err != nil {
		l.logger.Warn("Failed to record transition", "error", err)
	}
}

func (l *Loop) recordError(err error) {
	if l.recorder == nil {
		return
	}
	if recErr := l.recorder.RecordError(ErrorKind(err), err); recErr != nil {
		l.logger.Warn("Failed to record error", "error", recErr, "original", err)
	}
}

// ErrorKind classifies an iteration failure as "idle" or "rpc"
func ErrorKind(err error) string {
	var qe *idle.QueryError
	if errors.As(err, &qe) {
		return "idle"
	}
	return "rpc"
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
