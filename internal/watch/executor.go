package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/Iron-Ham/ratch/internal/errors"
	"github.com/Iron-Ham/ratch/internal/logging"
	"github.com/Iron-Ham/ratch/internal/process"
)

// unlimitedBuffer is the results channel capacity when runs are not capped.
const unlimitedBuffer = 64

// ExecutorOptions configures an Executor.
type ExecutorOptions struct {
	// MaxInFlight caps concurrent runs; 0 means unlimited.
	MaxInFlight int
	// Timeout kills a run after this long; 0 means never.
	Timeout time.Duration
	// Logger receives one entry per finished run. Defaults to a NopLogger.
	Logger *logging.Logger
}

// Executor runs commands on worker goroutines and delivers their results on a
// channel. Each run gets its own context so that it can be canceled once a
// newer generation has been admitted.
type Executor struct {
	runner  process.Runner
	opts    ExecutorOptions
	logger  *logging.Logger
	results chan Result

	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup

	mu       sync.Mutex
	inflight map[Generation]context.CancelCauseFunc
	closed   bool
}

// NewExecutor creates an executor that runs commands with runner.
func NewExecutor(runner process.Runner, opts ExecutorOptions) *Executor {
	size := opts.MaxInFlight
	if size <= 0 {
		size = unlimitedBuffer
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Executor{
		runner:   runner,
		opts:     opts,
		logger:   logger,
		results:  make(chan Result, size),
		ctx:      ctx,
		cancel:   cancel,
		inflight: make(map[Generation]context.CancelCauseFunc),
	}
}

// Results returns the channel on which every dispatched run reports exactly
// once. Results still pending when the executor is closed are dropped.
func (e *Executor) Results() <-chan Result {
	return e.results
}

// InFlight returns the number of runs that have not yet finished.
func (e *Executor) InFlight() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.inflight)
}

// Busy reports whether the in-flight cap has been reached.
func (e *Executor) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busyLocked()
}

func (e *Executor) busyLocked() bool {
	return e.opts.MaxInFlight > 0 && len(e.inflight) >= e.opts.MaxInFlight
}

// Dispatch starts cmd as generation gen on a new worker. It returns ErrBusy at
// the in-flight cap and ErrClosed after Close.
func (e *Executor) Dispatch(gen Generation, cmd process.Command) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return errors.ErrClosed
	}
	if e.busyLocked() {
		return errors.ErrBusy
	}

	ctx, cancel := context.WithCancelCause(e.ctx)
	e.inflight[gen] = cancel
	timeout := e.opts.Timeout

	e.wg.Go(func() {
		e.run(ctx, gen, cmd, timeout)
	})
	return nil
}

func (e *Executor) run(ctx context.Context, gen Generation, cmd process.Command, timeout time.Duration) {
	defer e.release(gen)

	runCtx := ctx
	if timeout > 0 {
		var stop context.CancelFunc
		runCtx, stop = context.WithTimeoutCause(ctx, timeout, errors.ErrTimeout)
		defer stop()
	}

	start := time.Now()
	var out string
	var runErr error
	var pc panics.Catcher
	pc.Try(func() {
		out, runErr = e.runner.Run(runCtx, cmd)
	})
	if r := pc.Recovered(); r != nil {
		runErr = fmt.Errorf("%w: %v", errors.ErrPanic, r.Value)
	}

	res := Result{
		Generation: gen,
		Duration:   time.Since(start),
		Finished:   time.Now(),
	}
	if runErr != nil {
		if cause := context.Cause(runCtx); cause != nil && !errors.Is(runErr, cause) {
			runErr = fmt.Errorf("%w (%v)", cause, runErr)
		}
		res.Err = errors.NewExecutionError("command failed", runErr).
			WithGeneration(uint64(gen)).
			WithCommand(cmd.Argv)
	} else {
		res.Lines = SplitLines(out)
	}

	log := e.logger.WithGeneration(uint64(gen))
	switch {
	case errors.Is(res.Err, errors.ErrSuperseded):
		log.Debug("run superseded", "duration_ms", res.Duration.Milliseconds())
	case res.Err != nil:
		log.Warn("run failed",
			"duration_ms", res.Duration.Milliseconds(),
			"severity", errors.GetSeverity(res.Err).String(),
			"error", res.Err.Error())
	default:
		log.Debug("run finished", "duration_ms", res.Duration.Milliseconds(), "lines", len(res.Lines))
	}

	select {
	case e.results <- res:
	case <-e.ctx.Done():
	}
}

func (e *Executor) release(gen Generation) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cancel, ok := e.inflight[gen]; ok {
		cancel(nil)
		delete(e.inflight, gen)
	}
}

// Supersede cancels every in-flight run older than gen and returns how many
// were canceled. Their results still arrive, marked with ErrSuperseded.
func (e *Executor) Supersede(gen Generation) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for g, cancel := range e.inflight {
		if g < gen {
			cancel(errors.ErrSuperseded)
			n++
		}
	}
	return n
}

// SetTimeout changes the per-run timeout for runs dispatched from now on.
func (e *Executor) SetTimeout(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.Timeout = d
}

// Wait blocks until every dispatched run has delivered its result or been
// dropped by Close. The caller must keep draining Results while waiting when
// more runs than the channel capacity are in flight.
func (e *Executor) Wait() {
	e.wg.Wait()
}

// Close cancels all runs and waits for the workers to exit.
func (e *Executor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()
}
