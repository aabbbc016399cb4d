package watch

import (
	"fmt"
	"strings"
	"time"

	"github.com/Iron-Ham/ratch/internal/errors"
	"github.com/Iron-Ham/ratch/internal/logging"
	"github.com/Iron-Ham/ratch/internal/process"
	"github.com/Iron-Ham/ratch/internal/search"
)

// Settings are the options that can change while a session is running.
type Settings struct {
	Interval         time.Duration
	Constrain        bool
	CancelSuperseded bool
	Timeout          time.Duration
	Search           search.Options
}

// Options configures a Session.
type Options struct {
	Command     process.Command
	Runner      process.Runner
	Settings    Settings
	MaxInFlight int
	// Prompt is the status line glyph outside search mode.
	Prompt string
	// Help is the text of the help overlay, one entry per line.
	Help   []string
	Logger *logging.Logger
	// Clipboard receives the buffer when the user yanks it. Nil disables yanking.
	Clipboard func(string) error
	// Start is the time the first interval is measured from.
	Start time.Time
}

// Session is the state of one ratch invocation: the schedule, the runs in
// flight, the admitted output and the view onto it. Apart from Reload, its
// methods must only be called from the main loop goroutine.
type Session struct {
	cmd       process.Command
	settings  Settings
	prompt    string
	help      []string
	logger    *logging.Logger
	clipboard func(string) error

	scheduler *Scheduler
	executor  *Executor
	resolver  Resolver
	view      *View

	lines    []string
	viewport Viewport
	updated  time.Time
	dirty    bool
	quit     bool
	busy     bool

	reloads chan Settings
}

// NewSession creates a session. Nothing runs until the first Tick at which
// an interval has elapsed since opts.Start.
func NewSession(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	start := opts.Start
	if start.IsZero() {
		start = time.Now()
	}
	return &Session{
		cmd:       opts.Command,
		settings:  opts.Settings,
		prompt:    opts.Prompt,
		help:      opts.Help,
		logger:    logger,
		clipboard: opts.Clipboard,
		scheduler: NewScheduler(opts.Settings.Interval, start),
		executor: NewExecutor(opts.Runner, ExecutorOptions{
			MaxInFlight: opts.MaxInFlight,
			Timeout:     opts.Settings.Timeout,
			Logger:      logger,
		}),
		view:    NewView(opts.Settings.Search),
		dirty:   true,
		reloads: make(chan Settings, 1),
	}
}

// HandleKeys applies a batch of input events and then clamps the cursor.
// Events after a quit request are ignored.
func (s *Session) HandleKeys(keys []Key, now time.Time) {
	for _, k := range keys {
		action, changed := s.view.HandleKey(k, s.lines, s.viewport.Height, now)
		if changed {
			s.dirty = true
		}
		switch action {
		case ActionQuit:
			s.logger.Debug("quit requested", "key", k.String())
			s.quit = true
			return
		case ActionYank:
			s.yank(now)
		}
	}
	s.clamp()
}

func (s *Session) yank(now time.Time) {
	if s.clipboard == nil {
		s.view.SetStatus("clipboard unavailable", now)
	} else if err := s.clipboard(strings.Join(s.lines, "")); err != nil {
		s.logger.Warn("clipboard copy failed", "error", err.Error())
		s.view.SetStatus("copy failed: "+err.Error(), now)
	} else {
		s.view.SetStatus(fmt.Sprintf("copied %d lines", len(s.lines)), now)
	}
	s.dirty = true
}

// Resize records the current viewport.
func (s *Session) Resize(vp Viewport) {
	if vp == s.viewport {
		return
	}
	s.viewport = vp
	s.dirty = true
	s.clamp()
}

// Tick advances the session to now: it applies pending reloads, dispatches a
// run if one is due, admits finished runs and expires the status message.
func (s *Session) Tick(now time.Time) {
	s.applyReloads(now)
	s.schedule(now)
	s.drain(now)
	if s.view.ExpireStatus(now) {
		s.dirty = true
	}
	s.clamp()
}

func (s *Session) schedule(now time.Time) {
	if !s.scheduler.Due(now) {
		return
	}
	// At the cap the run stays due and is retried on the next tick.
	if s.executor.Busy() {
		if !s.busy {
			s.logger.Debug("run deferred, executor busy", "in_flight", s.executor.InFlight())
			s.busy = true
		}
		return
	}
	s.busy = false

	gen := s.scheduler.Trigger(now)
	if err := s.executor.Dispatch(gen, s.cmd); err != nil {
		logger := s.logger.WithGeneration(uint64(gen))
		if errors.IsRetryable(err) {
			logger.Debug("dispatch deferred", "error", err.Error())
		} else {
			logger.Warn("dispatch failed", "error", err.Error())
		}
	}
}

func (s *Session) drain(now time.Time) {
	for {
		select {
		case res := <-s.executor.Results():
			s.admit(res, now)
		default:
			return
		}
	}
}

func (s *Session) admit(res Result, now time.Time) {
	log := s.logger.WithGeneration(uint64(res.Generation))
	if !s.resolver.Admit(res) {
		log.Debug("stale result dropped", "highest", uint64(s.resolver.Highest()))
		return
	}

	s.lines = res.Buffer()
	s.updated = res.Finished
	if s.updated.IsZero() {
		s.updated = now
	}
	s.dirty = true

	if s.settings.CancelSuperseded {
		if n := s.executor.Supersede(res.Generation); n > 0 {
			log.Debug("canceled superseded runs", "count", n)
		}
	}
}

func (s *Session) clamp() {
	if s.settings.Constrain && s.view.Clamp(len(s.lines), s.viewport.Height) {
		s.dirty = true
	}
}

// Reload queues new settings to be applied on the next Tick. It is safe to
// call from any goroutine; only the newest pending settings are kept.
func (s *Session) Reload(st Settings) {
	for {
		select {
		case s.reloads <- st:
			return
		default:
		}
		select {
		case <-s.reloads:
		default:
		}
	}
}

func (s *Session) applyReloads(now time.Time) {
	select {
	case st := <-s.reloads:
		s.settings = st
		s.scheduler.SetInterval(st.Interval)
		s.executor.SetTimeout(st.Timeout)
		s.view.SetSearchOptions(st.Search, now)
		s.dirty = true
		s.logger.Info("settings reloaded",
			"interval_ms", st.Interval.Milliseconds(),
			"constrain", st.Constrain,
		)
	default:
	}
}

// Frame renders the current state.
func (s *Session) Frame(now time.Time) Frame {
	return Render(s.view, s.lines, s.viewport, Info{
		Prompt:     s.prompt,
		Help:       s.help,
		Interval:   s.scheduler.Interval(),
		Generation: s.resolver.Highest(),
		Updated:    s.updated,
		Now:        now,
	})
}

// Dirty reports whether the screen needs to be redrawn.
func (s *Session) Dirty() bool { return s.dirty }

// ClearDirty marks the current state as drawn.
func (s *Session) ClearDirty() { s.dirty = false }

// Quit reports whether the user asked to quit.
func (s *Session) Quit() bool { return s.quit }

// Lines returns the admitted line buffer.
func (s *Session) Lines() []string { return s.lines }

// View returns the view state.
func (s *Session) View() *View { return s.view }

// Viewport returns the last recorded viewport.
func (s *Session) Viewport() Viewport { return s.viewport }

// Generation returns the most recently triggered generation.
func (s *Session) Generation() Generation { return s.scheduler.Generation() }

// Highest returns the most recently admitted generation.
func (s *Session) Highest() Generation { return s.resolver.Highest() }

// Settings returns the settings in effect.
func (s *Session) Settings() Settings { return s.settings }

// Executor returns the executor running the command.
func (s *Session) Executor() *Executor { return s.executor }

// Close cancels all runs and waits for their workers.
func (s *Session) Close() {
	s.executor.Close()
	admitted, rejected := s.resolver.Stats()
	s.logger.Info("session closed",
		"generations", uint64(s.scheduler.Generation()),
		"admitted", admitted,
		"rejected", rejected,
	)
}
