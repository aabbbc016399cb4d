package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/ratch/internal/logging"
	"github.com/Iron-Ham/ratch/internal/tui/styles"
	"github.com/Iron-Ham/ratch/internal/watch"
)

// Options configures the bubbletea backend.
type Options struct {
	AltScreen bool
	// Theme is the color theme name.
	Theme  string
	Loop   watch.LoopOptions
	Logger *logging.Logger
	Input  io.Reader // defaults to stdin
	Output io.Writer // defaults to stdout
}

// App wraps the Bubbletea program
type App struct {
	program *tea.Program
	term    *Terminal
	session *watch.Session
	opts    Options
	logger  *logging.Logger
}

// New creates a new TUI application for session.
func New(session *watch.Session, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	if opts.Loop.Theme == nil {
		opts.Loop.Theme = styles.ForName(opts.Theme)
	}
	return &App{
		term:    NewTerminal(),
		session: session,
		opts:    opts,
		logger:  logger,
	}
}

// Run starts the program and the watch main loop and blocks until the user
// quits, ctx is canceled or a termination signal arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if a.opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	if a.opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(a.opts.Input))
	}
	if a.opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(a.opts.Output))
	}
	a.program = tea.NewProgram(NewModel(a.term), programOpts...)
	a.term.Attach(a.program.Send)

	// Set up signal handling for graceful shutdown. Ctrl-C arrives as a key
	// while the terminal is in raw mode.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			a.logger.Info("received signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	loopErr := make(chan error, 1)
	go func() {
		err := watch.Run(ctx, a.session, a.term, a.opts.Loop)
		loopErr <- err
		a.program.Quit()
	}()

	_, err := a.program.Run()
	cancel()
	if lerr := <-loopErr; lerr != nil {
		return fmt.Errorf("main loop: %w", lerr)
	}
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	if dropped := a.term.Dropped(); dropped > 0 {
		a.logger.Warn("dropped keys", "count", dropped)
	}
	return nil
}
