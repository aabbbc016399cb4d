// Package cmd implements the ratch command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/ratch/internal/config"
	"github.com/Iron-Ham/ratch/internal/errors"
	"github.com/Iron-Ham/ratch/internal/logging"
	"github.com/Iron-Ham/ratch/internal/process"
	"github.com/Iron-Ham/ratch/internal/search"
	"github.com/Iron-Ham/ratch/internal/terminal"
	"github.com/Iron-Ham/ratch/internal/tui"
	"github.com/Iron-Ham/ratch/internal/tui/keymap"
	"github.com/Iron-Ham/ratch/internal/tui/styles"
	"github.com/Iron-Ham/ratch/internal/watch"
)

// Version is set at build time.
var Version = "dev"

var rootCmd = newRootCmd()

// Exit codes returned by Execute.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return report(rootCmd.ErrOrStderr(), rootCmd.Execute())
}

// report prints err and maps it to an exit code. Fatal errors are problems
// with the command line or config, found before the watch loop starts.
func report(w io.Writer, err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.IsUserFacing(err) {
		_, _ = fmt.Fprintf(w, "ratch: %v\n", err)
	} else {
		_, _ = fmt.Fprintf(w, "ratch: unexpected %s: %v\n", errors.GetSeverity(err), err)
	}
	if errors.IsFatal(err) {
		_, _ = fmt.Fprintln(w, "Run 'ratch --help' for usage.")
		return ExitUsage
	}
	return ExitError
}

func init() {
	cobra.OnInitialize(initConfig)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratch [flags] command [args...]",
		Short: "Run a command periodically and page through its output",
		Long: `ratch runs a command every few seconds and shows its latest output in a
scrollable, searchable full-screen view.

Everything after the command name is passed to the command unchanged, so
flags for the command need no quoting:

  ratch -n 0.5 ls -la`,
		Version:       Version,
		Args:          requireCommand,
		RunE:          runWatch,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.NewArgumentError("", "", err).WithMessage("invalid flag")
	})

	flags := cmd.Flags()
	flags.SetInterspersed(false)
	flags.StringP("interval", "n", "", fmt.Sprintf("seconds to wait between updates (default %.1f)", config.DefaultInterval))
	flags.BoolP("debug", "d", false, "print startup diagnostics and write a debug log")
	flags.BoolP("unconstrain", "u", false, "allow scrolling past the ends of the output")
	flags.StringP("config", "c", "", fmt.Sprintf("config file (default is %s)", config.ConfigFile()))
	flags.String("backend", "", fmt.Sprintf("terminal backend: %s", strings.Join(config.ValidBackends(), ", ")))
	flags.Bool("pty", false, "run the command under a pseudo-terminal")
	flags.String("shell", "", "run the command line through this shell's -c")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("tui.backend", flags.Lookup("backend"))
	_ = viper.BindPFlag("watch.pty", flags.Lookup("pty"))
	_ = viper.BindPFlag("watch.shell", flags.Lookup("shell"))

	return cmd
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/ratch")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("RATCH")
	// Replace dots with underscores for nested keys in env vars
	// e.g., RATCH_WATCH_INTERVAL for watch.interval
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

func requireCommand(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.NewArgumentError("", "", errors.ErrMissingCommand).
			WithMessage("a command to watch is required")
	}
	return nil
}

// applyFlags copies flags that need parsing or inverting into viper. Values
// set here take precedence over the config file, including after a reload.
func applyFlags(flags *pflag.FlagSet) error {
	if flags.Changed("interval") {
		raw, _ := flags.GetString("interval")
		seconds, err := config.ParseInterval(raw)
		if err != nil {
			return err
		}
		viper.Set("watch.interval", seconds)
	}
	if unconstrain, _ := flags.GetBool("unconstrain"); unconstrain {
		viper.Set("watch.constrain", false)
	}
	if debug, _ := flags.GetBool("debug"); debug {
		viper.Set("logging.enabled", true)
		viper.Set("logging.level", logging.LevelDebug)
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := applyFlags(cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return errors.NewArgumentError("", "", err).WithMessage("invalid configuration")
	}
	if err := requireTerminal(os.Stdin, os.Stdout); err != nil {
		return err
	}

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		if err := dumpConfig(cmd.ErrOrStderr(), cfg); err != nil {
			return err
		}
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	command := commandFor(cfg, args)
	if err := command.Validate(); err != nil {
		return err
	}
	logger.Info("starting", "command", command.String(), "backend", cfg.TUI.Backend, "version", Version)

	session := watch.NewSession(sessionOptions(cfg, command, logger))
	defer session.Close()

	config.WatchChanges(func(c *config.Config) {
		logger.Info("config reloaded", "interval", c.Watch.Interval)
		session.Reload(settingsFrom(c))
	}, func(err error) {
		logger.Warn("ignoring invalid config change", "error", err.Error())
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return runBackend(ctx, cfg, session, logger)
}

func runBackend(ctx context.Context, cfg *config.Config, session *watch.Session, logger *logging.Logger) error {
	loop := watch.LoopOptions{Quantum: cfg.TUI.Quantum()}

	switch cfg.TUI.Backend {
	case config.BackendBubbletea:
		app := tui.New(session, tui.Options{
			AltScreen: cfg.TUI.AltScreen,
			Theme:     cfg.TUI.Theme,
			Loop:      loop,
			Logger:    logger,
		})
		return app.Run(ctx)

	case config.BackendRaw:
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGHUP)
		defer stop()

		term, err := terminal.Open(os.Stdin, os.Stdout, terminal.Options{
			AltScreen: cfg.TUI.AltScreen,
			Logger:    logger,
		})
		if err != nil {
			return err
		}
		loop.Theme = terminal.NewTheme(styles.PaletteFor(cfg.TUI.Theme), term.Profile())
		runErr := watch.Run(ctx, session, term, loop)
		if err := term.Close(); err != nil && runErr == nil {
			runErr = err
		}
		return runErr

	default:
		return errors.NewArgumentError("backend", cfg.TUI.Backend, errors.ErrUnknownBackend)
	}
}

func requireTerminal(in, out *os.File) error {
	for _, f := range []*os.File{in, out} {
		if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
			return errors.NewArgumentError("terminal", f.Name(), errors.ErrNotTerminal).
				WithMessage("ratch needs an interactive terminal")
		}
	}
	return nil
}

func dumpConfig(w io.Writer, cfg *config.Config) error {
	source := viper.ConfigFileUsed()
	if source == "" {
		source = "(none - using defaults)"
	}
	if _, err := fmt.Fprintf(w, "# config file: %s\n", source); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to print config: %w", err)
	}
	return enc.Close()
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	logger, err := logging.NewLogger(cfg.Logging.LogDir(), cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	return logger.WithSession(uuid.NewString()), nil
}

func commandFor(cfg *config.Config, args []string) process.Command {
	return process.Command{Argv: args, Shell: cfg.Watch.Shell}
}

func settingsFrom(cfg *config.Config) watch.Settings {
	return watch.Settings{
		Interval:         cfg.Watch.IntervalDuration(),
		Constrain:        cfg.Watch.Constrain,
		CancelSuperseded: cfg.Watch.CancelSuperseded,
		Timeout:          cfg.Watch.Timeout(),
		Search:           search.Options{IgnoreCase: cfg.Search.IgnoreCase},
	}
}

func sessionOptions(cfg *config.Config, command process.Command, logger *logging.Logger) watch.Options {
	opts := watch.Options{
		Command:     command,
		Runner:      process.New(cfg.Watch.PTY),
		Settings:    settingsFrom(cfg),
		MaxInFlight: cfg.Watch.MaxInFlight,
		Prompt:      cfg.TUI.Prompt,
		Help:        keymap.DefaultKeyMap().HelpLines(),
		Logger:      logger,
	}
	if !clipboard.Unsupported {
		opts.Clipboard = clipboard.WriteAll
	}
	return opts
}
