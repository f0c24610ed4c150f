package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Mishamax/maxcalc/config"
	"github.com/Mishamax/maxcalc/journal"
	"github.com/Mishamax/maxcalc/logging"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/command"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/evaluator"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/maxcalc"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/repl"
)

// Version is set at build time via -ldflags
var Version = "dev" // -X main.Version=$(git describe --tags --always)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the I/O and global flags shared by every subcommand.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string

	configPath string
	angle      string
	noColor    bool
	exprs      []string
}

// run is the main entry point, designed for testability
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, getenv func(string) string) error {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, getenv: getenv}

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	return root.ExecuteContext(ctx)
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "maxcalc",
		Short: "Scientific calculator with complex numbers and unit conversions",
		Long: `MaxCalc evaluates arithmetic expressions with real and complex numbers,
variables, built-in functions and unit conversions.

With no arguments it starts an interactive shell. Input piped on stdin is
evaluated line by line. Use -e to evaluate expressions from the command line.`,
		Example: `  maxcalc
  maxcalc -e "2 + 2 * 2"
  maxcalc --angle deg -e "sin(30)"
  maxcalc -e "x = 5 km to mi" -e "x * 2"
  echo "sqrt(-4)" | maxcalc`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runRoot,
	}
	root.SetVersionTemplate("MaxCalc {{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to config file")
	flags.StringVar(&a.angle, "angle", "", "Angle unit: rad, deg or grad (overrides config)")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	root.Flags().StringArrayVarP(&a.exprs, "eval", "e", nil, "Evaluate an expression (repeatable; state carries over)")

	root.AddCommand(
		a.listCommand("functions", "List built-in functions", "#funcs"),
		a.listCommand("units", "List unit conversions", "#convs"),
		a.listCommand("constants", "List built-in constants", "#consts"),
		a.journalCommand(),
		a.configCommand(),
	)

	return root
}

// session is everything a subcommand needs once configuration is loaded.
type session struct {
	cfg     *config.Config
	logger  *logging.Logger
	journal *journal.Journal
	engine  *maxcalc.Engine
}

func (s *session) Close() {
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			s.logger.Warn("closing journal: %v", err)
		}
	}
}

// loadConfig loads the config file and applies command line overrides.
func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.configPath, a.getenv)
	if err != nil {
		return nil, err
	}
	if err := a.applyFlags(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) applyFlags(cfg *config.Config) error {
	if a.angle != "" {
		if _, err := evaluator.ParseAngleMode(a.angle); err != nil {
			return fmt.Errorf("invalid --angle: %w", err)
		}
		cfg.Engine.Angle = a.angle
	}
	if a.noColor {
		cfg.REPL.Color = false
	}
	return nil
}

func newLogger(cfg *config.Config, w io.Writer) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(w, level, cfg.Logging.Format), nil
}

// open loads configuration and builds the engine. withJournal controls
// whether the evaluation journal is opened when one is configured.
func (a *app) open(withJournal bool) (*session, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg, a.stderr)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		logger.Debug("config: %s", cfg.Path)
	}

	s := &session{cfg: cfg, logger: logger}

	opts := []maxcalc.Option{
		maxcalc.WithVersion(Version),
		maxcalc.WithLogger(logger),
		maxcalc.WithSettings(cfg.Settings()),
	}

	if withJournal && cfg.Journal.Path != "" {
		j, err := a.openJournal(cfg)
		if err != nil {
			return nil, err
		}
		s.journal = j
		opts = append(opts, maxcalc.WithJournal(j))
		logger.Debug("journal: %s", j.Path())
	}

	s.engine = maxcalc.New(opts...)
	return s, nil
}

func (a *app) openJournal(cfg *config.Config) (*journal.Journal, error) {
	jcfg := journal.DefaultConfig()
	jcfg.Path = cfg.Journal.Path
	jcfg.MaxEntries = cfg.Journal.MaxEntries
	return journal.Open(jcfg)
}

func (a *app) runRoot(cmd *cobra.Command, _ []string) error {
	s, err := a.open(true)
	if err != nil {
		return err
	}
	defer s.Close()

	if len(a.exprs) > 0 {
		return a.evalAll(cmd.Context(), s)
	}

	opts := repl.Options{
		Version:     Version,
		HistoryFile: s.cfg.REPL.HistoryFile,
		Color:       s.cfg.REPL.Color,
	}

	if !isTerminal(a.stdin) {
		return repl.Run(a.stdin, a.stdout, s.engine, opts)
	}

	if w := a.watchConfig(cmd.Context(), s); w != nil {
		defer w.Close()
	}
	repl.Start(a.stdout, s.engine, opts)
	return nil
}

// evalAll evaluates each -e expression in order, stopping at the first
// error. Host commands are accepted too.
func (a *app) evalAll(ctx context.Context, s *session) error {
	for _, expr := range a.exprs {
		switch s.engine.Execute(expr, a.stdout) {
		case command.Parsed:
			continue
		case command.Exit:
			return nil
		}

		v, err := s.engine.EvalContext(ctx, expr)
		if err != nil {
			return fmt.Errorf("%s: %w", expr, err)
		}
		fmt.Fprintln(a.stdout, s.engine.Format(v))
	}
	return nil
}

// watchConfig reloads settings into the running engine when the config
// file changes. Flag overrides stay in effect across reloads.
func (a *app) watchConfig(ctx context.Context, s *session) *config.Watcher {
	if s.cfg.Path == "" {
		return nil
	}

	w, err := config.Watch(ctx, s.cfg.Path, a.getenv, func(cfg *config.Config) {
		if err := a.applyFlags(cfg); err != nil {
			s.logger.Warn("%v", err)
			return
		}
		if level, err := logging.ParseLevel(cfg.Logging.Level); err == nil {
			s.logger.SetLevel(level)
		}
		s.logger.SetFormat(cfg.Logging.Format)
		s.engine.Apply(cfg.Settings())
		s.logger.Info("config reloaded: %s", cfg.Path)
	}, func(err error) {
		s.logger.Warn("%v", err)
	})
	if err != nil {
		s.logger.Warn("config watch disabled: %v", err)
		return nil
	}
	return w
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// listCommand wraps a listing host command as a subcommand.
func (a *app) listCommand(name, short, directive string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.open(false)
			if err != nil {
				return err
			}
			defer s.Close()

			s.engine.Execute(directive, a.stdout)
			return nil
		},
	}
}

func (a *app) journalCommand() *cobra.Command {
	var (
		errorsOnly bool
		contains   string
		limit      int
		clearAll   bool
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show or clear the evaluation journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Journal.Path == "" {
				return errors.New("journal disabled: set journal.path in the config file or MAXCALC_JOURNAL")
			}

			j, err := a.openJournal(cfg)
			if err != nil {
				return err
			}
			defer j.Close()

			if clearAll {
				if err := j.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(a.stdout, "Journal cleared")
				return nil
			}

			entries, err := j.Query(journal.Filter{
				Contains:   contains,
				ErrorsOnly: errorsOnly,
				Limit:      limit,
			})
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(a.stdout, "No entries")
				return nil
			}

			// Oldest first, like a terminal scrollback
			for i := len(entries) - 1; i >= 0; i-- {
				printEntry(a.stdout, entries[i])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&errorsOnly, "errors", false, "Show failed evaluations only")
	cmd.Flags().StringVar(&contains, "contains", "", "Show expressions containing this text")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete all entries")

	return cmd
}

func printEntry(w io.Writer, e journal.Entry) {
	ts := e.Timestamp.Local().Format(time.DateTime)
	if e.Failed() {
		fmt.Fprintf(w, "%s  %s  error[%s]: %s\n", ts, e.Expression, e.ErrorCode, e.Message)
		return
	}
	fmt.Fprintf(w, "%s  %s = %s\n", ts, e.Expression, e.Result)
}

func (a *app) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			if cfg.Path != "" {
				fmt.Fprintf(a.stdout, "# %s\n", cfg.Path)
			} else {
				fmt.Fprintln(a.stdout, "# defaults (no config file found)")
			}
			enc := yaml.NewEncoder(a.stdout)
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
