package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bamsammich/wrench/internal/config"
	"github.com/bamsammich/wrench/internal/engine"
	"github.com/bamsammich/wrench/internal/event"
	"github.com/bamsammich/wrench/internal/stats"
	"github.com/bamsammich/wrench/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	defer a.close()

	rootCmd := a.rootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// app holds the state shared by every subcommand of one invocation.
type app struct {
	stdout, stderr io.Writer

	async       bool
	nativeOrder bool
	verbose     bool
	quiet       bool
	logFile     string

	cfg     config.Config
	logger  *slog.Logger
	closers []io.Closer
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wrench",
		Short:         "Recursive delete, copy, chmod, chown and list for directory trees",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&a.async, "async", false, "run the operation in suspending mode (one filesystem call in flight)")
	pf.BoolVar(&a.nativeOrder, "native-order", false, "visit entries in host listing order instead of sorted")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	pf.BoolVarP(&a.quiet, "quiet", "q", false, "suppress all output except errors")
	pf.StringVar(&a.logFile, "log-file", "", "write structured JSON log to FILE")

	rootCmd.AddCommand(
		a.rmCmd(),
		a.cpCmd(),
		a.chmodCmd(),
		a.chownCmd(),
		a.lsCmd(),
		a.mkdirCmd(),
		a.linesCmd(),
		a.configCmd(),
		newDocsCmd(),
	)
	return rootCmd
}

// setup loads the config file, applies its defaults and installs logging.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, cfgErr := config.Load()
	a.cfg = cfg
	applyConfigDefaults(cmd, cfg.Defaults, &a.async, &a.nativeOrder)

	// Configure logging.
	logLevel := slog.LevelWarn
	if a.verbose {
		logLevel = slog.LevelDebug
	} else if !a.quiet {
		logLevel = slog.LevelInfo
	}
	textHandler := slog.NewTextHandler(a.stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	var logHandler slog.Handler = textHandler
	if a.logFile != "" {
		lf, err := os.Create(a.logFile)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.closers = append(a.closers, lf)
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
	}
	a.logger = slog.New(logHandler)
	slog.SetDefault(a.logger)

	if cfgErr != nil {
		a.logger.Warn("failed to load config", "path", config.Path(), "error", cfgErr)
	}
	return nil
}

func (a *app) close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}

// options builds the engine options common to every tree command.
func (a *app) options() engine.Options {
	opts := engine.Options{Logger: a.logger}
	if a.nativeOrder {
		opts.Order = engine.Native
	}
	return opts
}

// operation is one tree command in both execution forms.
type operation struct {
	name     string
	root     string // stripped from displayed paths
	blocking func(ctx context.Context, opts engine.Options) error
	async    func(ctx context.Context, opts engine.Options, done func(error))
}

// runOp wires events, stats and a presenter around op and runs it in the
// selected form until it finishes or the process is signalled.
func (a *app) runOp(opts engine.Options, op operation) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := stats.NewCollector()
	events := make(chan event.Event, 256)
	opts.Stats = collector
	opts.Events = events

	// When --log-file is set, tee events through a logging goroutine
	// that writes structured records before forwarding to the presenter.
	presenterEvents := (<-chan event.Event)(events)
	if a.logFile != "" {
		teed := make(chan event.Event, 256)
		go func() {
			for ev := range events {
				attrs := []slog.Attr{
					slog.String("type", ev.Type.String()),
					slog.String("path", ev.Path),
					slog.Int64("size", ev.Size),
				}
				if ev.Error != nil {
					attrs = append(attrs, slog.String("error", ev.Error.Error()))
				}
				a.logger.LogAttrs(context.Background(), slog.LevelDebug, "wrench.event", attrs...)
				teed <- ev
			}
			close(teed)
		}()
		presenterEvents = teed
	}

	presenter := ui.NewPresenter(ui.Config{
		Writer:  a.stdout,
		Stats:   collector,
		Op:      op.name,
		Root:    op.root,
		Quiet:   a.quiet,
		Verbose: a.verbose,
	})

	var presenterWg sync.WaitGroup
	presenterWg.Add(1)
	go func() {
		defer presenterWg.Done()
		_ = presenter.Run(presenterEvents) //nolint:errcheck // presenter error is non-fatal
	}()

	a.logger.Debug("starting "+op.name, "root", op.root, "async", a.async, "order", opts.Order)
	var err error
	if a.async {
		done := make(chan error, 1)
		op.async(ctx, opts, func(err error) { done <- err })
		err = <-done
	} else {
		err = op.blocking(ctx, opts)
	}
	close(events)
	presenterWg.Wait()

	if !a.quiet && (a.verbose || ui.IsTTY(os.Stderr.Fd())) {
		if summary := presenter.Summary(); summary != "" {
			fmt.Fprintln(a.stderr, summary)
		}
	}
	return a.fail(op.name, err)
}

// fail logs err and turns it into exit code 1 without printing it twice.
func (a *app) fail(op string, err error) error {
	if err == nil {
		return nil
	}
	a.logger.Error(op+" failed", "error", err)
	return &exitError{code: 1}
}

// applyConfigDefaults applies config file defaults for flags not explicitly set on the CLI.
func applyConfigDefaults(
	cmd *cobra.Command,
	defaults config.DefaultsConfig,
	async *bool,
	nativeOrder *bool,
) {
	if !cmd.Flags().Changed("async") && defaults.Async != nil {
		*async = *defaults.Async
	}
	if !cmd.Flags().Changed("native-order") && defaults.NativeOrder != nil {
		*nativeOrder = *defaults.NativeOrder
	}
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
