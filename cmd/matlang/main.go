package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/ostnam/matlang/pkg/config"
	"github.com/ostnam/matlang/pkg/runner"
)

type cliOptions struct {
	configPath    string
	logLevel      string
	eval          string
	trace         bool
	jobs          int
	timeout       time.Duration
	separator     string
	precision     int
	maxIterations int
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run is main without the process exit, so it can be tested.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("matlang", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts cliOptions
	fs.StringVarP(&opts.configPath, "config", "c", "", "config file (default ./"+config.DefaultFile+" when present)")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.StringVarP(&opts.eval, "eval", "e", "", "run the given program text instead of files")
	fs.BoolVar(&opts.trace, "trace", false, "print scanned tokens and the AST before running")
	fs.IntVarP(&opts.jobs, "jobs", "j", 4, "number of files run in parallel")
	fs.DurationVar(&opts.timeout, "timeout", 0, "abort a program after this long (0 disables)")
	fs.StringVar(&opts.separator, "separator", "", "separator between print items")
	fs.IntVar(&opts.precision, "precision", -2, "fractional digits printed for floats (-1 shortest)")
	fs.IntVar(&opts.maxIterations, "max-iterations", -1, "iteration cap per loop (0 unlimited)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: matlang [flags] [SOURCE_FILE...]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return runner.ExitOK
		}
		return runner.ExitUsage
	}

	cfg, err := loadConfig(fs, opts)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return runner.ExitIOErr
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: parseLevel(cfg.Log.Level)}))

	sessionOpts := []runner.Option{runner.WithConfig(cfg), runner.WithLogger(logger)}
	if opts.trace {
		sessionOpts = append(sessionOpts, runner.WithTrace(stderr))
	}

	ctx := context.Background()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	switch {
	case fs.Changed("eval"):
		err := runner.Run(ctx, []byte(opts.eval), append(sessionOpts, runner.WithOutput(stdout))...)
		return report(stderr, logger, "<eval>", err)
	case fs.NArg() == 0:
		return runRepl(ctx, stdin, stdout, stderr, sessionOpts)
	default:
		return runFiles(ctx, fs.Args(), opts.jobs, stdout, stderr, logger, sessionOpts)
	}
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(fs *flag.FlagSet, opts cliOptions) (config.Config, error) {
	var cfg config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
	} else {
		cfg, err = config.LoadOptional(config.DefaultFile)
	}
	if err != nil {
		return config.Config{}, err
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if fs.Changed("separator") {
		cfg.Print.Separator = opts.separator
	}
	if fs.Changed("precision") {
		cfg.Print.FloatPrecision = opts.precision
	}
	if fs.Changed("max-iterations") {
		cfg.Limits.MaxLoopIterations = opts.maxIterations
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, errors.WithStack(err)
	}
	return cfg, nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// runFiles runs every file in its own session. Each program writes to its
// own buffer; buffers are flushed in argument order once all are done.
func runFiles(ctx context.Context, paths []string, jobs int, stdout, stderr io.Writer, logger *slog.Logger, sessionOpts []runner.Option) int {
	outputs := make([]bytes.Buffer, len(paths))
	errs := make([]error, len(paths))

	var g errgroup.Group
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			opts := append(sessionOpts[:len(sessionOpts):len(sessionOpts)], runner.WithOutput(&outputs[i]))
			errs[i] = runner.RunFile(ctx, path, opts...)
			return nil
		})
	}
	g.Wait()

	code := runner.ExitOK
	for i, path := range paths {
		stdout.Write(outputs[i].Bytes())
		if c := report(stderr, logger, path, errs[i]); c != runner.ExitOK && code == runner.ExitOK {
			code = c
		}
	}
	return code
}

func report(stderr io.Writer, logger *slog.Logger, source string, err error) int {
	if err == nil {
		return runner.ExitOK
	}
	fmt.Fprintln(stderr, err)
	logger.Debug("run failed", slog.String("source", source), slog.String("detail", fmt.Sprintf("%+v", err)))
	return runner.ExitCode(err)
}
