// Package runner drives a program through the scanner, the parser, the jump
// checker and the interpreter, and classifies what went wrong.
package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/ostnam/matlang/pkg/ast"
	"github.com/ostnam/matlang/pkg/config"
	"github.com/ostnam/matlang/pkg/eval"
	"github.com/ostnam/matlang/pkg/parser"
	"github.com/ostnam/matlang/pkg/scanner"
	"github.com/ostnam/matlang/pkg/tokens"
)

// Exit codes, following sysexits.
const (
	ExitOK       = 0
	ExitUsage    = 64
	ExitDataErr  = 65
	ExitSoftware = 70
	ExitIOErr    = 74
)

// LexErrors holds every lexical error of a source text.
type LexErrors struct {
	Errs []error
}

func (e *LexErrors) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

func (e *LexErrors) Unwrap() []error {
	return e.Errs
}

// ExitCode maps an error returned by this package to a process exit code.
func ExitCode(err error) int {
	var lexErrs *LexErrors
	var syntaxErr *parser.SyntaxError
	var rtErr *eval.RunTimeError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &lexErrs), errors.As(err, &syntaxErr), errors.Is(err, eval.ErrJumpOutsideLoop):
		return ExitDataErr
	case errors.As(err, &rtErr), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ExitSoftware
	default:
		return ExitIOErr
	}
}

// Session keeps one interpreter, and so one environment, across several
// Exec calls. The REPL uses one session for all its lines.
type Session struct {
	interp *eval.Interpreter
	logger *slog.Logger
	// Trace receives the tokens and the AST of every Exec when set.
	Trace io.Writer
}

type Option func(*sessionOptions)

type sessionOptions struct {
	out    io.Writer
	cfg    config.Config
	logger *slog.Logger
	trace  io.Writer
}

func WithOutput(w io.Writer) Option {
	return func(o *sessionOptions) { o.out = w }
}

func WithConfig(cfg config.Config) Option {
	return func(o *sessionOptions) { o.cfg = cfg }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *sessionOptions) { o.logger = logger }
}

// WithTrace dumps tokens and the AST to w before execution.
func WithTrace(w io.Writer) Option {
	return func(o *sessionOptions) { o.trace = w }
}

func NewSession(opts ...Option) *Session {
	o := sessionOptions{out: os.Stdout, cfg: config.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	interp := eval.NewInterpreter(
		eval.WithOutput(o.out),
		eval.WithSeparator(o.cfg.Print.Separator),
		eval.WithFloatPrecision(o.cfg.Print.FloatPrecision),
		eval.WithMaxLoopIterations(o.cfg.Limits.MaxLoopIterations),
	)
	return &Session{interp: interp, logger: o.logger, Trace: o.trace}
}

// Env exposes the session's variables.
func (s *Session) Env() *eval.Env {
	return s.interp.Env()
}

// Exec runs one source text. Lexical, syntax and jump errors stop it before
// anything executes.
func (s *Session) Exec(ctx context.Context, name string, src []byte) (eval.Signal, error) {
	toks, errs := scanner.Scan([]rune(string(src)))
	s.logger.DebugContext(ctx, "scanned", slog.String("source", name), slog.Int("tokens", len(toks)), slog.Int("errors", len(errs)))
	if len(errs) > 0 {
		return eval.Signal{}, &LexErrors{Errs: errs}
	}
	if s.Trace != nil {
		traceTokens(s.Trace, toks)
	}

	program, err := parser.Parse(toks)
	if err != nil {
		return eval.Signal{}, err
	}
	s.logger.DebugContext(ctx, "parsed", slog.String("source", name), slog.Int("statements", len(program.Statements)))
	if s.Trace != nil {
		io.WriteString(s.Trace, "AST:\n")
		ast.PrettyPrint(s.Trace, program)
	}

	if errs := eval.CheckJumps(program); len(errs) > 0 {
		return eval.Signal{}, errors.Join(errs...)
	}

	sig, err := s.interp.Execute(ctx, program)
	if err != nil {
		return eval.Signal{}, err
	}
	if sig.Kind == eval.ReturnSignal {
		s.logger.DebugContext(ctx, "program returned", slog.String("source", name), slog.String("value", sig.Val.String()))
	}
	return sig, nil
}

func traceTokens(w io.Writer, toks []tokens.Token) {
	io.WriteString(w, "Tokens scanned:\n")
	for _, tok := range toks {
		io.WriteString(w, "  "+tok.String()+"\n")
	}
}

// Run executes src in a fresh session.
func Run(ctx context.Context, src []byte, opts ...Option) error {
	_, err := NewSession(opts...).Exec(ctx, "<input>", src)
	return err
}

// RunFile reads path and executes it in a fresh session.
func RunFile(ctx context.Context, path string, opts ...Option) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return pkgerrors.Wrapf(err, "read %s", path)
	}
	_, err = NewSession(opts...).Exec(ctx, path, src)
	return err
}
