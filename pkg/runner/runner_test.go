package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ostnam/matlang/pkg/config"
	"github.com/ostnam/matlang/pkg/eval"
	"github.com/ostnam/matlang/pkg/parser"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantOut  string
		wantErr  string
		wantCode int
	}{
		{
			name:     "success",
			src:      "A = ones(2); B = ones(2); C = A .+ B; print C;",
			wantOut:  "[2, 2; 2, 2]\n",
			wantCode: ExitOK,
		},
		{
			name:     "lexical errors are all reported",
			src:      "x = 1 @ 2;\nprint ?;",
			wantErr:  "Illegal character '@' at line 1\nIllegal character '?' at line 2",
			wantCode: ExitDataErr,
		},
		{
			name:     "syntax error runs nothing",
			src:      "print 1;\nx = ;",
			wantErr:  "Syntax error at line 2: ;(';')",
			wantCode: ExitDataErr,
		},
		{
			name:     "unexpected end of input",
			src:      "while (1 < 2) {",
			wantErr:  "Unexpected end of input",
			wantCode: ExitDataErr,
		},
		{
			name:     "jump outside loop runs nothing",
			src:      "print 1;\ncontinue;",
			wantErr:  "Semantic error at line 2: 'continue' outside of a loop",
			wantCode: ExitDataErr,
		},
		{
			name:     "runtime error keeps earlier output",
			src:      "print 1;\nprint z;",
			wantOut:  "1\n",
			wantErr:  "Runtime error at line 2: variable z is not defined",
			wantCode: ExitSoftware,
		},
		{
			name:     "return ends the program",
			src:      "print 1; return 2; print 3;",
			wantOut:  "1\n",
			wantCode: ExitOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := Run(context.Background(), []byte(tt.src), WithOutput(&out), WithLogger(quietLogger()))
			if diff := cmp.Diff(tt.wantOut, out.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
			gotErr := ""
			if err != nil {
				gotErr = err.Error()
			}
			if diff := cmp.Diff(tt.wantErr, gotErr); diff != "" {
				t.Errorf("error mismatch (-want +got):\n%s", diff)
			}
			if got := ExitCode(err); got != tt.wantCode {
				t.Errorf("ExitCode = %d, want %d", got, tt.wantCode)
			}
		})
	}
}

func TestRunUsesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Print.Separator = "; "
	cfg.Limits.MaxLoopIterations = 3
	var out bytes.Buffer
	err := Run(context.Background(), []byte(`print 1, 2.0; while (1 < 2) { }`), WithOutput(&out), WithConfig(cfg), WithLogger(quietLogger()))
	if !errors.Is(err, eval.ErrLoopLimit) {
		t.Fatalf("want loop limit error, got %v", err)
	}
	if diff := cmp.Diff("1; 2.0\n", out.String()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionKeepsVariables(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(WithOutput(&out), WithLogger(quietLogger()))
	ctx := context.Background()
	for _, src := range []string{"x = 0;", "x += 2;", "print x;"} {
		if _, err := s.Exec(ctx, "test", []byte(src)); err != nil {
			t.Fatalf("%s: %v", src, err)
		}
	}
	if diff := cmp.Diff("2\n", out.String()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	// an incomplete statement leaves the session untouched
	_, err := s.Exec(ctx, "test", []byte("x = 5"))
	if !errors.Is(err, parser.ErrUnexpectedEOF) {
		t.Fatalf("want unexpected end of input, got %v", err)
	}
	val, _ := s.Env().Get("x")
	if diff := cmp.Diff(eval.Value(eval.IntScalar(2)), val); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	a := NewSession(WithOutput(io.Discard), WithLogger(quietLogger()))
	b := NewSession(WithOutput(io.Discard), WithLogger(quietLogger()))
	if _, err := a.Exec(ctx, "a", []byte("x = 1;")); err != nil {
		t.Fatal(err)
	}
	_, err := b.Exec(ctx, "b", []byte("print x;"))
	if !errors.Is(err, eval.ErrUnboundVariable) {
		t.Fatalf("want unbound variable in the second session, got %v", err)
	}
}

func TestTrace(t *testing.T) {
	var trace bytes.Buffer
	err := Run(context.Background(), []byte("x = 1;"), WithOutput(io.Discard), WithTrace(&trace), WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Tokens scanned:", "ID('x') line 1", "AST:", "Assignment: x (line 1)"} {
		if !strings.Contains(trace.String(), want) {
			t.Errorf("trace lacks %q:\n%s", want, trace.String())
		}
	}
}

func TestRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.m")
	if err := os.WriteFile(path, []byte("for i = 1:3 { print i; }\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := RunFile(context.Background(), path, WithOutput(&out), WithLogger(quietLogger())); err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if diff := cmp.Diff("1\n2\n3\n", out.String()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	err := RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.m"), WithLogger(quietLogger()))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want not-exist error, got %v", err)
	}
	if got := ExitCode(err); got != ExitIOErr {
		t.Errorf("ExitCode = %d, want %d", got, ExitIOErr)
	}
}
