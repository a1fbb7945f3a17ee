package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ostnam/matlang/pkg/runner"
)

func writeProgram(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunEval(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantOut    string
		wantStderr string
		wantCode   int
	}{
		{
			name:     "prints",
			args:     []string{"-e", "x = 2 + 3 * 4; print x;"},
			wantOut:  "14\n",
			wantCode: runner.ExitOK,
		},
		{
			name:     "separator flag",
			args:     []string{"--separator", ",", "-e", "print 1, 2;"},
			wantOut:  "1,2\n",
			wantCode: runner.ExitOK,
		},
		{
			name:     "precision flag",
			args:     []string{"--precision", "2", "-e", "print 1 / 3;"},
			wantOut:  "0.33\n",
			wantCode: runner.ExitOK,
		},
		{
			name:       "syntax error",
			args:       []string{"-e", "x = ;"},
			wantStderr: "Syntax error at line 1: ;(';')\n",
			wantCode:   runner.ExitDataErr,
		},
		{
			name:       "runtime error",
			args:       []string{"-e", "print 1;\nprint y;"},
			wantOut:    "1\n",
			wantStderr: "Runtime error at line 2: variable y is not defined\n",
			wantCode:   runner.ExitSoftware,
		},
		{
			name:       "loop limit",
			args:       []string{"--max-iterations", "10", "-e", "while (1 < 2) { }"},
			wantStderr: "Runtime error at line 1: loop exceeded 10 iterations\n",
			wantCode:   runner.ExitSoftware,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &bytes.Buffer{}, &stdout, &stderr)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, stderr.String())
			}
			if diff := cmp.Diff(tt.wantOut, stdout.String()); diff != "" {
				t.Errorf("stdout mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantStderr, stderr.String()); diff != "" {
				t.Errorf("stderr mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRunBadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--no-such-flag"}, &bytes.Buffer{}, &stdout, &stderr); code != runner.ExitUsage {
		t.Errorf("exit code = %d, want %d", code, runner.ExitUsage)
	}
	if !strings.Contains(stderr.String(), "usage: matlang") {
		t.Errorf("usage not printed:\n%s", stderr.String())
	}
}

func TestRunInvalidConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--precision", "-5", "-e", "print 1;"}, &bytes.Buffer{}, &stdout, &stderr)
	if code != runner.ExitIOErr {
		t.Errorf("exit code = %d, want %d", code, runner.ExitIOErr)
	}
	if stdout.Len() != 0 {
		t.Errorf("program ran with an invalid config: %q", stdout.String())
	}
}

func TestRunConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeProgram(t, dir, "custom.yml", "print:\n  separator: \" | \"\n")
	var stdout, stderr bytes.Buffer
	code := run([]string{"-c", cfg, "-e", "print 1, 2;"}, &bytes.Buffer{}, &stdout, &stderr)
	if code != runner.ExitOK {
		t.Fatalf("exit code = %d (stderr: %s)", code, stderr.String())
	}
	if diff := cmp.Diff("1 | 2\n", stdout.String()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRunFilesKeepsArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	var want strings.Builder
	for i, name := range []string{"a.m", "b.m", "c.m", "d.m", "e.m"} {
		// the first programs loop longest so they tend to finish last
		src := "n = 0; while (n < " + strings.Repeat("9", 5-i) + ") { n += 1; } print \"" + name + "\";\n"
		paths = append(paths, writeProgram(t, dir, name, src))
		want.WriteString(name + "\n")
	}
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"-j", "3"}, paths...), &bytes.Buffer{}, &stdout, &stderr)
	if code != runner.ExitOK {
		t.Fatalf("exit code = %d (stderr: %s)", code, stderr.String())
	}
	if diff := cmp.Diff(want.String(), stdout.String()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRunFilesReportsFirstFailure(t *testing.T) {
	dir := t.TempDir()
	ok := writeProgram(t, dir, "ok.m", "print 1;")
	bad := writeProgram(t, dir, "bad.m", "print 1 $ 2;")
	missing := filepath.Join(dir, "missing.m")

	var stdout, stderr bytes.Buffer
	code := run([]string{ok, bad, missing}, &bytes.Buffer{}, &stdout, &stderr)
	if code != runner.ExitDataErr {
		t.Errorf("exit code = %d, want %d", code, runner.ExitDataErr)
	}
	if diff := cmp.Diff("1\n", stdout.String()); diff != "" {
		t.Errorf("stdout mismatch (-want +got):\n%s", diff)
	}
	for _, want := range []string{"Illegal character '$' at line 1", "missing.m"} {
		if !strings.Contains(stderr.String(), want) {
			t.Errorf("stderr lacks %q:\n%s", want, stderr.String())
		}
	}
}

func TestRunStdinProgram(t *testing.T) {
	var stdout, stderr bytes.Buffer
	stdin := bytes.NewBufferString("A = eye(2);\nprint A';\n")
	if code := run(nil, stdin, &stdout, &stderr); code != runner.ExitOK {
		t.Fatalf("exit code = %d (stderr: %s)", code, stderr.String())
	}
	if diff := cmp.Diff("[1, 0; 0, 1]\n", stdout.String()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
