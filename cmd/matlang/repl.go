package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/ostnam/matlang/pkg/parser"
	"github.com/ostnam/matlang/pkg/runner"
)

// runRepl starts the interactive prompt when stdin is a terminal. Otherwise
// the whole of stdin is run as one program.
func runRepl(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, sessionOpts []runner.Option) int {
	if f, ok := stdin.(*os.File); !ok || !isTerminal(f) {
		src, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "read stdin: %v\n", err)
			return runner.ExitIOErr
		}
		err = runner.Run(ctx, src, append(sessionOpts, runner.WithOutput(stdout))...)
		if err != nil {
			fmt.Fprintln(stderr, err)
		}
		return runner.ExitCode(err)
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	session := runner.NewSession(append(sessionOpts, runner.WithOutput(stdout))...)
	return replLoop(ctx, line, session, stdout, stderr)
}

// lineSource is the part of *liner.State the prompt loop needs.
type lineSource interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// replLoop reads statements until the source is exhausted. Input that ends
// inside a construct is kept and completed by the following lines.
func replLoop(ctx context.Context, lines lineSource, session *runner.Session, stdout, stderr io.Writer) int {
	var pending strings.Builder
	for {
		prompt := "> "
		if pending.Len() > 0 {
			prompt = "... "
		}
		input, err := lines.Prompt(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) && pending.Len() > 0 {
				pending.Reset()
				continue
			}
			// ctrl-D
			fmt.Fprint(stdout, "\n")
			return runner.ExitOK
		}
		if pending.Len() == 0 && strings.TrimSpace(input) == ":vars" {
			for _, name := range session.Env().Names() {
				val, _ := session.Env().Get(name)
				fmt.Fprintf(stdout, "%s = %s\n", name, val)
			}
			continue
		}
		pending.WriteString(input)
		pending.WriteString("\n")

		_, err = session.Exec(ctx, "<repl>", []byte(pending.String()))
		if errors.Is(err, parser.ErrUnexpectedEOF) {
			// statement not finished yet
			continue
		}
		lines.AppendHistory(strings.TrimSpace(pending.String()))
		pending.Reset()
		if err != nil {
			fmt.Fprintln(stderr, err)
		}
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
