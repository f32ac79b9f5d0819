package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/s0lang/s0/pkg/diagnostics"
	"github.com/s0lang/s0/pkg/evaluator"
	"github.com/s0lang/s0/pkg/help"
	"github.com/s0lang/s0/pkg/parser"
	"github.com/s0lang/s0/pkg/runtime"
)

const (
	historyFile = ".s0_history"
	promptMain  = "s0> "
	promptCont  = "... "
	replBanner  = "s0 repl. Ctrl-C cancels the current input, Ctrl-D exits. Type :help for commands."
)

// cmdRepl runs the interactive read-eval-print loop. Definitions
// persist across inputs in a single session.
func cmdRepl(args []string) int {
	_ = args

	fmt.Println(replBanner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	rt := runtime.New(runtime.WithRunID("repl"))
	sess := rt.NewSession()

	for {
		code, ok := readForm(ln)
		if !ok {
			fmt.Println()
			break
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, ":") {
			if exit := replCommand(sess, rt, trimmed); exit {
				break
			}
			continue
		}

		evalInput(sess, code)
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}

	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
	return 0
}

// readForm accumulates input lines until the buffered text stops
// looking incomplete to the parser, so a form can span lines. The
// bool result is false on Ctrl-D; Ctrl-C discards the buffer and
// returns empty input.
func readForm(ln *liner.State) (string, bool) {
	var buf strings.Builder

	for {
		prompt := promptMain
		if buf.Len() > 0 {
			prompt = promptCont
		}

		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return "", true
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)

		src := buf.String()
		if !parser.IsIncomplete(src) {
			return src, true
		}
	}
}

// replCommand handles colon commands. It reports whether the loop
// should exit.
func replCommand(sess *evaluator.Session, rt *runtime.Runtime, line string) bool {
	switch strings.Fields(line)[0] {
	case ":help":
		fmt.Print(help.QUICKREF)
	case ":reset":
		*sess = *rt.NewSession()
		fmt.Println("session reset.")
	case ":quit", ":q":
		return true
	default:
		fmt.Println("unknown command. Type :help for commands.")
	}
	return false
}

// evalInput parses and evaluates one buffered input against the
// session, printing a line per form that produced a value. Errors
// are printed and abandon the rest of the input; bindings made by
// forms that completed first are kept.
func evalInput(sess *evaluator.Session, code string) {
	forest, diags := parser.Parse(code, "repl")
	if len(diags) > 0 {
		fmt.Println(diagnostics.FormatDiagnostics(diags, true))
		return
	}

	for _, node := range forest {
		val, err := sess.Eval(node)
		if err != nil {
			var rtErr *evaluator.S0RuntimeError
			if errors.As(err, &rtErr) {
				diag := diagnostics.MakeDiag(rtErr.Code, rtErr.Message, rtErr.Span, "")
				fmt.Println(diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, true))
			} else {
				fmt.Println(err)
			}
			return
		}
		if val != nil {
			fmt.Println(evaluator.FormatValue(val))
		}
	}
}
