// Command s0 is the s0 language CLI entry point.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/s0lang/s0/pkg/diagnostics"
	"github.com/s0lang/s0/pkg/evaluator"
	"github.com/s0lang/s0/pkg/help"
	"github.com/s0lang/s0/pkg/runtime"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: s0 <command> [options]")
		fmt.Fprintln(os.Stderr, "commands: run, check, fmt, repl, trace, help, version")
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "check":
		os.Exit(cmdCheck(os.Args[2:]))
	case "fmt":
		os.Exit(cmdFmt(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "trace":
		os.Exit(cmdTrace(os.Args[2:]))
	case "help", "--help", "-h":
		os.Exit(cmdHelp(os.Args[2:]))
	case "version", "--version":
		fmt.Printf("s0 version %s\n", version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		os.Exit(1)
	}
}

// cmdRun evaluates a program and prints its value stream.
func cmdRun(args []string) int {
	var file string
	pretty := false
	jsonOutput := false
	tracePath := ""

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--pretty":
			pretty = true
		case "--json":
			jsonOutput = true
		case "--trace":
			if i+1 < len(args) {
				i++
				tracePath = args[i]
			}
		default:
			if !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: s0 run <file> [--pretty] [--json] [--trace <path>]")
		return 1
	}

	source, filename, exitCode := readSource(file, pretty)
	if exitCode != 0 {
		return exitCode
	}

	// Build runtime
	var opts []runtime.Option
	var traceFile *os.File
	if tracePath != "" {
		f, err := os.Create(tracePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error creating trace file: %s\n", err)
			return 1
		}
		traceFile = f
		enc := json.NewEncoder(f)
		opts = append(opts, runtime.WithTrace(func(ev evaluator.TraceEvent) {
			_ = enc.Encode(ev)
		}))
	}
	rt := runtime.New(opts...)

	// Execute
	ctx := context.Background()
	result, execErr := rt.Run(ctx, source, filename)
	if traceFile != nil {
		_ = traceFile.Close()
	}

	if execErr != nil {
		if diagErr, ok := execErr.(*runtime.DiagnosticError); ok {
			fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diagErr.Diagnostics, pretty))
			return 2
		}
		if rtErr, ok := execErr.(*evaluator.S0RuntimeError); ok {
			// Forms that completed before the failure still print.
			if result != nil && !jsonOutput {
				printValues(result)
			}
			diag := diagnostics.MakeDiag(rtErr.Code, rtErr.Message, rtErr.Span, "")
			fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, pretty))
			return 3
		}
		fmt.Fprintln(os.Stderr, execErr.Error())
		return 1
	}

	if jsonOutput {
		items := make([]json.RawMessage, 0, len(result.Results))
		for _, fr := range result.Results {
			b, err := evaluator.ValueToJSON(fr.Value)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error serializing result: %s\n", err)
				return 1
			}
			items = append(items, b)
		}
		out, err := json.Marshal(items)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error serializing results: %s\n", err)
			return 1
		}
		fmt.Println(string(out))
		return 0
	}

	printValues(result)
	return 0
}

// printValues writes one line per form that produced a value.
func printValues(result *runtime.Result) {
	for _, fr := range result.Results {
		if fr.Value != nil {
			fmt.Println(evaluator.FormatValue(fr.Value))
		}
	}
}

// cmdCheck parses and validates a program without evaluating it.
func cmdCheck(args []string) int {
	var file string
	pretty := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--pretty":
			pretty = true
		default:
			if !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: s0 check <file> [--pretty]")
		return 1
	}

	source, filename, exitCode := readSource(file, pretty)
	if exitCode != 0 {
		return exitCode
	}

	rt := runtime.New()
	diags := rt.Check(source, filename)
	if len(diags) > 0 {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diags, pretty))
		return 2
	}

	// Valid program
	if pretty {
		fmt.Println("No errors found.")
	} else {
		fmt.Println("[]")
	}
	return 0
}

// cmdFmt canonically formats a program.
func cmdFmt(args []string) int {
	var file string
	write := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--write", "-w":
			write = true
		default:
			if !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: s0 fmt <file> [--write]")
		return 1
	}

	source, filename, exitCode := readSource(file, true)
	if exitCode != 0 {
		return exitCode
	}

	rt := runtime.New()
	formatted, err := rt.Format(source, filename)
	if err != nil {
		if diagErr, ok := err.(*runtime.DiagnosticError); ok {
			fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diagErr.Diagnostics, true))
			return 2
		}
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	if write {
		if file == "-" {
			fmt.Fprintln(os.Stderr, "cannot use --write with stdin")
			return 1
		}
		if err := os.WriteFile(file, []byte(formatted), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "error writing file: %s\n", err)
			return 1
		}
	} else {
		// Output without trailing newline (Format adds one)
		fmt.Print(formatted)
	}

	return 0
}

// cmdHelp prints the quick reference, a topic page, or the native index.
func cmdHelp(args []string) int {
	topic := ""
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			topic = arg
		}
	}

	if topic == "" {
		fmt.Print(help.QUICKREF)
		return 0
	}
	if topic == "natives" {
		fmt.Print(help.NativeIndex())
		return 0
	}

	_, content, err := help.MatchTopic(topic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nAvailable topics: %s\n", err, strings.Join(help.TopicList, ", "))
		return 1
	}
	fmt.Print(content)
	return 0
}

// TraceSummary aggregates an NDJSON trace stream for display.
type TraceSummary struct {
	RunID       string         `json:"runId"`
	TotalEvents int            `json:"totalEvents"`
	Forms       int            `json:"forms"`
	Defines     int            `json:"defines"`
	Applies     int            `json:"applies"`
	NativeCalls map[string]int `json:"nativeCalls"`
	StartTime   string         `json:"startTime,omitempty"`
	EndTime     string         `json:"endTime,omitempty"`
	DurationMs  float64        `json:"durationMs"`
}

type traceEvent struct {
	Event string            `json:"event"`
	RunID string            `json:"runId"`
	TS    string            `json:"ts"`
	Data  map[string]string `json:"data,omitempty"`
}

// cmdTrace summarizes a trace file produced by run --trace.
func cmdTrace(args []string) int {
	var file string
	jsonOutput := false
	textOutput := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--json":
			jsonOutput = true
		case "--text":
			textOutput = true
		default:
			if !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: s0 trace <file.jsonl> [--json|--text]")
		return 1
	}

	// Read and parse NDJSON trace file
	f, err := os.Open(file)
	if err != nil {
		diag := diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), nil, "")
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, false))
		return 1
	}
	defer f.Close()

	summary := computeTraceSummary(f)

	if textOutput {
		printTraceSummaryText(summary)
	} else if jsonOutput {
		b, _ := json.Marshal(summary)
		fmt.Println(string(b))
	} else {
		// Default to JSON
		b, _ := json.Marshal(summary)
		fmt.Println(string(b))
	}

	return 0
}

// computeTraceSummary reads NDJSON trace events and tallies them.
// Lines that fail to parse are skipped.
func computeTraceSummary(r io.Reader) *TraceSummary {
	summary := &TraceSummary{
		NativeCalls: make(map[string]int),
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var event traceEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue // skip invalid lines
		}
		summary.TotalEvents++
		if summary.RunID == "" {
			summary.RunID = event.RunID
		}
		switch event.Event {
		case evaluator.TraceRunStart:
			if summary.StartTime == "" {
				summary.StartTime = event.TS
			}
		case evaluator.TraceRunEnd:
			summary.EndTime = event.TS
		case evaluator.TraceFormStart:
			summary.Forms++
		case evaluator.TraceDefine:
			summary.Defines++
		case evaluator.TraceApply:
			summary.Applies++
		case evaluator.TraceNativeCall:
			if name, ok := event.Data["name"]; ok {
				summary.NativeCalls[name]++
			}
		}
	}

	// Compute duration from start/end times
	if summary.StartTime != "" && summary.EndTime != "" {
		start, err1 := parseTime(summary.StartTime)
		end, err2 := parseTime(summary.EndTime)
		if err1 == nil && err2 == nil {
			summary.DurationMs = float64(end.Sub(start).Microseconds()) / 1000.0
		}
	}

	return summary
}

func printTraceSummaryText(s *TraceSummary) {
	fmt.Printf("Run: %s\n", s.RunID)
	fmt.Printf("Events: %d\n", s.TotalEvents)
	fmt.Printf("Forms: %d (%d defines, %d applies)\n", s.Forms, s.Defines, s.Applies)
	total := 0
	for _, count := range s.NativeCalls {
		total += count
	}
	fmt.Printf("Native calls: %d\n", total)
	for name, count := range s.NativeCalls {
		fmt.Printf("  %s: %d\n", name, count)
	}
	if s.DurationMs > 0 {
		fmt.Printf("Duration: %.3fms\n", s.DurationMs)
	}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// readSource reads program text from a file, or stdin when the path
// is "-". The returned exit code is nonzero on failure.
func readSource(file string, pretty bool) (source, filename string, exitCode int) {
	if file == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			diag := diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("error reading stdin: %s", err), nil, "")
			fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, pretty))
			return "", "", 1
		}
		return string(data), "<stdin>", 0
	}

	data, err := os.ReadFile(file)
	if err != nil {
		diag := diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("error reading %s: %s", file, err), nil, "")
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, pretty))
		return "", "", 1
	}
	return string(data), file, 0
}
