package framework

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
)

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

// TestResult is the outcome of one scenario or group. Children counts the child scenarios it
// started.
type TestResult struct {
	TestID   TestID
	Errors   []error
	Skipped  bool
	Children int
	Duration time.Duration
}

// Failed reports whether the scenario itself recorded errors.
func (r TestResult) Failed() bool {
	return len(r.Errors) > 0 && !r.Skipped
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Counts returns how many scenarios passed, failed and were skipped. Groups are counted only
// when they fail on their own account; the unnamed root context is never counted.
func (r Results) Counts() (passed, failed, skipped int) {
	for _, t := range r.Tests {
		switch {
		case len(t.TestID.Path) == 0:
		case t.Children > 0 && !t.Failed():
		case t.Skipped:
			skipped++
		case len(t.Errors) > 0:
			failed++
		default:
			passed++
		}
	}
	return
}

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// PrintResults writes a summary of the run, listing each failed scenario.
func PrintResults(out io.Writer, results Results) {
	passed, failed, skipped := results.Counts()
	if results.OK() {
		color.New(color.FgGreen).Fprintf(out, "All scenarios passed")
		fmt.Fprintf(out, " (%d passed, %d skipped)\n", passed, skipped)
		return
	}
	red := color.New(color.FgRed)
	red.Fprintf(out, "FAILED scenarios (%d):\n", len(results.Failures))
	for _, f := range results.Failures {
		red.Fprintf(out, "  %s\n", f.TestID)
	}
	fmt.Fprintf(out, "%d passed, %d failed, %d skipped\n", passed, failed, skipped)
}
