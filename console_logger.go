package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hasselmyr/agify-api-tests/framework"

	"github.com/fatih/color"
)

var (
	failedColor  = color.New(color.FgRed, color.Bold)
	skippedColor = color.New(color.FgYellow)
)

// ConsoleTestLogger prints scenario progress as the suite runs: the scenario path when it
// starts, each assertion failure indented under it, and how long the scenario took. Captured
// debug output is dumped after the scenario when the matching flag is set.
type ConsoleTestLogger struct {
	// Out defaults to os.Stdout.
	Out                  io.Writer
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c *ConsoleTestLogger) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *ConsoleTestLogger) TestStarted(id framework.TestID) {
	fmt.Fprintf(c.out(), "[%s]\n", id)
}

// TestError indents every line of err, so the reproduction command printed with status
// failures lines up under its message.
func (c *ConsoleTestLogger) TestError(id framework.TestID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(c.out(), "  %s\n", line)
	}
}

func (c *ConsoleTestLogger) TestFinished(result framework.TestResult, debugOutput framework.CapturedOutput) {
	took := result.Duration.Round(time.Millisecond)
	failed := result.Failed()
	if failed {
		failedColor.Fprintf(c.out(), "  FAILED: %s (%s)\n", result.TestID, took)
	} else if result.Children == 0 {
		fmt.Fprintf(c.out(), "  passed in %s\n", took)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.out(), "    DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id framework.TestID, reason string) {
	if reason == "" {
		skippedColor.Fprintf(c.out(), "  SKIPPED: %s\n", id)
	} else {
		skippedColor.Fprintf(c.out(), "  SKIPPED: %s (%s)\n", id, reason)
	}
}
