package framework

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// CapturedOutput is the debug output of one scenario, in the order it was written.
type CapturedOutput []observer.LoggedEntry

// CapturingLogger records debug messages for one scenario and forwards them to a zap logger.
type CapturingLogger struct {
	sugar    *zap.SugaredLogger
	observed *observer.ObservedLogs
}

func newCapturingLogger(forward *zap.Logger) *CapturingLogger {
	core, observed := observer.New(zapcore.DebugLevel)
	tee := zapcore.NewTee(core, forward.Core())
	return &CapturingLogger{
		sugar:    zap.New(tee).Sugar(),
		observed: observed,
	}
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.sugar.Debugf(message, args...)
}

func (l *CapturingLogger) Output() CapturedOutput {
	return CapturedOutput(l.observed.All())
}

func (output CapturedOutput) Dump(dest io.Writer, prefix string) {
	for _, m := range output {
		fmt.Fprintf(dest, "%s[%s] %s%s\n",
			prefix,
			m.Time.Format(timestampFormat),
			m.Message,
			formatFields(m.ContextMap()),
		)
	}
}

func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	return b.String()
}

// reformatError drops testify's "Error Trace" block, which points into assertion helpers
// rather than at anything useful in the scenario.
func reformatError(err error) error {
	lines := strings.Split(err.Error(), "\n")
	kept := make([]string, 0, len(lines))
	inTrace := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "Error Trace:") {
			inTrace = true
			continue
		}
		if inTrace && strings.HasSuffix(strings.SplitN(trimmed, " ", 2)[0], ":") {
			inTrace = false
		}
		if inTrace || trimmed == "" {
			continue
		}
		kept = append(kept, strings.TrimRight(line, " \t"))
	}
	return fmt.Errorf("%s", strings.Join(kept, "\n"))
}
