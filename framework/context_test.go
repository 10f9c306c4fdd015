package framework

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingTestLogger struct {
	events []string
	output map[string]CapturedOutput
}

func (r *recordingTestLogger) TestStarted(id TestID) {
	r.events = append(r.events, "start "+id.String())
}

func (r *recordingTestLogger) TestError(id TestID, err error) {
	r.events = append(r.events, "error "+id.String()+": "+err.Error())
}

func (r *recordingTestLogger) TestFinished(result TestResult, debugOutput CapturedOutput) {
	status := "passed"
	if result.Failed() {
		status = "failed"
	}
	r.events = append(r.events, "finish "+result.TestID.String()+" "+status)
	if r.output == nil {
		r.output = make(map[string]CapturedOutput)
	}
	r.output[result.TestID.String()] = debugOutput
}

func (r *recordingTestLogger) TestSkipped(id TestID, reason string) {
	r.events = append(r.events, "skip "+id.String()+" "+reason)
}

func resultFor(results Results, path string) (TestResult, bool) {
	for _, r := range results.Tests {
		if r.TestID.String() == path {
			return r, true
		}
	}
	return TestResult{}, false
}

func TestPassingAndFailingScenarios(t *testing.T) {
	tl := &recordingTestLogger{}
	results := Run(nil, tl, nil, func(c *Context) {
		c.Run("group", func(c *Context) {
			c.Run("passes", func(c *Context) {})
			c.Run("fails", func(c *Context) {
				assert.Equal(c, 1, 2)
				c.Errorf("second problem")
			})
			c.Run("fails now", func(c *Context) {
				require.True(c, false, "stop here")
				c.Errorf("not reached")
			})
		})
	})

	assert.False(t, results.OK())
	require.Len(t, results.Failures, 2)
	assert.Equal(t, "group/fails", results.Failures[0].TestID.String())
	assert.Len(t, results.Failures[0].Errors, 2)
	assert.Equal(t, "group/fails now", results.Failures[1].TestID.String())
	assert.Len(t, results.Failures[1].Errors, 1)

	passed, failed, skipped := results.Counts()
	assert.Equal(t, 1, passed)
	assert.Equal(t, 2, failed)
	assert.Equal(t, 0, skipped)

	assert.Contains(t, tl.events, "finish group/passes passed")
	assert.Contains(t, tl.events, "finish group/fails failed")
	for _, e := range tl.events {
		assert.NotContains(t, e, "Error Trace")
	}
}

func TestGroupsAreNotCountedAsScenarios(t *testing.T) {
	results := Run(nil, nil, nil, func(c *Context) {
		c.Run("group", func(c *Context) {
			c.Run("first", func(c *Context) { c.Errorf("bad") })
			c.Run("second", func(c *Context) { c.Errorf("also bad") })
		})
	})
	passed, failed, skipped := results.Counts()
	assert.Equal(t, 0, passed)
	assert.Equal(t, 2, failed)
	assert.Equal(t, 0, skipped)

	group, ok := resultFor(results, "group")
	require.True(t, ok)
	assert.Equal(t, 2, group.Children)
}

func TestGroupWithOwnErrorIsCounted(t *testing.T) {
	results := Run(nil, nil, nil, func(c *Context) {
		c.Run("group", func(c *Context) {
			c.Run("child", func(c *Context) {})
			c.Errorf("group setup failed")
		})
	})
	passed, failed, _ := results.Counts()
	assert.Equal(t, 1, passed)
	assert.Equal(t, 1, failed)
}

func TestUnexpectedPanicFailsScenario(t *testing.T) {
	results := Run(nil, nil, nil, func(c *Context) {
		c.Run("panics", func(c *Context) {
			panic(errors.New("boom"))
		})
		c.Run("still runs", func(c *Context) {})
	})
	require.Len(t, results.Failures, 1)
	assert.Contains(t, results.Failures[0].Errors[0].Error(), "boom")
	_, ok := resultFor(results, "still runs")
	assert.True(t, ok)
}

func TestSkip(t *testing.T) {
	tl := &recordingTestLogger{}
	results := Run(nil, tl, nil, func(c *Context) {
		c.Run("skipped", func(c *Context) {
			c.SkipWithReason("no key")
			c.Errorf("not reached")
		})
	})
	assert.True(t, results.OK())
	r, ok := resultFor(results, "skipped")
	require.True(t, ok)
	assert.True(t, r.Skipped)
	assert.Contains(t, tl.events, "skip skipped no key")
}

func TestSkipAfterErrorIsFailure(t *testing.T) {
	tl := &recordingTestLogger{}
	results := Run(nil, tl, nil, func(c *Context) {
		c.Run("half done", func(c *Context) {
			c.Errorf("first check failed")
			c.SkipWithReason("no key")
		})
	})
	assert.False(t, results.OK())
	require.Len(t, results.Failures, 1)
	assert.Equal(t, "first check failed", results.Failures[0].Errors[0].Error())

	r, ok := resultFor(results, "half done")
	require.True(t, ok)
	assert.False(t, r.Skipped)
	assert.Contains(t, tl.events, "finish half done failed")
	assert.NotContains(t, tl.events, "skip half done no key")

	_, failed, skipped := results.Counts()
	assert.Equal(t, 1, failed)
	assert.Equal(t, 0, skipped)
}

func TestFilterExcludesScenarios(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("group/wanted"))
	require.NoError(t, filters.MustNotMatch.Set("unwanted"))

	ran := map[string]bool{}
	results := Run(filters.AsFilter, nil, nil, func(c *Context) {
		c.Run("group", func(c *Context) {
			c.Run("wanted", func(c *Context) { ran["wanted"] = true })
			c.Run("other", func(c *Context) { ran["other"] = true })
		})
		c.Run("unwanted", func(c *Context) { ran["unwanted"] = true })
	})

	assert.Equal(t, map[string]bool{"wanted": true}, ran)
	_, _, skipped := results.Counts()
	assert.Equal(t, 2, skipped)

	var out bytes.Buffer
	PrintFilterDescription(&out, filters)
	assert.Contains(t, out.String(), `skip any not matching "group/wanted"`)
	assert.Contains(t, out.String(), `skip any matching "unwanted"`)
}

func TestInvalidFilterPattern(t *testing.T) {
	var list RegexList
	assert.Error(t, list.Set("("))
	assert.False(t, list.IsDefined())
	assert.Equal(t, "regex", list.Type())
}

func TestDeferRunsInReverseOrder(t *testing.T) {
	var order []string
	Run(nil, nil, nil, func(c *Context) {
		c.Run("cleanup", func(c *Context) {
			c.Defer(func() { order = append(order, "first") })
			c.Defer(func() { order = append(order, "second") })
			c.FailNow()
		})
	})
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestDebugOutputIsCapturedAndForwarded(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	tl := &recordingTestLogger{}
	Run(nil, tl, zap.New(core), func(c *Context) {
		c.Run("chatty", func(c *Context) {
			c.Debug("sent %d requests", 2)
		})
	})

	output := tl.output["chatty"]
	require.Len(t, output, 1)
	assert.Equal(t, "sent 2 requests", output[0].Message)

	forwarded := observed.FilterMessage("sent 2 requests").All()
	require.Len(t, forwarded, 1)
	assert.Equal(t, "chatty", forwarded[0].ContextMap()["scenario"])

	var buf bytes.Buffer
	output.Dump(&buf, "DEBUG ")
	assert.True(t, strings.HasPrefix(buf.String(), "DEBUG ["))
	assert.Contains(t, buf.String(), "] sent 2 requests\n")
}

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	PrintResults(&buf, Results{Tests: []TestResult{{TestID: TestID{Path: []string{"a"}}}}})
	assert.Contains(t, buf.String(), "All scenarios passed")
	assert.Contains(t, buf.String(), "1 passed, 0 skipped")

	buf.Reset()
	failure := TestResult{TestID: TestID{Path: []string{"b"}}, Errors: []error{errors.New("x")}}
	PrintResults(&buf, Results{Tests: []TestResult{failure}, Failures: []TestResult{failure}})
	assert.Contains(t, buf.String(), "FAILED scenarios (1)")
	assert.Contains(t, buf.String(), "0 passed, 1 failed, 0 skipped")
}
