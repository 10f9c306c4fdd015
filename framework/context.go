package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
	logger     *zap.Logger
}

// Context is a scenario or group of scenarios. It is used the way *testing.T is used in Go
// tests, and implements require.TestingT so that testify assertions can be passed a Context.
type Context struct {
	env         *environment
	id          TestID
	debugLogger *CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	children    int
	errors      []error
	cleanups    []func()
}

// Run executes the root action and returns the results of every scenario it started.
//
// Debug output written through a scenario's Debug method is captured for the test logger and
// also forwarded to logger, if one is given.
func Run(
	filter Filter,
	testLogger TestLogger,
	logger *zap.Logger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
		logger:     logger,
	}
	c := &Context{env: env, debugLogger: newCapturingLogger(logger)}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) (result TestResult) {
	started := time.Now()
	defer func() {
		r := recover()
		c.runCleanups()
		if r != nil && !c.skipped {
			c.failed = true
			var addError error
			if _, ok := r.(*Context); ok {
				if len(c.errors) == 0 {
					addError = errors.New("test failed with no failure message")
				}
			} else {
				addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
			}
			if addError != nil {
				c.errors = append(c.errors, addError)
				c.env.testLogger.TestError(c.id, addError)
			}
		}
		// A skip after recorded errors is still a failure.
		skipped := c.skipped && len(c.errors) == 0
		result = TestResult{
			TestID:   c.id,
			Errors:   c.errors,
			Skipped:  skipped,
			Children: c.children,
			Duration: time.Since(started),
		}
		c.env.results.Tests = append(c.env.results.Tests, result)
		if c.failed && !skipped {
			c.env.results.Failures = append(c.env.results.Failures, result)
		}
	}()

	action(c)
	return
}

func (c *Context) runCleanups() {
	for i := len(c.cleanups) - 1; i >= 0; i-- {
		c.cleanups[i]()
	}
	c.cleanups = nil
}

// Run starts a named child scenario. The child is skipped if the filter excludes it.
func (c *Context) Run(name string, action func(*Context)) {
	id := TestID{Path: append(append([]string(nil), c.id.Path...), name)}

	c.children++
	c.env.testLogger.TestStarted(id)
	if c.env.filter != nil && !c.env.filter(id) {
		c.env.results.Tests = append(c.env.results.Tests, TestResult{TestID: id, Skipped: true})
		c.env.testLogger.TestSkipped(id, "excluded by filter parameters")
		return
	}
	c1 := &Context{
		id:          id,
		env:         c.env,
		debugLogger: newCapturingLogger(c.env.logger.With(zap.String("scenario", id.String()))),
	}
	result := c1.run(action)
	if result.Skipped {
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	} else {
		c.env.testLogger.TestFinished(result, c1.debugLogger.Output())
	}
}

// Errorf records a failure without stopping the scenario.
func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, reformatError(err))
}

// FailNow stops the scenario immediately. Errors already recorded are kept.
func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Defer schedules a function to run when the scenario ends, in last-in-first-out order.
func (c *Context) Defer(fn func()) {
	c.cleanups = append(c.cleanups, fn)
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}
