package framework

// TestLogger receives scenario lifecycle notifications as the run progresses. The console
// implementation lives in the main package.
type TestLogger interface {
	TestStarted(id TestID)
	// TestError is called for each failed assertion, possibly several times per scenario.
	TestError(id TestID, err error)
	// TestFinished is called once for each scenario that ran to completion or failed.
	TestFinished(result TestResult, debugOutput CapturedOutput)
	TestSkipped(id TestID, reason string)
}

type nullTestLogger struct{}

func (nullTestLogger) TestStarted(TestID)                      {}
func (nullTestLogger) TestError(TestID, error)                 {}
func (nullTestLogger) TestFinished(TestResult, CapturedOutput) {}
func (nullTestLogger) TestSkipped(TestID, string)              {}
