// Package framework contains the scenario runtime used by the contract tests. It knows nothing
// about the prediction API.
//
// The general model is:
//
// 1. A Context represents a scenario or a group of scenarios. It is similar to Go's *testing.T:
// it has a Run method for child scenarios, accumulates failures through Errorf and FailNow,
// and can be skipped. It satisfies require.TestingT, so testify assertions can be used on it.
//
// 2. Each scenario has its own debug logger. Output written to it is forwarded to the main zap
// logger and also captured, so that a TestLogger can print it next to a failure.
//
// 3. Scenarios are selected with regex filters over their full path, and the run produces a
// Results value that can be summarized with PrintResults.
//
// The domain-specific code that knows what is being tested lives in the agifytests package.
package framework
