package agifytests

import (
	"errors"
	"fmt"
	"time"

	"github.com/hasselmyr/agify-api-tests/agify"
	"github.com/hasselmyr/agify-api-tests/config"
	"github.com/hasselmyr/agify-api-tests/framework"
	"github.com/hasselmyr/agify-api-tests/verify"

	"github.com/stretchr/testify/require"
)

// InvalidAPIKey is a key the service has never issued.
const InvalidAPIKey = "invalid_api_key_12345"

// SuiteParams are the settings that scenarios read.
type SuiteParams struct {
	APIKey          string
	ExpiredAPIKey   string
	RepeatPause     time.Duration
	MaxResponseTime time.Duration
}

// DefaultSuiteParams returns params using the placeholder credentials, under which the
// authenticated scenarios are skipped.
func DefaultSuiteParams() SuiteParams {
	return SuiteParams{
		APIKey:          config.PlaceholderAPIKey,
		ExpiredAPIKey:   config.PlaceholderExpiredAPIKey,
		RepeatPause:     100 * time.Millisecond,
		MaxResponseTime: 2 * time.Second,
	}
}

type environment struct {
	client *agify.Client
	params SuiteParams
}

// T represents a scenario or a group of scenarios in the prediction test suite.
//
// It implements the same basic functionality as Go's testing.T, but outside of the Go test
// runner, so the assert and require packages can be passed a *T as if it were a *testing.T.
//
// It also holds the per-scenario state: the most recent response, every response captured so
// far in the scenario, and the latency of the most recent call. The request methods update
// that state and fail the scenario immediately if the request could not be made at all.
type T struct {
	context   *framework.Context
	env       *environment
	response  *agify.Envelope
	responses []*agify.Envelope
	latency   time.Duration
}

// Errorf is called by assertions to log a failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a scenario should fail and immediately exit. The
// methods in the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a sub-scenario with fresh state.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(&T{context: c, env: t.env})
	})
}

// Debug logs some debug output for the scenario. The output is passed to the test logger at
// the end of the scenario.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

// Params returns the suite settings.
func (t *T) Params() SuiteParams {
	return t.env.params
}

// SkipWithReason stops the scenario and reports it as skipped.
func (t *T) SkipWithReason(reason string) {
	t.context.SkipWithReason(reason)
}

// RequireAPIKey skips the scenario if no real API key was configured.
func (t *T) RequireAPIKey() string {
	key := t.env.params.APIKey
	if key == "" || key == config.PlaceholderAPIKey {
		t.SkipWithReason("no API key configured (set AGIFY_API_KEY)")
	}
	return key
}

// Response returns the most recent response. The scenario fails if there is none.
func (t *T) Response() *agify.Envelope {
	require.NotNil(t, t.response, "scenario checked a response before making a request")
	return t.response
}

// Responses returns every response captured in this scenario, oldest first.
func (t *T) Responses() []*agify.Envelope {
	return t.responses
}

// Latency returns the duration of the most recent call.
func (t *T) Latency() time.Duration {
	return t.latency
}

func (t *T) record(result agify.Result, err error) *agify.Envelope {
	t.latency = result.Latency
	require.NoError(t, err, "request could not be completed")
	t.response = result.Envelope
	t.responses = append(t.responses, result.Envelope)
	t.Debug("%s -> %s in %s", result.Envelope.Request().URL(), result.Envelope, result.Latency)
	return result.Envelope
}

// RequestPrediction asks for a prediction for one name.
func (t *T) RequestPrediction(name string) *agify.Envelope {
	return t.record(t.env.client.Predict(name))
}

// RequestPredictionTwice asks for the same name twice with a short pause in between, so that
// the second answer cannot be an immediate replay of the first. It returns both responses.
func (t *T) RequestPredictionTwice(name string) (*agify.Envelope, *agify.Envelope) {
	first := t.RequestPrediction(name)
	time.Sleep(t.env.params.RepeatPause)
	second := t.RequestPrediction(name)
	return first, second
}

// RequestWithCountry asks for a prediction localized to a country.
func (t *T) RequestWithCountry(name, countryCode string) *agify.Envelope {
	return t.record(t.env.client.PredictWithCountry(name, countryCode))
}

// RequestWithoutName sends no parameters at all.
func (t *T) RequestWithoutName() *agify.Envelope {
	return t.record(t.env.client.PredictWithoutName())
}

// RequestWithAuth asks for a prediction with an API key.
func (t *T) RequestWithAuth(name, apiKey string) *agify.Envelope {
	return t.record(t.env.client.PredictWithAuth(name, apiKey))
}

// RequestBatch asks for predictions for several names at once.
func (t *T) RequestBatch(names []string, opts ...agify.BatchOption) *agify.Envelope {
	return t.record(t.env.client.PredictBatch(names, opts...))
}

// RequestMalformed sends a name that is not valid UTF-8.
func (t *T) RequestMalformed() *agify.Envelope {
	return t.record(t.env.client.PredictMalformed())
}

// RequestDuplicate sends the name parameter twice.
func (t *T) RequestDuplicate(name1, name2 string) *agify.Envelope {
	return t.record(t.env.client.PredictWithDuplicateParam(name1, name2))
}

// RequestWrongParam sends a name under the wrong parameter key.
func (t *T) RequestWrongParam(wrongKey string) *agify.Envelope {
	return t.record(t.env.client.PredictWithWrongParamName(wrongKey))
}

// Check records a failed verification without stopping the scenario.
func (t *T) Check(err error) bool {
	if err == nil {
		return true
	}
	t.Errorf("%s", t.describeFailure(err))
	return false
}

// Require stops the scenario if a verification failed.
func (t *T) Require(err error) {
	if !t.Check(err) {
		t.FailNow()
	}
}

func (t *T) describeFailure(err error) string {
	msg := err.Error()
	if !verify.IsAssertionFailure(err) {
		return msg
	}
	var status *verify.StatusMismatchError
	if t.response != nil && !errors.As(err, &status) {
		msg = fmt.Sprintf("%s (status %d)", msg, t.response.Status())
	}
	if t.response != nil {
		msg += "\n  reproduce with: " + t.response.Request().Curl()
	}
	return msg
}

// NumberedNames returns TestName1 through TestNameN.
func NumberedNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("TestName%d", i+1)
	}
	return names
}
