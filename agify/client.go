// Package agify is a client for the name-based age prediction API, built for verifying the
// API rather than consuming it.
//
// Every call returns a normalized Envelope no matter what status the service answers with;
// a non-2xx status is data to be asserted on, not a failure. Only transport-level problems
// (DNS failure, refused connection, timeout) are returned as errors. Nothing is retried.
package agify

import (
	"fmt"
	"time"

	"github.com/hasselmyr/agify-api-tests/servicedef"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// malformedQuery carries byte sequences that can never be valid UTF-8: 0xC0 and 0xC1 are
// overlong-encoding start bytes and 0xFF never appears in UTF-8 at all.
const malformedQuery = servicedef.ParamName + "=test%C0%C1%FF"

// probeName is the value sent under a misspelled parameter key.
const probeName = "michael"

// Result pairs the envelope of one call with the time it took.
type Result struct {
	Envelope *Envelope
	Latency  time.Duration
}

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	URL     string
	Latency time.Duration
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("GET %s failed after %s: %s", e.URL, e.Latency, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client issues requests against one base endpoint, one at a time.
type Client struct {
	baseURL     string
	http        *resty.Client
	logger      *zap.SugaredLogger
	lastLatency time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each call. The default is no timeout beyond what the transport imposes.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.SetTimeout(timeout)
		}
	}
}

// WithLogger sends request diagnostics, including resty's own, to the given logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
			c.http.SetLogger(logger)
		}
	}
}

// NewClient creates a Client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    resty.New(),
		logger:  zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the endpoint this client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// LastLatency returns the duration of the most recent call, whether or not it succeeded.
func (c *Client) LastLatency() time.Duration { return c.lastLatency }

// Do issues the request described by spec. An empty spec.BaseURL means the client's own.
func (c *Client) Do(spec RequestSpec) (Result, error) {
	if spec.BaseURL == "" {
		spec.BaseURL = c.baseURL
	}
	target := spec.URL()

	start := time.Now()
	resp, err := c.http.R().Get(target)
	latency := time.Since(start)
	c.lastLatency = latency

	if err != nil {
		c.logger.Debugw("request failed", "url", target, "latency", latency, "error", err)
		return Result{Latency: latency}, &TransportError{URL: target, Latency: latency, Err: err}
	}

	env := NewEnvelope(resp.StatusCode(), resp.Header(), resp.Body())
	env.request = spec
	c.logger.Debugw("received response",
		"url", target,
		"status", env.Status(),
		"kind", env.Body().Kind().String(),
		"latency", latency,
	)
	return Result{Envelope: env, Latency: latency}, nil
}

// Predict requests a prediction for a single name.
func (c *Client) Predict(name string) (Result, error) {
	return c.Do(RequestSpec{Params: []Param{{servicedef.ParamName, name}}})
}

// PredictWithoutName sends no query parameters at all.
func (c *Client) PredictWithoutName() (Result, error) {
	return c.Do(RequestSpec{})
}

// PredictWithCountry requests a prediction localized to a country code.
func (c *Client) PredictWithCountry(name, countryCode string) (Result, error) {
	return c.Do(RequestSpec{Params: []Param{
		{servicedef.ParamName, name},
		{servicedef.ParamCountryID, countryCode},
	}})
}

// PredictWithAuth requests a prediction using an API key.
func (c *Client) PredictWithAuth(name, apiKey string) (Result, error) {
	return c.Do(RequestSpec{Params: []Param{
		{servicedef.ParamName, name},
		{servicedef.ParamAPIKey, apiKey},
	}})
}

// BatchOption adds an optional parameter to a batch request.
type BatchOption func(*[]Param)

// WithAPIKey adds an API key to a batch request.
func WithAPIKey(apiKey string) BatchOption {
	return func(params *[]Param) {
		*params = append(*params, Param{servicedef.ParamAPIKey, apiKey})
	}
}

// WithCountry adds a country code to a batch request.
func WithCountry(countryCode string) BatchOption {
	return func(params *[]Param) {
		*params = append(*params, Param{servicedef.ParamCountryID, countryCode})
	}
}

// PredictBatch requests predictions for several names in one call. Names are sent as repeated
// name[] parameters in the given order; duplicates are kept.
func (c *Client) PredictBatch(names []string, opts ...BatchOption) (Result, error) {
	params := make([]Param, 0, len(names)+len(opts))
	for _, name := range names {
		params = append(params, Param{servicedef.ParamBatchName, name})
	}
	for _, opt := range opts {
		opt(&params)
	}
	return c.Do(RequestSpec{Params: params})
}

// PredictMalformed sends a name containing byte sequences that are not valid UTF-8.
func (c *Client) PredictMalformed() (Result, error) {
	return c.Do(RequestSpec{RawQuery: malformedQuery})
}

// PredictWithDuplicateParam sends the name parameter twice with different values.
func (c *Client) PredictWithDuplicateParam(name1, name2 string) (Result, error) {
	return c.Do(RequestSpec{Params: []Param{
		{servicedef.ParamName, name1},
		{servicedef.ParamName, name2},
	}})
}

// PredictWithWrongParamName sends a name under the wrong parameter key, so that the real
// parameter is missing.
func (c *Client) PredictWithWrongParamName(wrongKey string) (Result, error) {
	return c.Do(RequestSpec{Params: []Param{{wrongKey, probeName}}})
}
