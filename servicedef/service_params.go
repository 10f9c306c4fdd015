// Package servicedef describes the wire contract of the age prediction API: the query
// parameters it accepts, the headers it returns and the JSON records in its responses.
//
// Both the prediction client and the local twin of the API use these definitions, so that
// the twin cannot drift from what the client sends.
package servicedef

import "gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

// DefaultBaseURL is the public endpoint of the prediction API.
const DefaultBaseURL = "https://api.agify.io"

// Query parameter names.
const (
	ParamName      = "name"
	ParamBatchName = "name[]"
	ParamCountryID = "country_id"
	ParamAPIKey    = "apikey"
)

// Rate-limit headers, lower-cased as they appear in an envelope.
const (
	HeaderRateLimitLimit     = "x-rate-limit-limit"
	HeaderRateLimitRemaining = "x-rate-limit-remaining"
	HeaderRateLimitReset     = "x-rate-limit-reset"
)

// RateLimitHeaders lists every rate-limit header returned for authenticated requests.
var RateLimitHeaders = []string{
	HeaderRateLimitLimit,
	HeaderRateLimitRemaining,
	HeaderRateLimitReset,
}

// MaxBatchSize is the largest number of names accepted in one batch request.
const MaxBatchSize = 10

// Error messages returned by the service in an ErrorRecord.
const (
	ErrMissingName          = "Missing 'name' parameter"
	ErrInvalidName          = "Invalid 'name' parameter"
	ErrInvalidAPIKey        = "Invalid API key"
	ErrInactiveSubscription = "Subscription is not active"
	ErrRequestLimit         = "Request limit reached"
)

// PredictionRecord is one name-to-age result.
//
// Age is undefined when the service has no data for the name; it is serialized as null.
// CountryID is only present when the request carried a country code.
type PredictionRecord struct {
	Name      string              `json:"name"`
	Age       ldvalue.OptionalInt `json:"age"`
	Count     int                 `json:"count"`
	CountryID string              `json:"country_id,omitempty"`
}

// ErrorRecord is the body of every error response.
type ErrorRecord struct {
	Error string `json:"error"`
}
