package agify

import (
	"net/url"
	"strings"

	"github.com/alessio/shellescape"
)

// Param is a single query parameter. A RequestSpec may carry the same key more than once.
type Param struct {
	Key   string
	Value string
}

// RequestSpec holds everything needed to build one outbound call.
//
// Params are encoded in the order given. If RawQuery is non-empty it is sent verbatim instead
// of Params; this is how intentionally malformed requests are built.
type RequestSpec struct {
	BaseURL  string
	Params   []Param
	RawQuery string
}

// Query returns the encoded query string, without the leading "?".
func (s RequestSpec) Query() string {
	if s.RawQuery != "" {
		return s.RawQuery
	}
	parts := make([]string, 0, len(s.Params))
	for _, p := range s.Params {
		parts = append(parts, url.QueryEscape(p.Key)+"="+url.QueryEscape(p.Value))
	}
	return strings.Join(parts, "&")
}

// URL returns the exact URL that will be requested.
func (s RequestSpec) URL() string {
	q := s.Query()
	if q == "" {
		return s.BaseURL
	}
	return s.BaseURL + "?" + q
}

// Curl returns a shell command that reproduces the request.
func (s RequestSpec) Curl() string {
	var b commandBuilder
	b.add("curl", "-i", "-g", s.URL())
	return b.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
