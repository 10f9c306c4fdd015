package agify

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/hasselmyr/agify-api-tests/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const maxSnapshotLength = 512

// BodyKind is the discriminant of a response body.
type BodyKind int

const (
	// KindRaw is a body that is not JSON, or is JSON that fits none of the record shapes.
	KindRaw BodyKind = iota
	// KindPrediction is a single PredictionRecord.
	KindPrediction
	// KindError is a single ErrorRecord.
	KindError
	// KindBatch is a JSON array in which every element is a PredictionRecord.
	KindBatch
)

func (k BodyKind) String() string {
	switch k {
	case KindPrediction:
		return "prediction"
	case KindError:
		return "error"
	case KindBatch:
		return "batch"
	default:
		return "raw"
	}
}

// Body is the decoded response body. Exactly one variant is populated, as reported by Kind;
// the raw bytes are always available.
type Body struct {
	kind       BodyKind
	prediction servicedef.PredictionRecord
	errorRec   servicedef.ErrorRecord
	batch      []servicedef.PredictionRecord
	raw        []byte
}

// Kind reports which variant the body decoded to.
func (b Body) Kind() BodyKind { return b.kind }

// Raw returns the body bytes as received.
func (b Body) Raw() []byte { return b.raw }

// Prediction returns the single prediction record, if that is what the body held.
func (b Body) Prediction() (servicedef.PredictionRecord, bool) {
	return b.prediction, b.kind == KindPrediction
}

// ErrorRecord returns the error object, if that is what the body held.
func (b Body) ErrorRecord() (servicedef.ErrorRecord, bool) {
	return b.errorRec, b.kind == KindError
}

// Batch returns a copy of the batch records in response order.
func (b Body) Batch() ([]servicedef.PredictionRecord, bool) {
	if b.kind != KindBatch {
		return nil, false
	}
	return append([]servicedef.PredictionRecord(nil), b.batch...), true
}

// Snapshot returns the body as text, truncated for use in diagnostics.
func (b Body) Snapshot() string {
	s := string(b.raw)
	if len(s) > maxSnapshotLength {
		return s[:maxSnapshotLength] + "..."
	}
	return s
}

// Envelope is the normalized result of one call: status, lower-cased headers, and body.
// It is never modified after it is created.
type Envelope struct {
	status  int
	headers map[string]string
	body    Body
	request RequestSpec
}

// NewEnvelope normalizes a received response.
func NewEnvelope(status int, headers http.Header, body []byte) *Envelope {
	h := make(map[string]string, len(headers))
	for name, values := range headers {
		h[strings.ToLower(name)] = strings.Join(values, ", ")
	}
	return &Envelope{
		status:  status,
		headers: h,
		body:    decodeBody(body),
	}
}

func (e *Envelope) Status() int { return e.status }

func (e *Envelope) Body() Body { return e.body }

// Request returns the request that produced this envelope.
func (e *Envelope) Request() RequestSpec { return e.request }

// Header looks up a header by name, case-insensitively.
func (e *Envelope) Header(name string) (string, bool) {
	v, ok := e.headers[strings.ToLower(name)]
	return v, ok
}

// HeaderNames returns the lower-cased header names in sorted order.
func (e *Envelope) HeaderNames() []string {
	names := make([]string, 0, len(e.headers))
	for name := range e.headers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Envelope) String() string {
	return fmt.Sprintf("HTTP %d (%s body) %s", e.status, e.body.kind, e.body.Snapshot())
}

func decodeBody(raw []byte) Body {
	b := Body{kind: KindRaw, raw: raw}
	var v ldvalue.Value
	if err := json.Unmarshal(raw, &v); err != nil {
		return b
	}
	switch v.Type() {
	case ldvalue.ObjectType:
		if rec, ok := errorRecordFrom(v); ok {
			b.kind = KindError
			b.errorRec = rec
		} else if rec, ok := predictionRecordFrom(v); ok {
			b.kind = KindPrediction
			b.prediction = rec
		}
	case ldvalue.ArrayType:
		records := make([]servicedef.PredictionRecord, 0, v.Count())
		for i := 0; i < v.Count(); i++ {
			rec, ok := predictionRecordFrom(v.GetByIndex(i))
			if !ok {
				return b
			}
			records = append(records, rec)
		}
		b.kind = KindBatch
		b.batch = records
	}
	return b
}

func errorRecordFrom(v ldvalue.Value) (servicedef.ErrorRecord, bool) {
	msg, ok := property(v, "error")
	if !ok || !msg.IsString() {
		return servicedef.ErrorRecord{}, false
	}
	return servicedef.ErrorRecord{Error: msg.StringValue()}, true
}

// predictionRecordFrom accepts only objects that satisfy the record invariants: a string name,
// a non-negative integer count, and an age that is either null/absent or a positive integer.
func predictionRecordFrom(v ldvalue.Value) (servicedef.PredictionRecord, bool) {
	var rec servicedef.PredictionRecord
	if v.Type() != ldvalue.ObjectType {
		return rec, false
	}
	name, ok := property(v, "name")
	if !ok || !name.IsString() {
		return rec, false
	}
	rec.Name = name.StringValue()

	count, ok := property(v, "count")
	if !ok || !count.IsInt() || count.IntValue() < 0 {
		return rec, false
	}
	rec.Count = count.IntValue()

	if age, ok := property(v, "age"); ok && !age.IsNull() {
		if !age.IsInt() || age.IntValue() <= 0 {
			return rec, false
		}
		rec.Age = ldvalue.NewOptionalInt(age.IntValue())
	}

	if country, ok := property(v, "country_id"); ok {
		if !country.IsString() {
			return rec, false
		}
		rec.CountryID = country.StringValue()
	}
	return rec, true
}

func property(v ldvalue.Value, key string) (ldvalue.Value, bool) {
	for _, k := range v.Keys() {
		if k == key {
			return v.GetByKey(key), true
		}
	}
	return ldvalue.Null(), false
}
