// Package verify checks captured response envelopes against expectations.
//
// Every check is a pure function of an envelope (or two) and an expectation. Checks never
// re-issue requests, so any number of them can be applied to one captured response in any
// order. A check returns nil or one of the typed errors in this package.
//
// Fields are addressed with gjson paths evaluated against the raw body: "age" for a single
// record, "0.country_id" for the first element of a batch.
package verify

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/hasselmyr/agify-api-tests/agify"

	"github.com/tidwall/gjson"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func lookup(env *agify.Envelope, field string) gjson.Result {
	return gjson.GetBytes(env.Body().Raw(), field)
}

// RequireField checks that the field exists in the body. A field holding null exists.
func RequireField(env *agify.Envelope, field string) error {
	if !lookup(env, field).Exists() {
		return &MissingFieldError{Field: field, Body: env.Body().Snapshot()}
	}
	return nil
}

// RequireType checks that the field exists and holds a value of the given type.
func RequireType(env *agify.Envelope, field string, t FieldType) error {
	r := lookup(env, field)
	if !r.Exists() {
		return &MissingFieldError{Field: field, Body: env.Body().Snapshot()}
	}
	if !t.matches(r) {
		return &TypeMismatchError{Field: field, Expected: t.String(), Actual: describe(r), Value: r.Raw}
	}
	return nil
}

// RequireEqual checks that the field equals the expected value. Numbers compare by value, so
// 30 and 30.0 are equal; a nil expectation matches a JSON null.
func RequireEqual(env *agify.Envelope, field string, expected interface{}) error {
	r := lookup(env, field)
	if !r.Exists() {
		return &MissingFieldError{Field: field, Body: env.Body().Snapshot()}
	}
	want := ldvalue.CopyArbitraryValue(expected)
	if !valueOf(r).Equal(want) {
		return &ValueMismatchError{Field: field, Expected: want.JSONString(), Actual: r.Raw}
	}
	return nil
}

// IsNull reports whether the field exists and holds null.
func IsNull(env *agify.Envelope, field string) bool {
	r := lookup(env, field)
	return r.Exists() && r.Type == gjson.Null
}

// RequireRange checks that a numeric field satisfies the bound.
func RequireRange(env *agify.Envelope, field string, bound Bound) error {
	r := lookup(env, field)
	if !r.Exists() {
		return &MissingFieldError{Field: field, Body: env.Body().Snapshot()}
	}
	if r.Type != gjson.Number {
		return &TypeMismatchError{Field: field, Expected: "a number", Actual: describe(r), Value: r.Raw}
	}
	if !bound.Allows(r.Num) {
		return &RangeViolationError{Field: field, Bound: bound, Actual: r.Num}
	}
	return nil
}

// RequireCount checks that the body is an array of exactly n elements.
func RequireCount(env *agify.Envelope, n int) error {
	actual := elementCount(env)
	if actual != n {
		return &CardinalityError{Expected: n, Actual: actual, Body: env.Body().Snapshot()}
	}
	return nil
}

// RequireAtLeast checks that the body is an array of at least n elements.
func RequireAtLeast(env *agify.Envelope, n int) error {
	actual := elementCount(env)
	if actual < n {
		return &CardinalityError{Expected: n, AtLeast: true, Actual: actual, Body: env.Body().Snapshot()}
	}
	return nil
}

func elementCount(env *agify.Envelope) int {
	r := gjson.ParseBytes(env.Body().Raw())
	if !r.IsArray() {
		return -1
	}
	return len(r.Array())
}

// Elements returns the path of every element of an array body, or nil if the body is not
// an array. The paths can be joined with a field name: Elements(env)[0] + ".age".
func Elements(env *agify.Envelope) []string {
	n := elementCount(env)
	if n < 0 {
		return nil
	}
	paths := make([]string, n)
	for i := range paths {
		paths[i] = strconv.Itoa(i)
	}
	return paths
}

// RequireConsistent checks that a field has the same value in two envelopes, as it should
// for two calls with the same deterministic input.
func RequireConsistent(first, second *agify.Envelope, field string) error {
	a, b := lookup(first, field), lookup(second, field)
	if !a.Exists() {
		return &MissingFieldError{Field: field, Body: first.Body().Snapshot()}
	}
	if !b.Exists() {
		return &MissingFieldError{Field: field, Body: second.Body().Snapshot()}
	}
	if !valueOf(a).Equal(valueOf(b)) {
		return &InconsistencyError{Field: field, First: a.Raw, Second: b.Raw}
	}
	return nil
}

func valueOf(r gjson.Result) ldvalue.Value {
	var v ldvalue.Value
	if err := json.Unmarshal([]byte(r.Raw), &v); err != nil {
		return ldvalue.String(r.Raw)
	}
	return v
}

// RequireKind checks the discriminant of the decoded body.
func RequireKind(env *agify.Envelope, kinds ...agify.BodyKind) error {
	actual := env.Body().Kind()
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		if k == actual {
			return nil
		}
		names = append(names, k.String())
	}
	return &TypeMismatchError{
		Field:    "body",
		Expected: "a " + strings.Join(names, " or a ") + " body",
		Actual:   "a " + actual.String() + " body",
		Value:    env.Body().Snapshot(),
	}
}

// RequireStatus checks that the status is one of the allowed codes. Passing several codes is
// how checks tolerate behavior that the service does not pin down.
func RequireStatus(env *agify.Envelope, allowed ...int) error {
	for _, s := range allowed {
		if env.Status() == s {
			return nil
		}
	}
	return &StatusMismatchError{Allowed: allowed, Actual: env.Status(), Body: env.Body().Snapshot()}
}

// RequireLatencyBelow checks a measured latency against an upper limit.
func RequireLatencyBelow(latency, limit time.Duration) error {
	bound := Bound{Op: LessThan, Limit: float64(limit.Milliseconds())}
	actual := float64(latency.Milliseconds())
	if !bound.Allows(actual) {
		return &RangeViolationError{Field: "response time in milliseconds", Bound: bound, Actual: actual}
	}
	return nil
}
