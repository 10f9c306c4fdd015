package verify

import (
	"errors"
	"fmt"
	"strings"
)

// failure is implemented by every error returned from a check.
type failure interface {
	error
	assertionFailure()
}

// IsAssertionFailure reports whether err, or anything it wraps, came from a check in this
// package rather than from the transport.
func IsAssertionFailure(err error) bool {
	var f failure
	return errors.As(err, &f)
}

// MissingFieldError means a field path did not resolve in the body.
type MissingFieldError struct {
	Field string
	Body  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("field %q is missing; body was: %s", e.Field, e.Body)
}

// TypeMismatchError means a field, header or body had the wrong JSON type or shape.
type TypeMismatchError struct {
	Field    string
	Expected string
	Actual   string
	Value    string
}

func (e *TypeMismatchError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s should be %s but was %s", e.Field, e.Expected, e.Actual)
	}
	return fmt.Sprintf("%s should be %s but was %s (%s)", e.Field, e.Expected, e.Actual, e.Value)
}

// ValueMismatchError means a field held a different value than expected.
type ValueMismatchError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *ValueMismatchError) Error() string {
	return fmt.Sprintf("expected %s to be %s but got %s", e.Field, e.Expected, e.Actual)
}

// RangeViolationError means a number fell outside its bound.
type RangeViolationError struct {
	Field  string
	Bound  Bound
	Actual float64
}

func (e *RangeViolationError) Error() string {
	return fmt.Sprintf("%s (%s) should be %s", e.Field, formatNumber(e.Actual), e.Bound)
}

// CardinalityError means a batch body had the wrong number of elements.
type CardinalityError struct {
	Expected int
	AtLeast  bool
	// Actual is the number of elements, or -1 if the body was not an array.
	Actual int
	Body   string
}

func (e *CardinalityError) Error() string {
	want := fmt.Sprintf("exactly %d", e.Expected)
	if e.AtLeast {
		want = fmt.Sprintf("at least %d", e.Expected)
	}
	if e.Actual < 0 {
		return fmt.Sprintf("expected an array of %s elements but body was not an array: %s", want, e.Body)
	}
	return fmt.Sprintf("expected %s elements but got %d", want, e.Actual)
}

// InconsistencyError means two responses disagreed on a field.
type InconsistencyError struct {
	Field  string
	First  string
	Second string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s values should match: %s vs %s", e.Field, e.First, e.Second)
}

// InformationLeakageError means a blocklisted fragment appeared in the response.
type InformationLeakageError struct {
	Pattern string
	// Location is "body" or "header <name>".
	Location string
}

func (e *InformationLeakageError) Error() string {
	return fmt.Sprintf("response exposes sensitive information in %s (found: %s)", e.Location, e.Pattern)
}

// MissingHeaderError means a required header was absent. Present lists the headers that were sent.
type MissingHeaderError struct {
	Header  string
	Present []string
}

func (e *MissingHeaderError) Error() string {
	return fmt.Sprintf("response should contain %s header; headers were: %s",
		e.Header, strings.Join(e.Present, ", "))
}

// StatusMismatchError means the status code was not in the allowed set.
type StatusMismatchError struct {
	Allowed []int
	Actual  int
	Body    string
}

func (e *StatusMismatchError) Error() string {
	allowed := make([]string, 0, len(e.Allowed))
	for _, s := range e.Allowed {
		allowed = append(allowed, fmt.Sprint(s))
	}
	return fmt.Sprintf("expected status %s but got %d; body was: %s",
		strings.Join(allowed, " or "), e.Actual, e.Body)
}

func (*MissingFieldError) assertionFailure()       {}
func (*TypeMismatchError) assertionFailure()       {}
func (*ValueMismatchError) assertionFailure()      {}
func (*RangeViolationError) assertionFailure()     {}
func (*CardinalityError) assertionFailure()        {}
func (*InconsistencyError) assertionFailure()      {}
func (*InformationLeakageError) assertionFailure() {}
func (*MissingHeaderError) assertionFailure()      {}
func (*StatusMismatchError) assertionFailure()     {}
