package verify

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// FieldType is the expected type of a JSON field.
type FieldType int

const (
	String FieldType = iota + 1
	Integer
	NonNegativeInteger
	PositiveInteger
	NullableInteger
	Boolean
)

func (t FieldType) String() string {
	switch t {
	case String:
		return "a string"
	case Integer:
		return "an integer"
	case NonNegativeInteger:
		return "a non-negative integer"
	case PositiveInteger:
		return "a positive integer"
	case NullableInteger:
		return "an integer or null"
	case Boolean:
		return "a boolean"
	default:
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
}

// ParseFieldType maps the type names used in expectation tables to a FieldType. "number" means
// an integer or null, since numeric prediction fields may be null for unknown names.
func ParseFieldType(name string) (FieldType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "string":
		return String, nil
	case "integer", "int":
		return Integer, nil
	case "non-negative integer", "non-negative-integer":
		return NonNegativeInteger, nil
	case "positive integer", "positive-integer":
		return PositiveInteger, nil
	case "number", "nullable integer", "nullable-integer":
		return NullableInteger, nil
	case "boolean", "bool":
		return Boolean, nil
	}
	return 0, fmt.Errorf("unknown field type %q", name)
}

func (t FieldType) matches(r gjson.Result) bool {
	switch t {
	case String:
		return r.Type == gjson.String
	case Integer:
		return isInteger(r)
	case NonNegativeInteger:
		return isInteger(r) && r.Num >= 0
	case PositiveInteger:
		return isInteger(r) && r.Num > 0
	case NullableInteger:
		return r.Type == gjson.Null || isInteger(r)
	case Boolean:
		return r.Type == gjson.True || r.Type == gjson.False
	}
	return false
}

func isInteger(r gjson.Result) bool {
	return r.Type == gjson.Number && r.Num == math.Trunc(r.Num) && !math.IsInf(r.Num, 0)
}

func describe(r gjson.Result) string {
	switch {
	case !r.Exists():
		return "missing"
	case r.Type == gjson.Null:
		return "null"
	case r.Type == gjson.String:
		return "a string"
	case r.Type == gjson.True, r.Type == gjson.False:
		return "a boolean"
	case isInteger(r):
		return "an integer"
	case r.Type == gjson.Number:
		return "a number"
	case r.IsArray():
		return "an array"
	case r.IsObject():
		return "an object"
	}
	return "unknown"
}

// Comparison is the operator of a Bound.
type Comparison int

const (
	AtLeast Comparison = iota
	GreaterThan
	AtMost
	LessThan
)

// Bound is a numeric constraint such as "count >= 100" or "age > 0".
type Bound struct {
	Op    Comparison
	Limit float64
}

// Allows reports whether x satisfies the bound.
func (b Bound) Allows(x float64) bool {
	switch b.Op {
	case AtLeast:
		return x >= b.Limit
	case GreaterThan:
		return x > b.Limit
	case AtMost:
		return x <= b.Limit
	case LessThan:
		return x < b.Limit
	}
	return false
}

func (b Bound) String() string {
	var op string
	switch b.Op {
	case AtLeast:
		op = ">="
	case GreaterThan:
		op = ">"
	case AtMost:
		op = "<="
	case LessThan:
		op = "<"
	}
	return op + " " + formatNumber(b.Limit)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
