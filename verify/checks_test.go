package verify

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/hasselmyr/agify-api-tests/agify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(status int, body string) *agify.Envelope {
	return agify.NewEnvelope(status, nil, []byte(body))
}

const michael = `{"name":"michael","age":62,"count":298219}`
const unknown = `{"name":"xzyq","age":null,"count":0}`

func requireErrorAs[E error](t *testing.T, err error) E {
	t.Helper()
	var target E
	require.Error(t, err)
	require.True(t, errors.As(err, &target), "expected %T but got %T: %s", target, err, err)
	assert.True(t, IsAssertionFailure(err))
	return target
}

func TestRequireField(t *testing.T) {
	assert.NoError(t, RequireField(envelope(200, michael), "age"))
	assert.NoError(t, RequireField(envelope(200, unknown), "age"))

	e := requireErrorAs[*MissingFieldError](t, RequireField(envelope(200, michael), "country_id"))
	assert.Equal(t, "country_id", e.Field)
	assert.Equal(t, michael, e.Body)
}

func TestRequireType(t *testing.T) {
	env := envelope(200, michael)
	assert.NoError(t, RequireType(env, "name", String))
	assert.NoError(t, RequireType(env, "age", Integer))
	assert.NoError(t, RequireType(env, "age", PositiveInteger))
	assert.NoError(t, RequireType(env, "age", NullableInteger))
	assert.NoError(t, RequireType(env, "count", NonNegativeInteger))

	null := envelope(200, unknown)
	assert.NoError(t, RequireType(null, "age", NullableInteger))
	assert.NoError(t, RequireType(null, "count", NonNegativeInteger))
	e := requireErrorAs[*TypeMismatchError](t, RequireType(null, "age", PositiveInteger))
	assert.Equal(t, "age", e.Field)
	assert.Equal(t, "null", e.Actual)

	e = requireErrorAs[*TypeMismatchError](t, RequireType(null, "count", PositiveInteger))
	assert.Equal(t, "0", e.Value)

	e = requireErrorAs[*TypeMismatchError](t, RequireType(env, "name", Integer))
	assert.Equal(t, "a string", e.Actual)

	requireErrorAs[*TypeMismatchError](t, RequireType(envelope(200, `{"age":1.5}`), "age", NullableInteger))
	requireErrorAs[*MissingFieldError](t, RequireType(env, "missing", String))
}

func TestParseFieldType(t *testing.T) {
	for name, expected := range map[string]FieldType{
		"string":  String,
		"number":  NullableInteger,
		"Integer": Integer,
		"boolean": Boolean,
	} {
		ft, err := ParseFieldType(name)
		require.NoError(t, err)
		assert.Equal(t, expected, ft, name)
	}
	_, err := ParseFieldType("date")
	assert.Error(t, err)
}

func TestRequireEqual(t *testing.T) {
	env := envelope(200, michael)
	assert.NoError(t, RequireEqual(env, "name", "michael"))
	assert.NoError(t, RequireEqual(env, "age", 62))
	assert.NoError(t, RequireEqual(env, "age", 62.0))
	assert.NoError(t, RequireEqual(envelope(200, unknown), "age", nil))

	e := requireErrorAs[*ValueMismatchError](t, RequireEqual(env, "name", "sarah"))
	assert.Equal(t, `"sarah"`, e.Expected)
	assert.Equal(t, `"michael"`, e.Actual)

	requireErrorAs[*ValueMismatchError](t, RequireEqual(env, "age", "62"))
	requireErrorAs[*MissingFieldError](t, RequireEqual(env, "country_id", "US"))
}

func TestIsNull(t *testing.T) {
	assert.True(t, IsNull(envelope(200, unknown), "age"))
	assert.False(t, IsNull(envelope(200, michael), "age"))
	assert.False(t, IsNull(envelope(200, michael), "missing"))
}

func TestRequireRange(t *testing.T) {
	env := envelope(200, michael)
	assert.NoError(t, RequireRange(env, "count", Bound{Op: AtLeast, Limit: 1000}))
	assert.NoError(t, RequireRange(env, "age", Bound{Op: GreaterThan, Limit: 0}))
	assert.NoError(t, RequireRange(env, "age", Bound{Op: AtMost, Limit: 62}))

	e := requireErrorAs[*RangeViolationError](t, RequireRange(env, "age", Bound{Op: LessThan, Limit: 62}))
	assert.Equal(t, float64(62), e.Actual)
	assert.Equal(t, "< 62", e.Bound.String())

	requireErrorAs[*TypeMismatchError](t, RequireRange(envelope(200, unknown), "age", Bound{Op: GreaterThan}))
	requireErrorAs[*MissingFieldError](t, RequireRange(env, "missing", Bound{}))
}

func TestCardinality(t *testing.T) {
	batch := envelope(200, `[{"name":"a","age":1,"count":1},{"name":"b","age":2,"count":2}]`)
	assert.NoError(t, RequireCount(batch, 2))
	assert.NoError(t, RequireAtLeast(batch, 1))
	assert.Equal(t, []string{"0", "1"}, Elements(batch))
	assert.NoError(t, RequireEqual(batch, Elements(batch)[1]+".name", "b"))

	e := requireErrorAs[*CardinalityError](t, RequireCount(batch, 3))
	assert.Equal(t, 2, e.Actual)
	e = requireErrorAs[*CardinalityError](t, RequireAtLeast(batch, 3))
	assert.True(t, e.AtLeast)

	single := envelope(200, michael)
	e = requireErrorAs[*CardinalityError](t, RequireCount(single, 1))
	assert.Equal(t, -1, e.Actual)
	assert.Nil(t, Elements(single))
}

func TestRequireConsistent(t *testing.T) {
	a := envelope(200, michael)
	b := envelope(200, `{"count":298219,"age":62.0,"name":"michael"}`)
	assert.NoError(t, RequireConsistent(a, b, "age"))
	assert.NoError(t, RequireConsistent(a, b, "count"))
	assert.NoError(t, RequireConsistent(envelope(200, unknown), envelope(200, unknown), "age"))

	c := envelope(200, `{"name":"michael","age":63,"count":298219}`)
	e := requireErrorAs[*InconsistencyError](t, RequireConsistent(a, c, "age"))
	assert.Equal(t, "62", e.First)
	assert.Equal(t, "63", e.Second)

	requireErrorAs[*MissingFieldError](t, RequireConsistent(a, envelope(200, `{}`), "age"))
	requireErrorAs[*MissingFieldError](t, RequireConsistent(envelope(200, `{}`), a, "age"))
}

func TestRequireKind(t *testing.T) {
	assert.NoError(t, RequireKind(envelope(200, michael), agify.KindPrediction))
	assert.NoError(t, RequireKind(envelope(422, `{"error":"x"}`), agify.KindPrediction, agify.KindError))
	requireErrorAs[*TypeMismatchError](t, RequireKind(envelope(500, `oops`), agify.KindPrediction))
}

func TestRequireStatus(t *testing.T) {
	env := envelope(422, `{"error":"Missing 'name' parameter"}`)
	assert.NoError(t, RequireStatus(env, 422))
	assert.NoError(t, RequireStatus(env, 200, 400, 422))

	e := requireErrorAs[*StatusMismatchError](t, RequireStatus(env, 200))
	assert.Equal(t, 422, e.Actual)
	assert.Equal(t, []int{200}, e.Allowed)
	assert.Contains(t, e.Error(), "422")
}

func TestRequireLatencyBelow(t *testing.T) {
	assert.NoError(t, RequireLatencyBelow(150*time.Millisecond, 2*time.Second))
	e := requireErrorAs[*RangeViolationError](t, RequireLatencyBelow(2500*time.Millisecond, 2*time.Second))
	assert.Equal(t, float64(2500), e.Actual)
}

func TestRequireHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("X-Rate-Limit-Limit", "1000")
	h.Set("X-Rate-Limit-Remaining", "abc")
	env := agify.NewEnvelope(200, h, []byte(michael))

	assert.NoError(t, RequireHeader(env, "x-rate-limit-limit"))
	assert.NoError(t, RequireHeaderAbove(env, "X-Rate-Limit-Limit", 0))
	assert.NoError(t, RequireHeaderRange(env, "x-rate-limit-limit", Bound{Op: AtMost, Limit: 1000}))

	mh := requireErrorAs[*MissingHeaderError](t, RequireHeader(env, "X-Rate-Limit-Reset"))
	assert.Equal(t, "x-rate-limit-reset", mh.Header)
	assert.Equal(t, []string{"x-rate-limit-limit", "x-rate-limit-remaining"}, mh.Present)

	requireErrorAs[*RangeViolationError](t, RequireHeaderAbove(env, "x-rate-limit-limit", 1000))
	requireErrorAs[*TypeMismatchError](t, RequireHeaderAbove(env, "x-rate-limit-remaining", 0))
	requireErrorAs[*MissingHeaderError](t, RequireHeaderAbove(env, "x-rate-limit-reset", 0))

	n, err := HeaderInt(env, "x-rate-limit-limit")
	require.NoError(t, err)
	assert.Equal(t, 1000, n)
}

func TestRequireNoLeakage(t *testing.T) {
	assert.NoError(t, RequireNoLeakage(envelope(200, `{"name":"'; DROP TABLE users; --","age":null,"count":0}`),
		DatabaseErrorPatterns...))

	e := requireErrorAs[*InformationLeakageError](t,
		RequireNoLeakage(envelope(500, `{"error":"You have an error in your SQL syntax near ''"}`), DatabaseErrorPatterns...))
	assert.Equal(t, "sql syntax", e.Pattern)
	assert.Equal(t, "body", e.Location)

	e = requireErrorAs[*InformationLeakageError](t,
		RequireNoLeakage(envelope(500, `{"error":"open /ETC/passwd"}`), SystemInfoPatterns...))
	assert.Equal(t, "/etc/", e.Pattern)

	h := http.Header{}
	h.Set("Server", "Microsoft-IIS/10.0 (Windows)")
	env := agify.NewEnvelope(200, h, []byte(michael))
	e = requireErrorAs[*InformationLeakageError](t, RequireNoLeakage(env, SystemInfoPatterns...))
	assert.Equal(t, "windows", e.Pattern)
	assert.Equal(t, "header server", e.Location)
}

func TestTransportErrorIsNotAssertionFailure(t *testing.T) {
	assert.False(t, IsAssertionFailure(&agify.TransportError{URL: "http://x", Err: errors.New("refused")}))
	assert.False(t, IsAssertionFailure(nil))
}
