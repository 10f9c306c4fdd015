package agifytests

import (
	"net/http"

	"github.com/hasselmyr/agify-api-tests/agify"
	"github.com/hasselmyr/agify-api-tests/servicedef"
	"github.com/hasselmyr/agify-api-tests/verify"

	"github.com/stretchr/testify/require"
)

// field joins a batch element path and a field name. An empty path means a single record.
func field(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// checkPrediction verifies the shape of one prediction record: a string name, an age that is
// either null or a positive integer, and a non-negative integer count.
func checkPrediction(t *T, env *agify.Envelope, path string) {
	t.Check(verify.RequireType(env, field(path, "name"), verify.String))
	t.Check(verify.RequireType(env, field(path, "age"), verify.NullableInteger))
	if !verify.IsNull(env, field(path, "age")) {
		t.Check(verify.RequireRange(env, field(path, "age"), verify.Bound{Op: verify.GreaterThan, Limit: 0}))
	}
	t.Check(verify.RequireType(env, field(path, "count"), verify.NonNegativeInteger))
}

func DoBasicPredictionTests(t *T) {
	t.Run("common name", func(t *T) {
		env := t.RequestPrediction("michael")
		t.Require(verify.RequireStatus(env, http.StatusOK))
		t.Require(verify.RequireKind(env, agify.KindPrediction))
		t.Check(verify.RequireEqual(env, "name", "michael"))
		t.Check(verify.RequireField(env, "age"))
		t.Check(verify.RequireField(env, "count"))
		t.Check(verify.RequireType(env, "age", verify.PositiveInteger))
		t.Check(verify.RequireType(env, "count", verify.NonNegativeInteger))
	})

	t.Run("rare name may have no age", func(t *T) {
		env := t.RequestPrediction("Xzyqwvbnmtk")
		t.Require(verify.RequireStatus(env, http.StatusOK))
		t.Check(verify.RequireField(env, "name"))
		t.Check(verify.RequireType(env, "age", verify.NullableInteger))
		t.Check(verify.RequireType(env, "count", verify.NonNegativeInteger))
	})

	t.Run("popular name has a large sample", func(t *T) {
		env := t.RequestPrediction("michael")
		t.Require(verify.RequireStatus(env, http.StatusOK))
		t.Check(verify.RequireRange(env, "count", verify.Bound{Op: verify.AtLeast, Limit: 1000}))
	})

	t.Run("decoded record matches body", func(t *T) {
		env := t.RequestPrediction("sarah")
		t.Require(verify.RequireStatus(env, http.StatusOK))
		rec, ok := env.Body().Prediction()
		require.True(t, ok, "body was not decoded as a prediction: %s", env.Body().Snapshot())
		t.Check(verify.RequireEqual(env, "name", rec.Name))
		t.Check(verify.RequireEqual(env, "count", rec.Count))
		if rec.Age.IsDefined() {
			t.Check(verify.RequireEqual(env, "age", rec.Age.IntValue()))
		} else {
			t.Check(verify.RequireEqual(env, "age", nil))
		}
	})
}

// structureRow is one line of an expected-structure table.
type structureRow struct {
	field, fieldType string
}

var predictionStructure = []structureRow{
	{"name", "string"},
	{"age", "number"},
	{"count", "number"},
}

func DoResponseStructureTests(t *T) {
	for _, name := range []string{"michael", "Xzyqwvbnmtk"} {
		t.Run("fields of "+name, func(t *T) {
			env := t.RequestPrediction(name)
			t.Require(verify.RequireStatus(env, http.StatusOK))
			for _, row := range predictionStructure {
				ft, err := verify.ParseFieldType(row.fieldType)
				require.NoError(t, err)
				t.Check(verify.RequireType(env, row.field, ft))
			}
			checkPrediction(t, env, "")
		})
	}
}

func DoInputValidationTests(t *T) {
	t.Run("missing name", func(t *T) {
		env := t.RequestWithoutName()
		t.Require(verify.RequireStatus(env, http.StatusBadRequest, http.StatusUnprocessableEntity))
		t.Require(verify.RequireKind(env, agify.KindError))
		t.Check(verify.RequireEqual(env, "error", servicedef.ErrMissingName))
	})

	t.Run("invalid UTF-8 byte sequences", func(t *T) {
		env := t.RequestMalformed()
		t.Require(verify.RequireStatus(env, http.StatusOK, http.StatusBadRequest, http.StatusUnprocessableEntity))
		if env.Status() != http.StatusOK {
			t.Check(verify.RequireField(env, "error"))
		}
		t.Check(verify.RequireNoLeakage(env, verify.SystemInfoPatterns...))
		t.Check(verify.RequireNoLeakage(env, verify.DatabaseErrorPatterns...))
	})
}

func DoPerformanceTests(t *T) {
	t.Run("single prediction responds in time", func(t *T) {
		env := t.RequestPrediction("michael")
		t.Require(verify.RequireStatus(env, http.StatusOK))
		t.Check(verify.RequireLatencyBelow(t.Latency(), t.Params().MaxResponseTime))
	})

	t.Run("batch prediction responds in time", func(t *T) {
		env := t.RequestBatch([]string{"michael", "sarah", "jane"})
		t.Require(verify.RequireStatus(env, http.StatusOK))
		t.Check(verify.RequireLatencyBelow(t.Latency(), t.Params().MaxResponseTime))
	})
}

func DoDeterminismTests(t *T) {
	t.Run("same name twice gives the same prediction", func(t *T) {
		first, second := t.RequestPredictionTwice("michael")
		for _, env := range []*agify.Envelope{first, second} {
			t.Require(verify.RequireStatus(env, http.StatusOK))
			checkPrediction(t, env, "")
		}
		t.Check(verify.RequireConsistent(first, second, "age"))
		t.Check(verify.RequireConsistent(first, second, "count"))
	})

	t.Run("unknown name twice stays unknown", func(t *T) {
		first, second := t.RequestPredictionTwice("Xzyqwvbnmtk")
		t.Check(verify.RequireConsistent(first, second, "age"))
		t.Check(verify.RequireConsistent(first, second, "count"))
		require.Len(t, t.Responses(), 2)
	})
}
