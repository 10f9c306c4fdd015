package agifytests

import (
	"fmt"
	"net/http"

	"github.com/hasselmyr/agify-api-tests/agify"
	"github.com/hasselmyr/agify-api-tests/servicedef"
	"github.com/hasselmyr/agify-api-tests/verify"
)

func DoBatchTests(t *T) {
	t.Run("names from a table", func(t *T) {
		names := []string{"michael", "matthew", "jane"}
		env := t.RequestBatch(names)
		t.Require(verify.RequireStatus(env, http.StatusOK))
		t.Require(verify.RequireKind(env, agify.KindBatch))
		t.Require(verify.RequireCount(env, len(names)))
		for i, path := range verify.Elements(env) {
			t.Check(verify.RequireEqual(env, field(path, "name"), names[i]))
			checkPrediction(t, env, path)
		}
	})

	for _, n := range []int{1, servicedef.MaxBatchSize} {
		t.Run(fmt.Sprintf("%d names", n), func(t *T) {
			env := t.RequestBatch(NumberedNames(n))
			t.Require(verify.RequireStatus(env, http.StatusOK))
			t.Require(verify.RequireCount(env, n))
			for _, path := range verify.Elements(env) {
				checkPrediction(t, env, path)
			}
		})
	}

	t.Run("too many names", func(t *T) {
		env := t.RequestBatch(NumberedNames(servicedef.MaxBatchSize + 1))
		t.Require(verify.RequireStatus(env, http.StatusUnprocessableEntity))
		t.Require(verify.RequireKind(env, agify.KindError))
		t.Check(verify.RequireEqual(env, "error", servicedef.ErrInvalidName))
	})

	t.Run("names with country code", func(t *T) {
		env := t.RequestBatch([]string{"michael", "sarah"}, agify.WithCountry("US"))
		t.Require(verify.RequireStatus(env, http.StatusOK))
		t.Require(verify.RequireCount(env, 2))
		for _, path := range verify.Elements(env) {
			t.Check(verify.RequireEqual(env, field(path, "country_id"), "US"))
			checkPrediction(t, env, path)
		}
	})

	t.Run("full batch with country code", func(t *T) {
		env := t.RequestBatch(NumberedNames(servicedef.MaxBatchSize), agify.WithCountry("US"))
		t.Require(verify.RequireStatus(env, http.StatusOK))
		t.Require(verify.RequireAtLeast(env, servicedef.MaxBatchSize))
		for _, path := range verify.Elements(env) {
			t.Check(verify.RequireEqual(env, field(path, "country_id"), "US"))
		}
	})

	t.Run("names with API key", func(t *T) {
		key := t.RequireAPIKey()
		env := t.RequestBatch(NumberedNames(servicedef.MaxBatchSize), agify.WithAPIKey(key))
		t.Require(verify.RequireStatus(env, http.StatusOK))
		t.Check(verify.RequireCount(env, servicedef.MaxBatchSize))
		for _, h := range servicedef.RateLimitHeaders {
			t.Check(verify.RequireHeader(env, h))
		}
	})
}
