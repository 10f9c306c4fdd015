package agifytests

import (
	"errors"
	"net/http"

	"github.com/hasselmyr/agify-api-tests/verify"
)

func DoLocalizationTests(t *T) {
	for _, country := range []string{"US", "DE", "GB"} {
		t.Run("country "+country, func(t *T) {
			env := t.RequestWithCountry("michael", country)
			t.Require(verify.RequireStatus(env, http.StatusOK))
			t.Check(verify.RequireField(env, "country_id"))
			t.Check(verify.RequireEqual(env, "country_id", country))
			t.Check(verify.RequireEqual(env, "name", "michael"))
			checkPrediction(t, env, "")
		})
	}

	t.Run("no country code means no country_id", func(t *T) {
		env := t.RequestPrediction("michael")
		t.Require(verify.RequireStatus(env, http.StatusOK))
		var missing *verify.MissingFieldError
		if err := verify.RequireField(env, "country_id"); !errors.As(err, &missing) {
			t.Errorf("country_id should be absent when no country code was sent; body was: %s",
				env.Body().Snapshot())
		}
	})

	t.Run("localized and global predictions are both valid", func(t *T) {
		t.RequestWithCountry("sarah", "US")
		t.RequestPrediction("sarah")
		responses := t.Responses()
		if len(responses) < 2 {
			t.Errorf("expected two responses but have %d", len(responses))
			t.FailNow()
		}
		for _, env := range responses {
			t.Require(verify.RequireStatus(env, http.StatusOK))
			t.Check(verify.RequireField(env, "age"))
			t.Check(verify.RequireType(env, "count", verify.Integer))
		}
	})
}
