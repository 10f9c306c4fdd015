package agifytests

import (
	"net/http"

	"github.com/hasselmyr/agify-api-tests/agify"
	"github.com/hasselmyr/agify-api-tests/config"
	"github.com/hasselmyr/agify-api-tests/servicedef"
	"github.com/hasselmyr/agify-api-tests/verify"
)

func DoAuthenticationTests(t *T) {
	t.Run("valid API key", func(t *T) {
		key := t.RequireAPIKey()
		env := t.RequestWithAuth("michael", key)
		t.Require(verify.RequireStatus(env, http.StatusOK))
		t.Check(verify.RequireEqual(env, "name", "michael"))
		checkPrediction(t, env, "")
	})

	t.Run("invalid API key", func(t *T) {
		env := t.RequestWithAuth("michael", InvalidAPIKey)
		t.Require(verify.RequireStatus(env, http.StatusUnauthorized))
		t.Require(verify.RequireKind(env, agify.KindError))
		t.Check(verify.RequireEqual(env, "error", servicedef.ErrInvalidAPIKey))
	})

	t.Run("expired API key", func(t *T) {
		key := t.Params().ExpiredAPIKey
		if key == "" || key == config.PlaceholderExpiredAPIKey {
			t.SkipWithReason("no expired API key configured (set AGIFY_EXPIRED_API_KEY)")
		}
		env := t.RequestWithAuth("michael", key)
		t.Require(verify.RequireStatus(env, http.StatusPaymentRequired))
		t.Require(verify.RequireKind(env, agify.KindError))
		t.Check(verify.RequireEqual(env, "error", servicedef.ErrInactiveSubscription))
	})
}

func DoRateLimitTests(t *T) {
	t.Run("authenticated response carries rate limit headers", func(t *T) {
		key := t.RequireAPIKey()
		env := t.RequestWithAuth("michael", key)
		t.Require(verify.RequireStatus(env, http.StatusOK))
		for _, h := range servicedef.RateLimitHeaders {
			t.Check(verify.RequireHeader(env, h))
		}
		t.Check(verify.RequireHeaderAbove(env, servicedef.HeaderRateLimitLimit, 0))
	})

	t.Run("remaining quota decreases", func(t *T) {
		key := t.RequireAPIKey()
		first := t.RequestWithAuth("michael", key)
		t.Require(verify.RequireStatus(first, http.StatusOK))
		before, err := verify.HeaderInt(first, servicedef.HeaderRateLimitRemaining)
		t.Require(err)

		second := t.RequestWithAuth("sarah", key)
		t.Require(verify.RequireStatus(second, http.StatusOK))
		t.Check(verify.RequireHeaderRange(second, servicedef.HeaderRateLimitRemaining,
			verify.Bound{Op: verify.LessThan, Limit: float64(before)}))
	})
}
