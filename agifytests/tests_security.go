package agifytests

import (
	"net/http"
	"strings"

	"github.com/hasselmyr/agify-api-tests/verify"

	"github.com/stretchr/testify/assert"
)

var hostileNames = []struct {
	label, name string
}{
	{"SQL injection", "'; DROP TABLE users; --"},
	{"SQL tautology", "' OR '1'='1"},
	{"script tag", "<script>alert('xss')</script>"},
	{"HTML attribute", `"><img src=x onerror=alert(1)>`},
}

func DoSecurityTests(t *T) {
	for _, hn := range hostileNames {
		hn := hn
		t.Run(hn.label, func(t *T) {
			env := t.RequestPrediction(hn.name)
			t.Require(verify.RequireStatus(env, http.StatusOK, http.StatusBadRequest, http.StatusUnprocessableEntity))
			t.Check(verify.RequireNoLeakage(env, verify.DatabaseErrorPatterns...))
			if env.Status() == http.StatusOK {
				// echoing the input is fine as long as it comes back as a JSON string
				t.Check(verify.RequireType(env, "name", verify.String))
			} else {
				t.Check(verify.RequireField(env, "error"))
			}
		})
	}

	t.Run("very long name", func(t *T) {
		env := t.RequestPrediction(strings.Repeat("a", 1000))
		t.Require(verify.RequireStatus(env, http.StatusOK, http.StatusBadRequest,
			http.StatusRequestURITooLong, http.StatusUnprocessableEntity))
		t.Check(verify.RequireNoLeakage(env, verify.DatabaseErrorPatterns...))
		t.Check(verify.RequireNoLeakage(env, verify.SystemInfoPatterns...))
	})

	t.Run("malformed input does not expose system information", func(t *T) {
		env := t.RequestMalformed()
		assert.NotEmpty(t, env.Body().Raw(), "response should have a body")
		t.Check(verify.RequireNoLeakage(env, verify.SystemInfoPatterns...))
	})
}

func DoParameterHandlingTests(t *T) {
	t.Run("duplicate name parameters", func(t *T) {
		env := t.RequestDuplicate("Alice", "Bob")
		t.Require(verify.RequireStatus(env, http.StatusOK, http.StatusBadRequest, http.StatusUnprocessableEntity))
		assert.NotEmpty(t, env.Body().Raw(), "response should have a body")
	})

	for _, wrong := range []string{"nam", "names", "first_name"} {
		t.Run("parameter "+wrong+" instead of name", func(t *T) {
			env := t.RequestWrongParam(wrong)
			t.Require(verify.RequireStatus(env, http.StatusBadRequest, http.StatusUnprocessableEntity))
			t.Check(verify.RequireField(env, "error"))
		})
	}
}
