package agifytests

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hasselmyr/agify-api-tests/agify"
	"github.com/hasselmyr/agify-api-tests/framework"
	"github.com/hasselmyr/agify-api-tests/twin"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twinParams(t *testing.T, seed *twin.Seed) SuiteParams {
	params := DefaultSuiteParams()
	params.RepeatPause = time.Millisecond
	var ok bool
	params.APIKey, ok = seed.FirstKey(false)
	require.True(t, ok)
	params.ExpiredAPIKey, ok = seed.FirstKey(true)
	require.True(t, ok)
	return params
}

func withTwin(t *testing.T, action func(client *agify.Client, seed *twin.Seed)) {
	seed, err := twin.DefaultSeed()
	require.NoError(t, err)
	httphelpers.WithServer(twin.New(seed, nil), func(server *httptest.Server) {
		action(agify.NewClient(server.URL), seed)
	})
}

func describeFailures(results framework.Results) string {
	var b strings.Builder
	for _, f := range results.Failures {
		b.WriteString(f.TestID.String())
		for _, err := range f.Errors {
			b.WriteString("\n  " + err.Error())
		}
		b.WriteString("\n")
	}
	return b.String()
}

func skippedIDs(results framework.Results) []string {
	var ids []string
	for _, r := range results.Tests {
		if r.Skipped {
			ids = append(ids, r.TestID.String())
		}
	}
	return ids
}

func TestSuitePassesAgainstTwin(t *testing.T) {
	withTwin(t, func(client *agify.Client, seed *twin.Seed) {
		results := RunTestSuite(client, twinParams(t, seed), nil, nil, nil)
		require.True(t, results.OK(), describeFailures(results))
		assert.Empty(t, skippedIDs(results))

		passed, failed, skipped := results.Counts()
		assert.Equal(t, 0, failed)
		assert.Equal(t, 0, skipped)
		assert.Greater(t, passed, 30)
	})
}

func TestAuthenticatedScenariosSkipWithoutKeys(t *testing.T) {
	withTwin(t, func(client *agify.Client, _ *twin.Seed) {
		params := DefaultSuiteParams()
		params.RepeatPause = time.Millisecond
		results := RunTestSuite(client, params, nil, nil, nil)
		require.True(t, results.OK(), describeFailures(results))
		assert.ElementsMatch(t, []string{
			"authentication/valid API key",
			"authentication/expired API key",
			"rate limiting/authenticated response carries rate limit headers",
			"rate limiting/remaining quota decreases",
			"batch/names with API key",
		}, skippedIDs(results))
	})
}

func TestFilterSelectsGroups(t *testing.T) {
	withTwin(t, func(client *agify.Client, seed *twin.Seed) {
		var filters framework.RegexFilters
		require.NoError(t, filters.MustMatch.Set("^batch/"))
		results := RunTestSuite(client, twinParams(t, seed), filters.AsFilter, nil, nil)
		require.True(t, results.OK(), describeFailures(results))
		for _, r := range results.Tests {
			if len(r.TestID.Path) > 1 && !r.Skipped {
				assert.Equal(t, "batch", r.TestID.Path[0])
			}
		}
	})
}

func TestSuiteReportsBrokenService(t *testing.T) {
	body := []byte(`{"error":"You have an error in your SQL syntax"}`)
	handler := httphelpers.HandlerWithResponse(500, http.Header{"Content-Type": {"application/json"}}, body)
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		params := DefaultSuiteParams()
		params.RepeatPause = time.Millisecond
		results := RunTestSuite(agify.NewClient(server.URL), params, nil, nil, nil)
		require.False(t, results.OK())

		var failed []string
		for _, f := range results.Failures {
			failed = append(failed, f.TestID.String())
		}
		assert.Contains(t, failed, "basic prediction/common name")
		assert.Contains(t, failed, "security/SQL injection")
		assert.NotContains(t, failed, "basic prediction")

		for _, f := range results.Failures {
			if f.TestID.String() == "basic prediction/common name" {
				require.NotEmpty(t, f.Errors)
				assert.Contains(t, f.Errors[0].Error(), "expected status 200 but got 500")
				assert.Contains(t, f.Errors[0].Error(), "reproduce with: curl")
			}
		}
	})
}

func TestTransportFailureFailsScenario(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	baseURL := server.URL
	server.Close()

	ran := false
	results := framework.Run(nil, nil, nil, func(c *framework.Context) {
		root := &T{context: c, env: &environment{client: agify.NewClient(baseURL), params: DefaultSuiteParams()}}
		root.Run("unreachable", func(t *T) {
			t.RequestPrediction("michael")
			ran = true
		})
	})
	assert.False(t, ran)
	require.Len(t, results.Failures, 1)
	assert.Contains(t, results.Failures[0].Errors[0].Error(), "request could not be completed")
}

func TestNumberedNames(t *testing.T) {
	assert.Equal(t, []string{"TestName1", "TestName2", "TestName3"}, NumberedNames(3))
	assert.Empty(t, NumberedNames(0))
}
