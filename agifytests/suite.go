package agifytests

import (
	"github.com/hasselmyr/agify-api-tests/agify"
	"github.com/hasselmyr/agify-api-tests/framework"

	"go.uber.org/zap"
)

// RunTestSuite runs every scenario group against the service behind client.
func RunTestSuite(
	client *agify.Client,
	params SuiteParams,
	filter framework.Filter,
	testLogger framework.TestLogger,
	logger *zap.Logger,
) framework.Results {
	return framework.Run(filter, testLogger, logger, func(c *framework.Context) {
		t := &T{
			context: c,
			env: &environment{
				client: client,
				params: params,
			},
		}

		t.Run("basic prediction", DoBasicPredictionTests)
		t.Run("response structure", DoResponseStructureTests)
		t.Run("input validation", DoInputValidationTests)
		t.Run("performance", DoPerformanceTests)
		t.Run("determinism", DoDeterminismTests)
		t.Run("localization", DoLocalizationTests)
		t.Run("authentication", DoAuthenticationTests)
		t.Run("rate limiting", DoRateLimitTests)
		t.Run("batch", DoBatchTests)
		t.Run("security", DoSecurityTests)
		t.Run("parameter handling", DoParameterHandlingTests)
	})
}
