package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hasselmyr/agify-api-tests/agify"
	"github.com/hasselmyr/agify-api-tests/agifytests"
	"github.com/hasselmyr/agify-api-tests/config"
	"github.com/hasselmyr/agify-api-tests/framework"
	"github.com/hasselmyr/agify-api-tests/logging"
	"github.com/hasselmyr/agify-api-tests/twin"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const twinAddr = "127.0.0.1:0"

var errScenariosFailed = errors.New("some scenarios failed")

func main() {
	var params commandParams
	rootCmd := &cobra.Command{
		Use:          "agify-api-tests",
		Short:        "Run contract scenarios against the agify.io age prediction API",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, params)
		},
	}
	params.register(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errScenariosFailed) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, params commandParams) error {
	cfg, err := config.Load(params.envFile, params.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	suiteParams := agifytests.SuiteParams{
		APIKey:          cfg.APIKey,
		ExpiredAPIKey:   cfg.ExpiredAPIKey,
		RepeatPause:     cfg.RepeatPause,
		MaxResponseTime: cfg.MaxResponseTime,
	}
	baseURL := cfg.BaseURL

	if params.mock {
		server, err := startTwin(params.seedFile, &suiteParams, logger)
		if err != nil {
			return err
		}
		defer func() { _ = server.Close() }()
		baseURL = server.URL
	} else if !cfg.HasAPIKey() {
		logger.Warn("no API key configured; authenticated scenarios will be skipped")
	}

	client := agify.NewClient(baseURL,
		agify.WithTimeout(cfg.RequestTimeout),
		agify.WithLogger(logger.Named("agify").Sugar()),
	)

	if _, err := client.Predict("test"); err != nil {
		return fmt.Errorf("prediction API is not available: %w", err)
	}
	logger.Info("prediction API is available", zap.String("url", client.BaseURL()))

	fmt.Println()
	framework.PrintFilterDescription(os.Stdout, params.filters)
	fmt.Printf("Running scenarios against %s\n", client.BaseURL())

	testLogger := &ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	results := agifytests.RunTestSuite(client, suiteParams, params.filters.AsFilter, testLogger, logger)

	fmt.Println()
	framework.PrintResults(os.Stdout, results)
	if !results.OK() {
		return errScenariosFailed
	}
	return nil
}

// startTwin serves the local twin. The twin only accepts keys from its seed, so the configured
// credentials are replaced with the seed's valid and expired keys.
func startTwin(seedFile string, params *agifytests.SuiteParams, logger *zap.Logger) (*twin.Server, error) {
	var seed *twin.Seed
	var err error
	if seedFile != "" {
		seed, err = twin.LoadSeed(seedFile)
	} else {
		seed, err = twin.DefaultSeed()
	}
	if err != nil {
		return nil, err
	}

	params.APIKey, params.ExpiredAPIKey = "", ""
	if key, ok := seed.FirstKey(false); ok {
		params.APIKey = key
	}
	if key, ok := seed.FirstKey(true); ok {
		params.ExpiredAPIKey = key
	}

	twinLogger := logger.Named("twin")
	return twin.Start(twinAddr, twin.New(seed, twinLogger), twinLogger)
}
