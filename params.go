package main

import (
	"github.com/hasselmyr/agify-api-tests/framework"

	"github.com/spf13/cobra"
)

type commandParams struct {
	filters    framework.RegexFilters
	mock       bool
	seedFile   string
	configFile string
	envFile    string
	debug      bool
	debugAll   bool
}

func (c *commandParams) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.String("url", "", "base URL of the prediction API (overrides agify_base_url)")
	fs.String("log-level", "", "harness log level: debug, info, warn or error")
	fs.BoolVar(&c.mock, "mock", false, "run against a local twin of the API instead of --url")
	fs.StringVar(&c.seedFile, "seed", "", "YAML seed file for the local twin (default: built-in seed)")
	fs.StringVar(&c.configFile, "config", "", "optional config file read before environment variables")
	fs.StringVar(&c.envFile, "env-file", ".env", "optional .env file with API keys")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select scenarios to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select scenarios not to run")
	fs.BoolVar(&c.debug, "debug", false, "show debug output for failed scenarios")
	fs.BoolVar(&c.debugAll, "debug-all", false, "show debug output for all scenarios")
}
