package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/abdul-hamid-achik/rpreporter/packages/store"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag  string
	envFileFlag string
	sessionFlag string
	stateDBFlag string
	verboseFlag bool
	noColorFlag bool
	outputFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "rpreporter",
	Short: "Report test runs to ReportPortal from the command line.",
	Long: `rpreporter reports launches, suites, test items and logs to a
ReportPortal server. The ids of the running launch and items are kept in a
local state database so that separate invocations build one launch.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFlag, "config", "c", getEnvString("RP_CONFIG", ""), "Path to config file (env: RP_CONFIG)")
	pf.StringVar(&envFileFlag, "env-file", getEnvString("RP_ENV_FILE", ""), "Path to .env file exported before reading config (env: RP_ENV_FILE)")
	pf.StringVarP(&sessionFlag, "session", "s", getEnvString("RP_SESSION", store.DefaultName), "Session name in the state database (env: RP_SESSION)")
	pf.StringVar(&stateDBFlag, "state-db", "", "Path to the state database (overrides config stateDB)")
	pf.BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("RP_VERBOSE", false), "Debug logging (env: RP_VERBOSE)")
	pf.BoolVar(&noColorFlag, "no-color", getEnvBool("RP_NO_COLOR", false), "Disable colored output (env: RP_NO_COLOR)")
	pf.StringVarP(&outputFlag, "output", "o", getEnvString("RP_OUTPUT", "console"), "Output format: console, json (env: RP_OUTPUT)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(launchCmd)
	rootCmd.AddCommand(suiteCmd)
	rootCmd.AddCommand(itemCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(completionCmd)

	registerCompletions()
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}
