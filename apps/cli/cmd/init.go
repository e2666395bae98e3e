package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/rpreporter/packages/core/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	forceInit   bool
	initHost    string
	initProject string
	initToken   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an rpreporter.yaml template",
	Long: `Write an rpreporter.yaml configuration template in the current directory.

Every key can be overridden with an RP_ environment variable, e.g.
RP_TOKEN, RP_HOST, RP_PROJECT.

Examples:
  rpreporter init
  rpreporter init --host https://rp.example.com --project my_project
  rpreporter init --force`,
	Args: cobra.NoArgs,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing file")
	initCmd.Flags().StringVar(&initHost, "host", "https://reportportal.example.com", "ReportPortal server URL")
	initCmd.Flags().StringVar(&initProject, "project", "my_project", "Project name")
	initCmd.Flags().StringVar(&initToken, "token", "00000000-0000-0000-0000-000000000000", "API token (UUID)")
}

var configComments = map[string]string{
	"UUID":              "API token from the ReportPortal user profile",
	"timeZone":          "appended to every timestamp, e.g. +03:00; empty uses the local offset",
	"httpErrorsAllowed": "false turns non-2xx responses into command errors",
	"rateLimit":         "requests per second, 0 disables limiting",
	"detectOrder":       "charsets tried, in order, when cleaning text for the server",
	"stateDB":           "where running launch and item ids are kept between invocations",
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, config.FileName+".yaml")
	if !forceInit {
		if _, err := os.Stat(configFile); err == nil {
			return withExitCode(ExitUsageError, fmt.Errorf("file already exists: %s (use --force to overwrite)", configFile))
		}
	}

	cfg := config.Default()
	cfg.Host = initHost
	cfg.Project = initProject
	cfg.Token = initToken

	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return err
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key := doc.Content[i]
		if comment, ok := configComments[key.Value]; ok {
			key.HeadComment = comment
		}
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(configFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)
	fmt.Fprintf(cmd.OutOrStdout(), "\nEdit the token and run 'rpreporter launch start --name <name>' to begin.\n")

	return nil
}
