package cmd

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/rpreporter/packages/reportportal"
	"github.com/abdul-hamid-achik/rpreporter/packages/session"
	"github.com/spf13/cobra"
)

var (
	itemLevelFlag       string
	itemNameFlag        string
	itemDescriptionFlag string
	itemTypeFlag        string
	itemTagsFlag        string
	itemStatusFlag      string
	itemFinishLevelFlag string
	itemFinishDescFlag  string
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Start or finish a feature, scenario or step",
}

var itemStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a nested item under the running parent",
	Long: `Start a feature, scenario or step under the item running one level up.

Examples:
  rpreporter item start --level feature --name "Login" --type story
  rpreporter item start --level scenario --name "valid password"
  rpreporter item start --level step --name "submit form"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := parseItemLevel(itemLevelFlag)
		if err != nil {
			return err
		}
		itemType, err := itemTypeFor(level, itemTypeFlag)
		if err != nil {
			return err
		}

		return runWithApp(cmd, true, func(a *app) error {
			if err := a.requireRunning(level.Parent()); err != nil {
				return err
			}
			if a.state.IsRunning(level) {
				return withExitCode(ExitStateError, fmt.Errorf("%s %s is already running", level, a.state.ID(level)))
			}
			if _, err := a.svc.StartNested(cmd.Context(), level, itemNameFlag, itemDescriptionFlag, itemType, splitTags(itemTagsFlag)); err != nil && !a.state.IsRunning(level) {
				return withExitCode(ExitNetworkError, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.state.ID(level))
			return nil
		})
	},
}

var itemFinishCmd = &cobra.Command{
	Use:   "finish",
	Short: "Finish the running item at a level",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := parseItemLevel(itemFinishLevelFlag)
		if err != nil {
			return err
		}
		status, err := parseStatus(itemStatusFlag)
		if err != nil {
			return err
		}

		return runWithApp(cmd, true, func(a *app) error {
			if err := a.requireRunning(level); err != nil {
				return err
			}
			id := a.state.ID(level)
			resp, err := a.svc.FinishNested(cmd.Context(), level, status, itemFinishDescFlag)
			if !a.reconciler().Reconcile(cmd.Context(), resp) {
				a.state.Clear()
				return withExitCode(ExitReportFailure, fmt.Errorf("%s %s had open items; they were cancelled and the launch was stopped", level, id))
			}
			if err != nil {
				return withExitCode(ExitNetworkError, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Finished %s %s\n", level, id)
			return nil
		})
	},
}

func init() {
	itemStartCmd.Flags().StringVarP(&itemLevelFlag, "level", "l", "", "Item level: feature, scenario, step")
	itemStartCmd.Flags().StringVarP(&itemNameFlag, "name", "n", "", "Item name")
	itemStartCmd.Flags().StringVarP(&itemDescriptionFlag, "description", "d", "", "Item description")
	itemStartCmd.Flags().StringVar(&itemTypeFlag, "type", "", "Feature item type: test, story (default test)")
	itemStartCmd.Flags().StringVarP(&itemTagsFlag, "tags", "t", "", "Comma-separated tags")
	_ = itemStartCmd.MarkFlagRequired("level")
	_ = itemStartCmd.MarkFlagRequired("name")

	itemFinishCmd.Flags().StringVarP(&itemFinishLevelFlag, "level", "l", "", "Item level: feature, scenario, step")
	itemFinishCmd.Flags().StringVar(&itemStatusFlag, "status", string(reportportal.StatusPassed), "Item status")
	itemFinishCmd.Flags().StringVarP(&itemFinishDescFlag, "description", "d", "", "Description attached on finish")
	_ = itemFinishCmd.MarkFlagRequired("level")

	itemCmd.AddCommand(itemStartCmd, itemFinishCmd)
}

func parseItemLevel(name string) (session.Level, error) {
	level, err := session.ParseLevel(strings.ToLower(name))
	if err != nil {
		return 0, withExitCode(ExitUsageError, err)
	}
	if level < session.LevelFeature {
		return 0, withExitCode(ExitUsageError, fmt.Errorf("level must be feature, scenario or step (use launch or suite for %s)", level))
	}
	return level, nil
}

func itemTypeFor(level session.Level, name string) (reportportal.ItemType, error) {
	switch level {
	case session.LevelScenario:
		return reportportal.ItemScenario, nil
	case session.LevelStep:
		return reportportal.ItemStep, nil
	}
	switch strings.ToUpper(name) {
	case "", string(reportportal.ItemTest):
		return reportportal.ItemTest, nil
	case string(reportportal.ItemStory):
		return reportportal.ItemStory, nil
	}
	return "", withExitCode(ExitUsageError, fmt.Errorf("unknown feature type %q (expected test or story)", name))
}
