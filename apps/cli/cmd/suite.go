package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/rpreporter/packages/session"
	"github.com/spf13/cobra"
)

var (
	suiteNameFlag        string
	suiteDescriptionFlag string
	suiteTagsFlag        string
)

var suiteCmd = &cobra.Command{
	Use:   "suite",
	Short: "Start or finish the root suite of the launch",
}

var suiteStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the root suite",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, true, func(a *app) error {
			if err := a.requireRunning(session.LevelLaunch); err != nil {
				return err
			}
			if a.state.IsRootRunning() {
				return withExitCode(ExitStateError, fmt.Errorf("suite %s is already running", a.state.RootItemID()))
			}
			if _, err := a.svc.StartRootItem(cmd.Context(), suiteNameFlag, suiteDescriptionFlag, splitTags(suiteTagsFlag)); err != nil && !a.state.IsRootRunning() {
				return withExitCode(ExitNetworkError, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.state.RootItemID())
			return nil
		})
	},
}

var suiteFinishCmd = &cobra.Command{
	Use:   "finish",
	Short: "Finish the root suite as PASSED",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, true, func(a *app) error {
			if err := a.requireRunning(session.LevelRoot); err != nil {
				return err
			}
			id := a.state.RootItemID()
			resp, err := a.svc.FinishRootItem(cmd.Context())
			if !a.reconciler().Reconcile(cmd.Context(), resp) {
				a.state.Clear()
				return withExitCode(ExitReportFailure, fmt.Errorf("suite %s had open items; they were cancelled and the launch was stopped", id))
			}
			if err != nil {
				return withExitCode(ExitNetworkError, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Finished suite %s\n", id)
			return nil
		})
	},
}

func init() {
	suiteStartCmd.Flags().StringVarP(&suiteNameFlag, "name", "n", "", "Suite name")
	suiteStartCmd.Flags().StringVarP(&suiteDescriptionFlag, "description", "d", "", "Suite description")
	suiteStartCmd.Flags().StringVarP(&suiteTagsFlag, "tags", "t", "", "Comma-separated tags")
	_ = suiteStartCmd.MarkFlagRequired("name")

	suiteCmd.AddCommand(suiteStartCmd, suiteFinishCmd)
}
