package cmd

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/rpreporter/packages/reportportal"
	"github.com/abdul-hamid-achik/rpreporter/packages/session"
	"github.com/spf13/cobra"
)

var (
	launchNameFlag        string
	launchDescriptionFlag string
	launchModeFlag        string
	launchTagsFlag        string
	launchStatusFlag      string
	launchStopStatusFlag  string
)

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Start, finish or stop the session's launch",
}

var launchStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a launch",
	Long: `Start a launch and store its id in the session.

Examples:
  rpreporter launch start --name "nightly" --tags smoke,api
  rpreporter launch start --name "debugging" --mode debug`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, true, func(a *app) error {
			if a.state.IsLaunchRunning() {
				return withExitCode(ExitStateError, fmt.Errorf("launch %s is already running in session %s", a.state.LaunchID(), sessionFlag))
			}
			mode := reportportal.LaunchMode(strings.ToUpper(launchModeFlag))
			if mode != reportportal.ModeDefault && mode != reportportal.ModeDebug {
				return withExitCode(ExitUsageError, fmt.Errorf("unknown launch mode %q", launchModeFlag))
			}
			if _, err := a.svc.StartLaunch(cmd.Context(), launchNameFlag, launchDescriptionFlag, mode, splitTags(launchTagsFlag)); err != nil && !a.state.IsLaunchRunning() {
				return withExitCode(ExitNetworkError, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.state.LaunchID())
			return nil
		})
	},
}

var launchFinishCmd = &cobra.Command{
	Use:   "finish",
	Short: "Finish the launch, cancelling items the server reports as still open",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, true, func(a *app) error {
			if err := a.requireRunning(session.LevelLaunch); err != nil {
				return err
			}
			status, err := parseStatus(launchStatusFlag)
			if err != nil {
				return err
			}

			resp, err := a.svc.FinishLaunch(cmd.Context(), status)
			if resp == nil && err != nil {
				// the server never answered; keep the chain so finish can be retried
				return withExitCode(ExitNetworkError, err)
			}
			finished := a.reconciler().Reconcile(cmd.Context(), resp)
			launchID := a.state.LaunchID()
			a.state.Clear()

			if !finished {
				return withExitCode(ExitReportFailure, fmt.Errorf("launch %s had open items; they were cancelled and the launch was stopped", launchID))
			}
			if err != nil {
				return withExitCode(ExitNetworkError, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Finished launch %s\n", launchID)
			return nil
		})
	},
}

var launchStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Force-stop the launch regardless of open items",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, true, func(a *app) error {
			if err := a.requireRunning(session.LevelLaunch); err != nil {
				return err
			}
			status, err := parseStatus(launchStopStatusFlag)
			if err != nil {
				return err
			}
			launchID := a.state.LaunchID()
			resp, err := a.svc.ForceFinishLaunch(cmd.Context(), status)
			if resp == nil && err != nil {
				return withExitCode(ExitNetworkError, err)
			}
			a.state.Clear()
			if err != nil {
				return withExitCode(ExitNetworkError, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped launch %s\n", launchID)
			return nil
		})
	},
}

func init() {
	launchStartCmd.Flags().StringVarP(&launchNameFlag, "name", "n", "", "Launch name")
	launchStartCmd.Flags().StringVarP(&launchDescriptionFlag, "description", "d", "", "Launch description")
	launchStartCmd.Flags().StringVarP(&launchModeFlag, "mode", "m", string(reportportal.ModeDefault), "Launch mode: default, debug")
	launchStartCmd.Flags().StringVarP(&launchTagsFlag, "tags", "t", "", "Comma-separated tags")
	_ = launchStartCmd.MarkFlagRequired("name")

	launchFinishCmd.Flags().StringVar(&launchStatusFlag, "status", string(reportportal.StatusPassed), "Launch status")
	launchStopCmd.Flags().StringVar(&launchStopStatusFlag, "status", string(reportportal.StatusStopped), "Launch status")

	launchCmd.AddCommand(launchStartCmd, launchFinishCmd, launchStopCmd)
}
