package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	statusAllFlag   bool
	statusResetFlag bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the ids held by the session",
	Long: `Show the launch and item ids held by the current session.

Examples:
  rpreporter status
  rpreporter status --all
  rpreporter status --session ci --reset`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithApp(cmd, false, func(a *app) error {
			if statusResetFlag {
				a.state.Clear()
				if err := a.store.Delete(cmd.Context(), sessionFlag); err != nil {
					return err
				}
				a.save = func() error { return nil }
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared session %s\n", sessionFlag)
				return nil
			}
			if statusAllFlag {
				records, err := a.store.List(cmd.Context())
				if err != nil {
					return err
				}
				a.formatter.FormatSessions(records)
				return nil
			}
			a.formatter.FormatSession(sessionFlag, a.state.Snapshot())
			return nil
		})
	},
}

func init() {
	statusCmd.Flags().BoolVarP(&statusAllFlag, "all", "a", false, "List every stored session")
	statusCmd.Flags().BoolVar(&statusResetFlag, "reset", false, "Forget the session's ids without contacting the server")
}
