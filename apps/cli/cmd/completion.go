package cmd

import (
	"github.com/abdul-hamid-achik/rpreporter/packages/reportportal"
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for rpreporter.

Bash:
  $ source <(rpreporter completion bash)

Zsh:
  $ rpreporter completion zsh > "${fpath[1]}/_rpreporter"

Fish:
  $ rpreporter completion fish > ~/.config/fish/completions/rpreporter.fish

PowerShell:
  PS> rpreporter completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(out)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

func fixedCompletion(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// registerCompletions runs from root's init, after the flags it completes exist
func registerCompletions() {
	levels := fixedCompletion("feature", "scenario", "step")
	statuses := fixedCompletion(
		string(reportportal.StatusPassed), string(reportportal.StatusFailed), string(reportportal.StatusStopped),
		string(reportportal.StatusSkipped), string(reportportal.StatusInterrupted), string(reportportal.StatusCancelled),
	)

	_ = itemStartCmd.RegisterFlagCompletionFunc("level", levels)
	_ = itemFinishCmd.RegisterFlagCompletionFunc("level", levels)
	_ = itemFinishCmd.RegisterFlagCompletionFunc("status", statuses)
	_ = itemStartCmd.RegisterFlagCompletionFunc("type", fixedCompletion("test", "story"))
	_ = launchFinishCmd.RegisterFlagCompletionFunc("status", statuses)
	_ = launchStopCmd.RegisterFlagCompletionFunc("status", statuses)
	_ = launchStartCmd.RegisterFlagCompletionFunc("mode", fixedCompletion("default", "debug"))
	_ = importJUnitCmd.RegisterFlagCompletionFunc("mode", fixedCompletion("default", "debug"))
	_ = logCmd.RegisterFlagCompletionFunc("level", fixedCompletion("trace", "debug", "info", "warn", "error", "fatal"))
	_ = rootCmd.RegisterFlagCompletionFunc("output", fixedCompletion("console", "json"))
}
