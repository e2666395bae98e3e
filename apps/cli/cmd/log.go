package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/rpreporter/packages/reportportal"
	"github.com/spf13/cobra"
)

var (
	logMessageFlag string
	logLevelFlag   string
	logItemFlag    string
	logPictureFlag string
	logFormatFlag  string
)

var logCmd = &cobra.Command{
	Use:   "log [message]",
	Short: "Attach a log entry to a running item",
	Long: `Attach a log entry to the innermost running item, or to --item.

A picture is only sent while a step is running.

Examples:
  rpreporter log "request sent" --level debug
  rpreporter log "page after submit" --picture shot.png`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := logMessageFlag
		if len(args) == 1 {
			message = args[0]
		}
		level, err := parseLogLevel(logLevelFlag)
		if err != nil {
			return err
		}

		return runWithApp(cmd, true, func(a *app) error {
			itemID := logItemFlag
			if itemID == "" {
				id, _, ok := a.deepestItem()
				if !ok {
					return withExitCode(ExitStateError, errors.New("no item is running; pass --item"))
				}
				itemID = id
			}

			if logPictureFlag == "" {
				if _, err := a.svc.AddLogMessage(cmd.Context(), itemID, message, level); err != nil {
					return withExitCode(ExitNetworkError, err)
				}
				return nil
			}

			picture, err := os.ReadFile(logPictureFlag)
			if err != nil {
				return withExitCode(ExitUsageError, fmt.Errorf("cannot read picture: %w", err))
			}
			format := logFormatFlag
			if format == "" {
				format = pictureFormat(logPictureFlag)
			}
			resp, err := a.svc.AddLogMessageWithPicture(cmd.Context(), itemID, message, level, picture, format)
			if err != nil {
				return withExitCode(ExitNetworkError, err)
			}
			if resp == nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "picture not sent: no step is running")
			}
			return nil
		})
	},
}

func init() {
	logCmd.Flags().StringVarP(&logMessageFlag, "message", "m", "", "Log message (or pass as argument)")
	logCmd.Flags().StringVarP(&logLevelFlag, "level", "l", string(reportportal.LogInfo), "Log level: trace, debug, info, warn, error, fatal")
	logCmd.Flags().StringVar(&logItemFlag, "item", "", "Item id (default: innermost running item)")
	logCmd.Flags().StringVarP(&logPictureFlag, "picture", "p", "", "Image file to attach")
	logCmd.Flags().StringVar(&logFormatFlag, "format", "", "Image subtype, e.g. png (default: from file extension)")
}

func parseLogLevel(s string) (reportportal.LogLevel, error) {
	level := reportportal.LogLevel(strings.ToUpper(s))
	switch level {
	case reportportal.LogTrace, reportportal.LogDebug, reportportal.LogInfo,
		reportportal.LogWarn, reportportal.LogError, reportportal.LogFatal:
		return level, nil
	}
	return "", withExitCode(ExitUsageError, fmt.Errorf("unknown log level %q", s))
}

func pictureFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "jpg":
		return "jpeg"
	case "":
		return "png"
	}
	return ext
}
