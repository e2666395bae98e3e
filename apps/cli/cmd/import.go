package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/rpreporter/packages/junit"
	"github.com/abdul-hamid-achik/rpreporter/packages/notify"
	"github.com/abdul-hamid-achik/rpreporter/packages/reportportal"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	importLaunchNameFlag  string
	importDescriptionFlag string
	importModeFlag        string
	importTagsFlag        string
	importWatchFlag       bool

	// Notification flags
	notifyOnFlag     string
	slackWebhookFlag string
	slackChannelFlag string
)

var importCmd = &cobra.Command{
	Use:   "import <format> <source>",
	Short: "Replay test reports into ReportPortal",
	Long: `Replay test reports produced by other tools.

Supported formats:
  junit - JUnit XML (<testsuites> or <testsuite> root)`,
}

var importJUnitCmd = &cobra.Command{
	Use:   "junit <file-or-dir>...",
	Short: "Replay JUnit XML reports",
	Long: `Replay one or more JUnit XML reports. Directories are searched for *.xml files.

Each report becomes one launch unless a launch is already running in the
session, in which case every report is added to it as a root suite. A root
suite already running in the session is reused and left open. Features,
scenarios or steps left open must be finished first.

Examples:
  rpreporter import junit build/test-results/
  rpreporter import junit report.xml --name "nightly" --tags ci
  rpreporter import junit report.xml --watch`,
	Args: cobra.MinimumNArgs(1),
	RunE: importJUnitCommand,
}

func init() {
	importJUnitCmd.Flags().StringVarP(&importLaunchNameFlag, "name", "n", "", "Launch name (default: report name)")
	importJUnitCmd.Flags().StringVarP(&importDescriptionFlag, "description", "d", "", "Launch description")
	importJUnitCmd.Flags().StringVarP(&importModeFlag, "mode", "m", string(reportportal.ModeDefault), "Launch mode: default, debug")
	importJUnitCmd.Flags().StringVarP(&importTagsFlag, "tags", "t", "", "Comma-separated tags")
	importJUnitCmd.Flags().BoolVarP(&importWatchFlag, "watch", "w", false, "Watch reports for changes and replay them")

	importJUnitCmd.Flags().StringVar(&notifyOnFlag, "notify-on", getEnvString("RP_NOTIFY_ON", string(notify.NotifyFailure)), "When to notify: always, failure, success, recovery (env: RP_NOTIFY_ON)")
	importJUnitCmd.Flags().StringVar(&slackWebhookFlag, "slack-webhook", getEnvString("SLACK_WEBHOOK", ""), "Slack webhook URL for replay summaries (env: SLACK_WEBHOOK)")
	importJUnitCmd.Flags().StringVar(&slackChannelFlag, "slack-channel", getEnvString("SLACK_CHANNEL", ""), "Slack channel override (env: SLACK_CHANNEL)")

	importCmd.AddCommand(importJUnitCmd)
}

func importJUnitCommand(cmd *cobra.Command, args []string) error {
	files, err := collectReports(args)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	if len(files) == 0 {
		return withExitCode(ExitUsageError, errors.New("no .xml reports found"))
	}

	notifyOn, err := notify.ParseNotifyOn(notifyOnFlag)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	notifier := notify.NewManager(notifyOn)
	if slackWebhookFlag != "" {
		notifier.AddNotifier(notify.NewSlackNotifier(slackWebhookFlag, notify.WithSlackChannel(slackChannelFlag)))
	}

	return runWithApp(cmd, true, func(a *app) error {
		replayer := junit.NewReplayer(a.svc, junit.WithLogger(a.logger))
		opts := junit.Options{
			LaunchName:  importLaunchNameFlag,
			Description: importDescriptionFlag,
			Mode:        reportportal.LaunchMode(strings.ToUpper(importModeFlag)),
			Tags:        splitTags(importTagsFlag),
		}

		var mu sync.Mutex
		replay := func(ctx context.Context, path string) error {
			mu.Lock()
			defer mu.Unlock()
			if ctx.Err() != nil {
				return nil
			}

			doc, err := junit.ParseFile(path)
			if err != nil {
				return withExitCode(ExitParseError, err)
			}
			result, err := replayer.Replay(ctx, doc, opts)
			if errors.Is(err, junit.ErrItemsOpen) {
				return withExitCode(ExitStateError, err)
			}
			a.formatter.FormatReplay(result)
			if notifier.Len() > 0 {
				if nerr := notifier.Notify(notify.NewSummary(result, a.cfg.Host, a.cfg.Project)); nerr != nil {
					a.logger.Warn("notification failed", zap.Error(nerr))
				}
			}
			if saveErr := a.save(); saveErr != nil {
				a.logger.Warn("saving session failed", zap.Error(saveErr))
			}
			if err != nil {
				return withExitCode(ExitNetworkError, err)
			}
			if !result.Finished {
				return withExitCode(ExitReportFailure, fmt.Errorf("launch %s had open items; they were cancelled and the launch was stopped", result.LaunchID))
			}
			return nil
		}

		var errs []error
		for _, file := range files {
			if err := replay(cmd.Context(), file); err != nil {
				a.formatter.FormatError(err)
				errs = append(errs, err)
			}
		}

		if !importWatchFlag {
			return errors.Join(errs...)
		}
		return watchReports(cmd, a, files, replay, &mu)
	})
}

// watchReports replays a report whenever it is written, until interrupted.
// busy is held by replay; it is taken once on exit so no replay outlives the call.
func watchReports(cmd *cobra.Command, a *app, files []string, replay func(context.Context, string) error, busy sync.Locker) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool, len(files))
	watchedDirs := make(map[string]bool)
	for _, file := range files {
		abs, _ := filepath.Abs(file)
		watched[abs] = true
		dir := filepath.Dir(abs)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				a.formatter.FormatError(fmt.Errorf("failed to watch %s: %w", dir, err))
			}
			watchedDirs[dir] = true
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	// Debounce per file: report writers often flush in several chunks
	var timersMu sync.Mutex
	timers := make(map[string]*time.Timer)
	defer func() {
		stop()
		timersMu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		timersMu.Unlock()
		busy.Lock()
		busy.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name, _ := filepath.Abs(event.Name)
			if !watched[name] {
				continue
			}

			timersMu.Lock()
			if t, ok := timers[name]; ok {
				t.Stop()
			}
			timers[name] = time.AfterFunc(WatchDebounceDelay, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "\nReport changed: %s\nReplaying...\n", name)
				if err := replay(ctx, name); err != nil {
					a.formatter.FormatError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")
			})
			timersMu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.formatter.FormatError(fmt.Errorf("watcher error: %w", err))
		}
	}
}

func collectReports(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		err = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && strings.EqualFold(filepath.Ext(path), ".xml") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}
