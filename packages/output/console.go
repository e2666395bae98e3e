package output

import (
	"fmt"
	"io"
	"os"

	"github.com/abdul-hamid-achik/rpreporter/packages/http"
	"github.com/abdul-hamid-achik/rpreporter/packages/junit"
	"github.com/abdul-hamid-achik/rpreporter/packages/session"
	"github.com/abdul-hamid-achik/rpreporter/packages/store"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
)

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if file, ok := f.writer.(*os.File); ok && !isatty.IsTerminal(file.Fd()) && !isatty.IsCygwinTerminal(file.Fd()) {
		f.noColor = true
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatReplay(result *junit.Result) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s\n", bold("Reported: "+result.Document))
	if result.LaunchID != "" {
		fmt.Fprintf(f.writer, "  Launch: %s\n", cyan(result.LaunchID))
	}
	fmt.Fprintf(f.writer, "  Suites: %d\n", result.Suites)

	fmt.Fprintf(f.writer, "  Tests:  ")
	if result.Passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d passed", result.Passed)))
	}
	if result.Failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", result.Failed)))
	}
	if result.Skipped > 0 {
		fmt.Fprintf(f.writer, "%s, ", yellow(fmt.Sprintf("%d skipped", result.Skipped)))
	}
	fmt.Fprintf(f.writer, "%d total\n", result.Cases)

	if f.verbose || result.Logs > 0 || result.Pictures > 0 {
		fmt.Fprintf(f.writer, "  Logs:   %d (%d pictures)\n", result.Logs, result.Pictures)
	}
	if result.LaunchStarted && !result.Finished {
		fmt.Fprintf(f.writer, "  %s launch finish rejected, open items cancelled and launch stopped\n", yellow("!"))
	}
	fmt.Fprintf(f.writer, "  Time:   %dms\n\n", result.Duration.Milliseconds())
}

func (f *ConsoleFormatter) FormatSession(name string, snap session.Snapshot) {
	bold := color.New(color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s\n", bold("Session:"), name)
	if snap.IsEmpty() {
		fmt.Fprintf(f.writer, "  %s\n", faint("nothing running"))
		return
	}
	rows := []struct {
		label string
		id    string
	}{
		{"launch", snap.LaunchID},
		{"root", snap.RootItemID},
		{"feature", snap.FeatureItemID},
		{"scenario", snap.ScenarioItemID},
		{"step", snap.StepItemID},
	}
	for _, row := range rows {
		if row.id == session.EmptyID {
			fmt.Fprintf(f.writer, "  %-9s %s\n", row.label, faint("-"))
			continue
		}
		fmt.Fprintf(f.writer, "  %-9s %s\n", row.label, row.id)
	}
}

func (f *ConsoleFormatter) FormatSessions(records []store.Record) {
	if len(records) == 0 {
		fmt.Fprintln(f.writer, "No stored sessions")
		return
	}

	table := tablewriter.NewWriter(f.writer)
	header := []any{"Session", "Launch", "Root", "Feature", "Scenario", "Step"}
	if f.verbose {
		header = append(header, "Updated")
	}
	table.Header(header...)

	for _, rec := range records {
		snap := rec.Snapshot
		row := []any{rec.Name, idOrDash(snap.LaunchID), idOrDash(snap.RootItemID),
			idOrDash(snap.FeatureItemID), idOrDash(snap.ScenarioItemID), idOrDash(snap.StepItemID)}
		if f.verbose {
			updated := "-"
			if !rec.UpdatedAt.IsZero() {
				updated = rec.UpdatedAt.Format("2006-01-02 15:04:05")
			}
			row = append(row, updated)
		}
		if err := table.Append(row...); err != nil {
			f.FormatError(err)
			return
		}
	}
	if err := table.Render(); err != nil {
		f.FormatError(err)
	}
}

func idOrDash(id string) string {
	if id == session.EmptyID {
		return "-"
	}
	return id
}

func (f *ConsoleFormatter) FormatStats(stats http.StatsSnapshot) {
	if stats.Requests == 0 {
		return
	}
	cyan := color.New(color.FgCyan).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	failures := fmt.Sprintf("%d failed", stats.Failures)
	if stats.Failures > 0 {
		failures = red(failures)
	}
	fmt.Fprintf(f.writer, "Requests: %d, %s\n", stats.Requests, failures)
	fmt.Fprintf(f.writer, "Latency:  p50 %s  p95 %s  p99 %s  max %s\n",
		cyan(stats.P50), cyan(stats.P95), cyan(stats.P99), cyan(stats.Max))
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("rpreporter"), version)
}
