package output

import (
	"fmt"
	"io"

	"github.com/abdul-hamid-achik/rpreporter/packages/http"
	"github.com/abdul-hamid-achik/rpreporter/packages/junit"
	"github.com/abdul-hamid-achik/rpreporter/packages/session"
	"github.com/abdul-hamid-achik/rpreporter/packages/store"
)

// Formatter renders the results of CLI commands
type Formatter interface {
	FormatReplay(result *junit.Result)
	FormatSession(name string, snap session.Snapshot)
	FormatSessions(records []store.Record)
	FormatStats(stats http.StatsSnapshot)
	FormatError(err error)
}

// New returns the formatter for format ("console" or "json")
func New(format string, w io.Writer, noColor bool) (Formatter, error) {
	switch format {
	case "", "console":
		return NewConsoleFormatter(WithWriter(w), WithNoColor(noColor)), nil
	case "json":
		return NewJSONFormatter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
