package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/rpreporter/packages/http"
	"github.com/abdul-hamid-achik/rpreporter/packages/junit"
	"github.com/abdul-hamid-achik/rpreporter/packages/session"
	"github.com/abdul-hamid-achik/rpreporter/packages/store"
)

// JSONReplay is the JSON form of a replay result
type JSONReplay struct {
	Document      string  `json:"document"`
	LaunchID      string  `json:"launchId,omitempty"`
	Suites        int     `json:"suites"`
	Summary       Summary `json:"summary"`
	Logs          int     `json:"logs"`
	Pictures      int     `json:"pictures"`
	LaunchStarted bool    `json:"launchStarted"`
	Finished      bool    `json:"finished"`
	Duration      float64 `json:"duration"` // milliseconds
}

// Summary counts test cases by outcome
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// JSONSession is a named session chain
type JSONSession struct {
	Name      string           `json:"name"`
	Session   session.Snapshot `json:"session"`
	UpdatedAt string           `json:"updatedAt,omitempty"`
}

// JSONStats reports transport latencies in milliseconds
type JSONStats struct {
	Requests int64   `json:"requests"`
	Failures int64   `json:"failures"`
	P50      float64 `json:"p50"`
	P95      float64 `json:"p95"`
	P99      float64 `json:"p99"`
	Max      float64 `json:"max"`
}

// JSONFormatter writes one JSON document per call
type JSONFormatter struct {
	writer io.Writer
}

func NewJSONFormatter(w io.Writer) *JSONFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &JSONFormatter{writer: w}
}

func (f *JSONFormatter) FormatReplay(result *junit.Result) {
	f.write(JSONReplay{
		Document: result.Document,
		LaunchID: result.LaunchID,
		Suites:   result.Suites,
		Summary: Summary{
			Total:   result.Cases,
			Passed:  result.Passed,
			Failed:  result.Failed,
			Skipped: result.Skipped,
		},
		Logs:          result.Logs,
		Pictures:      result.Pictures,
		LaunchStarted: result.LaunchStarted,
		Finished:      result.Finished,
		Duration:      float64(result.Duration.Microseconds()) / 1000,
	})
}

func (f *JSONFormatter) FormatSession(name string, snap session.Snapshot) {
	f.write(JSONSession{Name: name, Session: snap})
}

func (f *JSONFormatter) FormatSessions(records []store.Record) {
	out := make([]JSONSession, 0, len(records))
	for _, rec := range records {
		s := JSONSession{Name: rec.Name, Session: rec.Snapshot}
		if !rec.UpdatedAt.IsZero() {
			s.UpdatedAt = rec.UpdatedAt.Format("2006-01-02T15:04:05Z07:00")
		}
		out = append(out, s)
	}
	f.write(out)
}

func (f *JSONFormatter) FormatStats(stats http.StatsSnapshot) {
	ms := func(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }
	f.write(JSONStats{
		Requests: stats.Requests,
		Failures: stats.Failures,
		P50:      ms(stats.P50),
		P95:      ms(stats.P95),
		P99:      ms(stats.P99),
		Max:      ms(stats.Max),
	})
}

func (f *JSONFormatter) FormatError(err error) {
	f.write(map[string]string{"error": err.Error()})
}

func (f *JSONFormatter) write(v any) {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(v)
}
