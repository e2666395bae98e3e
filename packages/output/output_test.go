package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/rpreporter/packages/http"
	"github.com/abdul-hamid-achik/rpreporter/packages/junit"
	"github.com/abdul-hamid-achik/rpreporter/packages/session"
	"github.com/abdul-hamid-achik/rpreporter/packages/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *junit.Result {
	return &junit.Result{
		Document:      "nightly",
		LaunchID:      "launch-1",
		Suites:        2,
		Cases:         3,
		Passed:        1,
		Failed:        1,
		Skipped:       1,
		Logs:          2,
		Pictures:      1,
		LaunchStarted: true,
		Finished:      false,
		Duration:      1500 * time.Millisecond,
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	f, err := New("console", &buf, true)
	require.NoError(t, err)
	assert.IsType(t, &ConsoleFormatter{}, f)

	f, err = New("json", &buf, true)
	require.NoError(t, err)
	assert.IsType(t, &JSONFormatter{}, f)

	_, err = New("tap", &buf, true)
	assert.Error(t, err)
}

func TestConsole_FormatReplay(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleFormatter(WithWriter(&buf), WithNoColor(true)).FormatReplay(sampleResult())

	out := buf.String()
	assert.Contains(t, out, "Reported: nightly")
	assert.Contains(t, out, "Launch: launch-1")
	assert.Contains(t, out, "1 passed, 1 failed, 1 skipped, 3 total")
	assert.Contains(t, out, "Logs:   2 (1 pictures)")
	assert.Contains(t, out, "open items cancelled")
	assert.Contains(t, out, "Time:   1500ms")
}

func TestConsole_FormatSession(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatSession("ci", session.Snapshot{})
	assert.Contains(t, buf.String(), "nothing running")

	buf.Reset()
	f.FormatSession("ci", session.Snapshot{LaunchID: "l1", RootItemID: "r1"})
	out := buf.String()
	assert.Contains(t, out, "Session: ci")
	assert.Contains(t, out, "launch    l1")
	assert.Contains(t, out, "root      r1")
	assert.Contains(t, out, "step      -")
}

func TestConsole_FormatSessions(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatSessions(nil)
	assert.Contains(t, buf.String(), "No stored sessions")

	buf.Reset()
	f.FormatSessions([]store.Record{{Name: "alpha"}, {Name: "beta", Snapshot: session.Snapshot{LaunchID: "launch-7"}}})
	out := buf.String()
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "beta")
	assert.Contains(t, out, "launch-7")
	assert.NotContains(t, out, "No stored sessions")
}

func TestConsole_FormatStats(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatStats(http.StatsSnapshot{})
	assert.Empty(t, buf.String())

	f.FormatStats(http.StatsSnapshot{Requests: 4, Failures: 1, P50: 2 * time.Millisecond, Max: 9 * time.Millisecond})
	assert.Contains(t, buf.String(), "Requests: 4, 1 failed")
	assert.Contains(t, buf.String(), "p50 2ms")
}

func TestConsole_FormatError(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleFormatter(WithWriter(&buf), WithNoColor(true)).FormatError(errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())
}

func TestJSON_FormatReplay(t *testing.T) {
	var buf bytes.Buffer
	NewJSONFormatter(&buf).FormatReplay(sampleResult())

	var got JSONReplay
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "launch-1", got.LaunchID)
	assert.Equal(t, Summary{Total: 3, Passed: 1, Failed: 1, Skipped: 1}, got.Summary)
	assert.False(t, got.Finished)
	assert.Equal(t, 1500.0, got.Duration)
}

func TestJSON_FormatSessionAndStats(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(&buf)

	f.FormatSession("ci", session.Snapshot{LaunchID: "l1"})
	var s JSONSession
	require.NoError(t, json.Unmarshal(buf.Bytes(), &s))
	assert.Equal(t, "l1", s.Session.LaunchID)

	buf.Reset()
	f.FormatStats(http.StatsSnapshot{Requests: 2, P99: 1500 * time.Microsecond})
	var st JSONStats
	require.NoError(t, json.Unmarshal(buf.Bytes(), &st))
	assert.Equal(t, int64(2), st.Requests)
	assert.Equal(t, 1.5, st.P99)

	buf.Reset()
	f.FormatError(errors.New("boom"))
	assert.JSONEq(t, `{"error":"boom"}`, buf.String())
}
