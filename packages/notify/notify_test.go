package notify

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/rpreporter/packages/junit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type recordingNotifier struct {
	calls []*Summary
	err   error
}

func (r *recordingNotifier) Notify(s *Summary) error {
	r.calls = append(r.calls, s)
	return r.err
}

func (r *recordingNotifier) Name() string { return "recording" }

func TestParseNotifyOn(t *testing.T) {
	n, err := ParseNotifyOn("Failure")
	require.NoError(t, err)
	assert.Equal(t, NotifyFailure, n)

	_, err = ParseNotifyOn("sometimes")
	assert.Error(t, err)
}

func TestNewSummary(t *testing.T) {
	s := NewSummary(&junit.Result{
		Document:      "nightly",
		LaunchID:      "abc",
		Cases:         3,
		Passed:        2,
		Failed:        1,
		LaunchStarted: true,
		Finished:      false,
	}, "https://rp.example.com/", "demo")

	assert.Equal(t, "https://rp.example.com/ui/#demo/launches/all/abc", s.LaunchURL)
	assert.Equal(t, 3, s.Total)
	assert.True(t, s.Cancelled)
	assert.False(t, s.Succeeded())
}

func TestManager_Policies(t *testing.T) {
	pass := func() *Summary { return &Summary{Total: 1, Passed: 1} }
	fail := func() *Summary { return &Summary{Total: 1, Failed: 1} }

	tests := []struct {
		name     string
		policy   NotifyOn
		runs     []*Summary
		expected int
	}{
		{name: "always", policy: NotifyAlways, runs: []*Summary{pass(), fail()}, expected: 2},
		{name: "failure", policy: NotifyFailure, runs: []*Summary{pass(), fail()}, expected: 1},
		{name: "success", policy: NotifySuccess, runs: []*Summary{pass(), fail()}, expected: 1},
		{name: "recovery", policy: NotifyRecovery, runs: []*Summary{pass(), fail(), pass(), pass()}, expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingNotifier{}
			m := NewManager(tt.policy, rec)
			for _, s := range tt.runs {
				require.NoError(t, m.Notify(s))
			}
			assert.Len(t, rec.calls, tt.expected)
		})
	}
}

func TestManager_RecoveryFlag(t *testing.T) {
	rec := &recordingNotifier{}
	m := NewManager(NotifyRecovery, rec)
	require.NoError(t, m.Notify(&Summary{Failed: 1}))
	require.NoError(t, m.Notify(&Summary{Passed: 1}))
	require.Len(t, rec.calls, 2)
	assert.True(t, rec.calls[1].IsRecovery)
}

func TestManager_CollectsErrors(t *testing.T) {
	m := NewManager(NotifyAlways, &recordingNotifier{err: errors.New("down")}, &recordingNotifier{})
	m.AddNotifier(&recordingNotifier{})
	assert.Equal(t, 3, m.Len())

	err := m.Notify(&Summary{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recording: down")
}

func TestSlackNotifier(t *testing.T) {
	var mu sync.Mutex
	var body []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		body, _ = io.ReadAll(r.Body)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewSlackNotifier(server.URL, WithSlackChannel("#ci"))
	assert.Equal(t, "slack", n.Name())

	err := n.Notify(&Summary{Document: "nightly", LaunchID: "abc", LaunchURL: "https://rp/ui", Total: 2, Failed: 1, Duration: 1500 * time.Millisecond})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "#ci", gjson.GetBytes(body, "channel").String())
	assert.Equal(t, "danger", gjson.GetBytes(body, "attachments.0.color").String())
	assert.Equal(t, "https://rp/ui", gjson.GetBytes(body, "attachments.0.title_link").String())
	assert.Contains(t, gjson.GetBytes(body, "attachments.0.title").String(), "1 test(s) failed")
}

func TestSlackNotifier_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("invalid_payload"))
	}))
	defer server.Close()

	err := NewSlackNotifier(server.URL).Notify(&Summary{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_payload")
}
