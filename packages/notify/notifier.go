// Package notify posts replay summaries to chat webhooks.
package notify

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/rpreporter/packages/junit"
)

// NotifyOn specifies when to send notifications
type NotifyOn string

const (
	// NotifyAlways sends notifications for every replay
	NotifyAlways NotifyOn = "always"
	// NotifyFailure sends notifications only when tests fail
	NotifyFailure NotifyOn = "failure"
	// NotifySuccess sends notifications only when tests pass
	NotifySuccess NotifyOn = "success"
	// NotifyRecovery sends notifications on failure and on the first pass after one
	NotifyRecovery NotifyOn = "recovery"
)

// ParseNotifyOn validates a policy name
func ParseNotifyOn(s string) (NotifyOn, error) {
	switch n := NotifyOn(strings.ToLower(s)); n {
	case NotifyAlways, NotifyFailure, NotifySuccess, NotifyRecovery:
		return n, nil
	}
	return "", fmt.Errorf("unknown notify policy %q (expected always, failure, success or recovery)", s)
}

// Summary is what a notifier reports about one replay
type Summary struct {
	Document  string        `json:"document"`
	LaunchID  string        `json:"launch_id,omitempty"`
	LaunchURL string        `json:"launch_url,omitempty"`
	Total     int           `json:"total"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration"`
	// Cancelled is set when open items had to be cancelled to close the launch
	Cancelled  bool `json:"cancelled,omitempty"`
	IsRecovery bool `json:"is_recovery,omitempty"`
}

// NewSummary builds a summary for result. uiBase, when set, is the server
// root used to link the launch.
func NewSummary(result *junit.Result, uiBase, project string) *Summary {
	s := &Summary{
		Document:  result.Document,
		LaunchID:  result.LaunchID,
		Total:     result.Cases,
		Passed:    result.Passed,
		Failed:    result.Failed,
		Skipped:   result.Skipped,
		Duration:  result.Duration,
		Cancelled: result.LaunchStarted && !result.Finished,
	}
	if uiBase != "" && result.LaunchID != "" {
		s.LaunchURL = fmt.Sprintf("%s/ui/#%s/launches/all/%s", strings.TrimRight(uiBase, "/"), project, result.LaunchID)
	}
	return s
}

// Succeeded reports whether every case passed and the launch closed normally
func (s *Summary) Succeeded() bool {
	return s.Failed == 0 && !s.Cancelled
}

// Notifier is the interface for notification services
type Notifier interface {
	Notify(summary *Summary) error
	Name() string
}

// Manager applies a NotifyOn policy across notifiers
type Manager struct {
	notifiers []Notifier
	notifyOn  NotifyOn
	lastState bool // true if last replay succeeded
}

// NewManager creates a new notification manager
func NewManager(notifyOn NotifyOn, notifiers ...Notifier) *Manager {
	return &Manager{
		notifiers: notifiers,
		notifyOn:  notifyOn,
		lastState: true,
	}
}

// AddNotifier adds a notifier to the manager
func (m *Manager) AddNotifier(n Notifier) {
	m.notifiers = append(m.notifiers, n)
}

// Len returns the number of notifiers
func (m *Manager) Len() int {
	return len(m.notifiers)
}

// Notify sends summary to every notifier when the policy allows it
func (m *Manager) Notify(summary *Summary) error {
	success := summary.Succeeded()

	var shouldNotify bool
	switch m.notifyOn {
	case NotifyAlways:
		shouldNotify = true
	case NotifyFailure:
		shouldNotify = !success
	case NotifySuccess:
		shouldNotify = success
	case NotifyRecovery:
		if !m.lastState && success {
			shouldNotify = true
			summary.IsRecovery = true
		}
		if !success {
			shouldNotify = true
		}
	}

	m.lastState = success

	if !shouldNotify {
		return nil
	}

	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(summary); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}
