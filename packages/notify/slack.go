package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/rpreporter/packages/http"
)

// SlackNotifier sends notifications to Slack via webhook
type SlackNotifier struct {
	webhookURL string
	channel    string
	username   string
	iconEmoji  string
	client     *http.Client
}

// SlackOption is a functional option for SlackNotifier
type SlackOption func(*SlackNotifier)

// WithSlackChannel sets the Slack channel
func WithSlackChannel(channel string) SlackOption {
	return func(s *SlackNotifier) {
		s.channel = channel
	}
}

// WithSlackUsername sets the Slack bot username
func WithSlackUsername(username string) SlackOption {
	return func(s *SlackNotifier) {
		s.username = username
	}
}

// WithSlackClient replaces the transport
func WithSlackClient(c *http.Client) SlackOption {
	return func(s *SlackNotifier) {
		s.client = c
	}
}

// NewSlackNotifier creates a new Slack notifier
func NewSlackNotifier(webhookURL string, opts ...SlackOption) *SlackNotifier {
	s := &SlackNotifier{
		webhookURL: webhookURL,
		username:   "rpreporter",
		iconEmoji:  ":test_tube:",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = http.NewClient(http.WithTimeout(10*time.Second), http.WithStrictStatus(true))
	}
	return s
}

func (s *SlackNotifier) Name() string {
	return "slack"
}

type slackMessage struct {
	Channel     string            `json:"channel,omitempty"`
	Username    string            `json:"username,omitempty"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	TitleLink string       `json:"title_link,omitempty"`
	Text      string       `json:"text,omitempty"`
	Fields    []slackField `json:"fields,omitempty"`
	Footer    string       `json:"footer,omitempty"`
	TS        int64        `json:"ts,omitempty"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// Notify sends a notification to Slack
func (s *SlackNotifier) Notify(summary *Summary) error {
	return s.NotifyContext(context.Background(), summary)
}

// NotifyContext is Notify bound to ctx
func (s *SlackNotifier) NotifyContext(ctx context.Context, summary *Summary) error {
	_, err := s.client.PostJSON(ctx, s.webhookURL, s.message(summary))
	if err != nil {
		return fmt.Errorf("failed to send Slack notification: %w", err)
	}
	return nil
}

func (s *SlackNotifier) message(summary *Summary) slackMessage {
	color := "good"
	title := "All tests passed"
	emoji := ":white_check_mark:"

	switch {
	case summary.Failed > 0:
		color = "danger"
		title = fmt.Sprintf("%d test(s) failed", summary.Failed)
		emoji = ":x:"
	case summary.Cancelled:
		color = "warning"
		title = "Launch closed with cancelled items"
		emoji = ":warning:"
	case summary.IsRecovery:
		title = "Tests recovered"
		emoji = ":tada:"
	}

	fields := []slackField{
		{Title: "Total", Value: fmt.Sprintf("%d", summary.Total), Short: true},
		{Title: "Passed", Value: fmt.Sprintf("%d", summary.Passed), Short: true},
		{Title: "Failed", Value: fmt.Sprintf("%d", summary.Failed), Short: true},
		{Title: "Skipped", Value: fmt.Sprintf("%d", summary.Skipped), Short: true},
		{Title: "Duration", Value: summary.Duration.Round(time.Millisecond).String(), Short: true},
	}
	if summary.LaunchID != "" {
		fields = append(fields, slackField{Title: "Launch", Value: summary.LaunchID, Short: true})
	}

	var text strings.Builder
	text.WriteString("Report `" + summary.Document + "`")
	if summary.Cancelled {
		text.WriteString("\nThe server rejected the launch finish; open items were cancelled.")
	}

	return slackMessage{
		Channel:   s.channel,
		Username:  s.username,
		IconEmoji: s.iconEmoji,
		Attachments: []slackAttachment{{
			Color:     color,
			Title:     fmt.Sprintf("%s %s", emoji, title),
			TitleLink: summary.LaunchURL,
			Text:      text.String(),
			Fields:    fields,
			Footer:    "rpreporter",
			TS:        time.Now().Unix(),
		}},
	}
}
