package reportportal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/rpreporter/packages/http"
	"github.com/abdul-hamid-achik/rpreporter/packages/sanitize"
	"github.com/abdul-hamid-achik/rpreporter/packages/session"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// TimeLayout is the local date-time layout of every timestamp; the configured
// time zone suffix is appended to it.
const TimeLayout = "2006-01-02T15:04:05"

// ErrLaunchNotRunning is returned when an item is started before a launch
var ErrLaunchNotRunning = errors.New("no launch is running")

// Service reports lifecycle events of one test run
type Service struct {
	cfg       Config
	client    *http.Client
	state     *session.State
	sanitizer *sanitize.Converter
	clock     clock.Clock
	logger    *zap.Logger
}

type Option func(*Service)

// WithHTTPClient replaces the transport built from Config
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) {
		s.client = c
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the time source used for timestamps
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithSanitizer sets the converter applied to free-text fields
func WithSanitizer(c *sanitize.Converter) Option {
	return func(s *Service) {
		s.sanitizer = c
	}
}

// NewService creates a Service reporting into state. Without WithHTTPClient
// the transport targets cfg.BaseURL() with cfg.Token as bearer token.
func NewService(cfg Config, state *session.State, opts ...Option) *Service {
	s := &Service{
		cfg:       cfg,
		state:     state,
		sanitizer: sanitize.NewConverter(),
		clock:     clock.New(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.state == nil {
		s.state = session.New()
	}
	if s.client == nil {
		s.client = NewHTTPClient(cfg, http.WithLogger(s.logger))
	}
	return s
}

// NewHTTPClient builds the transport for cfg; extra options are applied last
func NewHTTPClient(cfg Config, opts ...http.ClientOption) *http.Client {
	base := []http.ClientOption{
		http.WithBaseURL(cfg.BaseURL()),
		http.WithBearerToken(cfg.Token),
		http.WithStrictStatus(!cfg.HTTPErrorsAllowed),
	}
	return http.NewClient(append(base, opts...)...)
}

func (s *Service) Config() Config { return s.cfg }
func (s *Service) State() *session.State { return s.state }
func (s *Service) HTTPClient() *http.Client { return s.client }

func (s *Service) IsLaunchRunning() bool { return s.state.IsLaunchRunning() }
func (s *Service) IsRootRunning() bool { return s.state.IsRootRunning() }
func (s *Service) IsFeatureRunning() bool { return s.state.IsFeatureRunning() }
func (s *Service) IsScenarioRunning() bool { return s.state.IsScenarioRunning() }
func (s *Service) IsStepRunning() bool { return s.state.IsStepRunning() }

// Timestamp returns the current local time in TimeLayout plus the time zone suffix
func (s *Service) Timestamp() string {
	return s.clock.Now().Format(TimeLayout) + s.cfg.TimeZone
}

// StartLaunch starts a launch and stores its id
func (s *Service) StartLaunch(ctx context.Context, name, description string, mode LaunchMode, tags []string) (*http.Response, error) {
	if mode == "" {
		mode = ModeDefault
	}
	resp, err := s.client.PostJSON(ctx, "/launch", startLaunchRequest{
		Description: s.text(description),
		Mode:        mode,
		Name:        s.text(name),
		StartTime:   s.Timestamp(),
		Tags:        normalizeTags(tags),
	})
	if resp == nil {
		return nil, fmt.Errorf("starting launch: %w", err)
	}

	id, decodeErr := decodeID(resp)
	if decodeErr != nil {
		return resp, wrap("starting launch", errors.Join(err, decodeErr))
	}
	s.state.Set(session.LevelLaunch, id)
	s.logger.Info("launch started", zap.String("launch_id", id), zap.String("name", name))
	return resp, wrap("starting launch", err)
}

// FinishLaunch finishes the running launch. The launch id is kept until the
// caller resets it.
func (s *Service) FinishLaunch(ctx context.Context, status Status) (*http.Response, error) {
	resp, err := s.client.PutJSON(ctx, "/launch/"+s.state.LaunchID()+"/finish", finishLaunchRequest{
		EndTime: s.Timestamp(),
		Status:  status,
	})
	s.logger.Info("launch finish requested", zap.String("launch_id", s.state.LaunchID()), zap.String("status", string(status)))
	return resp, wrap("finishing launch", err)
}

// ForceFinishLaunch stops the running launch regardless of open items
func (s *Service) ForceFinishLaunch(ctx context.Context, status Status) (*http.Response, error) {
	resp, err := s.client.PutJSON(ctx, "/launch/"+s.state.LaunchID()+"/stop", finishLaunchRequest{
		EndTime: s.Timestamp(),
		Status:  status,
	})
	s.logger.Warn("launch force-finish requested", zap.String("launch_id", s.state.LaunchID()), zap.String("status", string(status)))
	return resp, wrap("stopping launch", err)
}

// StartRootItem starts the top-level SUITE of the running launch and stores its id
func (s *Service) StartRootItem(ctx context.Context, name, description string, tags []string) (*http.Response, error) {
	if !s.state.IsLaunchRunning() {
		return nil, fmt.Errorf("starting root item %q: %w", name, ErrLaunchNotRunning)
	}

	resp, err := s.client.PostJSON(ctx, "/item", startItemRequest{
		Description: s.text(description),
		LaunchID:    s.state.LaunchID(),
		Name:        s.text(name),
		StartTime:   s.Timestamp(),
		Tags:        normalizeTags(tags),
		Type:        ItemSuite,
	})
	if resp == nil {
		return nil, fmt.Errorf("starting root item: %w", err)
	}

	id, decodeErr := decodeID(resp)
	if decodeErr != nil {
		return resp, wrap("starting root item", errors.Join(err, decodeErr))
	}
	s.state.Set(session.LevelRoot, id)
	s.logger.Debug("root item started", zap.String("item_id", id), zap.String("name", name))
	return resp, wrap("starting root item", err)
}

// FinishRootItem finishes the root item as PASSED and resets it, whatever
// the backend answers.
func (s *Service) FinishRootItem(ctx context.Context) (*http.Response, error) {
	resp, err := s.FinishItem(ctx, s.state.RootItemID(), StatusPassed, "")
	s.state.Reset(session.LevelRoot)
	return resp, err
}

// StartChildItem starts an item under parentID. The returned id is not stored;
// see StartNested for the variant that records it.
func (s *Service) StartChildItem(ctx context.Context, parentID, description, name string, itemType ItemType, tags []string) (*http.Response, error) {
	resp, err := s.client.PostJSON(ctx, "/item/"+parentID, startItemRequest{
		Description: s.text(description),
		LaunchID:    s.state.LaunchID(),
		Name:        s.text(name),
		StartTime:   s.Timestamp(),
		Tags:        normalizeTags(tags),
		Type:        itemType,
	})
	return resp, wrap("starting child item", err)
}

// FinishItem finishes the item with the given id
func (s *Service) FinishItem(ctx context.Context, itemID string, status Status, description string) (*http.Response, error) {
	resp, err := s.client.PutJSON(ctx, "/item/"+itemID, finishItemRequest{
		Description: s.text(description),
		EndTime:     s.Timestamp(),
		Status:      status,
	})
	s.logger.Debug("item finish requested", zap.String("item_id", itemID), zap.String("status", string(status)))
	return resp, wrap("finishing item "+itemID, err)
}

// AddLogMessage attaches a text log entry to an item
func (s *Service) AddLogMessage(ctx context.Context, itemID, message string, level LogLevel) (*http.Response, error) {
	resp, err := s.client.PostJSON(ctx, "/log", logRequest{
		ItemID:  itemID,
		Message: s.text(message),
		Time:    s.Timestamp(),
		Level:   level,
	})
	return resp, wrap("adding log", err)
}

// AddLogMessageWithPicture attaches a log entry carrying an image. It does
// nothing and returns (nil, nil) when no step is running.
func (s *Service) AddLogMessageWithPicture(ctx context.Context, itemID, message string, level LogLevel, picture []byte, pictureFormat string) (*http.Response, error) {
	if !s.state.IsStepRunning() {
		s.logger.Debug("picture log skipped, no step running", zap.String("item_id", itemID))
		return nil, nil
	}

	payload, err := marshalJSONPart([]pictureLogRequest{{
		File: logFile{Name: "picture"},
		logRequest: logRequest{
			ItemID:  itemID,
			Message: s.text(message),
			Time:    s.Timestamp(),
			Level:   level,
		},
	}})
	if err != nil {
		return nil, err
	}

	req := http.NewRequest("POST", "/log").
		AddPart(&http.Part{
			Name:        "json_request_part",
			ContentType: "application/json",
			Headers:     map[string]string{"Content-Transfer-Encoding": "8bit"},
			Content:     payload,
		}).
		AddPart(&http.Part{
			Name:        "binary_part",
			Filename:    "picture",
			ContentType: "image/" + pictureFormat,
			Headers:     map[string]string{"Content-Transfer-Encoding": "binary"},
			Content:     picture,
		})

	resp, err := s.client.Do(ctx, req)
	return resp, wrap("adding picture log", err)
}

func (s *Service) text(v string) string {
	return s.sanitizer.Convert([]byte(v))
}

func marshalJSONPart(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding log request: %w", err)
	}
	return data, nil
}

func normalizeTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
