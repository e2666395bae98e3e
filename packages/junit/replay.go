package junit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/rpreporter/packages/recovery"
	"github.com/abdul-hamid-achik/rpreporter/packages/reportportal"
	"github.com/abdul-hamid-achik/rpreporter/packages/session"
	"go.uber.org/zap"
)

// ErrItemsOpen is returned when the session already holds a running item
// below the root suite; the replay would overwrite it.
var ErrItemsOpen = errors.New("session has open items below the root suite")

// Options control a single replay
type Options struct {
	LaunchName  string // defaults to the document name
	Description string
	Mode        reportportal.LaunchMode
	Tags        []string
	// BaseDir resolves relative attachment paths; defaults to the report's directory
	BaseDir string
}

// Result summarises a replay
type Result struct {
	Document string
	LaunchID string
	Suites   int
	Cases    int
	Passed   int
	Failed   int
	Skipped  int
	Logs     int
	Pictures int
	// LaunchStarted is true when the replay owned the launch
	LaunchStarted bool
	// RootStarted is true when the replay owned the root suite
	RootStarted bool
	// Finished is the reconcile outcome: false when the launch finish was
	// rejected and open items had to be cancelled
	Finished bool
	Duration time.Duration
}

// Replayer sends parsed reports through a Service
type Replayer struct {
	svc        *reportportal.Service
	reconciler *recovery.Reconciler
	logger     *zap.Logger
}

type Option func(*Replayer)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Replayer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewReplayer(svc *reportportal.Service, opts ...Option) *Replayer {
	r := &Replayer{
		svc:    svc,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.reconciler = recovery.New(svc, recovery.WithLogger(r.logger))
	return r
}

// Replay reports doc. A launch and a root suite are started unless already
// running in the service's session; only what is started here is finished
// here. Item-level failures are collected and returned together with the result.
func (r *Replayer) Replay(ctx context.Context, doc *Document, opts Options) (*Result, error) {
	start := time.Now()
	result := &Result{Document: doc.Name, Finished: true}
	state := r.svc.State()

	if opts.LaunchName == "" {
		opts.LaunchName = doc.Name
	}
	if opts.BaseDir == "" && doc.Path != "" {
		opts.BaseDir = filepath.Dir(doc.Path)
	}

	for _, level := range []session.Level{session.LevelFeature, session.LevelScenario, session.LevelStep} {
		if state.IsRunning(level) {
			return result, fmt.Errorf("%w: %s %s", ErrItemsOpen, level, state.ID(level))
		}
	}

	if !r.svc.IsLaunchRunning() {
		if _, err := r.svc.StartLaunch(ctx, opts.LaunchName, opts.Description, opts.Mode, opts.Tags); err != nil && !state.IsLaunchRunning() {
			return result, err
		}
		result.LaunchStarted = true
	}
	result.LaunchID = state.LaunchID()

	if state.IsRootRunning() {
		r.logger.Debug("reusing running root suite", zap.String("root_id", state.RootItemID()))
	} else {
		if _, err := r.svc.StartRootItem(ctx, doc.Name, "", opts.Tags); err != nil && !state.IsRootRunning() {
			return result, errors.Join(err, r.finishLaunch(ctx, result))
		}
		result.RootStarted = true
	}

	var errs []error
	for _, suite := range doc.Suites {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		errs = append(errs, r.replaySuite(ctx, suite, opts, result))
	}

	if result.RootStarted {
		if _, err := r.svc.FinishRootItem(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, r.finishLaunch(ctx, result))

	result.Duration = time.Since(start)
	r.logger.Info("report replayed",
		zap.String("document", doc.Name),
		zap.String("launch_id", result.LaunchID),
		zap.Int("cases", result.Cases),
		zap.Int("failed", result.Failed),
		zap.Bool("finished", result.Finished))

	return result, errors.Join(errs...)
}

func (r *Replayer) finishLaunch(ctx context.Context, result *Result) error {
	if !result.LaunchStarted {
		return nil
	}
	status := reportportal.StatusPassed
	if result.Failed > 0 {
		status = reportportal.StatusFailed
	}
	resp, err := r.svc.FinishLaunch(ctx, status)
	if resp == nil && err != nil {
		// unanswered; the launch id stays in the session for a later finish
		return err
	}
	result.Finished = r.reconciler.Reconcile(ctx, resp)
	r.svc.State().Reset(session.LevelLaunch)
	if !result.Finished {
		// the rejection was handled by cancelling, not an error to report
		return nil
	}
	return err
}

func (r *Replayer) replaySuite(ctx context.Context, suite TestSuite, opts Options, result *Result) error {
	if _, err := r.svc.StartFeature(ctx, suite.Name, suite.Timestamp, reportportal.ItemTest, nil); err != nil && !r.svc.IsFeatureRunning() {
		return err
	}
	result.Suites++

	var errs []error
	failed := false
	for _, tc := range suite.TestCases {
		status, err := r.replayCase(ctx, tc, opts, result)
		errs = append(errs, err)
		if status == reportportal.StatusFailed {
			failed = true
		}
	}

	if suite.SystemOut != "" && r.svc.IsFeatureRunning() {
		if _, err := r.svc.AddLogMessage(ctx, r.svc.State().FeatureItemID(), suite.SystemOut, reportportal.LogInfo); err != nil {
			errs = append(errs, err)
		} else {
			result.Logs++
		}
	}

	status := reportportal.StatusPassed
	if failed {
		status = reportportal.StatusFailed
	}
	if _, err := r.svc.FinishFeature(ctx, status, ""); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (r *Replayer) replayCase(ctx context.Context, tc TestCase, opts Options, result *Result) (reportportal.Status, error) {
	status := tc.Status()
	result.Cases++
	switch status {
	case reportportal.StatusFailed:
		result.Failed++
	case reportportal.StatusSkipped:
		result.Skipped++
	default:
		result.Passed++
	}

	if _, err := r.svc.StartScenario(ctx, tc.Name, tc.ClassName, nil); err != nil && !r.svc.IsScenarioRunning() {
		return status, err
	}

	var errs []error
	if _, err := r.svc.StartStep(ctx, tc.Name, "", nil); err != nil && !r.svc.IsStepRunning() {
		errs = append(errs, err)
	} else {
		errs = append(errs, r.sendLogs(ctx, tc, opts, result))
		description := ""
		if tc.Skipped != nil {
			description = tc.Skipped.Message
		}
		if _, err := r.svc.FinishStep(ctx, status, description); err != nil {
			errs = append(errs, err)
		}
	}

	if _, err := r.svc.FinishScenario(ctx, status, ""); err != nil {
		errs = append(errs, err)
	}
	return status, errors.Join(errs...)
}

func (r *Replayer) sendLogs(ctx context.Context, tc TestCase, opts Options, result *Result) error {
	stepID := r.svc.State().StepItemID()
	var errs []error

	send := func(message string, level reportportal.LogLevel) {
		if message == "" {
			return
		}
		if _, err := r.svc.AddLogMessage(ctx, stepID, message, level); err != nil {
			errs = append(errs, err)
			return
		}
		result.Logs++
	}

	send(tc.Failure.Text(), reportportal.LogError)
	send(tc.Error.Text(), reportportal.LogError)

	attachments, out := ExtractAttachments(tc.SystemOut, opts.BaseDir)
	send(out, reportportal.LogInfo)
	send(tc.SystemErr, reportportal.LogWarn)

	for _, a := range attachments {
		if a.Format == "" {
			send("attachment: "+a.Path, reportportal.LogInfo)
			continue
		}
		picture, err := os.ReadFile(a.Path)
		if err != nil {
			r.logger.Warn("attachment unreadable", zap.String("path", a.Path), zap.Error(err))
			send(fmt.Sprintf("attachment %s could not be read: %v", a.Path, err), reportportal.LogWarn)
			continue
		}
		resp, err := r.svc.AddLogMessageWithPicture(ctx, stepID, a.Path, reportportal.LogInfo, picture, a.Format)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if resp != nil {
			result.Pictures++
		}
	}

	return errors.Join(errs...)
}
