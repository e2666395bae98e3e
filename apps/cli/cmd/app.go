package cmd

import (
	"errors"
	"strings"

	"github.com/abdul-hamid-achik/rpreporter/packages/core/config"
	"github.com/abdul-hamid-achik/rpreporter/packages/http"
	"github.com/abdul-hamid-achik/rpreporter/packages/output"
	"github.com/abdul-hamid-achik/rpreporter/packages/recovery"
	"github.com/abdul-hamid-achik/rpreporter/packages/reportportal"
	"github.com/abdul-hamid-achik/rpreporter/packages/sanitize"
	"github.com/abdul-hamid-achik/rpreporter/packages/session"
	"github.com/abdul-hamid-achik/rpreporter/packages/store"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is the per-invocation wiring shared by the commands
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     *store.Store
	state     *session.State
	svc       *reportportal.Service
	formatter output.Formatter
	save      func() error
}

// openApp loads config, restores the session chain and, when backend is
// true, validates the connection settings and builds the service.
func openApp(cmd *cobra.Command, backend bool) (*app, error) {
	if envFileFlag != "" {
		if _, err := config.ExportDotEnv(envFileFlag); err != nil {
			return nil, withExitCode(ExitConfigError, err)
		}
	}

	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}
	if backend {
		if err := cfg.Validate(); err != nil {
			return nil, withExitCode(ExitConfigError, err)
		}
	}

	logger, err := cfg.NewLogger(verboseFlag)
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	formatter, err := output.New(strings.ToLower(outputFlag), cmd.OutOrStdout(), noColorFlag)
	if err != nil {
		return nil, withExitCode(ExitUsageError, err)
	}

	dbPath := cfg.StateDB
	if stateDBFlag != "" {
		dbPath = stateDBFlag
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	state := session.New()
	save, err := st.Bind(cmd.Context(), sessionFlag, state)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		logger:    logger.With(zap.String("session", sessionFlag)),
		store:     st,
		state:     state,
		formatter: formatter,
		save:      save,
	}

	if backend {
		rp := cfg.ReportPortal()
		client := reportportal.NewHTTPClient(rp, append(cfg.ClientOptions(), http.WithLogger(a.logger))...)
		a.svc = reportportal.NewService(rp, state,
			reportportal.WithHTTPClient(client),
			reportportal.WithLogger(a.logger),
			reportportal.WithSanitizer(sanitize.NewConverter(cfg.DetectOrder...)),
		)
	}

	return a, nil
}

// Close saves the session chain and releases the state database
func (a *app) Close() error {
	err := errors.Join(a.save(), a.store.Close())
	if a.svc != nil && verboseFlag {
		a.formatter.FormatStats(a.svc.HTTPClient().Stats().Snapshot())
	}
	_ = a.logger.Sync()
	return err
}

func (a *app) reconciler() *recovery.Reconciler {
	return recovery.New(a.svc, recovery.WithLogger(a.logger))
}

// requireRunning fails when nothing is held at level
func (a *app) requireRunning(level session.Level) error {
	if !a.state.IsRunning(level) {
		return withExitCode(ExitStateError, errors.New("no "+level.String()+" is running in session "+sessionFlag))
	}
	return nil
}

// deepestItem returns the innermost running item id
func (a *app) deepestItem() (string, session.Level, bool) {
	for level := session.LevelStep; level >= session.LevelRoot; level-- {
		if id := a.state.ID(level); id != session.EmptyID {
			return id, level, true
		}
	}
	return session.EmptyID, session.LevelLaunch, false
}

// runWithApp opens the app, runs fn and always closes it
func runWithApp(cmd *cobra.Command, backend bool, fn func(a *app) error) (err error) {
	a, err := openApp(cmd, backend)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.Close())
	}()
	return fn(a)
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	// duplicate tags are dropped, first occurrence wins
	return lo.Uniq(lo.FilterMap(strings.Split(s, ","), func(t string, _ int) (string, bool) {
		t = strings.TrimSpace(t)
		return t, t != ""
	}))
}

func parseStatus(s string) (reportportal.Status, error) {
	status := reportportal.Status(strings.ToUpper(s))
	switch status {
	case reportportal.StatusPassed, reportportal.StatusFailed, reportportal.StatusStopped,
		reportportal.StatusSkipped, reportportal.StatusInterrupted, reportportal.StatusCancelled:
		return status, nil
	}
	return "", withExitCode(ExitUsageError, errors.New("unknown status "+s))
}
