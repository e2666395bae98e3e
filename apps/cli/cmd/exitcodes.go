package cmd

import (
	"errors"

	"github.com/abdul-hamid-achik/rpreporter/packages/http"
)

// Exit codes for rpreporter CLI
const (
	// ExitSuccess indicates the command completed
	ExitSuccess = 0

	// ExitReportFailure indicates the backend accepted the requests but the
	// report is incomplete, e.g. a launch finish had to be reconciled
	ExitReportFailure = 1

	// ExitParseError indicates a report file could not be parsed
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network error or a rejected request
	ExitNetworkError = 4

	// ExitStateError indicates the session has no item at the required level
	ExitStateError = 5

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// exitError carries the process exit code for a failed command
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// exitCode maps err to the process exit code
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	var se *http.StatusError
	if errors.As(err, &se) {
		return ExitNetworkError
	}
	return ExitReportFailure
}
