// Package junit replays JUnit XML reports into ReportPortal.
//
// Each testsuite becomes a TEST item under a root SUITE, and each testcase
// becomes a SCENARIO holding a single STEP. Failure text, captured output
// and [[ATTACHMENT|path]] lines are sent as logs on the step.
package junit
