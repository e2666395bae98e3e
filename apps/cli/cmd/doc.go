// Package cmd implements the rpreporter CLI commands using Cobra.
//
// Available commands:
//   - init: Write an rpreporter.yaml template
//   - launch, suite, item: Start and finish entries of the launch hierarchy
//   - log: Attach a text or picture log to a running item
//   - import junit: Replay JUnit XML reports, optionally watching for changes
//   - status: Show the stored session chain
//   - version: Show rpreporter version information
//
// Each invocation restores the session chain from the state database and
// saves it back, so a launch can be reported across separate processes.
package cmd
