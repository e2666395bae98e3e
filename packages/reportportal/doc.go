// Package reportportal reports a hierarchical test run to a ReportPortal
// backend.
//
// A Service issues one request per lifecycle event (start/finish launch,
// start/finish item, log) and threads the identifiers returned by the
// backend through a session.State owned by the caller:
//
//	state := session.New()
//	svc := reportportal.NewService(cfg, state)
//	svc.StartLaunch(ctx, "nightly", "", reportportal.ModeDefault, nil)
//	svc.StartRootItem(ctx, "api", "", nil)
//	svc.StartFeature(ctx, "login", "", reportportal.ItemTest, nil)
//
// Every free-text field is passed through the sanitize package before it is
// serialized.
package reportportal
