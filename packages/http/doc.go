// Package http provides the transport used to talk to the reporting backend.
//
// It wraps the standard library's http package with additional features:
//   - Base URL resolution and default headers (bearer token auth)
//   - Configurable timeouts, TLS verification and proxy
//   - JSON and multipart/mixed-part request bodies
//   - Optional rate limiting
//   - Latency statistics
//
// Non-2xx responses are ordinary values unless strict status checking is enabled.
package http
