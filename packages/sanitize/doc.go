// Package sanitize converts arbitrary byte strings into valid UTF-8 before they
// are serialized into request bodies.
//
// Conversion happens in two stages:
//   - Charset detection over a configurable detect order (ASCII, UTF-8 by default)
//   - A byte-class fallback that keeps well-formed UTF-8 sequences and re-encodes
//     every invalid byte as the two-byte sequence of its Latin-1 code point
//
// The fallback never fails, so Sanitize always returns valid UTF-8.
package sanitize
