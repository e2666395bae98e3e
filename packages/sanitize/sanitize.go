package sanitize

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

// DefaultDetectOrder is the charset detect order used by Sanitize and String
var DefaultDetectOrder = []string{"ASCII", "UTF-8"}

var defaultConverter = NewConverter(DefaultDetectOrder...)

// Sanitize returns input as valid UTF-8 using the default detect order
func Sanitize(input []byte) string {
	return defaultConverter.Convert(input)
}

// String is Sanitize for string input
func String(s string) string {
	return defaultConverter.Convert([]byte(s))
}

// Converter converts byte strings to UTF-8, trying each charset of its
// detect order before falling back to byte-level repair.
type Converter struct {
	detectOrder []string
}

// NewConverter creates a converter with the given detect order. Names are
// WHATWG charset labels ("windows-1252", "shift_jis", ...) plus "ASCII" and
// "UTF-8". An empty order uses DefaultDetectOrder.
func NewConverter(detectOrder ...string) *Converter {
	if len(detectOrder) == 0 {
		detectOrder = DefaultDetectOrder
	}
	order := make([]string, len(detectOrder))
	copy(order, detectOrder)
	return &Converter{detectOrder: order}
}

// DetectOrder returns a copy of the charsets tried by the converter
func (c *Converter) DetectOrder() []string {
	order := make([]string, len(c.detectOrder))
	copy(order, c.detectOrder)
	return order
}

// Convert returns input as valid UTF-8. Input that already is valid UTF-8
// is returned unchanged whatever the detect order, so a single-byte charset
// listed first cannot re-decode it.
func (c *Converter) Convert(input []byte) string {
	if utf8.Valid(input) {
		return string(input)
	}
	if out, ok := c.detect(input); ok {
		return out
	}
	return string(Repair(input))
}

// detect returns the input decoded with the first charset it is valid in
func (c *Converter) detect(input []byte) (string, bool) {
	for _, name := range c.detectOrder {
		switch strings.ToUpper(name) {
		case "ASCII", "US-ASCII":
			if isASCII(input) {
				return string(input), true
			}
			continue
		case "UTF-8", "UTF8":
			if utf8.Valid(input) {
				return string(input), true
			}
			continue
		}

		enc, err := htmlindex.Get(name)
		if err != nil {
			continue
		}
		out, err := enc.NewDecoder().Bytes(input)
		if err != nil || !utf8.Valid(out) {
			continue
		}
		// Decoders substitute U+FFFD for undecodable input instead of failing
		if bytes.ContainsRune(out, utf8.RuneError) && !bytes.ContainsRune(input, utf8.RuneError) {
			continue
		}
		return string(out), true
	}
	return "", false
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
