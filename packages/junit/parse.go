package junit

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/rpreporter/packages/reportportal"
)

// Document is a parsed report, normalised to a list of suites
type Document struct {
	Name   string
	Path   string
	Suites []TestSuite
}

// TestSuites is the <testsuites> root element
type TestSuites struct {
	XMLName    xml.Name    `xml:"testsuites"`
	Name       string      `xml:"name,attr,omitempty"`
	TestSuites []TestSuite `xml:"testsuite"`
}

// TestSuite represents a test suite (typically a file or package)
type TestSuite struct {
	XMLName   xml.Name    `xml:"testsuite"`
	Name      string      `xml:"name,attr"`
	Tests     int         `xml:"tests,attr"`
	Failures  int         `xml:"failures,attr"`
	Errors    int         `xml:"errors,attr"`
	Skipped   int         `xml:"skipped,attr"`
	Time      float64     `xml:"time,attr"`
	Timestamp string      `xml:"timestamp,attr,omitempty"`
	TestCases []TestCase  `xml:"testcase"`
	Suites    []TestSuite `xml:"testsuite"`
	SystemOut string      `xml:"system-out,omitempty"`
}

// TestCase represents a single test case
type TestCase struct {
	Name      string   `xml:"name,attr"`
	ClassName string   `xml:"classname,attr"`
	Time      float64  `xml:"time,attr"`
	Failure   *Failure `xml:"failure,omitempty"`
	Error     *Failure `xml:"error,omitempty"`
	Skipped   *Skipped `xml:"skipped,omitempty"`
	SystemOut string   `xml:"system-out,omitempty"`
	SystemErr string   `xml:"system-err,omitempty"`
}

// Failure is a <failure> or <error> element
type Failure struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

// Text joins the message and body, skipping empty parts
func (f *Failure) Text() string {
	if f == nil {
		return ""
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{f.Type, f.Message, strings.TrimSpace(f.Content)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ": ")
}

// Skipped is a <skipped> element
type Skipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// Status maps the case outcome to an item status
func (c TestCase) Status() reportportal.Status {
	switch {
	case c.Failure != nil || c.Error != nil:
		return reportportal.StatusFailed
	case c.Skipped != nil:
		return reportportal.StatusSkipped
	default:
		return reportportal.StatusPassed
	}
}

// ParseFile reads and parses the report at path. The document is named
// after the file when the root carries no name.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open report: %w", err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	doc.Path = path
	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}

// Parse reads a report whose root is either <testsuites> or <testsuite>.
// Nested suites are flattened in document order.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	root, err := rootElement(data)
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	switch root {
	case "testsuites":
		var suites TestSuites
		if err := xml.Unmarshal(data, &suites); err != nil {
			return nil, err
		}
		doc.Name = suites.Name
		doc.Suites = flatten(suites.TestSuites)
	case "testsuite":
		var suite TestSuite
		if err := xml.Unmarshal(data, &suite); err != nil {
			return nil, err
		}
		doc.Name = suite.Name
		doc.Suites = flatten([]TestSuite{suite})
	default:
		return nil, fmt.Errorf("unexpected root element <%s>", root)
	}
	return doc, nil
}

func rootElement(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return "", fmt.Errorf("empty report")
		}
		if err != nil {
			return "", err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}

func flatten(suites []TestSuite) []TestSuite {
	var out []TestSuite
	for _, s := range suites {
		nested := s.Suites
		s.Suites = nil
		if len(s.TestCases) > 0 || len(nested) == 0 {
			out = append(out, s)
		}
		out = append(out, flatten(nested)...)
	}
	return out
}

// Attachment is a file referenced from captured output
type Attachment struct {
	Path string
	// Format is the image subtype, e.g. "png"; empty for non-images
	Format string
}

var imageFormats = map[string]string{
	".png":  "png",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".gif":  "gif",
	".bmp":  "bmp",
	".webp": "webp",
}

// ExtractAttachments finds [[ATTACHMENT|path]] markers in output and returns
// the remaining text. Relative paths are resolved against baseDir.
func ExtractAttachments(output, baseDir string) ([]Attachment, string) {
	var attachments []Attachment
	var rest []string

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[[ATTACHMENT|") && strings.HasSuffix(trimmed, "]]") {
			path := strings.TrimSuffix(strings.TrimPrefix(trimmed, "[[ATTACHMENT|"), "]]")
			if path == "" {
				continue
			}
			if !filepath.IsAbs(path) && baseDir != "" {
				path = filepath.Join(baseDir, path)
			}
			attachments = append(attachments, Attachment{
				Path:   path,
				Format: imageFormats[strings.ToLower(filepath.Ext(path))],
			})
			continue
		}
		rest = append(rest, line)
	}

	return attachments, strings.TrimSpace(strings.Join(rest, "\n"))
}
