package reportportal

import (
	"fmt"
	"strings"
)

// Config describes the backend a Service reports to. It is copied into the
// Service and never modified afterwards.
type Config struct {
	Host    string // e.g. https://rp.example.com
	Project string
	Token   string
	// TimeZone is appended verbatim to every timestamp, e.g. "+03:00"
	TimeZone string
	// HTTPErrorsAllowed returns non-2xx responses as ordinary values. When
	// false, operations also return an *http.StatusError.
	HTTPErrorsAllowed bool
}

// BaseURL returns <host>/api/v1/<project>
func (c Config) BaseURL() string {
	return fmt.Sprintf("%s/api/v1/%s", strings.TrimRight(c.Host, "/"), c.Project)
}

// Validate checks the fields every request depends on
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Project == "" {
		return fmt.Errorf("project name is required")
	}
	if c.Token == "" {
		return fmt.Errorf("token is required")
	}
	return nil
}
