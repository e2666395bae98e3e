package config

import "time"

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		HTTPErrorsAllowed: true,
		Timeout:           30 * time.Second,
		ValidateSSL:       true,
		RateLimit:         0,
		DetectOrder:       []string{"ASCII", "UTF-8"},
		LogLevel:          "warn",
		StateDB:           ".rpreporter/state.db",
	}
}

// IsDefault reports whether only the connection keys differ from defaults
func (c *Config) IsDefault() bool {
	d := Default()
	return c.HTTPErrorsAllowed == d.HTTPErrorsAllowed &&
		c.Timeout == d.Timeout &&
		c.ValidateSSL == d.ValidateSSL &&
		c.Proxy == d.Proxy &&
		c.RateLimit == d.RateLimit &&
		equalStrings(c.DetectOrder, d.DetectOrder) &&
		c.LogLevel == d.LogLevel &&
		c.StateDB == d.StateDB
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
