package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "7f7c2b0e-1c5a-4d7e-9b8e-2f4b7d1a9c33"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rpreporter.yaml", `
UUID: `+testToken+`
host: https://rp.example.com
projectName: demo
timeZone: "+03:00"
httpErrorsAllowed: false
timeout: 5s
rateLimit: 2.5
detectOrder: [ASCII, UTF-8, windows-1252]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, testToken, cfg.Token)
	assert.Equal(t, "https://rp.example.com", cfg.Host)
	assert.Equal(t, "demo", cfg.Project)
	assert.Equal(t, "+03:00", cfg.TimeZone)
	assert.False(t, cfg.HTTPErrorsAllowed)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, []string{"ASCII", "UTF-8", "windows-1252"}, cfg.DetectOrder)
	assert.True(t, cfg.ValidateSSL, "unset keys keep defaults")
	assert.Equal(t, path, cfg.File())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rpreporter.yaml", "host: https://file.example.com\nprojectName: fromfile\n")
	t.Setenv("RP_HOST", "https://env.example.com")
	t.Setenv("RP_TOKEN", testToken)
	t.Setenv("RP_HTTP_ERRORS_ALLOWED", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.Host)
	assert.Equal(t, "fromfile", cfg.Project)
	assert.Equal(t, testToken, cfg.Token)
	assert.False(t, cfg.HTTPErrorsAllowed)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.IsDefault())
	assert.True(t, cfg.HTTPErrorsAllowed)
	assert.Equal(t, []string{"ASCII", "UTF-8"}, cfg.DetectOrder)

	cfg.RateLimit = 1
	assert.False(t, cfg.IsDefault())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := Default()
		c.Host = "https://rp.example.com"
		c.Project = "demo"
		c.Token = testToken
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing host", mutate: func(c *Config) { c.Host = "" }, wantErr: "host is required"},
		{name: "bad scheme", mutate: func(c *Config) { c.Host = "ftp://rp" }, wantErr: "unsupported URL scheme"},
		{name: "missing project", mutate: func(c *Config) { c.Project = "" }, wantErr: "projectName is required"},
		{name: "token not a uuid", mutate: func(c *Config) { c.Token = "secret" }, wantErr: "UUID:"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "logLevel"},
		{name: "negative rate", mutate: func(c *Config) { c.RateLimit = -1 }, wantErr: "rateLimit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReportPortal(t *testing.T) {
	c := Default()
	c.Host = "https://rp.example.com/"
	c.Project = "demo"
	c.Token = testToken
	c.TimeZone = "+01:00"
	c.HTTPErrorsAllowed = false

	rp := c.ReportPortal()
	assert.Equal(t, "https://rp.example.com/api/v1/demo", rp.BaseURL())
	assert.Equal(t, "+01:00", rp.TimeZone)
	assert.False(t, rp.HTTPErrorsAllowed)

	c.TimeZone = ""
	assert.Regexp(t, `^[+-]\d{2}:\d{2}$`, c.ReportPortal().TimeZone)
}

func TestClientOptions(t *testing.T) {
	c := Default()
	assert.Len(t, c.ClientOptions(), 2)

	c.Proxy = "http://proxy:8080"
	c.RateLimit = 5
	assert.Len(t, c.ClientOptions(), 4)
}

func TestNewLogger(t *testing.T) {
	c := Default()
	logger, err := c.NewLogger(false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))

	logger, err = c.NewLogger(true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rpreporter.yaml")
	c := Default()
	c.Host = "https://rp.example.com"
	c.Project = "demo"
	c.Token = testToken
	require.NoError(t, c.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c.Host, loaded.Host)
	assert.Equal(t, c.Token, loaded.Token)
	assert.Equal(t, c.Timeout, loaded.Timeout)
	assert.Equal(t, c.DetectOrder, loaded.DetectOrder)
}
