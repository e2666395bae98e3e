package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/rpreporter/packages/http"
	"github.com/abdul-hamid-achik/rpreporter/packages/reportportal"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// FileName is the config file name searched for without extension
const FileName = "rpreporter"

// EnvPrefix prefixes every environment override
const EnvPrefix = "RP"

// Config represents the rpreporter configuration
type Config struct {
	Token             string        `mapstructure:"UUID" yaml:"UUID"`
	Host              string        `mapstructure:"host" yaml:"host"`
	Project           string        `mapstructure:"projectName" yaml:"projectName"`
	TimeZone          string        `mapstructure:"timeZone" yaml:"timeZone"`
	HTTPErrorsAllowed bool          `mapstructure:"httpErrorsAllowed" yaml:"httpErrorsAllowed"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	ValidateSSL       bool          `mapstructure:"validateSSL" yaml:"validateSSL"`
	Proxy             string        `mapstructure:"proxy" yaml:"proxy,omitempty"`
	RateLimit         float64       `mapstructure:"rateLimit" yaml:"rateLimit,omitempty"` // requests per second, 0 disables
	DetectOrder       []string      `mapstructure:"detectOrder" yaml:"detectOrder"`
	LogLevel          string        `mapstructure:"logLevel" yaml:"logLevel"`
	StateDB           string        `mapstructure:"stateDB" yaml:"stateDB"`

	file string
}

// Load reads configuration from path, or searches the working directory
// and the user config directory when path is empty. A missing file is
// only an error when path was given explicitly.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, FileName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("UUID", "RP_UUID", "RP_TOKEN")
	_ = v.BindEnv("host", "RP_HOST", "RP_ENDPOINT")
	_ = v.BindEnv("projectName", "RP_PROJECT", "RP_PROJECT_NAME")
	_ = v.BindEnv("timeZone", "RP_TIME_ZONE", "RP_TIMEZONE")
	_ = v.BindEnv("httpErrorsAllowed", "RP_HTTP_ERRORS_ALLOWED")
	_ = v.BindEnv("validateSSL", "RP_VALIDATE_SSL")
	_ = v.BindEnv("rateLimit", "RP_RATE_LIMIT")
	_ = v.BindEnv("detectOrder", "RP_DETECT_ORDER")
	_ = v.BindEnv("logLevel", "RP_LOG_LEVEL")
	_ = v.BindEnv("stateDB", "RP_STATE_DB")

	cfg := Default()
	v.SetDefault("httpErrorsAllowed", cfg.HTTPErrorsAllowed)
	v.SetDefault("timeout", cfg.Timeout)
	v.SetDefault("validateSSL", cfg.ValidateSSL)
	v.SetDefault("rateLimit", cfg.RateLimit)
	v.SetDefault("detectOrder", cfg.DetectOrder)
	v.SetDefault("logLevel", cfg.LogLevel)
	v.SetDefault("stateDB", cfg.StateDB)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.file = v.ConfigFileUsed()

	return cfg, nil
}

// File returns the config file that was read, if any
func (c *Config) File() string {
	return c.file
}

// Validate checks the connection settings
func (c *Config) Validate() error {
	var errs []error
	if c.Host == "" {
		errs = append(errs, errors.New("host is required"))
	} else if err := http.ValidateURL(c.Host); err != nil {
		errs = append(errs, fmt.Errorf("host: %w", err))
	}
	if c.Project == "" {
		errs = append(errs, errors.New("projectName is required"))
	}
	if c.Token == "" {
		errs = append(errs, errors.New("UUID is required"))
	} else if _, err := uuid.Parse(c.Token); err != nil {
		errs = append(errs, fmt.Errorf("UUID: %w", err))
	}
	if c.RateLimit < 0 {
		errs = append(errs, errors.New("rateLimit must not be negative"))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("logLevel: %w", err))
	}
	return errors.Join(errs...)
}

// ReportPortal returns the backend settings. An empty time zone falls back
// to the local UTC offset.
func (c *Config) ReportPortal() reportportal.Config {
	tz := c.TimeZone
	if tz == "" {
		tz = time.Now().Format("-07:00")
	}
	return reportportal.Config{
		Host:              c.Host,
		Project:           c.Project,
		Token:             c.Token,
		TimeZone:          tz,
		HTTPErrorsAllowed: c.HTTPErrorsAllowed,
	}
}

// ClientOptions returns the transport options derived from the config
func (c *Config) ClientOptions() []http.ClientOption {
	opts := []http.ClientOption{
		http.WithValidateSSL(c.ValidateSSL),
	}
	if c.Timeout > 0 {
		opts = append(opts, http.WithTimeout(c.Timeout))
	}
	if c.Proxy != "" {
		opts = append(opts, http.WithProxy(c.Proxy))
	}
	if c.RateLimit > 0 {
		opts = append(opts, http.WithRateLimit(c.RateLimit))
	}
	return opts
}

// NewLogger builds a JSON production logger at the configured level;
// verbose forces debug
func (c *Config) NewLogger(verbose bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "json"
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
