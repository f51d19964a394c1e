// Package config provides configuration management for the siphon mirror
// downloader. It handles loading, validating, and saving application settings.
// The package supports YAML configuration files and provides sensible defaults
// while allowing customization through configuration files and flags.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/siphon/pkg/errors"
	"github.com/glorpus-work/siphon/pkg/fsutil"
	"github.com/glorpus-work/siphon/pkg/httpclient"
)

// Config represents the application configuration.
type Config struct {
	// General settings
	Settings Settings `yaml:"settings"`
}

// Duration is a time.Duration that round-trips through YAML as a string
// like "15s" and also accepts integer nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var nanos int64
	if err := value.Decode(&nanos); err == nil {
		*d = Duration(nanos)
		return nil
	}

	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("invalid duration: %s", value.Value)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// Settings represents general application settings.
type Settings struct {
	// Mirror settings
	DownloadDir     string `yaml:"download_dir,omitempty"`
	PathReplacement string `yaml:"path_replacement,omitempty"`
	Workers         int    `yaml:"workers"`

	// Network settings
	HTTPTimeout      Duration          `yaml:"http_timeout"`
	MaxRetries       int               `yaml:"max_retries"`
	RetryWaitMin     Duration          `yaml:"retry_wait_min"`
	RetryWaitMax     Duration          `yaml:"retry_wait_max"`
	RetryStatusCodes []int             `yaml:"retry_status_codes,omitempty"`
	UserAgent        string            `yaml:"user_agent,omitempty"`
	Headers          map[string]string `yaml:"headers,omitempty"`

	// Hook settings
	HooksDir string `yaml:"hooks_dir,omitempty"`

	// Output settings
	LogLevel string `yaml:"log_level"` // error, warn, info, debug
}

// Default configuration values.
const (
	// DefaultWorkers is the default number of concurrent download workers.
	DefaultWorkers = 4

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	downloadDir, err := getUserDownloadDir()
	if err != nil {
		// Fallback to current directory if we can't determine a user directory
		downloadDir = "."
	}

	return &Config{
		Settings: Settings{
			DownloadDir:     downloadDir,
			PathReplacement: "_",
			Workers:         DefaultWorkers,
			HTTPTimeout:     Duration(httpclient.DefaultTimeout),
			MaxRetries:      httpclient.DefaultMaxRetries,
			RetryWaitMin:    Duration(httpclient.DefaultRetryWaitMin),
			RetryWaitMax:    Duration(httpclient.DefaultRetryWaitMax),
			LogLevel:        "info",
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the
// default configuration.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	return &config, nil
}

// applyDefaults fills in zero-valued fields from the default configuration.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.DownloadDir == "" {
		c.Settings.DownloadDir = defaults.Settings.DownloadDir
	}
	if c.Settings.PathReplacement == "" {
		c.Settings.PathReplacement = defaults.Settings.PathReplacement
	}
	if c.Settings.Workers == 0 {
		c.Settings.Workers = defaults.Settings.Workers
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.MaxRetries == 0 {
		c.Settings.MaxRetries = defaults.Settings.MaxRetries
	}
	if c.Settings.RetryWaitMin == 0 {
		c.Settings.RetryWaitMin = defaults.Settings.RetryWaitMin
	}
	if c.Settings.RetryWaitMax == 0 {
		c.Settings.RetryWaitMax = defaults.Settings.RetryWaitMax
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
}

// SaveConfig saves configuration to a file.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	// Write to a temp file and rename so readers never see a partial config.
	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}

	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	return validateSettings(c.Settings)
}

func validateSettings(s Settings) error {
	if s.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout cannot be negative")
	}
	if s.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative")
	}
	if s.RetryWaitMin < 0 || s.RetryWaitMax < 0 {
		return fmt.Errorf("retry waits cannot be negative")
	}
	if s.RetryWaitMax != 0 && s.RetryWaitMin > s.RetryWaitMax {
		return fmt.Errorf("retry_wait_min cannot exceed retry_wait_max")
	}
	if s.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	for _, code := range s.RetryStatusCodes {
		if code < 100 || code > 599 {
			return fmt.Errorf("invalid retry status code: %d", code)
		}
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return fmt.Errorf("invalid log level: %s", s.LogLevel)
	}
	return nil
}

// HTTPConfig translates the network settings into an HTTP client configuration.
func (c *Config) HTTPConfig() httpclient.Config {
	return httpclient.Config{
		Timeout:          time.Duration(c.Settings.HTTPTimeout),
		MaxRetries:       c.Settings.MaxRetries,
		RetryWaitMin:     time.Duration(c.Settings.RetryWaitMin),
		RetryWaitMax:     time.Duration(c.Settings.RetryWaitMax),
		RetryStatusCodes: c.Settings.RetryStatusCodes,
		UserAgent:        c.Settings.UserAgent,
		Headers:          c.Settings.Headers,
	}
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	return filepath.Join(configDir, "siphon", "config.yaml"), nil
}

// getUserDownloadDir returns the default directory URIs are mirrored into.
func getUserDownloadDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, "siphon"), nil
}
