package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// SetValue sets a configuration value by key
// Supported keys:
//   - download_dir: string - Directory URIs are mirrored into
//   - workers: int - Number of concurrent download workers
//   - http_timeout: duration - Timeout for a single request
//   - max_retries: int - Retry attempts after the first try
//   - user_agent: string - User-Agent header sent with requests
//   - hooks_dir: string - Directory hook scripts are loaded from
//   - log_level: string - Logging level (debug, info, warn, error)
func (c *Config) SetValue(key, value string) error {
	switch key {
	case "download_dir":
		c.Settings.DownloadDir = value
	case "workers":
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %s", key, value)
		}
		c.Settings.Workers = intVal
	case "http_timeout":
		duration, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %s", key, value)
		}
		c.Settings.HTTPTimeout = Duration(duration)
	case "max_retries":
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %s", key, value)
		}
		c.Settings.MaxRetries = intVal
	case "user_agent":
		c.Settings.UserAgent = value
	case "hooks_dir":
		c.Settings.HooksDir = value
	case "log_level":
		c.Settings.LogLevel = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// GetValue returns a configuration value by key as a string.
func (c *Config) GetValue(key string) (string, error) {
	switch key {
	case "download_dir":
		return c.Settings.DownloadDir, nil
	case "workers":
		return strconv.Itoa(c.Settings.Workers), nil
	case "http_timeout":
		return c.Settings.HTTPTimeout.String(), nil
	case "max_retries":
		return strconv.Itoa(c.Settings.MaxRetries), nil
	case "user_agent":
		return c.Settings.UserAgent, nil
	case "hooks_dir":
		return c.Settings.HooksDir, nil
	case "log_level":
		return c.Settings.LogLevel, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// ToMap converts the settings to a flat string map keyed by yaml tag.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)

	settingsValue := reflect.ValueOf(c.Settings)
	settingsType := settingsValue.Type()

	for i := 0; i < settingsValue.NumField(); i++ {
		field := settingsType.Field(i)
		yamlTag := field.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}

		// Handle yaml tags with options (e.g., "download_dir,omitempty")
		yamlKey := strings.Split(yamlTag, ",")[0]

		fieldValue := settingsValue.Field(i)
		var strValue string

		switch v := fieldValue.Interface().(type) {
		case Duration:
			strValue = v.String()
		case string:
			strValue = v
		case int:
			strValue = strconv.Itoa(v)
		default:
			strValue = fmt.Sprintf("%v", v)
		}

		result[yamlKey] = strValue
	}

	return result
}
