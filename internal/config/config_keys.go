// config_keys.go provides key-value access to configuration settings.
//
// Separated from config.go to isolate the key enumeration and string-based
// get/set logic used by the config command (e.g., "http.timeout").
//
// Design: Pointers are used for optional fields so we can distinguish between
// "not set" (nil) and "explicitly set to zero/false". Defaults only apply
// when the user hasn't set a value.

package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ValidKeys returns all valid configuration keys.
func ValidKeys() []string {
	return []string{
		"http.timeout",
		"tools.inventory", "tools.read_only",
		"audit.enabled",
		"log.level", "log.format",
		"downloads.dir",
		"limits.max_page_size",
	}
}

// IsValidKey returns true if the key is a valid configuration key.
func IsValidKey(key string) bool {
	return slices.Contains(ValidKeys(), key)
}

// Get returns the value of a configuration key as a string.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "http.timeout":
		return c.Timeout().String(), nil
	case "tools.inventory":
		return strconv.FormatBool(c.InventoryEnabled()), nil
	case "tools.read_only":
		return strconv.FormatBool(c.ReadOnly()), nil
	case "audit.enabled":
		return strconv.FormatBool(c.AuditEnabled()), nil
	case "log.level":
		return strings.ToLower(c.LogLevel().String()), nil
	case "log.format":
		return c.LogFormat(), nil
	case "downloads.dir":
		return c.DownloadDir(), nil
	case "limits.max_page_size":
		return strconv.Itoa(c.MaxPageSize()), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set sets the value of a configuration key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "http.timeout":
		d, err := time.ParseDuration(value)
		if err != nil || d < MinTimeout || d > MaxTimeout {
			return fmt.Errorf("%w: http.timeout must be a duration between %s and %s", ErrInvalidValue, MinTimeout, MaxTimeout)
		}
		s := d.String()
		c.HTTP.Timeout = &s
	case "tools.inventory":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		c.Tools.Inventory = &b
	case "tools.read_only":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		c.Tools.ReadOnly = &b
	case "audit.enabled":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		c.Audit.Enabled = &b
	case "log.level":
		v := strings.ToLower(value)
		if !slices.Contains(validLevels, v) {
			return fmt.Errorf("%w: log.level must be one of %v", ErrInvalidValue, validLevels)
		}
		c.Log.Level = v
	case "log.format":
		v := strings.ToLower(value)
		if !slices.Contains(validFormats, v) {
			return fmt.Errorf("%w: log.format must be one of %v", ErrInvalidValue, validFormats)
		}
		c.Log.Format = v
	case "downloads.dir":
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: downloads.dir must not be empty", ErrInvalidValue)
		}
		c.Downloads.Dir = value
	case "limits.max_page_size":
		n, err := strconv.Atoi(value)
		if err != nil || n < MinMaxPageSize || n > MaxMaxPageSize {
			return fmt.Errorf("%w: limits.max_page_size must be an integer between %d and %d",
				ErrInvalidValue, MinMaxPageSize, MaxMaxPageSize)
		}
		c.Limits.MaxPageSize = &n
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// All returns all configuration values as a map.
func (c *Config) All() map[string]string {
	all := make(map[string]string, len(ValidKeys()))
	for _, k := range ValidKeys() {
		v, _ := c.Get(k)
		all[k] = v
	}
	return all
}

// IsSet returns true if the key has an explicit value (not just defaults).
func (c *Config) IsSet(key string) bool {
	switch key {
	case "http.timeout":
		return c.HTTP.Timeout != nil
	case "tools.inventory":
		return c.Tools.Inventory != nil
	case "tools.read_only":
		return c.Tools.ReadOnly != nil
	case "audit.enabled":
		return c.Audit.Enabled != nil
	case "log.level":
		return c.Log.Level != ""
	case "log.format":
		return c.Log.Format != ""
	case "downloads.dir":
		return c.Downloads.Dir != ""
	case "limits.max_page_size":
		return c.Limits.MaxPageSize != nil
	default:
		return false
	}
}

func parseBool(key, value string) (bool, error) {
	v := strings.ToLower(value)
	if v != "true" && v != "false" {
		return false, fmt.Errorf("%w: %s must be true or false", ErrInvalidValue, key)
	}
	return v == "true", nil
}
