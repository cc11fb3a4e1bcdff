// Package config provides reading and writing of rspace-mcp configuration.
//
// Credentials (RSPACE_URL, RSPACE_API_KEY) come from the environment only
// and are never written to disk. Everything else lives in YAML and supports
// both global (~/.rspace-mcp/config.yaml) and local (.rspace-mcp/config.yaml).
// Reading: uses local if it exists, otherwise global.
// Writing: defaults to global, use --local for local.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoConfigPath is returned when the config path cannot be determined.
	ErrNoConfigPath = errors.New("cannot determine config path")
	// ErrUnknownKey is returned when getting/setting an unknown config key.
	ErrUnknownKey = errors.New("unknown config key")
	// ErrInvalidValue is returned when a config value is invalid.
	ErrInvalidValue = errors.New("invalid config value")
)

// DirEnv overrides the global config directory. Tests point it at a temp dir.
const DirEnv = "RSPACE_MCP_CONFIG_DIR"

// Scope represents the configuration scope (global or local).
type Scope int

const (
	// ScopeGlobal is user-wide config in ~/.rspace-mcp/config.yaml (default)
	ScopeGlobal Scope = iota
	// ScopeLocal is directory-specific config in .rspace-mcp/config.yaml
	ScopeLocal
)

// HTTP holds settings for calls to the RSpace server.
type HTTP struct {
	Timeout *string `yaml:"timeout,omitempty"`
}

// Tools controls which tool groups are registered.
type Tools struct {
	Inventory *bool `yaml:"inventory,omitempty"`
	ReadOnly  *bool `yaml:"read_only,omitempty"`
}

// Audit controls the local invocation log.
type Audit struct {
	Enabled *bool `yaml:"enabled,omitempty"`
}

// Log controls diagnostic logging on stderr.
type Log struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Downloads controls where downloadFile may write.
type Downloads struct {
	Dir string `yaml:"dir,omitempty"`
}

// Limits holds request size limits.
type Limits struct {
	MaxPageSize *int `yaml:"max_page_size,omitempty"`
}

// Defaults applied when not configured.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxPageSize = 200
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultDownloadDir = "."
)

// Validation bounds for configuration values.
const (
	MinTimeout     = time.Second
	MaxTimeout     = 10 * time.Minute
	MinMaxPageSize = 1
	MaxMaxPageSize = 200
)

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"text", "json"}
)

// Config contains non-secret configuration for rspace-mcp.
type Config struct {
	HTTP      HTTP      `yaml:"http,omitempty"`
	Tools     Tools     `yaml:"tools,omitempty"`
	Audit     Audit     `yaml:"audit,omitempty"`
	Log       Log       `yaml:"log,omitempty"`
	Downloads Downloads `yaml:"downloads,omitempty"`
	Limits    Limits    `yaml:"limits,omitempty"`

	// path is the file this config was loaded from (for Save)
	path  string
	scope Scope
}

// Validate checks that all configured values are within acceptable bounds.
// Returns nil if all values are valid or not set (defaults will be used).
func (c *Config) Validate() error {
	if c.HTTP.Timeout != nil {
		d, err := time.ParseDuration(*c.HTTP.Timeout)
		if err != nil {
			return fmt.Errorf("%w: http.timeout: %w", ErrInvalidValue, err)
		}
		if d < MinTimeout || d > MaxTimeout {
			return fmt.Errorf("%w: http.timeout must be between %s and %s, got %s",
				ErrInvalidValue, MinTimeout, MaxTimeout, d)
		}
	}
	if c.Limits.MaxPageSize != nil {
		v := *c.Limits.MaxPageSize
		if v < MinMaxPageSize || v > MaxMaxPageSize {
			return fmt.Errorf("%w: max_page_size must be between %d and %d, got %d",
				ErrInvalidValue, MinMaxPageSize, MaxMaxPageSize, v)
		}
	}
	if c.Log.Level != "" && !slices.Contains(validLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("%w: log.level must be one of %v, got %q", ErrInvalidValue, validLevels, c.Log.Level)
	}
	if c.Log.Format != "" && !slices.Contains(validFormats, strings.ToLower(c.Log.Format)) {
		return fmt.Errorf("%w: log.format must be one of %v, got %q", ErrInvalidValue, validFormats, c.Log.Format)
	}
	return nil
}

// Timeout returns the per-call deadline for RSpace requests (defaults to 30s).
func (c *Config) Timeout() time.Duration {
	if c.HTTP.Timeout == nil {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(*c.HTTP.Timeout)
	if err != nil {
		return DefaultTimeout
	}
	return d
}

// InventoryEnabled returns whether inventory tools are registered (defaults to true).
func (c *Config) InventoryEnabled() bool {
	if c.Tools.Inventory == nil {
		return true
	}
	return *c.Tools.Inventory
}

// ReadOnly returns whether only non-mutating tools are registered (defaults to false).
func (c *Config) ReadOnly() bool {
	if c.Tools.ReadOnly == nil {
		return false
	}
	return *c.Tools.ReadOnly
}

// AuditEnabled returns whether tool calls are recorded locally (defaults to true).
func (c *Config) AuditEnabled() bool {
	if c.Audit.Enabled == nil {
		return true
	}
	return *c.Audit.Enabled
}

// LogLevel returns the slog level for diagnostic output.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat returns "text" or "json".
func (c *Config) LogFormat() string {
	if c.Log.Format == "" {
		return DefaultLogFormat
	}
	return strings.ToLower(c.Log.Format)
}

// DownloadDir returns the directory downloadFile writes into.
func (c *Config) DownloadDir() string {
	if c.Downloads.Dir == "" {
		return DefaultDownloadDir
	}
	return c.Downloads.Dir
}

// MaxPageSize returns the largest page a listing tool may request (defaults to 200).
func (c *Config) MaxPageSize() int {
	if c.Limits.MaxPageSize == nil {
		return DefaultMaxPageSize
	}
	return *c.Limits.MaxPageSize
}

// ApplyEnv overlays RSPACE_TIMEOUT and LOG_LEVEL onto the loaded config.
// Invalid values are reported rather than silently ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("RSPACE_TIMEOUT"); v != "" {
		if err := c.Set("http.timeout", v); err != nil {
			return fmt.Errorf("RSPACE_TIMEOUT: %w", err)
		}
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		if err := c.Set("log.level", v); err != nil {
			return fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}
	return nil
}

// LocalPath returns the path to the local (working directory) config file.
func LocalPath() string {
	return filepath.Join(".rspace-mcp", "config.yaml")
}

// GlobalPath returns the path to the global (user) config file: ~/.rspace-mcp/config.yaml
func GlobalPath() string {
	if dir := os.Getenv(DirEnv); dir != "" {
		return filepath.Join(dir, "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".rspace-mcp", "config.yaml")
}

// Load reads configuration: uses local if it exists, otherwise global.
func Load() (*Config, error) {
	if _, err := os.Stat(LocalPath()); err == nil {
		return LoadScope(ScopeLocal)
	}
	return LoadScope(ScopeGlobal)
}

// LoadScope reads configuration from a specific scope.
func LoadScope(scope Scope) (*Config, error) {
	path := pathForScope(scope)
	if path == "" {
		return &Config{scope: scope}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{path: path, scope: scope}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("malformed config file %s: %w\n\nTo fix: edit the file to correct the YAML syntax, or delete it to use defaults", path, err)
	}
	cfg.path = path
	cfg.scope = scope

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Scope returns which scope this config was loaded from.
func (c *Config) Scope() Scope {
	return c.scope
}

// Path returns the file this config was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// Save writes the configuration to its original location.
func (c *Config) Save() error {
	if c.path == "" {
		c.path = pathForScope(c.scope)
	}
	if c.path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(c.path)
}

// saveToPath writes configuration to a specific filesystem path.
func (c *Config) saveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func pathForScope(scope Scope) string {
	switch scope {
	case ScopeLocal:
		return LocalPath()
	case ScopeGlobal:
		return GlobalPath()
	default:
		return ""
	}
}
