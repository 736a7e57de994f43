package config

import (
	"os"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"diff-editor-server/internal/filesystem"
)

// Defaults for every tunable. The working directory has no default and must
// be supplied explicitly.
const (
	DefaultTransport           = "http"
	DefaultPort                = 8080
	DefaultMaxFileSizeMB       = 10
	DefaultMaxConcurrentOps    = 10
	DefaultOperationTimeoutSec = 30
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "text"
)

// Config holds all configurable values for the server.
type Config struct {
	WorkingDirectory    string `toml:"working_directory"`
	Transport           string `toml:"transport"`
	Port                int    `toml:"port"`
	MaxFileSizeMB       int    `toml:"max_file_size_mb"`
	MaxConcurrentOps    int    `toml:"max_concurrent_ops"`
	OperationTimeoutSec int    `toml:"operation_timeout_sec"`
	LogLevel            string `toml:"log_level"`
	LogFormat           string `toml:"log_format"`
}

// Default returns a Config populated with every default value.
func Default() *Config {
	return &Config{
		Transport:           DefaultTransport,
		Port:                DefaultPort,
		MaxFileSizeMB:       DefaultMaxFileSizeMB,
		MaxConcurrentOps:    DefaultMaxConcurrentOps,
		OperationTimeoutSec: DefaultOperationTimeoutSec,
		LogLevel:            DefaultLogLevel,
		LogFormat:           DefaultLogFormat,
	}
}

// LoadFile overlays values from a TOML file onto c. A missing file is not an
// error, so a bare invocation works without any config on disk.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "could not read config file %s", path)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "could not parse config file %s", path)
	}
	return nil
}

// Validate checks all configuration values, including that the working
// directory exists and accepts writes.
func (c *Config) Validate() error {
	if c.WorkingDirectory == "" {
		return errors.New("working directory is required")
	}
	if err := filesystem.CheckDirectoryIsWritable(c.WorkingDirectory); err != nil {
		return errors.Wrap(err, "working directory check failed")
	}

	if c.Transport != "http" && c.Transport != "stdio" {
		return errors.New("transport must be 'http' or 'stdio'")
	}
	if c.Port < 1024 || c.Port > 65535 {
		return errors.New("port must be between 1024 and 65535")
	}
	if c.MaxFileSizeMB < 1 || c.MaxFileSizeMB > 100 {
		return errors.New("max file size must be between 1 and 100 MB")
	}
	if c.MaxConcurrentOps < 1 || c.MaxConcurrentOps > 100 {
		return errors.New("max concurrent operations must be between 1 and 100")
	}
	if c.OperationTimeoutSec < 1 || c.OperationTimeoutSec > 300 {
		return errors.New("operation timeout must be between 1 and 300 seconds")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("log level must be one of debug, info, warn, error")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return errors.New("log format must be 'text' or 'json'")
	}
	return nil
}
