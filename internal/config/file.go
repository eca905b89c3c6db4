package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors the CLI-relevant parts of Config but uses strings for
// durations to keep the TOML friendly.
type FileConfig struct {
	Product      string `toml:"product"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	ReadTimeout  string `toml:"read_timeout"`
	WriteTimeout string `toml:"write_timeout"`
	BaseURL      string `toml:"base_url"`
	Title        string `toml:"title"`
	LogLevel     string `toml:"log_level"`
	LogFormat    string `toml:"log_format"`
	Watch        *bool  `toml:"watch"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path,
// ~/.s1etad/config.toml, or "" when the home directory is not accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".s1etad", "config.toml")
	}
	return ""
}

// FileExists reports whether path names an existing file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Apply copies file values onto cfg, skipping fields whose flags were set
// explicitly (flags win over the file).
func (fc FileConfig) Apply(cfg *Config, changed map[string]bool) error {
	setString := func(flag, v string, dst *string) {
		if v != "" && !changed[flag] {
			*dst = v
		}
	}

	setString("product", fc.Product, &cfg.Product.Path)
	setString("host", fc.Host, &cfg.Server.Host)
	setString("base-url", fc.BaseURL, &cfg.API.BaseURL)
	setString("title", fc.Title, &cfg.API.Title)
	setString("log-level", fc.LogLevel, &cfg.Logging.Level)
	setString("log-format", fc.LogFormat, &cfg.Logging.Format)

	if fc.Port != 0 && !changed["port"] {
		cfg.Server.Port = fc.Port
	}
	if fc.Watch != nil && !changed["watch"] {
		cfg.Product.Watch = *fc.Watch
	}

	if fc.ReadTimeout != "" && !changed["read-timeout"] {
		d, err := time.ParseDuration(fc.ReadTimeout)
		if err != nil {
			return fmt.Errorf("invalid read_timeout: %w", err)
		}
		cfg.Server.ReadTimeout = d
	}
	if fc.WriteTimeout != "" && !changed["write-timeout"] {
		d, err := time.ParseDuration(fc.WriteTimeout)
		if err != nil {
			return fmt.Errorf("invalid write_timeout: %w", err)
		}
		cfg.Server.WriteTimeout = d
	}

	return nil
}
