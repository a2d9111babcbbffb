package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Supported output formats.
var OutputFormats = []string{"json", "csv", "text"}

// Default returns a configuration populated with built-in defaults.
func Default() *Config {
	config := &Config{}

	config.DNS.Servers = []string{"8.8.8.8:53", "1.1.1.1:53", "208.67.222.222:53"}
	config.DNS.TimeoutMs = 2000
	config.DNS.Retries = 1

	config.HTTP.TimeoutMs = 5000
	config.HTTP.UserAgent = "Mozilla/5.0 (compatible; subrecon/1.0)"

	config.Enumeration.Workers = 10
	config.Enumeration.DeadlineSeconds = 30
	config.Enumeration.PageSize = 10

	config.RateLimit.Global = 20
	config.RateLimit.Burst = 20

	config.Output.Format = "json"
	config.Output.File = "-"

	config.Server.Addr = "127.0.0.1:8080"
	config.Server.RateLimit = 2
	config.Server.RateBurst = 5

	return config
}

func Load(configPath string) (*Config, error) {
	config := Default()

	if configPath == "" {
		return config, nil
	}

	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return config, nil
}

// Validate reports the first setting that would make an enumeration unusable.
func (c *Config) Validate() error {
	switch {
	case len(c.DNS.Servers) == 0:
		return errors.New("dns.servers must not be empty")
	case c.DNS.TimeoutMs <= 0:
		return errors.New("dns.timeout_ms must be positive")
	case c.DNS.Retries < 0:
		return errors.New("dns.retries must not be negative")
	case c.HTTP.TimeoutMs <= 0:
		return errors.New("http.timeout_ms must be positive")
	case c.Enumeration.Workers <= 0:
		return errors.New("enumeration.workers must be positive")
	case c.Enumeration.DeadlineSeconds <= 0:
		return errors.New("enumeration.deadline_seconds must be positive")
	case c.Enumeration.PageSize <= 0:
		return errors.New("enumeration.page_size must be positive")
	case c.RateLimit.Global < 0:
		return errors.New("rate_limit.global must not be negative")
	}

	for _, format := range OutputFormats {
		if c.Output.Format == format {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format: %s", c.Output.Format)
}

// DefaultPath is where CreateDefault writes the template.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	return filepath.Join(home, ".config", "subrecon", "config.yaml")
}

// CreateDefault writes the default configuration to path, or to DefaultPath
// when path is empty. An existing file is left untouched.
func CreateDefault(path string) (string, error) {
	if path == "" {
		path = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("failed to render default config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}

	return path, nil
}

// ApplyProfile merges one of the built-in pacing profiles into the config.
func (c *Config) ApplyProfile(profileName string) error {
	if profileName == "" {
		return nil
	}

	profile, ok := profiles[profileName]
	if !ok {
		return fmt.Errorf("profile '%s' not found (available: stealth, normal, aggressive)", profileName)
	}

	c.RateLimit.Global = profile.rate
	c.RateLimit.Burst = profile.rate
	c.Enumeration.Workers = profile.workers
	return nil
}

type profile struct {
	rate    int
	workers int
}

var profiles = map[string]profile{
	"stealth":    {rate: 5, workers: 2},
	"normal":     {rate: 20, workers: 10},
	"aggressive": {rate: 100, workers: 20},
}
