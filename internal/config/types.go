package config

import "time"

type Config struct {
	DNS struct {
		Servers   []string `yaml:"servers"`
		TimeoutMs int      `yaml:"timeout_ms"`
		Retries   int      `yaml:"retries"`
	} `yaml:"dns"`

	HTTP struct {
		TimeoutMs int    `yaml:"timeout_ms"`
		UserAgent string `yaml:"user_agent"`
	} `yaml:"http"`

	Enumeration struct {
		Workers         int      `yaml:"workers"`
		DeadlineSeconds int      `yaml:"deadline_seconds"`
		PageSize        int      `yaml:"page_size"`
		Candidates      []string `yaml:"candidates"` // Empty means use the built-in list
	} `yaml:"enumeration"`

	RateLimit struct {
		Global int `yaml:"global"` // DNS queries per second, 0 disables pacing
		Burst  int `yaml:"burst"`
	} `yaml:"rate_limit"`

	Output struct {
		Format string `yaml:"format"`
		File   string `yaml:"file"`
	} `yaml:"output"`

	Server struct {
		Addr        string   `yaml:"addr"`
		AuthToken   string   `yaml:"auth_token"`
		CORSOrigins []string `yaml:"cors_origins"`
		RateLimit   float64  `yaml:"rate_limit"` // Requests per second per client IP
		RateBurst   int      `yaml:"rate_burst"`
	} `yaml:"server"`

	// Runtime configuration (not from YAML)
	Verbose bool `yaml:"-"`
}

// DNSTimeout is the budget for a single DNS attempt.
func (c *Config) DNSTimeout() time.Duration {
	return time.Duration(c.DNS.TimeoutMs) * time.Millisecond
}

// HTTPTimeout is the budget for a single HTTP status probe.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutMs) * time.Millisecond
}

// Deadline is the overall budget for one enumeration call.
func (c *Config) Deadline() time.Duration {
	return time.Duration(c.Enumeration.DeadlineSeconds) * time.Second
}
