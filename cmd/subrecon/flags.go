package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/resistanceisuseless/subrecon/internal/config"
)

const envPrefix = "SUBRECON"

// Flags holds command line values that do not live in the config file.
// Settings that do are read back through viper so SUBRECON_* environment
// variables work as well.
type Flags struct {
	// Global
	Config  string
	Profile string
	Verbose bool

	// Enumeration
	Domain     string
	Subdomains []string
	Wordlist   string
	Page       int
	PageSize   int
	Progress   bool
	Summary    bool
}

func (f *Flags) registerPersistent(fs *pflag.FlagSet) {
	fs.StringVarP(&f.Config, "config", "c", "", "Configuration file path")
	fs.StringVar(&f.Profile, "profile", "", "Pacing profile (stealth, normal, aggressive)")
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "Verbose output")
	fs.Int("workers", 0, "Concurrent probes")
	fs.Int("deadline", 0, "Overall enumeration deadline in seconds")
	fs.Int("rate", 0, "DNS queries per second (0 keeps the config value)")
	fs.StringSlice("resolvers", nil, "DNS servers (host:port)")
}

func (f *Flags) registerEnumerate(fs *pflag.FlagSet) {
	fs.StringVarP(&f.Domain, "domain", "d", "", "Target domain to enumerate (required)")
	fs.StringSliceVarP(&f.Subdomains, "subdomains", "s", nil, "Candidate labels to probe instead of the built-in list")
	fs.StringVarP(&f.Wordlist, "wordlist", "w", "", "File with one candidate label per line")
	fs.IntVar(&f.Page, "page", 1, "Result page to print")
	fs.IntVar(&f.PageSize, "page-size", 0, "Findings per page (0 uses the config value)")
	fs.BoolVar(&f.Progress, "progress", false, "Show progress bar")
	fs.BoolVar(&f.Summary, "summary", false, "Print a summary to stderr")
	fs.StringP("output", "o", "", "Output file path (use '-' for stdout)")
	fs.StringP("format", "f", "", fmt.Sprintf("Output format (%s)", strings.Join(config.OutputFormats, ", ")))
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// bindFlags makes every flag visible to viper under its own name.
func bindFlags(v *viper.Viper, sets ...*pflag.FlagSet) {
	for _, fs := range sets {
		fs.VisitAll(func(flag *pflag.Flag) {
			_ = v.BindPFlag(flag.Name, flag)
		})
	}
}

// loadConfig reads the config file, applies the profile and then any
// setting given on the command line or in the environment.
func loadConfig(f *Flags, v *viper.Viper) (*config.Config, error) {
	path := f.Config
	if path == "" {
		path = v.GetString("config")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	profile := f.Profile
	if profile == "" {
		profile = v.GetString("profile")
	}
	if err := cfg.ApplyProfile(profile); err != nil {
		return nil, err
	}

	applyOverrides(cfg, v)
	cfg.Verbose = f.Verbose || v.GetBool("verbose")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config, v *viper.Viper) {
	if v.IsSet("workers") && v.GetInt("workers") > 0 {
		cfg.Enumeration.Workers = v.GetInt("workers")
	}
	if v.IsSet("deadline") && v.GetInt("deadline") > 0 {
		cfg.Enumeration.DeadlineSeconds = v.GetInt("deadline")
	}
	if v.IsSet("rate") && v.GetInt("rate") > 0 {
		cfg.RateLimit.Global = v.GetInt("rate")
		cfg.RateLimit.Burst = v.GetInt("rate")
	}
	if v.IsSet("resolvers") {
		if servers := v.GetStringSlice("resolvers"); len(servers) > 0 {
			cfg.DNS.Servers = servers
		}
	}
	if v.IsSet("output") && v.GetString("output") != "" {
		cfg.Output.File = v.GetString("output")
	}
	if v.IsSet("format") && v.GetString("format") != "" {
		cfg.Output.Format = v.GetString("format")
	}

	// serve
	if v.IsSet("addr") && v.GetString("addr") != "" {
		cfg.Server.Addr = v.GetString("addr")
	}
	if v.IsSet("auth-token") && v.GetString("auth-token") != "" {
		cfg.Server.AuthToken = v.GetString("auth-token")
	}
	if v.IsSet("cors-origin") {
		if origins := v.GetStringSlice("cors-origin"); len(origins) > 0 {
			cfg.Server.CORSOrigins = origins
		}
	}
}
