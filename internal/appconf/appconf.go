// Package appconf holds the runtime configuration for the fleet console.
// Values come from command-line flags, optionally overridden by a YAML
// config file validated with go-playground/validator.
package appconf

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment of the console.
type Environment int

const (
	Development Environment = iota
	Staging
	Production
)

func (e Environment) String() string {
	switch e {
	case Production:
		return "production"
	case Staging:
		return "staging"
	default:
		return "development"
	}
}

// EnvFromString parses an environment name, defaulting to Development
// for anything unrecognized.
func EnvFromString(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod":
		return Production
	case "staging":
		return Staging
	default:
		return Development
	}
}

// Config holds all configuration settings for the console process.
type Config struct {
	Env             Environment
	Port            int
	UpstreamBaseURL string
	PollInterval    time.Duration
	StaleThreshold  time.Duration
	RateLimit       int
	ApiKeys         []string
	HistoryDBPath   string
	GTFSStaticPath  string
	Verbose         bool
}

// FileConfig is the YAML shape of an optional config file. Zero values
// mean "keep the flag-provided value".
type FileConfig struct {
	Env             string  `yaml:"env" validate:"omitempty,oneof=development staging production"`
	Port            int     `yaml:"port" validate:"omitempty,gt=0,lte=65535"`
	UpstreamBaseURL string  `yaml:"upstreamBaseURL" validate:"omitempty,url"`
	PollIntervalSec float64 `yaml:"pollIntervalSec" validate:"omitempty,gt=0"`
	StaleSec        float64 `yaml:"staleSec" validate:"omitempty,gt=0"`
	RateLimit       int     `yaml:"rateLimit" validate:"omitempty,gte=0"`
	ApiKeys         string  `yaml:"apiKeys"`
	HistoryDBPath   string  `yaml:"historyDBPath"`
	GTFSStaticPath  string  `yaml:"gtfsStaticPath"`
}

// LoadFile merges settings from a YAML file into cfg. A missing file is an
// error; an empty path is a no-op.
func LoadFile(path string, cfg *Config) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if err := validator.New().Struct(fc); err != nil {
		return fmt.Errorf("invalid config file: %w", err)
	}

	if fc.Env != "" {
		cfg.Env = EnvFromString(fc.Env)
	}
	if fc.Port > 0 {
		cfg.Port = fc.Port
	}
	if fc.UpstreamBaseURL != "" {
		cfg.UpstreamBaseURL = fc.UpstreamBaseURL
	}
	if fc.PollIntervalSec > 0 {
		cfg.PollInterval = time.Duration(fc.PollIntervalSec * float64(time.Second))
	}
	if fc.StaleSec > 0 {
		cfg.StaleThreshold = time.Duration(fc.StaleSec * float64(time.Second))
	}
	if fc.RateLimit > 0 {
		cfg.RateLimit = fc.RateLimit
	}
	if fc.ApiKeys != "" {
		cfg.ApiKeys = SplitAPIKeys(fc.ApiKeys)
	}
	if fc.HistoryDBPath != "" {
		cfg.HistoryDBPath = fc.HistoryDBPath
	}
	if fc.GTFSStaticPath != "" {
		cfg.GTFSStaticPath = fc.GTFSStaticPath
	}

	return nil
}

// SplitAPIKeys parses a comma-separated API key list, trimming whitespace
// and dropping empty entries.
func SplitAPIKeys(raw string) []string {
	var keys []string
	for _, key := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(key)
		if trimmed != "" {
			keys = append(keys, trimmed)
		}
	}
	return keys
}
