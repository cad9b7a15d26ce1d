// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Duration is a time.Duration that reads from JSON as "30s" or as seconds.
type Duration time.Duration

// UnmarshalJSON accepts a Go duration string or a number of seconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := parseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}
	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\" or a number of seconds")
	}
	*d = Duration(time.Duration(secs * float64(time.Second)))
	return nil
}

// MarshalJSON writes the duration as a Go duration string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// parseDuration accepts "45s", "1m" or a bare number of seconds.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}

// Config holds server and CLI settings. Values come from defaults, an
// optional JSON file and the environment, in that order of precedence.
type Config struct {
	// Server
	Port string `json:"port,omitempty"`

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // postgres:// URL or SQLite path
	RedisURL    string `json:"redis_url,omitempty"`    // search and page cache; optional

	// Providers
	APIKey             string `json:"api_key,omitempty"`               // Gemini API key
	GoogleSearchAPIKey string `json:"google_search_api_key,omitempty"` // Custom Search key
	GoogleSearchCX     string `json:"google_search_cx,omitempty"`      // Custom Search engine ID

	// Limits
	LLMTimeout           Duration `json:"llm_timeout,omitempty"`
	SearchTimeout        Duration `json:"search_timeout,omitempty"`
	SearchCacheTTL       Duration `json:"search_cache_ttl,omitempty"`
	SearchQPS            float64  `json:"search_qps,omitempty"`
	QuestionsPerCategory int      `json:"questions_per_category,omitempty"`
	MaxSkills            int      `json:"max_skills,omitempty"`

	// Behavior
	CalibrateTechnical bool `json:"calibrate_technical,omitempty"` // Generate technical questions from extracted samples
	UseBrowser         bool `json:"use_browser,omitempty"`         // Use headless browser for SPA job pages
	Verbose            bool `json:"verbose,omitempty"`             // Print detailed debug information
	AllowPrivateURLs   bool `json:"allow_private_urls,omitempty"`  // Let job URLs point at loopback and private networks
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:                 "8000",
		DatabaseURL:          "interview_prep.db",
		LLMTimeout:           Duration(60 * time.Second),
		SearchTimeout:        Duration(10 * time.Second),
		SearchCacheTTL:       Duration(24 * time.Hour),
		SearchQPS:            5,
		QuestionsPerCategory: 4,
		MaxSkills:            4,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overlays environment variables read through lookup onto c.
// Pass os.LookupEnv in production.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("PORT", &c.Port)
	str("DATABASE_URL", &c.DatabaseURL)
	str("REDIS_URL", &c.RedisURL)
	str("GEMINI_API_KEY", &c.APIKey)
	str("GOOGLE_SEARCH_API_KEY", &c.GoogleSearchAPIKey)
	str("GOOGLE_SEARCH_CX", &c.GoogleSearchCX)

	for key, dst := range map[string]*Duration{
		"LLM_TIMEOUT":      &c.LLMTimeout,
		"SEARCH_TIMEOUT":   &c.SearchTimeout,
		"SEARCH_CACHE_TTL": &c.SearchCacheTTL,
	} {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			d, err := parseDuration(v)
			if err != nil {
				return fmt.Errorf("config error: %s: %w", key, err)
			}
			*dst = Duration(d)
		}
	}

	if v, ok := lookup("QUESTIONS_PER_CATEGORY"); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config error: QUESTIONS_PER_CATEGORY: %w", err)
		}
		c.QuestionsPerCategory = n
	}

	for key, dst := range map[string]*bool{
		"USE_BROWSER":         &c.UseBrowser,
		"VERBOSE":             &c.Verbose,
		"CALIBRATE_TECHNICAL": &c.CalibrateTechnical,
		"ALLOW_PRIVATE_URLS":  &c.AllowPrivateURLs,
	} {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("config error: %s: %w", key, err)
			}
			*dst = b
		}
	}
	return nil
}

// Validate checks that the configuration has valid values.
// Missing provider keys are allowed; the affected features degrade.
func (c *Config) Validate() error {
	if c.Port != "" {
		port, err := strconv.Atoi(c.Port)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("config error: 'port' must be a number between 1 and 65535")
		}
	}
	if c.QuestionsPerCategory < 0 || c.QuestionsPerCategory > 10 {
		return fmt.Errorf("config error: 'questions_per_category' must be between 0 and 10")
	}
	if c.MaxSkills < 0 {
		return fmt.Errorf("config error: 'max_skills' must be non-negative")
	}
	if c.SearchQPS < 0 {
		return fmt.Errorf("config error: 'search_qps' must be non-negative")
	}
	for name, d := range map[string]Duration{
		"llm_timeout":      c.LLMTimeout,
		"search_timeout":   c.SearchTimeout,
		"search_cache_ttl": c.SearchCacheTTL,
	} {
		if d < 0 {
			return fmt.Errorf("config error: '%s' must be non-negative", name)
		}
	}
	if (c.GoogleSearchAPIKey == "") != (c.GoogleSearchCX == "") {
		return fmt.Errorf("config error: 'google_search_api_key' and 'google_search_cx' must be set together")
	}
	return nil
}

// SearchEnabled reports whether web evidence gathering is configured.
func (c *Config) SearchEnabled() bool {
	return c.GoogleSearchAPIKey != "" && c.GoogleSearchCX != ""
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	for _, f := range []struct{ dst, def *string }{
		{&result.Port, &defaults.Port},
		{&result.DatabaseURL, &defaults.DatabaseURL},
		{&result.RedisURL, &defaults.RedisURL},
		{&result.APIKey, &defaults.APIKey},
		{&result.GoogleSearchAPIKey, &defaults.GoogleSearchAPIKey},
		{&result.GoogleSearchCX, &defaults.GoogleSearchCX},
	} {
		if *f.dst == "" {
			*f.dst = *f.def
		}
	}

	if result.LLMTimeout == 0 {
		result.LLMTimeout = defaults.LLMTimeout
	}
	if result.SearchTimeout == 0 {
		result.SearchTimeout = defaults.SearchTimeout
	}
	if result.SearchCacheTTL == 0 {
		result.SearchCacheTTL = defaults.SearchCacheTTL
	}
	if result.SearchQPS == 0 {
		result.SearchQPS = defaults.SearchQPS
	}
	if result.QuestionsPerCategory == 0 {
		result.QuestionsPerCategory = defaults.QuestionsPerCategory
	}
	if result.MaxSkills == 0 {
		result.MaxSkills = defaults.MaxSkills
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (env and CLI flags should always win for bools)

	return result
}

// Load builds the effective configuration: the file at path (optional),
// merged over Default, then the environment.
func Load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	merged := cfg.MergeWithDefaults(Default())
	if err := merged.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}
