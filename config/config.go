// Package config manages application configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"ytcomments/internal/httpclient"
	"ytcomments/sink"
	"ytcomments/youtube"
)

// Sentinel errors for configuration problems.
var (
	// ErrMissingCredential indicates no API key was found in any source.
	ErrMissingCredential = errors.New("config: youtube api key not configured")
	// ErrEmptyRoster indicates the input roster has no video ids.
	ErrEmptyRoster = errors.New("config: roster contains no videos")
)

// ConfigError reports an invalid or missing configuration value.
// Use errors.As() to extract the offending field:
//
//	var cfgErr *config.ConfigError
//	if errors.As(err, &cfgErr) {
//		fmt.Printf("bad %s: %v\n", cfgErr.Field, cfgErr.Err)
//	}
type ConfigError struct {
	// Field is the configuration key or input that failed.
	Field string
	// Err is the underlying error that occurred.
	Err error
}

// Error returns a string representation of the config error.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *ConfigError) Unwrap() error { return e.Err }

// Config holds all settings of a comment export run.
type Config struct {
	// APIKey is the YouTube Data API key.
	APIKey string `json:"api_key"`
	// APIKeyFile is read for the key when APIKey is still empty after env.
	APIKeyFile string `json:"api_key_file"`
	// Endpoint overrides the API base URL; empty uses the public API.
	Endpoint string `json:"endpoint"`

	// OutputDir receives timestamped output files.
	OutputDir string `json:"output_dir"`
	// OutputFormat is "csv" or "sqlite".
	OutputFormat string `json:"output_format"`

	// Parts lists the commentThreads resource parts requested.
	Parts []string `json:"parts"`
	// PageSize is maxResults per request (1-100)
	PageSize int64 `json:"page_size"`
	// Order is "relevance" or "time".
	Order string `json:"order"`
	// Mode is "single" or "exhaustive".
	Mode string `json:"mode"`

	// VideoDelay is the pause between two videos of a roster.
	VideoDelay time.Duration `json:"video_delay"`
	// RequestTimeout bounds each API call.
	RequestTimeout time.Duration `json:"request_timeout"`
	// UserAgent is sent with every API call.
	UserAgent string `json:"user_agent"`

	// LogLevel is a zap level name.
	LogLevel string `json:"log_level"`
	// MetricsFile, when set, receives a Prometheus textfile at the end of a run.
	MetricsFile string `json:"metrics_file"`
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		APIKeyFile:     ".api_key",
		OutputDir:      filepath.Join("data", "output"),
		OutputFormat:   string(sink.FormatCSV),
		Parts:          append([]string(nil), youtube.DefaultParts...),
		PageSize:       youtube.MaxPageSize,
		Order:          string(youtube.OrderRelevance),
		Mode:           string(youtube.ModeSingle),
		VideoDelay:     5 * time.Second,
		RequestTimeout: 30 * time.Second,
		UserAgent:      httpclient.DefaultConfig().UserAgent,
		LogLevel:       "info",
	}
}

// Load loads configuration from the config file, .env, environment
// variables and the key file, then validates it.
// Priority: env vars > .env > config file > defaults; the key file is
// consulted only when no other source set the key.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Read loads configuration from the same sources as Load without
// validating it, so callers can apply overrides (such as command-line
// flags) before calling Validate.
func Read() (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.loadFromFile(); err != nil {
		// Config file is optional
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	dotenv, err := godotenv.Read()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.loadFromEnv(envLookup(dotenv)); err != nil {
		return nil, err
	}

	if err := cfg.loadKeyFile(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile attempts to load config from ytcomments.json in current directory or home directory.
func (c *Config) loadFromFile() error {
	paths := []string{
		"ytcomments.json",
		filepath.Join(os.Getenv("HOME"), ".config", "ytcomments", "ytcomments.json"),
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}

	return os.ErrNotExist
}

// envLookup prefers the process environment over values read from .env.
func envLookup(dotenv map[string]string) func(string) string {
	return func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	}
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv(getenv func(string) string) error {
	if v := getenv("YOUTUBE_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := getenv("YTCOMMENTS_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := getenv("YTCOMMENTS_API_KEY_FILE"); v != "" {
		c.APIKeyFile = v
	}
	if v := getenv("YTCOMMENTS_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := getenv("YTCOMMENTS_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := getenv("YTCOMMENTS_OUTPUT_FORMAT"); v != "" {
		c.OutputFormat = v
	}
	if v := getenv("YTCOMMENTS_PARTS"); v != "" {
		c.Parts = splitList(v)
	}
	if v := getenv("YTCOMMENTS_PAGE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return &ConfigError{Field: "YTCOMMENTS_PAGE_SIZE", Err: err}
		}
		c.PageSize = n
	}
	if v := getenv("YTCOMMENTS_ORDER"); v != "" {
		c.Order = v
	}
	if v := getenv("YTCOMMENTS_MODE"); v != "" {
		c.Mode = v
	}
	if v := getenv("YTCOMMENTS_VIDEO_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &ConfigError{Field: "YTCOMMENTS_VIDEO_DELAY", Err: err}
		}
		c.VideoDelay = d
	}
	if v := getenv("YTCOMMENTS_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &ConfigError{Field: "YTCOMMENTS_REQUEST_TIMEOUT", Err: err}
		}
		c.RequestTimeout = d
	}
	if v := getenv("YTCOMMENTS_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := getenv("YTCOMMENTS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("YTCOMMENTS_METRICS_FILE"); v != "" {
		c.MetricsFile = v
	}
	return nil
}

// loadKeyFile reads APIKeyFile when no other source provided a key.
// A missing key file is not an error here; Validate reports the missing key.
func (c *Config) loadKeyFile() error {
	if c.APIKey != "" || c.APIKeyFile == "" {
		return nil
	}
	data, err := os.ReadFile(c.APIKeyFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &ConfigError{Field: "api_key_file", Err: err}
	}
	c.APIKey = strings.TrimSpace(string(data))
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks that configuration values are valid and consistent.
// It returns a *ConfigError naming the first invalid field.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return &ConfigError{Field: "api_key", Err: ErrMissingCredential}
	}
	if _, err := sink.ParseFormat(c.OutputFormat); err != nil {
		return &ConfigError{Field: "output_format", Err: err}
	}
	if _, err := c.FetchOptions(); err != nil {
		return err
	}
	if c.VideoDelay < 0 {
		return &ConfigError{Field: "video_delay", Err: errors.New("must be non-negative")}
	}
	if c.RequestTimeout <= 0 {
		return &ConfigError{Field: "request_timeout", Err: errors.New("must be positive")}
	}
	return nil
}

// FetchOptions converts the listing settings into youtube.FetchOptions.
func (c *Config) FetchOptions() (youtube.FetchOptions, error) {
	order, err := youtube.ParseOrder(c.Order)
	if err != nil {
		return youtube.FetchOptions{}, &ConfigError{Field: "order", Err: err}
	}
	mode, err := youtube.ParseMode(c.Mode)
	if err != nil {
		return youtube.FetchOptions{}, &ConfigError{Field: "mode", Err: err}
	}
	opts := youtube.FetchOptions{
		Parts:    c.Parts,
		PageSize: c.PageSize,
		Order:    order,
		Mode:     mode,
	}
	if err := opts.Validate(); err != nil {
		return youtube.FetchOptions{}, &ConfigError{Field: "page_size", Err: err}
	}
	return opts, nil
}

// Format returns the parsed output format.
func (c *Config) Format() sink.Format {
	f, err := sink.ParseFormat(c.OutputFormat)
	if err != nil {
		return sink.FormatCSV
	}
	return f
}

// HTTPConfig returns the client settings for the YouTube lister.
func (c *Config) HTTPConfig() *httpclient.Config {
	hc := httpclient.DefaultConfig()
	hc.Timeout = c.RequestTimeout
	if c.UserAgent != "" {
		hc.UserAgent = c.UserAgent
	}
	return hc
}

// OutputPath returns the timestamped output file for a run started at now,
// e.g. data/output/2024-01-31-09h-05m-youtube-comments.csv.
func (c *Config) OutputPath(now time.Time) string {
	name := now.Format("2006-01-02-15h-04m") + "-youtube-comments" + c.Format().Extension()
	return filepath.Join(c.OutputDir, name)
}
