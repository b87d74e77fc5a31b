// Package config loads and validates the application configuration from
// YAML, with defaults for every setting so a config file is optional.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oss-values/issue-stats/internal/classify"
	"github.com/oss-values/issue-stats/internal/retry"
	"github.com/oss-values/issue-stats/internal/storage"
)

// Config is the root application configuration.
type Config struct {
	GitHub     GitHubConfig
	Retry      RetryConfig
	Classifier ClassifierConfig
	Report     ReportConfig
}

// GitHubConfig configures GitHub API interactions. The token itself comes
// from the GITHUB_TOKEN environment variable or from TokenFile, never from
// the config file.
type GitHubConfig struct {
	TokenFile string
	PageSize  int
	MaxIssues int
	// TableFormat selects the CSV variant written by collect.
	TableFormat string
}

// RetryConfig configures the shared backoff policy.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	Jitter       time.Duration
}

// ClassifierConfig selects and configures the classification strategy.
type ClassifierConfig struct {
	Strategy    string
	GeminiModel string
}

// ReportConfig configures report rendering.
type ReportConfig struct {
	TopContributors int
	TopWords        int
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads configuration from YAML and validates the result.
func Load(reader io.Reader) (*Config, error) {
	if reader == nil {
		return nil, fmt.Errorf("config reader is nil")
	}

	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	var raw rawConfig
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	cfg := raw.toConfig()
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates configuration values.
func (c *Config) Validate() error {
	var errs []string

	if c.GitHub.PageSize < 1 || c.GitHub.PageSize > 100 {
		errs = append(errs, "github.page_size must be between 1 and 100")
	}
	if c.GitHub.MaxIssues < 1 {
		errs = append(errs, "github.max_issues must be > 0")
	}
	if c.GitHub.TableFormat != storage.FormatSummary && c.GitHub.TableFormat != storage.FormatFull {
		errs = append(errs, "github.table_format must be summary or full")
	}
	if c.Retry.MaxRetries < 0 {
		errs = append(errs, "retry.max_retries must be >= 0")
	}
	if c.Retry.InitialDelay <= 0 {
		errs = append(errs, "retry.initial_delay must be > 0")
	}
	if c.Retry.Jitter < 0 {
		errs = append(errs, "retry.jitter must be >= 0")
	}
	if c.Classifier.Strategy != classify.StrategyKeyword && c.Classifier.Strategy != classify.StrategyGemini {
		errs = append(errs, "classifier.strategy must be keyword or gemini")
	}
	if c.Classifier.Strategy == classify.StrategyGemini && c.Classifier.GeminiModel == "" {
		errs = append(errs, "classifier.gemini_model is required when classifier.strategy=gemini")
	}
	if c.Report.TopContributors < 1 {
		errs = append(errs, "report.top_contributors must be > 0")
	}
	if c.Report.TopWords < 1 {
		errs = append(errs, "report.top_words must be > 0")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// RetryPolicy maps the retry settings onto the shared policy type.
func (c *Config) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxRetries:   c.Retry.MaxRetries,
		InitialDelay: c.Retry.InitialDelay,
		Jitter:       c.Retry.Jitter,
	}
}

// ResolveGitHubToken returns the API token from the GITHUB_TOKEN environment
// variable, falling back to the configured token file.
func (c *Config) ResolveGitHubToken() (string, error) {
	if token := strings.TrimSpace(os.Getenv("GITHUB_TOKEN")); token != "" {
		return token, nil
	}
	if c.GitHub.TokenFile != "" {
		raw, err := os.ReadFile(c.GitHub.TokenFile)
		if err != nil {
			return "", fmt.Errorf("read token file: %w", err)
		}
		if token := strings.TrimSpace(string(raw)); token != "" {
			return token, nil
		}
		return "", fmt.Errorf("token file %s is empty", c.GitHub.TokenFile)
	}
	return "", errors.New("GITHUB_TOKEN is not set and no github.token_file is configured")
}

func applyDefaults(cfg *Config) {
	if cfg.GitHub.PageSize == 0 {
		cfg.GitHub.PageSize = 100
	}
	if cfg.GitHub.MaxIssues == 0 {
		cfg.GitHub.MaxIssues = 4000
	}
	if cfg.GitHub.TableFormat == "" {
		cfg.GitHub.TableFormat = storage.FormatFull
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry.MaxRetries = retry.Default().MaxRetries
	}
	if cfg.Retry.InitialDelay == 0 {
		cfg.Retry.InitialDelay = retry.Default().InitialDelay
	}
	if cfg.Retry.Jitter == 0 {
		cfg.Retry.Jitter = retry.Default().Jitter
	}
	if cfg.Classifier.Strategy == "" {
		cfg.Classifier.Strategy = classify.StrategyKeyword
	}
	if cfg.Classifier.GeminiModel == "" {
		cfg.Classifier.GeminiModel = "gemini-2.0-flash"
	}
	if cfg.Report.TopContributors == 0 {
		cfg.Report.TopContributors = 30
	}
	if cfg.Report.TopWords == 0 {
		cfg.Report.TopWords = 10
	}
}

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	if value == nil || value.Kind == 0 || strings.TrimSpace(value.Value) == "" {
		d.Duration = 0
		return nil
	}

	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("decode duration: %w", err)
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

type rawConfig struct {
	GitHub     rawGitHub     `yaml:"github"`
	Retry      rawRetry      `yaml:"retry"`
	Classifier rawClassifier `yaml:"classifier"`
	Report     rawReport     `yaml:"report"`
}

type rawGitHub struct {
	TokenFile   string `yaml:"token_file"`
	PageSize    int    `yaml:"page_size"`
	MaxIssues   int    `yaml:"max_issues"`
	TableFormat string `yaml:"table_format"`
}

type rawRetry struct {
	MaxRetries   int      `yaml:"max_retries"`
	InitialDelay duration `yaml:"initial_delay"`
	Jitter       duration `yaml:"jitter"`
}

type rawClassifier struct {
	Strategy    string `yaml:"strategy"`
	GeminiModel string `yaml:"gemini_model"`
}

type rawReport struct {
	TopContributors int `yaml:"top_contributors"`
	TopWords        int `yaml:"top_words"`
}

func (r rawConfig) toConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			TokenFile:   r.GitHub.TokenFile,
			PageSize:    r.GitHub.PageSize,
			MaxIssues:   r.GitHub.MaxIssues,
			TableFormat: r.GitHub.TableFormat,
		},
		Retry: RetryConfig{
			MaxRetries:   r.Retry.MaxRetries,
			InitialDelay: r.Retry.InitialDelay.Duration,
			Jitter:       r.Retry.Jitter.Duration,
		},
		Classifier: ClassifierConfig{
			Strategy:    r.Classifier.Strategy,
			GeminiModel: r.Classifier.GeminiModel,
		},
		Report: ReportConfig{
			TopContributors: r.Report.TopContributors,
			TopWords:        r.Report.TopWords,
		},
	}
}
