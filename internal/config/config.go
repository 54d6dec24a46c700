// Package config loads newstran settings. Values come from built-in
// defaults, then an optional newstran.yaml, then NEWSTRAN_* environment
// variables; command flags override all three.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/valpere/newstran/internal/chunker"
	"github.com/valpere/newstran/internal/fetcher"
	"github.com/valpere/newstran/internal/glossary"
	"github.com/valpere/newstran/internal/pipeline"
	"github.com/valpere/newstran/internal/reconciler"
	"github.com/valpere/newstran/internal/translator"
)

type Config struct {
	DBPath    string `mapstructure:"db_path"`
	OutputDir string `mapstructure:"output_dir"`

	Fetch    Fetch    `mapstructure:"fetch"`
	Pipeline Pipeline `mapstructure:"pipeline"`
	Services Services `mapstructure:"services"`
}

type Fetch struct {
	// Feeds maps feed name to RSS URL.
	Feeds        map[string]string `mapstructure:"feeds"`
	PerFeedLimit int               `mapstructure:"per_feed_limit"`
	MaxArticles  int               `mapstructure:"max_articles"`
	Timeout      time.Duration     `mapstructure:"timeout"`
	Enrich       bool              `mapstructure:"enrich"`
	UseSamples   bool              `mapstructure:"use_samples"`

	// SkipTargetLanguage drops feed items already written in the
	// pipeline's target language.
	SkipTargetLanguage bool `mapstructure:"skip_target_language"`
}

type Pipeline struct {
	MaxWords       int           `mapstructure:"max_words"`
	OverlapWords   int           `mapstructure:"overlap_words"`
	LeadParagraphs int           `mapstructure:"lead_paragraphs"`
	SeamWindow     int           `mapstructure:"seam_window"`
	Concurrency    int           `mapstructure:"concurrency"`
	CallTimeout    time.Duration `mapstructure:"call_timeout"`
	SourceLang     string        `mapstructure:"source_lang"`
	TargetLang     string        `mapstructure:"target_lang"`

	// Smooth runs the seam coherence pass on multi-chunk articles.
	Smooth bool `mapstructure:"smooth"`
}

type Services struct {
	// Default names the translation service used when no --service
	// flag is given.
	Default string `mapstructure:"default"`

	Anthropic  Anthropic  `mapstructure:"anthropic"`
	Ollama     Ollama     `mapstructure:"ollama"`
	OpenRouter OpenRouter `mapstructure:"openrouter"`

	// GoogleCredentials is the service account file for glossary
	// term suggestions.
	GoogleCredentials string `mapstructure:"google_credentials"`
}

type Anthropic struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type Ollama struct {
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`

	// SmoothModel runs the seam coherence pass. Usually a smaller
	// model than the translation one.
	SmoothModel string `mapstructure:"smooth_model"`
}

type OpenRouter struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// Load reads the configuration. An explicit path must exist; otherwise
// newstran.yaml is searched for in the working directory and
// ~/.config/newstran, and a missing file leaves defaults in force.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("newstran")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/newstran")
	}

	v.SetEnvPrefix("NEWSTRAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_path", "./data/newstran.db")
	v.SetDefault("output_dir", "./output")

	v.SetDefault("fetch.feeds", fetcher.DefaultFeeds)
	v.SetDefault("fetch.per_feed_limit", fetcher.DefaultPerFeedLimit)
	v.SetDefault("fetch.max_articles", fetcher.DefaultMaxArticles)
	v.SetDefault("fetch.timeout", fetcher.DefaultTimeout)
	v.SetDefault("fetch.enrich", true)
	v.SetDefault("fetch.use_samples", true)
	v.SetDefault("fetch.skip_target_language", true)

	v.SetDefault("pipeline.max_words", chunker.DefaultMaxWords)
	v.SetDefault("pipeline.overlap_words", chunker.DefaultOverlapWords)
	v.SetDefault("pipeline.lead_paragraphs", glossary.DefaultLeadParagraphs)
	v.SetDefault("pipeline.seam_window", reconciler.DefaultSeamWindowWords)
	v.SetDefault("pipeline.concurrency", pipeline.DefaultConcurrency)
	v.SetDefault("pipeline.call_timeout", pipeline.DefaultCallTimeout)
	v.SetDefault("pipeline.source_lang", "en")
	v.SetDefault("pipeline.target_lang", "ko")
	v.SetDefault("pipeline.smooth", false)

	v.SetDefault("services.default", "anthropic")
	v.SetDefault("services.anthropic.api_key", "")
	v.SetDefault("services.anthropic.model", translator.DefaultAnthropicModel)
	v.SetDefault("services.anthropic.base_url", "")
	v.SetDefault("services.ollama.base_url", "")
	v.SetDefault("services.ollama.model", translator.DefaultOllamaModel)
	v.SetDefault("services.ollama.smooth_model", translator.DefaultOllamaModel)
	v.SetDefault("services.openrouter.api_key", "")
	v.SetDefault("services.openrouter.model", "")
	v.SetDefault("services.openrouter.base_url", "")
	v.SetDefault("services.google_credentials", "")
}

// Validate rejects settings the pipeline cannot run with. Language
// codes must parse as BCP 47 tags.
func (c *Config) Validate() error {
	if _, err := language.Parse(c.Pipeline.SourceLang); err != nil {
		return fmt.Errorf("invalid source language %q: %w", c.Pipeline.SourceLang, err)
	}
	if _, err := language.Parse(c.Pipeline.TargetLang); err != nil {
		return fmt.Errorf("invalid target language %q: %w", c.Pipeline.TargetLang, err)
	}
	if c.Pipeline.MaxWords <= 0 {
		return fmt.Errorf("pipeline.max_words must be positive, got %d", c.Pipeline.MaxWords)
	}
	if c.Pipeline.OverlapWords < 0 {
		return fmt.Errorf("pipeline.overlap_words must not be negative, got %d", c.Pipeline.OverlapWords)
	}
	switch c.Services.Default {
	case "anthropic", "ollama", "openrouter":
	default:
		return fmt.Errorf("unknown translation service %q", c.Services.Default)
	}
	return nil
}

// FetcherConfig maps the fetch section onto the fetcher package.
func (c *Config) FetcherConfig() fetcher.Config {
	return fetcher.Config{
		Feeds:        c.Fetch.Feeds,
		PerFeedLimit: c.Fetch.PerFeedLimit,
		MaxArticles:  c.Fetch.MaxArticles,
		Timeout:      c.Fetch.Timeout,
		Enrich:       c.Fetch.Enrich,
		UseSamples:   c.Fetch.UseSamples,
	}
}

// PipelineConfig maps the pipeline section onto the engine package.
func (c *Config) PipelineConfig() pipeline.Config {
	return pipeline.Config{
		MaxWords:       c.Pipeline.MaxWords,
		OverlapWords:   c.Pipeline.OverlapWords,
		LeadParagraphs: c.Pipeline.LeadParagraphs,
		CallTimeout:    c.Pipeline.CallTimeout,
		Concurrency:    c.Pipeline.Concurrency,
		SourceLang:     c.Pipeline.SourceLang,
		TargetLang:     c.Pipeline.TargetLang,
	}
}
