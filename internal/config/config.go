package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. TEXTMETRICS_WORKERS.
const EnvPrefix = "TEXTMETRICS"

// Config holds the application configuration.
type Config struct {
	Input    string        `yaml:"input" envconfig:"INPUT"`
	Output   string        `yaml:"output" envconfig:"OUTPUT"`
	Workers  int           `yaml:"workers" envconfig:"WORKERS"`
	Database string        `yaml:"database" envconfig:"DATABASE"`
	Lexicon  LexiconConfig `yaml:"lexicon" envconfig:"LEXICON"`
	Fetch    FetchConfig   `yaml:"fetch" envconfig:"FETCH"`
	Cache    CacheConfig   `yaml:"cache" envconfig:"CACHE"`
	Metrics  MetricsConfig `yaml:"metrics" envconfig:"METRICS"`
	Upload   UploadConfig  `yaml:"upload" envconfig:"UPLOAD"`
	Server   ServerConfig  `yaml:"server" envconfig:"SERVER"`
}

// LexiconConfig locates the stopword and sentiment word lists.
type LexiconConfig struct {
	StopwordDir      string   `yaml:"stopword_dir" envconfig:"STOPWORD_DIR"`
	StopwordFiles    []string `yaml:"stopword_files" envconfig:"STOPWORD_FILES"`
	Normalize        bool     `yaml:"normalize" envconfig:"NORMALIZE"`
	Positive         string   `yaml:"positive" envconfig:"POSITIVE"`
	PositiveEncoding string   `yaml:"positive_encoding" envconfig:"POSITIVE_ENCODING"`
	Negative         string   `yaml:"negative" envconfig:"NEGATIVE"`
	NegativeEncoding string   `yaml:"negative_encoding" envconfig:"NEGATIVE_ENCODING"`
	English          string   `yaml:"english" envconfig:"ENGLISH"`
	Match            string   `yaml:"match" envconfig:"MATCH"`
}

// FetchConfig controls article download and extraction.
type FetchConfig struct {
	Timeout         time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	UserAgent       string        `yaml:"user_agent" envconfig:"USER_AGENT"`
	Rate            float64       `yaml:"rate" envconfig:"RATE"`
	Burst           int           `yaml:"burst" envconfig:"BURST"`
	TitleSelector   string        `yaml:"title_selector" envconfig:"TITLE_SELECTOR"`
	ContentSelector string        `yaml:"content_selector" envconfig:"CONTENT_SELECTOR"`
	Readability     bool          `yaml:"readability" envconfig:"READABILITY"`
}

// CacheConfig selects where fetched article text is kept between runs.
type CacheConfig struct {
	Backend       string        `yaml:"backend" envconfig:"BACKEND"`
	Dir           string        `yaml:"dir" envconfig:"DIR"`
	RedisAddr     string        `yaml:"redis_addr" envconfig:"REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" envconfig:"REDIS_DB"`
	TTL           time.Duration `yaml:"ttl" envconfig:"TTL"`
}

// MetricsConfig defines where run metrics are written.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" envconfig:"TEXTFILE"`
}

// UploadConfig defines the S3 destination for finished reports.
type UploadConfig struct {
	Bucket    string `yaml:"bucket" envconfig:"BUCKET"`
	Prefix    string `yaml:"prefix" envconfig:"PREFIX"`
	Region    string `yaml:"region" envconfig:"REGION"`
	Endpoint  string `yaml:"endpoint" envconfig:"ENDPOINT"`
	AccessKey string `yaml:"access_key" envconfig:"ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" envconfig:"SECRET_KEY"`
}

// Enabled reports whether a bucket is configured.
func (u UploadConfig) Enabled() bool {
	return u.Bucket != ""
}

// ServerConfig defines the HTTP API settings.
type ServerConfig struct {
	Port int `yaml:"port" envconfig:"PORT"`
}

// Address returns the listen address for the HTTP API.
func (s ServerConfig) Address() string {
	return fmt.Sprintf(":%d", s.Port)
}

// DefaultStopwordFiles are the domain stopword lists, in load order. The
// auditor list appears twice; loading is a set union so the repeat is
// harmless.
var DefaultStopwordFiles = []string{
	"StopWords_Auditor.txt",
	"StopWords_Auditor.txt",
	"StopWords_DatesandNumbers.txt",
	"StopWords_Generic.txt",
	"StopWords_GenericLong.txt",
	"StopWords_Geographic.txt",
	"StopWords_Names.txt",
}

// DefaultConfigDir returns the default configuration directory (~/.textmetrics).
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".textmetrics"), nil
}

// DefaultConfigPath returns the path to the default config file.
func DefaultConfigPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultConfig returns a Config laid out for a working directory holding
// Input.xlsx and the WordLists tree.
func DefaultConfig() Config {
	files := make([]string, len(DefaultStopwordFiles))
	copy(files, DefaultStopwordFiles)

	return Config{
		Input:   "Input.xlsx",
		Output:  "Output.xlsx",
		Workers: 4,
		Lexicon: LexiconConfig{
			StopwordDir:      filepath.Join("WordLists", "StopWords"),
			StopwordFiles:    files,
			Positive:         filepath.Join("WordLists", "MasterDictionary", "positive-words.txt"),
			PositiveEncoding: "utf-8",
			Negative:         filepath.Join("WordLists", "MasterDictionary", "negative-words.txt"),
			NegativeEncoding: "iso-8859-1",
			English:          "nltk",
			Match:            "exact",
		},
		Fetch: FetchConfig{
			Timeout:         15 * time.Second,
			UserAgent:       "textmetrics/1.0",
			Rate:            2,
			Burst:           1,
			TitleSelector:   "h1",
			ContentSelector: ".td-post-content",
		},
		Cache: CacheConfig{
			Backend: "file",
			Dir:     "TextFiles",
		},
		Server: ServerConfig{
			Port: 8080,
		},
	}
}

// Load reads a config file from disk on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &cfg, nil
}

// Resolve builds the effective configuration: defaults, then the file at
// path (skipped when it does not exist), then TEXTMETRICS_* environment
// variables.
func Resolve(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		loaded, err := Load(path)
		switch {
		case err == nil:
			cfg = *loaded
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides cfg with any TEXTMETRICS_* variables that are set.
func ApplyEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("load environment: %w", err)
	}
	return nil
}

// Validate checks the settings that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	switch strings.ToLower(c.Cache.Backend) {
	case "none", "file", "redis":
	case "sqlite", "postgres":
		if c.Database == "" {
			return fmt.Errorf("cache backend %q needs a database", c.Cache.Backend)
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	switch strings.ToLower(c.Lexicon.Match) {
	case "", "exact", "substring":
	default:
		return fmt.Errorf("unknown stopword match %q", c.Lexicon.Match)
	}
	if c.Fetch.Rate < 0 {
		return fmt.Errorf("fetch rate must not be negative, got %v", c.Fetch.Rate)
	}
	return nil
}

// Save writes the config to disk, creating directories as needed.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}
