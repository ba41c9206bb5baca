package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/importer"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort           = "8080"
	DefaultMaxUploadBytes = 10 << 20
)

type Config struct {
	Server struct {
		Port        string   `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Admin struct {
		// Token guards bank publishing. Empty disables the admin routes.
		Token string `yaml:"token"`
	} `yaml:"admin"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL                  string `yaml:"ttl"`
		DefaultQuestionCount int    `yaml:"default_question_count"`
	} `yaml:"quiz"`
	Import struct {
		SampleRows int `yaml:"sample_rows"`
		// MinExplanationLength is a pointer so an explicit 0 survives Normalize.
		MinExplanationLength *int  `yaml:"min_explanation_length"`
		MaxUploadBytes       int64 `yaml:"max_upload_bytes"`
	} `yaml:"import"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.Normalize()
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields the defaults.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Config{}
		cfg.Normalize()
		return cfg, nil
	}
	return cfg, err
}

// Normalize fills zero values with defaults. It is the only place the
// service picks its quiz and import defaults.
func (c *Config) Normalize() {
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Quiz.DefaultQuestionCount <= 0 {
		c.Quiz.DefaultQuestionCount = domain.DefaultQuestionCount
	}
	if c.Import.SampleRows <= 0 {
		c.Import.SampleRows = importer.DefaultSampleRows
	}
	if c.Import.MinExplanationLength == nil || *c.Import.MinExplanationLength < 0 {
		n := importer.DefaultMinTextLength
		c.Import.MinExplanationLength = &n
	}
	if c.Import.MaxUploadBytes <= 0 {
		c.Import.MaxUploadBytes = DefaultMaxUploadBytes
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// ImporterOptions is the explanation heuristic tuning from the import section.
func (c Config) ImporterOptions() importer.Options {
	opts := importer.Options{SampleRows: c.Import.SampleRows, MinTextLength: importer.DefaultMinTextLength}
	if c.Import.MinExplanationLength != nil {
		opts.MinTextLength = *c.Import.MinExplanationLength
	}
	return opts
}
