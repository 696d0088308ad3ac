// Package config provides configuration handling for obkit
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/sirosfoundation/obkit/pkg/codec"
)

// Config holds the configuration for obkit
type Config struct {
	// InputFile is the badge document, or the directory of documents in
	// batch mode
	InputFile string `yaml:"input" json:"input"`

	// OutputFile is the converted document, or the output directory in batch
	// mode
	OutputFile string `yaml:"output" json:"output"`

	// Target is the badge version to convert to: ob2 or ob3
	Target string `yaml:"target" json:"target"`

	// Format is the output serialisation (json, yaml, cbor). Empty keeps the
	// input's format.
	Format string `yaml:"format" json:"format"`

	// Language is the BCP-47 tag used to order names when sorting
	Language string `yaml:"language" json:"language"`

	// Concurrency bounds parallel work in batch mode
	Concurrency int `yaml:"concurrency" json:"concurrency"`

	// Strict treats validation warnings as failures
	Strict bool `yaml:"strict" json:"strict"`

	// RenderNarrative adds HTML renderings of criteria narratives
	RenderNarrative bool `yaml:"render_narrative" json:"render_narrative"`

	// MetricsFile is where batch runs write Prometheus metrics
	MetricsFile string `yaml:"metrics_file" json:"metrics_file"`

	// History is the number of commits listed per file in the batch index
	History int `yaml:"history" json:"history"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level" json:"log_level"`

	// LogFormat is text or json
	LogFormat string `yaml:"log_format" json:"log_format"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Target:      "ob3",
		Language:    "en-US",
		Concurrency: 4,
		History:     5,
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read file %s: %w", path, err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("config: failed to parse YAML: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid for a run over InputFile
func (c *Config) Validate() error {
	if c.InputFile == "" {
		return fmt.Errorf("config: input file is required")
	}

	if _, err := os.Stat(c.InputFile); os.IsNotExist(err) {
		return fmt.Errorf("config: input file does not exist: %s", c.InputFile)
	}

	return c.ValidateSettings()
}

// ValidateSettings checks every setting except the input
func (c *Config) ValidateSettings() error {
	switch strings.ToLower(c.Target) {
	case "", "ob2", "ob3":
	default:
		return fmt.Errorf("config: unknown target %q (available: ob2, ob3)", c.Target)
	}

	if c.Format != "" {
		if _, err := codec.ParseFormat(c.Format); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}

	if _, err := c.LanguageTag(); err != nil {
		return err
	}

	if c.Concurrency < 0 {
		return fmt.Errorf("config: concurrency must not be negative")
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}

	return nil
}

// LanguageTag parses Language, defaulting to English
func (c *Config) LanguageTag() (language.Tag, error) {
	if c.Language == "" {
		return language.English, nil
	}
	tag, err := language.Parse(c.Language)
	if err != nil {
		return language.Und, fmt.Errorf("config: invalid language %q: %w", c.Language, err)
	}
	return tag, nil
}

// SlogLevel parses LogLevel
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: invalid log level %q", c.LogLevel)
	}
	return level, nil
}

// GetOutputFile returns the output file path, deriving from input if not
// set: <dir>/<name>.<target>.<ext>, with ext from Format or the input
func (c *Config) GetOutputFile() string {
	if c.OutputFile != "" {
		return c.OutputFile
	}

	base := filepath.Base(c.InputFile)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	dir := filepath.Dir(c.InputFile)

	if f, err := codec.ParseFormat(c.Format); err == nil {
		ext = "." + f.Extension()
	}
	target := strings.ToLower(c.Target)
	if target == "" {
		target = "ob3"
	}

	return filepath.Join(dir, name+"."+target+ext)
}

// SaveToFile saves the configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: failed to write file %s: %w", path, err)
	}

	return nil
}

// Merge merges another config into this one, with the other taking precedence for non-empty values
func (c *Config) Merge(other *Config) {
	if other.InputFile != "" {
		c.InputFile = other.InputFile
	}
	if other.OutputFile != "" {
		c.OutputFile = other.OutputFile
	}
	if other.Target != "" {
		c.Target = other.Target
	}
	if other.Format != "" {
		c.Format = other.Format
	}
	if other.Language != "" {
		c.Language = other.Language
	}
	if other.Concurrency > 0 {
		c.Concurrency = other.Concurrency
	}
	if other.Strict {
		c.Strict = true
	}
	if other.RenderNarrative {
		c.RenderNarrative = true
	}
	if other.MetricsFile != "" {
		c.MetricsFile = other.MetricsFile
	}
	if other.History > 0 {
		c.History = other.History
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
}
