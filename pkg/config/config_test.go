package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/language"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Language != "en-US" {
		t.Errorf("Default language should be en-US, got %s", cfg.Language)
	}
	if cfg.Target != "ob3" {
		t.Errorf("Default target should be ob3, got %s", cfg.Target)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Default concurrency should be 4, got %d", cfg.Concurrency)
	}
	if err := cfg.ValidateSettings(); err != nil {
		t.Errorf("Default settings should be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `input: badges
output: out
target: ob2
format: yaml
language: de-DE
strict: true
render_narrative: true
metrics_file: out/metrics.prom
log_level: debug
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.InputFile != "badges" {
		t.Errorf("InputFile = %s, want badges", cfg.InputFile)
	}
	if cfg.Target != "ob2" {
		t.Errorf("Target = %s, want ob2", cfg.Target)
	}
	if cfg.Format != "yaml" {
		t.Errorf("Format = %s, want yaml", cfg.Format)
	}
	if !cfg.Strict || !cfg.RenderNarrative {
		t.Errorf("Strict and RenderNarrative should be set")
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want the default 4", cfg.Concurrency)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %s, want the default text", cfg.LogFormat)
	}
}

func TestLoadFromFile_NotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/config.yaml")
	if err == nil {
		t.Error("LoadFromFile() should fail for non-existent file")
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("invalid: yaml: content:"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Error("LoadFromFile() should fail for invalid YAML")
	}
}

func TestConfig_Validate(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "badge.json")
	if err := os.WriteFile(testFile, []byte("{}"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "empty input",
			config:  Config{},
			wantErr: true,
		},
		{
			name:    "non-existent input",
			config:  Config{InputFile: "/nonexistent/badge.json"},
			wantErr: true,
		},
		{
			name:   "valid file",
			config: Config{InputFile: testFile},
		},
		{
			name:   "valid directory",
			config: Config{InputFile: tmpDir, Target: "OB2"},
		},
		{
			name:    "unknown target",
			config:  Config{InputFile: testFile, Target: "ob4"},
			wantErr: true,
		},
		{
			name:    "unknown format",
			config:  Config{InputFile: testFile, Format: "xml"},
			wantErr: true,
		},
		{
			name:    "invalid language",
			config:  Config{InputFile: testFile, Language: "not a tag!"},
			wantErr: true,
		},
		{
			name:    "negative concurrency",
			config:  Config{InputFile: testFile, Concurrency: -1},
			wantErr: true,
		},
		{
			name:    "invalid log level",
			config:  Config{InputFile: testFile, LogLevel: "loud"},
			wantErr: true,
		},
		{
			name:    "invalid log format",
			config:  Config{InputFile: testFile, LogFormat: "xml"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetOutputFile(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{
			name: "explicit output",
			config: Config{
				InputFile:  "/path/to/input.json",
				OutputFile: "/path/to/output.json",
			},
			want: "/path/to/output.json",
		},
		{
			name:   "derived from input",
			config: Config{InputFile: "/path/to/badge.json", Target: "ob3"},
			want:   "/path/to/badge.ob3.json",
		},
		{
			name:   "derived with format",
			config: Config{InputFile: "/path/to/badge.json", Target: "OB2", Format: "yml"},
			want:   "/path/to/badge.ob2.yaml",
		},
		{
			name:   "default target",
			config: Config{InputFile: "/path/to/badge.cbor"},
			want:   "/path/to/badge.ob3.cbor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.config.GetOutputFile()
			if got != tt.want {
				t.Errorf("Config.GetOutputFile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_LanguageTag(t *testing.T) {
	cfg := &Config{Language: "sv-SE"}
	tag, err := cfg.LanguageTag()
	if err != nil {
		t.Fatalf("LanguageTag() error = %v", err)
	}
	if base, _ := tag.Base(); base.String() != "sv" {
		t.Errorf("LanguageTag() base = %s, want sv", base)
	}

	tag, err = (&Config{}).LanguageTag()
	if err != nil || tag != language.English {
		t.Errorf("empty language should default to English, got %v, %v", tag, err)
	}
}

func TestConfig_SlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := (&Config{LogLevel: in}).SlogLevel()
		if err != nil {
			t.Errorf("SlogLevel(%q) error = %v", in, err)
		}
		if got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConfig_SaveToFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg := &Config{
		InputFile:   "badges",
		OutputFile:  "out",
		Target:      "ob2",
		Language:    "en-US",
		Concurrency: 8,
		Strict:      true,
	}

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if loaded.InputFile != cfg.InputFile {
		t.Errorf("InputFile mismatch")
	}
	if loaded.Target != cfg.Target {
		t.Errorf("Target mismatch")
	}
	if loaded.Concurrency != 8 || !loaded.Strict {
		t.Errorf("Concurrency or Strict mismatch")
	}
}

func TestConfig_Merge(t *testing.T) {
	base := &Config{
		InputFile:   "badges",
		Language:    "en-US",
		Concurrency: 4,
		Target:      "ob3",
	}

	overlay := &Config{
		OutputFile:  "out",
		Language:    "de-DE",
		Target:      "ob2",
		Strict:      true,
		MetricsFile: "metrics.prom",
	}

	base.Merge(overlay)

	if base.InputFile != "badges" {
		t.Errorf("InputFile should remain badges")
	}
	if base.OutputFile != "out" {
		t.Errorf("OutputFile should be merged")
	}
	if base.Language != "de-DE" {
		t.Errorf("Language should be overridden")
	}
	if base.Target != "ob2" {
		t.Errorf("Target should be overridden")
	}
	if base.Concurrency != 4 {
		t.Errorf("Concurrency should remain 4")
	}
	if !base.Strict {
		t.Errorf("Strict should be true")
	}
	if base.MetricsFile != "metrics.prom" {
		t.Errorf("MetricsFile should be merged")
	}
}
