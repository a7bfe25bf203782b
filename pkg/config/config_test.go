package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envVars = []string{
	"HLDICT_DICTIONARY_URL", "HLDICT_REQUEST_TIMEOUT", "HLDICT_WORKERS",
	"HLDICT_OUTPUT", "HLDICT_VOCAB_DB", "HLDICT_METRICS_FILE",
	"LOG_LEVEL", "LOG_FORMAT",
}

// isolate clears the variables under test and runs in an empty directory so
// no .env file from the repository is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DictionaryURL != DefaultDictionaryURL {
		t.Errorf("DictionaryURL = %q", cfg.DictionaryURL)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.Workers != 16 {
		t.Errorf("Workers = %d", cfg.Workers)
	}
	if cfg.Output != "dict_table.pdf" {
		t.Errorf("Output = %q", cfg.Output)
	}
	if cfg.VocabDB != "" || cfg.MetricsFile != "" {
		t.Errorf("optional outputs should be off by default: %+v", cfg)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("unexpected log settings %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("HLDICT_DICTIONARY_URL", "http://localhost:9999/entries")
	t.Setenv("HLDICT_REQUEST_TIMEOUT", "1500ms")
	t.Setenv("HLDICT_WORKERS", "4")
	t.Setenv("HLDICT_VOCAB_DB", "vocab.db")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DictionaryURL != "http://localhost:9999/entries" || cfg.RequestTimeout != 1500*time.Millisecond ||
		cfg.Workers != 4 || cfg.VocabDB != "vocab.db" || cfg.LogFormat != "json" {
		t.Fatalf("environment not applied: %+v", cfg)
	}
}

func TestLoadDotEnvFromParent(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("HLDICT_WORKERS=32\nHLDICT_OUTPUT=from_env.pdf\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	child := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(child, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(child)
	t.Cleanup(func() {
		_ = os.Unsetenv("HLDICT_WORKERS")
		_ = os.Unsetenv("HLDICT_OUTPUT")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Workers != 32 || cfg.Output != "from_env.pdf" {
		t.Fatalf(".env not loaded: %+v", cfg)
	}
}

func TestLoadEnvironmentWinsOverDotEnv(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("HLDICT_WORKERS=32\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HLDICT_WORKERS", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Workers != 8 {
		t.Fatalf("expected environment to win, got %d", cfg.Workers)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad timeout", "HLDICT_REQUEST_TIMEOUT", "soon"},
		{"zero timeout", "HLDICT_REQUEST_TIMEOUT", "0s"},
		{"bad workers", "HLDICT_WORKERS", "many"},
		{"too many workers", "HLDICT_WORKERS", "1000"},
		{"zero workers", "HLDICT_WORKERS", "0"},
		{"bad url", "HLDICT_DICTIONARY_URL", "ftp://example.com"},
		{"bad log format", "LOG_FORMAT", "xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.key {
				t.Fatalf("expected field %s, got %s", tt.key, ve.Field)
			}
		})
	}
}
