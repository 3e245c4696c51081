// Package config_test tests configuration loading and validation
package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"assignmate/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfigFile(t, "ai:\n  gemini:\n    api_key: test-key\n"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Logger.Level != config.DefaultLogLevel {
		t.Errorf("Logger.Level = %q, want %q", cfg.Logger.Level, config.DefaultLogLevel)
	}
	if cfg.Server.Addr != config.DefaultServerAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, config.DefaultServerAddr)
	}
	if cfg.AI.Backend != "gemini" {
		t.Errorf("AI.Backend = %q, want %q", cfg.AI.Backend, "gemini")
	}
	if cfg.AI.Gemini.ModelName != config.DefaultGeminiModelName {
		t.Errorf("AI.Gemini.ModelName = %q, want %q", cfg.AI.Gemini.ModelName, config.DefaultGeminiModelName)
	}
	if cfg.AI.Instruction == "" {
		t.Error("AI.Instruction should default to the built-in instruction")
	}
	if cfg.Uploads.MaxFileSize != config.DefaultUploadMaxFileSize {
		t.Errorf("Uploads.MaxFileSize = %d, want %d", cfg.Uploads.MaxFileSize, config.DefaultUploadMaxFileSize)
	}
	if len(cfg.Uploads.AllowedExtensions) == 0 {
		t.Error("Uploads.AllowedExtensions should have defaults")
	}
	if len(cfg.Scheduler.Tasks) == 0 {
		t.Error("Scheduler.Tasks should have defaults")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	content := `
logger:
  level: debug
server:
  addr: ":9999"
ai:
  gemini:
    api_key: test-key
uploads:
  preview_rows: 10
`
	cfg, err := config.Load(writeConfigFile(t, content))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Logger.Level != "debug" {
		t.Errorf("Logger.Level = %q, want %q", cfg.Logger.Level, "debug")
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":9999")
	}
	if cfg.Uploads.PreviewRows != 10 {
		t.Errorf("Uploads.PreviewRows = %d, want 10", cfg.Uploads.PreviewRows)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	// No config file and no API key set: validation must reject the
	// default gemini backend without credentials.
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Load should fail when the default backend has no API key")
	}
	if !strings.Contains(err.Error(), "api_key") {
		t.Errorf("error = %v, want mention of api_key", err)
	}
}

func TestLoadRejectsInvalidBackend(t *testing.T) {
	_, err := config.Load(writeConfigFile(t, "ai:\n  backend: watson\n"))
	if err == nil {
		t.Fatal("Load should reject unknown ai.backend")
	}
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	content := "logger:\n  level: verbose\nai:\n  gemini:\n    api_key: test-key\n"
	if _, err := config.Load(writeConfigFile(t, content)); err == nil {
		t.Fatal("Load should reject unknown logger.level")
	}
}

func TestLoadOllamaNeedsNoKey(t *testing.T) {
	cfg, err := config.Load(writeConfigFile(t, "ai:\n  backend: ollama\n"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.AI.Ollama.Host != config.DefaultOllamaHost {
		t.Errorf("AI.Ollama.Host = %q, want %q", cfg.AI.Ollama.Host, config.DefaultOllamaHost)
	}
}

func TestValidateBackendKeyRules(t *testing.T) {
	t.Parallel()

	base := func(t *testing.T) *config.Config {
		t.Helper()
		cfg, err := config.Load(writeConfigFile(t, "ai:\n  gemini:\n    api_key: test-key\n"))
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		return cfg
	}

	t.Run("openai without key rejected", func(t *testing.T) {
		cfg := base(t)
		cfg.AI.Backend = "openai"
		cfg.AI.OpenAI.APIKey = ""
		if err := cfg.Validate(); err == nil {
			t.Error("Validate should reject openai backend without API key")
		}
	})

	t.Run("openai with key accepted", func(t *testing.T) {
		cfg := base(t)
		cfg.AI.Backend = "openai"
		cfg.AI.OpenAI.APIKey = "sk-test"
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate returned error: %v", err)
		}
	})
}
