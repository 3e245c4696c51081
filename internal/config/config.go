// Package config provides configuration loading, validation, and management
// for the assignmate service. It handles reading from YAML files, environment
// variables, setting default values, and validating configuration parameters.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config defines the application configuration parameters for all components
// of the service, including logging, the HTTP server, upload handling, AI
// integration, the answer cache, and scheduled tasks.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Server    ServerConfig    `mapstructure:"server"`
	Uploads   UploadConfig    `mapstructure:"uploads"`
	AI        AIConfig        `mapstructure:"ai"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoggerConfig controls log verbosity and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"             validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     validate:"min=1s"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    validate:"min=1s"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=1s"`
}

// UploadConfig holds settings for handling file attachments.
type UploadConfig struct {
	MaxFileSize       int64    `mapstructure:"max_file_size"      validate:"min=1"`
	AllowedExtensions []string `mapstructure:"allowed_extensions" validate:"min=1,dive,startswith=."`
	PreviewRows       int      `mapstructure:"preview_rows"       validate:"min=1,max=100"`
	TempDir           string   `mapstructure:"temp_dir"`
}

// AIConfig selects and configures the LLM backend used to answer questions.
type AIConfig struct {
	Backend        string        `mapstructure:"backend"         validate:"oneof=gemini openai ollama"`
	Instruction    string        `mapstructure:"instruction"     validate:"required"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"min=1s,max=10m"`

	Gemini GeminiConfig `mapstructure:"gemini"`
	OpenAI OpenAIConfig `mapstructure:"openai"`
	Ollama OllamaConfig `mapstructure:"ollama"`
}

// GeminiConfig holds settings for the Gemini backend.
type GeminiConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	ModelName         string  `mapstructure:"model_name"          validate:"required"`
	Temperature       float32 `mapstructure:"temperature"         validate:"min=0,max=2"`
	MaxRetries        int     `mapstructure:"max_retries"         validate:"min=0,max=10"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"min=0,max=300"`
	EnableSearch      bool    `mapstructure:"enable_search"`
}

// OpenAIConfig holds settings for the OpenAI-compatible backend.
type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"    validate:"omitempty,url"`
	Model       string  `mapstructure:"model"       validate:"required"`
	Temperature float32 `mapstructure:"temperature" validate:"min=0,max=2"`
}

// OllamaConfig holds settings for a local Ollama backend.
type OllamaConfig struct {
	Host  string `mapstructure:"host"  validate:"omitempty,url"`
	Model string `mapstructure:"model" validate:"required"`
}

// DatabaseConfig holds settings for the SQLite answer cache.
type DatabaseConfig struct {
	Path      string        `mapstructure:"path"       validate:"required"`
	AnswerTTL time.Duration `mapstructure:"answer_ttl" validate:"min=1m"`
}

// SchedulerConfig holds the map of scheduled background tasks keyed by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a single scheduled task and sets its cron schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// Validate checks the configuration for structural validity and for
// backend-specific requirements that struct tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch c.AI.Backend {
	case "gemini":
		if c.AI.Gemini.APIKey == "" {
			return fmt.Errorf("ai.gemini.api_key is required when ai.backend is gemini")
		}
	case "openai":
		if c.AI.OpenAI.APIKey == "" {
			return fmt.Errorf("ai.openai.api_key is required when ai.backend is openai")
		}
	}

	return nil
}
