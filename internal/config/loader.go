package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load loads and validates configuration from:
// 1. Default values
// 2. The YAML file at configPath (optional, may be absent)
// 3. ASSIGNMATE_* environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Setup environment variables
	v.SetEnvPrefix("ASSIGNMATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Allow missing config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay, we'll use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults sets default values for optional configuration parameters
func setDefaults(v *viper.Viper) {
	// Logger defaults
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", DefaultLogJSON)

	// Server defaults
	v.SetDefault("server.addr", DefaultServerAddr)
	v.SetDefault("server.read_timeout", DefaultServerReadTimeout)
	v.SetDefault("server.write_timeout", DefaultServerWriteTimeout)
	v.SetDefault("server.shutdown_timeout", DefaultServerShutdownTimeout)

	// Upload defaults
	v.SetDefault("uploads.max_file_size", DefaultUploadMaxFileSize)
	v.SetDefault("uploads.allowed_extensions", DefaultUploadAllowedExtensions)
	v.SetDefault("uploads.preview_rows", DefaultUploadPreviewRows)
	v.SetDefault("uploads.temp_dir", "")

	// AI defaults
	v.SetDefault("ai.backend", DefaultAIBackend)
	v.SetDefault("ai.instruction", DefaultAIInstruction)
	v.SetDefault("ai.request_timeout", DefaultAIRequestTimeout)

	// Secrets default to empty so environment overrides bind during Unmarshal.
	v.SetDefault("ai.gemini.api_key", "")
	v.SetDefault("ai.openai.api_key", "")

	v.SetDefault("ai.gemini.model_name", DefaultGeminiModelName)
	v.SetDefault("ai.gemini.temperature", DefaultGeminiTemperature)
	v.SetDefault("ai.gemini.max_retries", DefaultGeminiMaxRetries)
	v.SetDefault("ai.gemini.retry_delay_seconds", DefaultGeminiRetryDelay)
	v.SetDefault("ai.gemini.enable_search", true)

	v.SetDefault("ai.openai.base_url", DefaultOpenAIBaseURL)
	v.SetDefault("ai.openai.model", DefaultOpenAIModel)
	v.SetDefault("ai.openai.temperature", DefaultOpenAITemperature)

	v.SetDefault("ai.ollama.host", DefaultOllamaHost)
	v.SetDefault("ai.ollama.model", DefaultOllamaModel)

	// Database defaults
	v.SetDefault("database.path", DefaultDBPath)
	v.SetDefault("database.answer_ttl", DefaultAnswerTTL)

	// Scheduler defaults
	for name, task := range DefaultSchedulerTasks {
		v.SetDefault("scheduler.tasks."+name+".enabled", task.Enabled)
		v.SetDefault("scheduler.tasks."+name+".schedule", task.Schedule)
	}
}
