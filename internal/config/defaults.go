package config

import "time"

// Default values for configuration
const (
	// Logger defaults
	DefaultLogLevel = "info"
	DefaultLogJSON  = true

	// Server defaults
	DefaultServerAddr            = ":8080"
	DefaultServerReadTimeout     = 30 * time.Second
	DefaultServerWriteTimeout    = 3 * time.Minute
	DefaultServerShutdownTimeout = 15 * time.Second

	// Upload defaults
	DefaultUploadMaxFileSize = 50 * 1024 * 1024 // 50 MiB
	DefaultUploadPreviewRows = 5

	// AI defaults
	DefaultAIBackend        = "gemini"
	DefaultAIRequestTimeout = 2 * time.Minute

	DefaultGeminiModelName   = "gemini-2.0-flash-001"
	DefaultGeminiTemperature = 0.0
	DefaultGeminiMaxRetries  = 2
	DefaultGeminiRetryDelay  = 5 // seconds

	DefaultOpenAIBaseURL     = "https://api.openai.com/v1"
	DefaultOpenAIModel       = "gpt-4o-mini"
	DefaultOpenAITemperature = 0.0

	DefaultOllamaHost  = "http://localhost:11434"
	DefaultOllamaModel = "llama3"

	// Database defaults
	DefaultDBPath    = "cache.db"
	DefaultAnswerTTL = 24 * time.Hour
)

// DefaultAIInstruction is the system instruction sent to every backend. It
// frames the model as a teaching assistant that returns exact answers ready
// to be entered in a graded assignment.
const DefaultAIInstruction = "You are an expert Data Science teaching assistant for an online Degree in Data Science program. " +
	"Your task is to provide precise answers to graded assignment questions, ensuring they match exactly what is expected.\n\n" +
	"Key guidelines:\n" +
	"1. Provide exact answers without additional text or explanations.\n" +
	"2. For numerical answers, give the exact number.\n" +
	"3. For file-based questions, analyze the provided file information and perform necessary calculations or commands, providing the result.\n" +
	"4. For command outputs, provide the exact output as it would appear, not a description or example. If execution is not possible, give a realistic lookalike output.\n" +
	"5. For Google Sheets formulas, calculate the result and provide the numerical answer.\n" +
	"6. For multi-step questions, break down the steps and provide the final answer."

// DefaultUploadAllowedExtensions lists the attachment types the service accepts.
var DefaultUploadAllowedExtensions = []string{".csv", ".xlsx", ".xls", ".zip", ".md"}

// DefaultSchedulerTasks enables the built-in maintenance tasks.
var DefaultSchedulerTasks = map[string]TaskConfig{
	"cache_purge":     {Enabled: true, Schedule: "0 */6 * * *"},
	"sql_maintenance": {Enabled: true, Schedule: "0 4 * * *"},
	"upload_sweep":    {Enabled: true, Schedule: "*/30 * * * *"},
}
