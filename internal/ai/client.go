// Package ai provides interfaces and implementations for interacting with
// different LLM backends used to generate assignment answers.
package ai

import (
	"context"
	"fmt"
	"log/slog"

	"assignmate/internal/config"
)

// Client defines the interface for answer generation used throughout the
// application.
type Client interface {
	// Answer generates an answer for the question. fileInfo carries the
	// textual summary of an attached file and may be empty.
	Answer(ctx context.Context, question, fileInfo string) (string, error)
}

// NewClient creates and returns a Client based on the provided configuration.
// It acts as a factory, selecting the Gemini, OpenAI, or Ollama implementation.
func NewClient(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (Client, error) {
	log.Info("Initializing AI client", "backend", cfg.Backend)

	switch cfg.Backend {
	case "gemini":
		client, err := newGeminiClient(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return client, nil
	case "openai":
		client, err := newOpenAIClient(cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		return client, nil
	case "ollama":
		client, err := newOllamaClient(cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown AI backend specified: %s", cfg.Backend)
	}
}
