package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"

	"assignmate/internal/config"
)

type ollamaClient struct {
	client      *ollama.Client
	log         *slog.Logger
	model       string
	instruction string
}

// newOllamaClient creates a client for a local or remote Ollama server.
func newOllamaClient(cfg config.AIConfig, log *slog.Logger) (*ollamaClient, error) {
	u, err := url.Parse(cfg.Ollama.Host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", cfg.Ollama.Host, err)
	}

	logger := log.With("component", "ollama_client")
	logger.Info("Ollama client initialized successfully", "host", cfg.Ollama.Host, "model", cfg.Ollama.Model)
	return &ollamaClient{
		client:      ollama.NewClient(u, http.DefaultClient),
		log:         logger,
		model:       cfg.Ollama.Model,
		instruction: cfg.Instruction,
	}, nil
}

// Answer generates an answer by streaming a completion from Ollama and
// collecting the chunks into a single string.
func (c *ollamaClient) Answer(ctx context.Context, question, fileInfo string) (string, error) {
	c.log.DebugContext(ctx, "Generating answer", "question_len", len(question), "has_file_info", fileInfo != "")

	req := &ollama.GenerateRequest{
		Model:  c.model,
		System: c.instruction,
		Prompt: BuildPrompt(question, fileInfo),
	}

	var text strings.Builder
	err := c.client.Generate(ctx, req, func(gr ollama.GenerateResponse) error {
		if gr.Response != "" {
			text.WriteString(gr.Response)
		}
		return nil
	})
	if err != nil {
		c.log.ErrorContext(ctx, "Ollama answer generation failed", "error", err)
		return "", fmt.Errorf("ollama API call failed: %w", err)
	}

	answer := strings.TrimSpace(text.String())
	if answer == "" {
		return "", errors.New("ollama returned empty content")
	}

	return answer, nil
}
