package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"assignmate/internal/config"
)

type openAIClient struct {
	client      *openai.Client
	log         *slog.Logger
	model       string
	temperature float32
	instruction string
}

// newOpenAIClient creates a client for the OpenAI chat completions API, or
// any compatible endpoint selected via base_url.
func newOpenAIClient(cfg config.AIConfig, log *slog.Logger) (*openAIClient, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.BaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAI.BaseURL
	}

	logger := log.With("component", "openai_client")
	logger.Info("OpenAI client initialized successfully", "model", cfg.OpenAI.Model, "base_url", clientCfg.BaseURL)
	return &openAIClient{
		client:      openai.NewClientWithConfig(clientCfg),
		log:         logger,
		model:       cfg.OpenAI.Model,
		temperature: cfg.OpenAI.Temperature,
		instruction: cfg.Instruction,
	}, nil
}

// Answer generates an answer via a chat completion with the system
// instruction and the assembled prompt.
func (c *openAIClient) Answer(ctx context.Context, question, fileInfo string) (string, error) {
	c.log.DebugContext(ctx, "Generating answer", "question_len", len(question), "has_file_info", fileInfo != "")

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.instruction},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(question, fileInfo)},
		},
	})
	if err != nil {
		c.log.ErrorContext(ctx, "OpenAI answer generation failed", "error", err)
		return "", fmt.Errorf("openai API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	answer := resp.Choices[0].Message.Content
	if answer == "" {
		return "", errors.New("openai returned empty content")
	}

	return answer, nil
}
