package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vbonduro/greenthumb/internal/botanist"
	"github.com/vbonduro/greenthumb/internal/botanist/claude"
	"github.com/vbonduro/greenthumb/internal/botanist/gemini"
	"github.com/vbonduro/greenthumb/internal/botanist/ollama"
	"github.com/vbonduro/greenthumb/internal/botanist/openai"
	"github.com/vbonduro/greenthumb/internal/config"
	"github.com/vbonduro/greenthumb/internal/logging"
)

// newBotanist builds the backend selected by cfg.Backend. cfg is expected to
// have been validated.
func newBotanist(ctx context.Context, cfg *config.Config, logger *slog.Logger) (botanist.Backend, error) {
	switch cfg.Backend {
	case config.BackendGemini:
		logger.Info("using Gemini botanist backend", "model", cfg.GeminiModel)
		b, err := gemini.NewGeminiBotanist(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL)
		if err != nil {
			return nil, err
		}
		return b, nil
	case config.BackendClaude:
		logger.Info("using Claude botanist backend", "model", cfg.ClaudeModel)
		return claude.NewClaudeBotanist(cfg.ClaudeAPIKey, cfg.ClaudeModel, cfg.ClaudeBaseURL), nil
	case config.BackendOpenAI:
		logger.Info("using OpenAI botanist backend", "model", cfg.OpenAIModel)
		return openai.NewOpenAIBotanist(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL), nil
	case config.BackendOllama:
		logger.Info("using Ollama botanist backend", "model", cfg.OllamaModel)
		return ollama.NewOllamaBotanist(cfg.OllamaHost, cfg.OllamaModel), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// setup loads and validates configuration and builds the logger. The returned
// cleanup must be called once the command finishes.
func setup() (*config.Config, *slog.Logger, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, cleanup, nil
}
