package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v9"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// Backend names accepted by BOTANIST_BACKEND.
const (
	BackendGemini = "gemini"
	BackendClaude = "claude"
	BackendOpenAI = "openai"
	BackendOllama = "ollama"
)

type Config struct {
	ListenAddr string `yaml:"listen_addr" env:"LISTEN_ADDR"`
	Backend    string `yaml:"backend" env:"BOTANIST_BACKEND"`

	GeminiAPIKey  string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	GeminiModel   string `yaml:"gemini_model" env:"GEMINI_MODEL"`
	GeminiBaseURL string `yaml:"gemini_base_url" env:"GEMINI_BASE_URL"`

	ClaudeAPIKey  string `yaml:"claude_api_key" env:"CLAUDE_API_KEY"`
	ClaudeModel   string `yaml:"claude_model" env:"CLAUDE_MODEL"`
	ClaudeBaseURL string `yaml:"claude_base_url" env:"CLAUDE_BASE_URL"`

	OpenAIAPIKey  string `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	OpenAIModel   string `yaml:"openai_model" env:"OPENAI_MODEL"`
	OpenAIBaseURL string `yaml:"openai_base_url" env:"OPENAI_BASE_URL"`

	OllamaHost  string `yaml:"ollama_host" env:"OLLAMA_HOST"`
	OllamaModel string `yaml:"ollama_model" env:"OLLAMA_MODEL"`

	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`
	LogFile   string `yaml:"log_file" env:"LOG_FILE"`
}

func defaults() *Config {
	return &Config{
		ListenAddr:  ":8080",
		Backend:     BackendGemini,
		GeminiModel: "gemini-3-pro-preview",
		ClaudeModel: "claude-opus-4-6",
		OpenAIModel: "gpt-4o-mini",
		OllamaHost:  "http://localhost:11434",
		OllamaModel: "llava",
		LogLevel:    "info",
		LogFormat:   "json",
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// GREENTHUMB_CONFIG (if set), then environment variables. Later sources win.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("GREENTHUMB_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	if c.ListenAddr == "" {
		result = multierror.Append(result, errors.New("LISTEN_ADDR must not be empty"))
	}
	switch c.Backend {
	case BackendGemini:
		if c.GeminiAPIKey == "" {
			result = multierror.Append(result, errors.New("GEMINI_API_KEY is required when BOTANIST_BACKEND=gemini"))
		}
	case BackendClaude:
		if c.ClaudeAPIKey == "" {
			result = multierror.Append(result, errors.New("CLAUDE_API_KEY is required when BOTANIST_BACKEND=claude"))
		}
	case BackendOpenAI:
		if c.OpenAIAPIKey == "" {
			result = multierror.Append(result, errors.New("OPENAI_API_KEY is required when BOTANIST_BACKEND=openai"))
		}
	case BackendOllama:
		if c.OllamaHost == "" {
			result = multierror.Append(result, errors.New("OLLAMA_HOST is required when BOTANIST_BACKEND=ollama"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("unknown BOTANIST_BACKEND %q", c.Backend))
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		result = multierror.Append(result, fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat))
	}
	return result.ErrorOrNil()
}
