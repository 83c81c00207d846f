package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vbonduro/greenthumb/internal/botanist"
	"github.com/vbonduro/greenthumb/internal/domain"
)

type OllamaBotanist struct {
	host   string
	model  string
	client *http.Client
}

func NewOllamaBotanist(host, model string) *OllamaBotanist {
	return &OllamaBotanist{
		host:   host,
		model:  model,
		client: &http.Client{},
	}
}

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	System string   `json:"system,omitempty"`
	Images []string `json:"images,omitempty"`
	Format any      `json:"format,omitempty"`
	Stream bool     `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

// Identify uses /api/generate with the record schema as the structured
// output format.
func (b *OllamaBotanist) Identify(ctx context.Context, imageData []byte, _ string) (*domain.PlantRecord, error) {
	var respBody struct {
		Response string `json:"response"`
	}
	err := b.post(ctx, "/api/generate", generateRequest{
		Model:  b.model,
		Prompt: botanist.SchemaPrompt(),
		System: botanist.SystemInstruction,
		Images: []string{base64.StdEncoding.EncodeToString(imageData)},
		Format: botanist.RecordSchema(),
		Stream: false,
	}, &respBody)
	if err != nil {
		return nil, &botanist.ExtractionError{Op: "request", Err: err}
	}
	return botanist.ParseRecord(respBody.Response)
}

func (b *OllamaBotanist) StartChat(_ context.Context, systemInstruction string) (botanist.Conversation, error) {
	return &conversation{
		backend:  b,
		messages: []chatMessage{{Role: "system", Content: systemInstruction}},
	}, nil
}

type conversation struct {
	backend  *OllamaBotanist
	messages []chatMessage
}

func (c *conversation) Send(ctx context.Context, text string) (string, error) {
	messages := append(c.messages[:len(c.messages):len(c.messages)], chatMessage{Role: "user", Content: text})

	var respBody struct {
		Message chatMessage `json:"message"`
	}
	if err := c.backend.post(ctx, "/api/chat", chatRequest{
		Model:    c.backend.model,
		Messages: messages,
		Stream:   false,
	}, &respBody); err != nil {
		return "", err
	}

	c.messages = append(messages, chatMessage{Role: "assistant", Content: respBody.Message.Content})
	return respBody.Message.Content, nil
}

func (b *OllamaBotanist) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.host+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call ollama: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close ollama response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, errBody)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
