package openai

import (
	"context"
	"encoding/base64"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/vbonduro/greenthumb/internal/botanist"
	"github.com/vbonduro/greenthumb/internal/domain"
)

type OpenAIBotanist struct {
	client *goopenai.Client
	model  string
}

// NewOpenAIBotanist creates a backend for the OpenAI chat completions API or
// any server compatible with it. An empty baseURL uses the library default.
func NewOpenAIBotanist(token, model, baseURL string) *OpenAIBotanist {
	cfg := goopenai.DefaultConfig(token)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIBotanist{
		client: goopenai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Identify uses the strict json_schema response format.
func (b *OpenAIBotanist) Identify(ctx context.Context, imageData []byte, mimeType string) (*domain.PlantRecord, error) {
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(imageData)

	resp, err := b.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: b.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: botanist.SystemInstruction},
			{
				Role: goopenai.ChatMessageRoleUser,
				MultiContent: []goopenai.ChatMessagePart{
					{Type: goopenai.ChatMessagePartTypeImageURL, ImageURL: &goopenai.ChatMessageImageURL{URL: dataURL}},
					{Type: goopenai.ChatMessagePartTypeText, Text: botanist.IdentifyPrompt},
				},
			},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &goopenai.ChatCompletionResponseFormatJSONSchema{
				Name:   "plant_record",
				Schema: botanist.RecordSchema(),
				Strict: true,
			},
		},
	})
	if err != nil {
		return nil, &botanist.ExtractionError{Op: "request", Err: fmt.Errorf("failed to call openai: %w", err)}
	}
	return botanist.ParseRecord(firstContent(resp))
}

func (b *OpenAIBotanist) StartChat(_ context.Context, systemInstruction string) (botanist.Conversation, error) {
	return &conversation{
		backend: b,
		messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemInstruction},
		},
	}, nil
}

type conversation struct {
	backend  *OpenAIBotanist
	messages []goopenai.ChatCompletionMessage
}

func (c *conversation) Send(ctx context.Context, text string) (string, error) {
	messages := append(c.messages[:len(c.messages):len(c.messages)],
		goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: text})

	resp, err := c.backend.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:    c.backend.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to call openai: %w", err)
	}

	reply := firstContent(resp)
	c.messages = append(messages, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleAssistant, Content: reply})
	return reply, nil
}

func firstContent(resp goopenai.ChatCompletionResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	return resp.Choices[0].Message.Content
}
