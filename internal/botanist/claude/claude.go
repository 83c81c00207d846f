package claude

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/vbonduro/greenthumb/internal/botanist"
	"github.com/vbonduro/greenthumb/internal/domain"
)

// maxTokens comfortably covers one PlantRecord and a chat answer capped at
// roughly 100 words.
const maxTokens = 1024

type ClaudeBotanist struct {
	client *anthropic.Client
	model  string
}

// NewClaudeBotanist creates a backend for the Anthropic Messages API. An empty
// baseURL uses the library default.
func NewClaudeBotanist(apiKey, model, baseURL string) *ClaudeBotanist {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &ClaudeBotanist{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

// Identify sends the photo with the schema embedded in the prompt; Claude has
// no response-schema parameter.
func (b *ClaudeBotanist) Identify(ctx context.Context, imageData []byte, mimeType string) (*domain.PlantRecord, error) {
	resp, err := b.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(b.model),
		MaxTokens: maxTokens,
		System:    botanist.SystemInstruction,
		Messages: []anthropic.Message{{
			Role: anthropic.RoleUser,
			Content: []anthropic.MessageContent{
				anthropic.NewImageMessageContent(anthropic.NewMessageContentSource(
					anthropic.MessagesContentSourceTypeBase64,
					normaliseMIME(mimeType),
					base64.StdEncoding.EncodeToString(imageData),
				)),
				anthropic.NewTextMessageContent(botanist.SchemaPrompt()),
			},
		}},
	})
	if err != nil {
		return nil, &botanist.ExtractionError{Op: "request", Err: fmt.Errorf("failed to call claude: %w", err)}
	}
	return botanist.ParseRecord(firstText(resp))
}

func (b *ClaudeBotanist) StartChat(_ context.Context, systemInstruction string) (botanist.Conversation, error) {
	return &conversation{backend: b, system: systemInstruction}, nil
}

// conversation keeps the transcript client-side; the Messages API is stateless.
type conversation struct {
	backend *ClaudeBotanist
	system  string
	history []anthropic.Message
}

func (c *conversation) Send(ctx context.Context, text string) (string, error) {
	messages := append(c.history[:len(c.history):len(c.history)], anthropic.NewUserTextMessage(text))

	resp, err := c.backend.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.backend.model),
		MaxTokens: maxTokens,
		System:    c.system,
		Messages:  messages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to call claude: %w", err)
	}

	reply := firstText(resp)
	// The API rejects empty text blocks, so an empty turn is not kept.
	if strings.TrimSpace(reply) == "" {
		return "", nil
	}
	c.history = append(messages, anthropic.NewAssistantTextMessage(reply))
	return reply, nil
}

func firstText(resp anthropic.MessagesResponse) string {
	for _, blk := range resp.Content {
		if blk.Type == anthropic.MessagesContentTypeText {
			return blk.GetText()
		}
	}
	return ""
}

// normaliseMIME maps browser MIME types to the values the Anthropic API accepts.
// The Anthropic API accepts only jpeg, png, gif, and webp. Unknown types are
// coerced to jpeg as the most universally supported lossy fallback.
func normaliseMIME(mimeType string) string {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/jpeg"
	}
}
