package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/vbonduro/greenthumb/internal/botanist"
	"github.com/vbonduro/greenthumb/internal/domain"
)

type GeminiBotanist struct {
	client *genai.Client
	model  string
}

// NewGeminiBotanist creates a backend for the Gemini API. An empty baseURL
// uses the library default.
func NewGeminiBotanist(ctx context.Context, apiKey, model, baseURL string) (*GeminiBotanist, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiBotanist{client: client, model: model}, nil
}

// Identify constrains the response with a JSON MIME type and the record schema.
func (b *GeminiBotanist) Identify(ctx context.Context, imageData []byte, mimeType string) (*domain.PlantRecord, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(imageData, mimeType),
			genai.NewPartFromText(botanist.IdentifyPrompt),
		}, genai.RoleUser),
	}

	resp, err := b.client.Models.GenerateContent(ctx, b.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(botanist.SystemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    recordSchema(),
	})
	if err != nil {
		return nil, &botanist.ExtractionError{Op: "request", Err: fmt.Errorf("failed to call gemini: %w", err)}
	}
	return botanist.ParseRecord(resp.Text())
}

// StartChat opens a chat whose history is held by the genai Chat value.
func (b *GeminiBotanist) StartChat(ctx context.Context, systemInstruction string) (botanist.Conversation, error) {
	chat, err := b.client.Chats.Create(ctx, b.model, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini chat: %w", err)
	}
	return &conversation{chat: chat}, nil
}

type conversation struct {
	chat *genai.Chat
}

func (c *conversation) Send(ctx context.Context, text string) (string, error) {
	resp, err := c.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		return "", fmt.Errorf("failed to call gemini: %w", err)
	}
	return resp.Text(), nil
}

func recordSchema() *genai.Schema {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":           str(botanist.DescName),
			"scientificName": str(botanist.DescScientificName),
			"description":    str(botanist.DescDescription),
			"care": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"water":       str(botanist.DescWater),
					"sun":         str(botanist.DescSun),
					"soil":        str(botanist.DescSoil),
					"temperature": str(botanist.DescTemperature),
					"fertilizer":  str(botanist.DescFertilizer),
				},
				Required: botanist.RequiredCareFields,
			},
			"funFact": str(botanist.DescFunFact),
			"problems": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: botanist.DescProblems,
			},
		},
		Required: botanist.RequiredFields,
	}
}
