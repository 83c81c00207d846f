// Package botanist defines the contract with the remote model service: a
// one-shot structured identification call and a stateful chat conversation.
// Backends live in subpackages.
package botanist

import (
	"context"
	"errors"

	"github.com/vbonduro/greenthumb/internal/domain"
)

// ErrEmptyResponse is returned when the model answers with no text at all.
var ErrEmptyResponse = errors.New("empty response from model")

type Identifier interface {
	Identify(ctx context.Context, imageData []byte, mimeType string) (*domain.PlantRecord, error)
}

// Conversation is one server-side chat context. It remembers prior turns.
type Conversation interface {
	Send(ctx context.Context, text string) (string, error)
}

type ChatStarter interface {
	StartChat(ctx context.Context, systemInstruction string) (Conversation, error)
}

// Backend is what every model adapter provides.
type Backend interface {
	Identifier
	ChatStarter
}

// ExtractionError reports a failed identification. Op names the step that
// failed: "request", "response" or "parse".
type ExtractionError struct {
	Op  string
	Err error
}

func (e *ExtractionError) Error() string {
	return "plant extraction failed (" + e.Op + "): " + e.Err.Error()
}

func (e *ExtractionError) Unwrap() error { return e.Err }
