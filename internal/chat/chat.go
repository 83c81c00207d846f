// Package chat owns the single follow-up conversation with the model.
//
// A Manager holds one session and its transcript. Initialize replaces both
// wholesale (the new system instruction is never merged with the old one) and
// seeds the transcript with a welcome message. Send appends exactly one user
// message and exactly one model message; remote failures become a fallback
// model message rather than an error, so the widget stays usable.
//
// Turns are serialized: while one Send is waiting on the model, further Sends
// fail with ErrBusy. No lock is held across the remote call.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/vbonduro/greenthumb/internal/botanist"
	"github.com/vbonduro/greenthumb/internal/domain"
	"github.com/vbonduro/greenthumb/internal/logging"
)

const (
	WelcomeID = "welcome"

	GenericWelcome = "Hi! I'm GreenThumb. Upload a photo to identify a plant, or ask me any gardening questions right here!"
	EmptyReply     = "I'm sorry, I couldn't generate a response."
	FailureReply   = "Sorry, I'm having trouble connecting to the garden network right now. Please try again."
)

var (
	ErrBusy         = errors.New("a chat message is already being answered")
	ErrEmptyMessage = errors.New("message is empty")
)

// PlantWelcome is the first transcript entry when a plant is in context.
func PlantWelcome(name string) string {
	return fmt.Sprintf("I see you're looking at a **%s**! I can help you with specific care tips or answer any gardening questions.", name)
}

type Manager struct {
	starter botanist.ChatStarter
	logger  *slog.Logger

	mu         sync.Mutex
	session    botanist.Conversation
	plant      *domain.PlantRecord
	messages   []domain.ChatMessage
	generation uint64
	busy       bool
}

// NewManager returns a manager with the generic welcome message and no
// session; the session is created by Initialize or lazily on first Send.
func NewManager(starter botanist.ChatStarter, logger *slog.Logger) *Manager {
	return &Manager{
		starter:  starter,
		logger:   logger,
		messages: []domain.ChatMessage{welcome(nil)},
	}
}

// Initialize discards the current session and transcript and starts a new
// session for plant (nil for the generic assistant). The transcript is reset
// even when the session cannot be created; Send will then retry lazily.
func (m *Manager) Initialize(ctx context.Context, plant *domain.PlantRecord) error {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.session = nil
	m.plant = plant
	m.messages = []domain.ChatMessage{welcome(plant)}
	m.busy = false
	m.mu.Unlock()

	session, err := m.starter.StartChat(ctx, botanist.ChatInstruction(plant))
	if err != nil {
		m.logger.Error("chat session init failed", "has_plant", plant != nil, logging.Err(err))
		return fmt.Errorf("failed to start chat: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen {
		// A newer Initialize won; this session belongs to a discarded context.
		return nil
	}
	m.session = session
	m.logger.Info("chat session initialized", "has_plant", plant != nil)
	return nil
}

// Send appends the user's message, asks the model, and appends its answer.
// The returned message is the model turn that was appended.
func (m *Manager) Send(ctx context.Context, text string) (domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ChatMessage{}, ErrEmptyMessage
	}

	m.mu.Lock()
	if m.busy {
		m.mu.Unlock()
		return domain.ChatMessage{}, ErrBusy
	}
	m.busy = true
	gen := m.generation
	session := m.session
	m.messages = append(m.messages, domain.ChatMessage{ID: uuid.NewString(), Role: domain.RoleUser, Text: text})
	m.mu.Unlock()

	reply := m.ask(ctx, gen, session, text)

	msg := domain.ChatMessage{ID: uuid.NewString(), Role: domain.RoleModel, Text: reply}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen {
		m.logger.Info("discarding chat reply for a replaced session")
		return msg, nil
	}
	m.busy = false
	m.messages = append(m.messages, msg)
	return msg, nil
}

// ask performs the remote turn, creating a generic session first if none
// exists. It never fails: errors become FailureReply.
func (m *Manager) ask(ctx context.Context, gen uint64, session botanist.Conversation, text string) string {
	if session == nil {
		var err error
		session, err = m.starter.StartChat(ctx, botanist.ChatInstruction(nil))
		if err != nil {
			m.logger.Error("lazy chat session init failed", logging.Err(err))
			return FailureReply
		}
		m.mu.Lock()
		if m.generation == gen && m.session == nil {
			m.session = session
		}
		m.mu.Unlock()
	}

	reply, err := session.Send(ctx, text)
	if err != nil {
		m.logger.Error("chat send failed", logging.Err(err))
		return FailureReply
	}
	if strings.TrimSpace(reply) == "" {
		return EmptyReply
	}
	return reply
}

// Messages returns a copy of the transcript.
func (m *Manager) Messages() []domain.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ChatMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

func (m *Manager) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.busy
}

func (m *Manager) HasPlant() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plant != nil
}

func welcome(plant *domain.PlantRecord) domain.ChatMessage {
	text := GenericWelcome
	if plant != nil {
		text = PlantWelcome(plant.Name)
	}
	return domain.ChatMessage{ID: WelcomeID, Role: domain.RoleModel, Text: text}
}
