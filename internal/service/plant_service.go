package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vbonduro/greenthumb/internal/botanist"
	"github.com/vbonduro/greenthumb/internal/domain"
	"github.com/vbonduro/greenthumb/internal/imaging"
	"github.com/vbonduro/greenthumb/internal/logging"
)

// IdentifyFailedMessage is the only error text ever shown to the user.
const IdentifyFailedMessage = "Failed to identify the plant. Please try a clearer photo."

// chatSeeder is the subset of chat.Manager that PlantService requires.
type chatSeeder interface {
	Initialize(ctx context.Context, plant *domain.PlantRecord) error
	HasPlant() bool
}

// Ticket identifies one identification attempt. Only the latest ticket may
// complete.
type Ticket uint64

// View is an immutable snapshot of the controller.
type View struct {
	State   domain.AppState
	Record  *domain.PlantRecord
	Preview string
	Error   string
	Ticket  Ticket
}

type PlantService struct {
	identifier botanist.Identifier
	chat       chatSeeder
	logger     *slog.Logger

	mu      sync.Mutex
	state   domain.AppState
	record  *domain.PlantRecord
	preview string
	errMsg  string
	ticket  Ticket
}

func NewPlantService(identifier botanist.Identifier, chat chatSeeder, logger *slog.Logger) *PlantService {
	return &PlantService{
		identifier: identifier,
		chat:       chat,
		logger:     logger,
		state:      domain.StateIdle,
	}
}

// Begin moves to Analyzing from any state and issues a new ticket. A
// selection made while already Analyzing restarts the flow; the older call's
// result will be discarded by Complete.
func (s *PlantService) Begin(img *imaging.Image) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.StateAnalyzing {
		s.logger.Info("identification restarted", "superseded_ticket", s.ticket)
	}
	s.ticket++
	s.state = domain.StateAnalyzing
	s.record = nil
	s.errMsg = ""
	s.preview = img.DataURL()

	s.logger.Info("identification started", "ticket", s.ticket, "mime_type", img.MIMEType, "bytes", len(img.Data))
	return s.ticket
}

// Identify runs the single extraction round trip for ticket and applies its
// outcome.
func (s *PlantService) Identify(ctx context.Context, ticket Ticket, img *imaging.Image) {
	record, err := s.identifier.Identify(ctx, img.Data, img.MIMEType)
	s.Complete(ctx, ticket, record, err)
}

// Complete applies the outcome of the attempt identified by ticket. It
// reports false when the ticket is stale and the outcome was dropped.
func (s *PlantService) Complete(ctx context.Context, ticket Ticket, record *domain.PlantRecord, err error) bool {
	s.mu.Lock()
	if ticket != s.ticket || s.state != domain.StateAnalyzing {
		current := s.ticket
		s.mu.Unlock()
		s.logger.Info("discarding stale identification result", "ticket", ticket, "current_ticket", current)
		return false
	}

	if err == nil && record == nil {
		err = botanist.ErrEmptyResponse
	}
	if err != nil {
		s.state = domain.StateError
		s.record = nil
		s.errMsg = IdentifyFailedMessage
		s.mu.Unlock()
		s.logger.Error("identification failed", "ticket", ticket, logging.Err(err))
		return true
	}

	s.mu.Unlock()

	// Seed the chat before publishing Result so the first render of the
	// result already carries the plant-aware transcript.
	if err := s.chat.Initialize(ctx, record); err != nil {
		s.logger.Warn("chat not seeded with plant", logging.Err(err))
	}

	s.mu.Lock()
	if ticket != s.ticket || s.state != domain.StateAnalyzing {
		// The chat now describes a plant that will never be shown; put it
		// back on whatever record is active instead.
		active := s.record
		s.mu.Unlock()
		s.logger.Info("discarding identification result superseded during chat seeding", "ticket", ticket)
		if err := s.chat.Initialize(ctx, active); err != nil {
			s.logger.Warn("chat not restored after discarded result", logging.Err(err))
		}
		return false
	}
	s.state = domain.StateResult
	s.record = record
	s.errMsg = ""
	s.mu.Unlock()

	s.logger.Info("identification complete", "ticket", ticket, "name", record.Name)
	return true
}

// Fail moves to Error when the selected image could not be read. An
// in-flight identification is superseded.
func (s *PlantService) Fail(_ context.Context, err error) {
	s.mu.Lock()
	s.ticket++
	s.state = domain.StateError
	s.record = nil
	s.preview = ""
	s.errMsg = IdentifyFailedMessage
	s.mu.Unlock()

	s.logger.Error("image read failed", logging.Err(err))
}

// Reset returns to Idle from Result or Error. It is a no-op in Idle and is
// ignored while Analyzing. The chat loses its plant context if it had one.
func (s *PlantService) Reset(ctx context.Context) {
	s.mu.Lock()
	switch s.state {
	case domain.StateIdle:
		s.mu.Unlock()
		return
	case domain.StateAnalyzing:
		s.mu.Unlock()
		s.logger.Debug("reset ignored while analyzing")
		return
	}
	s.state = domain.StateIdle
	s.record = nil
	s.preview = ""
	s.errMsg = ""
	s.mu.Unlock()

	// The chat may still describe an earlier plant even when no record is
	// active, e.g. after Result followed by a failed upload.
	seeded := s.chat.HasPlant()
	s.logger.Info("reset to idle", "chat_had_plant", seeded)
	if seeded {
		if err := s.chat.Initialize(ctx, nil); err != nil {
			s.logger.Warn("chat not reset to generic assistant", logging.Err(err))
		}
	}
}

func (s *PlantService) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		State:   s.state,
		Record:  s.record,
		Preview: s.preview,
		Error:   s.errMsg,
		Ticket:  s.ticket,
	}
}
