package web

import (
	"encoding/json"
	"net/http"

	"github.com/vbonduro/greenthumb/internal/domain"
	"github.com/vbonduro/greenthumb/internal/logging"
)

type plantResponse struct {
	State string              `json:"state"`
	Plant *domain.PlantRecord `json:"plant,omitempty"`
	Error string              `json:"error,omitempty"`
}

func (s *Server) handleAPIPlant(w http.ResponseWriter, r *http.Request) {
	v := s.plants.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(plantResponse{
		State: v.State.String(),
		Plant: v.Record,
		Error: v.Error,
	}); err != nil {
		s.logger.Error("encode plant response failed", logging.Err(err))
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}
