package web

import (
	"errors"
	"net/http"

	"github.com/vbonduro/greenthumb/internal/chat"
	"github.com/vbonduro/greenthumb/internal/logging"
)

var (
	chatFiles  = []string{"partials/chat_messages.html"}
	replyFiles = []string{"partials/chat_reply.html", "partials/chat_messages.html", "partials/chat_form.html"}
)

func (s *Server) handleChatMessages(w http.ResponseWriter, r *http.Request) {
	s.renderTranscript(w)
}

// handleChatSend blocks until the model has answered and then returns the
// whole transcript plus a fresh, empty form. The form's controls stay
// disabled for the duration of the request.
func (s *Server) handleChatSend(w http.ResponseWriter, r *http.Request) {
	_, err := s.chat.Send(r.Context(), r.FormValue("message"))
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		http.Error(w, "message required", http.StatusBadRequest)
		return
	case errors.Is(err, chat.ErrBusy):
		http.Error(w, "still answering the previous message", http.StatusConflict)
		return
	case err != nil:
		http.Error(w, "failed to send message", http.StatusInternalServerError)
		s.logger.Error("chat send failed", logging.Err(err))
		return
	}

	if !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	data := s.pageData()
	data.FormOOB = true
	if err := s.renderPartial(w, "chat_reply", data, replyFiles...); err != nil {
		s.logger.Error("render chat failed", logging.Err(err))
	}
}

func (s *Server) renderTranscript(w http.ResponseWriter) {
	if err := s.renderPartial(w, "chat_messages", s.pageData(), chatFiles...); err != nil {
		s.logger.Error("render chat failed", logging.Err(err))
	}
}
