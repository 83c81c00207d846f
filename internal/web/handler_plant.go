package web

import (
	"context"
	"net/http"

	"github.com/vbonduro/greenthumb/internal/imaging"
	"github.com/vbonduro/greenthumb/internal/logging"
)

const maxPhotoSize = 50 * 1024 * 1024 // 50 MB

var pageFiles = append([]string{"base.html", "pages/home.html", "partials/chat.html", "partials/chat_form.html"}, viewFiles...)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if err := s.renderPage(w, s.pageData(), pageFiles...); err != nil {
		s.logger.Error("render page failed", logging.Err(err))
	}
}

// handleIdentify accepts the selected photo, moves the controller to
// Analyzing and starts identification in the background. The browser polls
// /view until the state leaves Analyzing.
func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image file required", http.StatusBadRequest)
		return
	}
	defer closeWithLog(file, "upload file", s.logger)

	img, err := imaging.Encode(file, header.Header.Get("Content-Type"))
	if err != nil {
		s.plants.Fail(r.Context(), err)
		s.respondView(w, r)
		return
	}

	ticket := s.plants.Begin(img)
	// Detached so that the identification runs to completion even if the
	// client navigates away and the request context is cancelled.
	go s.plants.Identify(context.WithoutCancel(r.Context()), ticket, img)

	s.respondView(w, r)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	s.renderView(w, s.pageData())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.plants.Reset(r.Context())
	s.respondView(w, r)
}

// respondView answers an htmx request with the state view and a plain form
// post with a redirect to the full page.
func (s *Server) respondView(w http.ResponseWriter, r *http.Request) {
	if !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.renderView(w, s.pageData())
}
