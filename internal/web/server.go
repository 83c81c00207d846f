package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vbonduro/greenthumb/internal/chat"
	"github.com/vbonduro/greenthumb/internal/domain"
	"github.com/vbonduro/greenthumb/internal/logging"
	"github.com/vbonduro/greenthumb/internal/markup"
	"github.com/vbonduro/greenthumb/internal/service"
)

// viewFiles is the template set needed to render the state view on its own.
var viewFiles = []string{
	"partials/view.html",
	"partials/idle.html",
	"partials/analyzing.html",
	"partials/result.html",
	"partials/error.html",
	"partials/chat_messages.html",
}

type Server struct {
	plants    *service.PlantService
	chat      *chat.Manager
	templates embed.FS
	mux       *http.ServeMux
	tmplFuncs template.FuncMap
	logger    *slog.Logger
}

func NewServer(plants *service.PlantService, chatMgr *chat.Manager, tmpl embed.FS, logger *slog.Logger) *Server {
	s := &Server{
		plants:    plants,
		chat:      chatMgr,
		templates: tmpl,
		mux:       http.NewServeMux(),
		logger:    logger,
		tmplFuncs: template.FuncMap{
			"markdown": markup.Render,
			"isModel":  func(r domain.Role) bool { return r == domain.RoleModel },
		},
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleHome)
	s.mux.HandleFunc("POST /identify", s.handleIdentify)
	s.mux.HandleFunc("GET /view", s.handleView)
	s.mux.HandleFunc("POST /reset", s.handleReset)
	s.mux.HandleFunc("GET /chat", s.handleChatMessages)
	s.mux.HandleFunc("POST /chat", s.handleChatSend)
	s.mux.HandleFunc("GET /api/plant", s.handleAPIPlant)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self' 'unsafe-inline' https://unpkg.com; "+
				"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com; "+
				"font-src https://fonts.gstatic.com; "+
				"img-src 'self' data:; "+
				"connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		// Polling is noisy; keep it at debug.
		level := slog.LevelInfo
		if r.URL.Path == "/view" || r.URL.Path == "/healthz" {
			level = slog.LevelDebug
		}
		logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// pageData is what every template receives.
type pageData struct {
	State    string
	Record   *domain.PlantRecord
	Preview  template.URL
	Error    string
	Messages []domain.ChatMessage
	ChatBusy bool
	// ChatOOB asks the view partial to refresh the chat transcript out of
	// band, since a state change may have re-seeded the conversation.
	ChatOOB bool
	// FormOOB replaces the chat form out of band, which clears its input.
	FormOOB bool
}

func (s *Server) pageData() pageData {
	v := s.plants.Snapshot()
	return pageData{
		State:    v.State.String(),
		Record:   v.Record,
		Preview:  previewURL(v.Preview),
		Error:    v.Error,
		Messages: s.chat.Messages(),
		ChatBusy: s.chat.Busy(),
	}
}

// previewURL marks an image data URL safe for use in src attributes. Anything
// else is dropped.
func previewURL(s string) template.URL {
	if !strings.HasPrefix(s, "data:image/") {
		return ""
	}
	return template.URL(s)
}

// isHTMX reports whether the request came from an htmx swap rather than a
// plain form post.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// renderPage parses and executes a full-page template set.
func (s *Server) renderPage(w http.ResponseWriter, data any, files ...string) error {
	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, files...)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, "base", data)
}

// renderPartial parses files and executes the {{define}} block called name.
func (s *Server) renderPartial(w http.ResponseWriter, name string, data any, files ...string) error {
	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, files...)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, name, data)
}

func (s *Server) renderView(w http.ResponseWriter, data pageData) {
	data.ChatOOB = true
	if err := s.renderPartial(w, "view", data, viewFiles...); err != nil {
		s.logger.Error("render view failed", logging.Err(err))
	}
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, logging.Err(err))
	}
}
