package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mikey/email-classifier/internal/form"
	"go.uber.org/zap"
)

// SessionCookie names the cookie holding the form session id
const SessionCookie = "email_classifier_session"

//go:embed templates/*.html
var templateFS embed.FS

// Options configures the web front end
type Options struct {
	ListenAddress  string
	RequestTimeout time.Duration
	MaxUploadSize  int64
	SecureCookies  bool
}

// Server renders the email form and maps browser posts onto form
// controller operations
type Server struct {
	store  *SessionStore
	logger *zap.Logger
	opts   Options
	page   *template.Template
	server *http.Server

	// suggestions running in the background
	pending sync.WaitGroup
}

// NewServer creates a new web front end server
func NewServer(store *SessionStore, logger *zap.Logger, opts Options) (*Server, error) {
	page, err := template.New("index.html").Funcs(template.FuncMap{
		"millis": func(d time.Duration) int64 { return d.Milliseconds() },
	}).ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	return &Server{
		store:  store,
		logger: logger,
		opts:   opts,
		page:   page,
	}, nil
}

// Handler returns the routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /suggest", s.handleSuggest)
	mux.HandleFunc("POST /reply/edit", s.handleEdit)
	mux.HandleFunc("POST /reply/save", s.handleSave)
	mux.HandleFunc("POST /reply/cancel", s.handleCancel)
	mux.HandleFunc("POST /send", s.handleSend)
	mux.HandleFunc("POST /reset", s.handleReset)
	return mux
}

// Start starts listening in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.ListenAddress, err)
	}

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 30 * time.Second,
	}

	s.logger.Info("Web front end starting", zap.String("address", ln.Addr().String()))

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the server down, waits for running suggestions and stops
// the session store
func (s *Server) Stop() error {
	var err error
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = s.server.Shutdown(ctx)
	}
	s.pending.Wait()
	s.store.Stop()
	return err
}

// runSuggestion performs the classification call detached from the browser
// request, which has already been answered with a redirect
func (s *Server) runSuggestion(suggestion *form.Suggestion, sessionID string) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx := context.Background()
		if s.opts.RequestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.opts.RequestTimeout)
			defer cancel()
		}

		start := time.Now()
		if err := suggestion.Run(ctx); err != nil {
			s.logger.Warn("Suggestion failed",
				zap.String("session_id", sessionID),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
			return
		}
		s.logger.Info("Suggestion ready",
			zap.String("session_id", sessionID),
			zap.Duration("elapsed", time.Since(start)))
	}()
}
