package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/mikey/email-classifier/internal/allowlist"
	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/extract"
	"go.uber.org/zap"
)

// User facing error messages
const (
	MessageEmptySubmission = "Envie body/subject ou um arquivo .txt/.pdf"
	MessageUnreadableFile  = "Não foi possível ler o arquivo"
	MessageModelFailed     = "Falha ao chamar Gemini"
	MessageInvalidForm     = "Formulário inválido"
	MessageRunning         = "API de Classificação de E-mails está rodando."
)

// Server exposes the classification service over HTTP
type Server struct {
	classifier    core.Classifier
	origins       *allowlist.Checker
	logger        *zap.Logger
	listenAddr    string
	maxUploadSize int64
	server        *http.Server
}

// NewServer creates a new classification API server
func NewServer(
	classifier core.Classifier,
	origins *allowlist.Checker,
	logger *zap.Logger,
	listenAddr string,
	maxUploadSize int64,
) *Server {
	return &Server{
		classifier:    classifier,
		origins:       origins,
		logger:        logger,
		listenAddr:    listenAddr,
		maxUploadSize: maxUploadSize,
	}
}

// Handler returns the routes wrapped in the CORS middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST /process-email", s.handleProcessEmail)
	return s.origins.Middleware(mux)
}

// Start starts listening in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.listenAddr, err)
	}

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 30 * time.Second,
	}

	s.logger.Info("Classification API starting", zap.String("address", ln.Addr().String()))

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": MessageRunning})
}

func (s *Server) handleProcessEmail(w http.ResponseWriter, r *http.Request) {
	if s.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	}

	submission, err := s.readSubmission(r)
	if err != nil {
		s.logger.Warn("Rejected form", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, &core.ProcessResponse{
			Error:  MessageInvalidForm,
			Detail: err.Error(),
		})
		return
	}

	result, err := s.classifier.ProcessEmail(r.Context(), submission)
	if err != nil {
		status, resp := errorResponse(err)
		s.logger.Warn("Failed to process email",
			zap.Int("status", status),
			zap.Error(err))
		writeJSON(w, status, resp)
		return
	}

	writeJSON(w, http.StatusOK, result.Response())
}

// readSubmission collects the form fields and the optional file part
func (s *Server) readSubmission(r *http.Request) (*core.Submission, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}
	if r.MultipartForm == nil {
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("failed to parse form: %w", err)
		}
	}

	submission := &core.Submission{
		From:    r.FormValue("from_"),
		Subject: r.FormValue("subject"),
		Body:    r.FormValue("body"),
	}

	if r.MultipartForm == nil {
		return submission, nil
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return submission, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	submission.File = &core.Attachment{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return submission, nil
}

// errorResponse maps service errors onto a status and body
func errorResponse(err error) (int, *core.ProcessResponse) {
	switch {
	case errors.Is(err, core.ErrEmptySubmission):
		return http.StatusBadRequest, &core.ProcessResponse{Error: MessageEmptySubmission}
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return http.StatusBadRequest, &core.ProcessResponse{Error: extract.ErrUnsupportedFormat.Error()}
	case errors.Is(err, extract.ErrEmptyPDF):
		return http.StatusBadRequest, &core.ProcessResponse{Error: extract.ErrEmptyPDF.Error()}
	case errors.Is(err, core.ErrInvalidFile):
		return http.StatusBadRequest, &core.ProcessResponse{Error: MessageUnreadableFile, Detail: err.Error()}
	case errors.Is(err, core.ErrModelCall):
		return http.StatusBadGateway, &core.ProcessResponse{Error: MessageModelFailed, Detail: err.Error()}
	default:
		return http.StatusInternalServerError, &core.ProcessResponse{Error: "internal error", Detail: err.Error()}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
