package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mikey/email-classifier/internal/form"
	"go.uber.org/zap"
)

// pageData is what the page template renders
type pageData struct {
	form.View
	Notifications []form.Notification
}

// controller returns the form of the requesting browser, starting a new
// session when the cookie is missing or stale
func (s *Server) controller(w http.ResponseWriter, r *http.Request) (string, *form.Controller) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if c, ok := s.store.Get(cookie.Value); ok {
			return cookie.Value, c
		}
	}

	id, c := s.store.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return id, c
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	_, c := s.controller(w, r)

	data := pageData{
		View:          c.Snapshot(),
		Notifications: c.Notifications(),
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		s.logger.Error("Failed to render page", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	id, c := s.controller(w, r)
	logger := s.logger.With(zap.String("session_id", id))

	// Inputs stay as they were sent while a suggestion is loading
	if c.Loading() {
		logger.Debug("Suggestion not started", zap.Error(form.ErrRequestInFlight))
		redirectHome(w, r)
		return
	}

	if s.opts.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		logger.Warn("Failed to parse form", zap.Error(err))
		c.NotifyError(form.MessageUnreadableUpload)
		redirectHome(w, r)
		return
	}

	for _, name := range []string{"from", "subject", "body"} {
		_ = c.UpdateField(name, r.FormValue(name))
	}

	file, err := uploadedFile(r)
	if err != nil {
		logger.Warn("Failed to read uploaded file", zap.Error(err))
		c.NotifyError(form.MessageUnreadableUpload)
		redirectHome(w, r)
		return
	}
	// An empty picker keeps the current selection; /reset clears it
	if file != nil && !c.SelectFile(file) {
		logger.Info("Ignored file of unsupported type",
			zap.String("name", file.Name),
			zap.String("content_type", file.ContentType))
	}

	suggestion, err := c.BeginSuggestion()
	switch {
	case errors.Is(err, form.ErrNothingToSubmit), errors.Is(err, form.ErrRequestInFlight):
		logger.Debug("Suggestion not started", zap.Error(err))
	case err != nil:
		logger.Error("Failed to start suggestion", zap.Error(err))
	default:
		s.runSuggestion(suggestion, id)
	}

	redirectHome(w, r)
}

// uploadedFile returns the picked file, or nil when the picker is empty
func uploadedFile(r *http.Request) (*form.UploadedFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	f, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if header.Filename == "" {
		return nil, nil
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return &form.UploadedFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	_, c := s.controller(w, r)
	if err := c.ToggleEdit(true); err != nil {
		s.logger.Debug("Edit ignored", zap.Error(err))
	}
	redirectHome(w, r)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	_, c := s.controller(w, r)
	if err := c.SaveEdit(r.FormValue("draft")); err != nil {
		s.logger.Debug("Save ignored", zap.Error(err))
	}
	redirectHome(w, r)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	_, c := s.controller(w, r)
	c.CancelEdit()
	redirectHome(w, r)
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	_, c := s.controller(w, r)
	c.SubmitEmail()
	redirectHome(w, r)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	_, c := s.controller(w, r)
	c.Reset()
	redirectHome(w, r)
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
