package classifyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/form"
	"go.uber.org/zap"
)

// ProcessPath is the classification endpoint
const ProcessPath = "/process-email"

// ErrServiceError is returned when the service answers with an error or
// without a model output
var ErrServiceError = errors.New("classification service error")

// Client talks to the classification service over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new classification service client. A zero timeout
// waits for the service indefinitely.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Classify posts the submission as multipart form data and returns the
// model output
func (c *Client) Classify(ctx context.Context, submission form.Submission) (*core.ModelOutput, error) {
	body, contentType, err := encodeSubmission(submission)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ProcessPath, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call classification service: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read classification response: %w", err)
	}

	c.logger.Debug("Classification service answered",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	var decoded core.ProcessResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		if resp.StatusCode/100 != 2 {
			return nil, fmt.Errorf("%w: status %d", ErrServiceError, resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to decode classification response: %w", err)
	}

	switch {
	case resp.StatusCode/100 != 2:
		return nil, fmt.Errorf("%w: status %d: %s", ErrServiceError, resp.StatusCode, describe(&decoded))
	case decoded.Error != "":
		return nil, fmt.Errorf("%w: %s", ErrServiceError, describe(&decoded))
	case decoded.ModelOutput == nil:
		return nil, fmt.Errorf("%w: response has no model output", ErrServiceError)
	}

	return decoded.ModelOutput, nil
}

func describe(r *core.ProcessResponse) string {
	if r.Detail != "" {
		return r.Error + " (" + r.Detail + ")"
	}
	return r.Error
}

// encodeSubmission builds the multipart body: the file alone when one is
// set, otherwise the three text fields
func encodeSubmission(submission form.Submission) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	switch {
	case submission.File != nil:
		file := submission.File
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(file.Name)))
		h.Set("Content-Type", file.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write file part: %w", err)
		}
	case submission.Fields != nil:
		fields := []struct{ name, value string }{
			{"from_", submission.Fields.From},
			{"subject", submission.Fields.Subject},
			{"body", submission.Fields.Body},
		}
		for _, f := range fields {
			if err := w.WriteField(f.name, f.value); err != nil {
				return nil, "", fmt.Errorf("failed to write field %s: %w", f.name, err)
			}
		}
	default:
		return nil, "", form.ErrNothingToSubmit
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
