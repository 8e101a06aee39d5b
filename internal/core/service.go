package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/email-classifier/internal/utils"
	"go.uber.org/zap"
)

var (
	// ErrEmptySubmission is returned when neither a body nor a file was sent
	ErrEmptySubmission = errors.New("empty submission")

	// ErrInvalidFile wraps failures reading an uploaded document
	ErrInvalidFile = errors.New("invalid file")

	// ErrModelCall wraps failures talking to the model
	ErrModelCall = errors.New("model call failed")
)

// PreprocessOptions controls how text is prepared before prompting
type PreprocessOptions struct {
	MaxPromptChars int
	KeywordCount   int
	PreviewChars   int
}

// ClassificationService is the core service for email classification
type ClassificationService struct {
	llmClient    LLMClient
	cache        CacheRepository
	extractor    TextExtractor
	text         *utils.TextProcessor
	logger       *zap.Logger
	cacheEnabled bool
	cacheTTL     time.Duration
	opts         PreprocessOptions
}

// NewClassificationService creates a new classification service
func NewClassificationService(
	llmClient LLMClient,
	cache CacheRepository,
	extractor TextExtractor,
	text *utils.TextProcessor,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
	opts PreprocessOptions,
) *ClassificationService {
	return &ClassificationService{
		llmClient:    llmClient,
		cache:        cache,
		extractor:    extractor,
		text:         text,
		logger:       logger,
		cacheEnabled: cacheEnabled && cache != nil,
		cacheTTL:     cacheTTL,
		opts:         opts,
	}
}

// ProcessEmail classifies a submission and drafts a reply for it
func (s *ClassificationService) ProcessEmail(ctx context.Context, submission *Submission) (*ClassificationResult, error) {
	if !submission.HasContent() {
		return nil, ErrEmptySubmission
	}

	start := time.Now()
	processingID := uuid.NewString()
	logger := s.logger.With(zap.String("processing_id", processingID))

	raw, fields, err := s.rawText(submission)
	if err != nil {
		return nil, err
	}

	cleaned := s.text.LightClean(raw)
	filtered := RemoveStopwords(cleaned)
	keywords := TopKeywords(filtered, s.opts.KeywordCount)

	prompt := BuildPrompt(s.text.TruncateText(filtered, s.opts.MaxPromptChars), keywords, fields)

	result := &ClassificationResult{
		Preprocess: Preprocess{
			CleanedTextPreview: utils.Preview(cleaned, s.opts.PreviewChars),
			Keywords:           keywords,
		},
		ModelUsed:    s.llmClient.ModelName(),
		ProcessingID: processingID,
	}

	key := PromptKey(result.ModelUsed, prompt)

	// Check cache if enabled
	if s.cacheEnabled {
		if entry, err := s.cache.Get(ctx, key); err == nil {
			logger.Debug("Cache hit for prompt", zap.String("key", key))
			result.Output = entry.Output
			result.Cached = true
			result.AnalyzedAt = time.Now()
			return result, nil
		}
	}

	logger.Info("Requesting classification",
		zap.String("model", result.ModelUsed),
		zap.Int("prompt_chars", len(prompt)),
		zap.Strings("keywords", keywords))

	text, err := s.llmClient.Generate(ctx, prompt)
	if err != nil {
		logger.Error("Model call failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrModelCall, err)
	}

	result.Output = ParseModelOutput(text)
	result.AnalyzedAt = time.Now()

	if result.Output.RawOutput != "" {
		logger.Warn("Model reply was not valid JSON", zap.Int("reply_chars", len(text)))
	}

	// Update cache with result if enabled. Unparsed replies are not cached.
	if s.cacheEnabled && result.Output.RawOutput == "" {
		now := time.Now()
		entry := &CacheEntry{
			Key:       key,
			Output:    result.Output,
			ModelUsed: result.ModelUsed,
			CreatedAt: now,
			ExpiresAt: now.Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	logger.Info("Email classified",
		zap.String("classification", result.Output.Classification),
		zap.Duration("elapsed", time.Since(start)))

	return result, nil
}

// rawText assembles the text to analyse. Typed fields win over an uploaded
// file when both are present.
func (s *ClassificationService) rawText(submission *Submission) (string, *EmailFields, error) {
	if submission.Body != "" || submission.File == nil {
		fields := &EmailFields{
			From:    submission.From,
			Subject: submission.Subject,
		}
		return composeRaw(submission.Subject, submission.From, submission.Body), fields, nil
	}

	text, err := s.extractor.Extract(submission.File.Filename, submission.File.Data)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	fields := ExtractEmailFields(text)
	body := fields.Body
	if body == "" {
		// Not a recognised export layout; use the whole document
		body = text
	}
	return composeRaw(fields.Subject, fields.From, body), &fields, nil
}

func composeRaw(subject, from, body string) string {
	var sb strings.Builder
	if subject != "" {
		sb.WriteString("Assunto: ")
		sb.WriteString(subject)
		sb.WriteString("\n\n")
	}
	if from != "" {
		sb.WriteString("de: ")
		sb.WriteString(from)
		sb.WriteString("\n\n")
	}
	sb.WriteString(body)
	return sb.String()
}
