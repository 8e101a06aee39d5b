package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// TruncationMarker is appended to text cut down to fit the prompt budget
const TruncationMarker = " ... [TRUNCADO]"

var whitespaceRun = regexp.MustCompile(`\s+`)

// TextProcessor provides utilities for processing text
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// TruncateText cuts text to at most maxChars characters and appends the
// truncation marker. Character counts are in runes so multi-byte text is
// never split mid-sequence.
func (tp *TextProcessor) TruncateText(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}

	truncated := Preview(text, maxChars)

	tp.logger.Debug("Text truncated",
		zap.Int("original_chars", utf8.RuneCountInString(text)),
		zap.Int("max_chars", maxChars))

	return truncated + TruncationMarker
}

// SanitizeUTF8 ensures the string contains only valid UTF-8 characters
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	sanitized := strings.ToValidUTF8(text, "")

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(sanitized)))

	return sanitized
}

// LightClean repairs the encoding of text and collapses whitespace while
// keeping the wording intact
func (tp *TextProcessor) LightClean(text string) string {
	text = tp.SanitizeUTF8(text)
	text = norm.NFC.String(text)
	return NormalizeWhitespace(text)
}

// NormalizeWhitespace collapses every whitespace run into a single space
func NormalizeWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// Preview returns the first n characters of text
func Preview(text string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}
