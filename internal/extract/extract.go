package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither .txt nor .pdf
	ErrUnsupportedFormat = errors.New("Formato não suportado. Apenas .txt e .pdf")

	// ErrEmptyPDF is returned for a .pdf upload with no content
	ErrEmptyPDF = errors.New("Arquivo PDF está vazio.")
)

// Extractor converts uploaded documents to plain text
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates a new Extractor
func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract returns the text of a .txt or .pdf document. The format is chosen
// from the file name extension.
func (e *Extractor) Extract(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return DecodeText(data), nil
	case ".pdf":
		return e.pdfText(data)
	default:
		return "", ErrUnsupportedFormat
	}
}

// DecodeText decodes UTF-8 text, falling back to Latin-1 when the bytes are
// not valid UTF-8
func DecodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		// ISO 8859-1 maps every byte so this is unreachable in practice
		return strings.ToValidUTF8(string(data), "")
	}
	return string(decoded)
}

func (e *Extractor) pdfText(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", ErrEmptyPDF
	}

	// The pdf reader panics on some malformed documents
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("PDF parser panicked", zap.Any("panic", r))
			text, err = "", fmt.Errorf("failed to parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}

	e.logger.Debug("Extracted PDF text",
		zap.Int("pages", reader.NumPage()),
		zap.Int("chars", builder.Len()))

	return builder.String(), nil
}
