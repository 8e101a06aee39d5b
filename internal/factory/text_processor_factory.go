package factory

import (
	"github.com/mikey/email-classifier/internal/extract"
	"github.com/mikey/email-classifier/internal/utils"
	"go.uber.org/zap"
)

// TextProcessorFactory creates the text handling helpers
type TextProcessorFactory struct {
	logger *zap.Logger
}

// NewTextProcessorFactory creates a new TextProcessorFactory
func NewTextProcessorFactory(logger *zap.Logger) *TextProcessorFactory {
	return &TextProcessorFactory{
		logger: logger,
	}
}

// CreateTextProcessor creates a new TextProcessor
func (f *TextProcessorFactory) CreateTextProcessor() *utils.TextProcessor {
	return utils.NewTextProcessor(f.logger)
}

// CreateExtractor creates a new document Extractor
func (f *TextProcessorFactory) CreateExtractor() *extract.Extractor {
	return extract.NewExtractor(f.logger)
}
