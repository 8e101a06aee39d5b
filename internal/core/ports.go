package core

import (
	"context"
)

// LLMClient defines the interface for interacting with LLM services
type LLMClient interface {
	// Generate sends a prompt and returns the model's raw text reply
	Generate(ctx context.Context, prompt string) (string, error)

	// ModelName identifies the model behind the client
	ModelName() string
}

// CacheRepository defines the interface for caching model outputs
type CacheRepository interface {
	// Get retrieves a cached entry by key
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// TextExtractor turns an uploaded document into plain text
type TextExtractor interface {
	Extract(filename string, data []byte) (string, error)
}

// Classifier is implemented by anything able to process a submission
type Classifier interface {
	ProcessEmail(ctx context.Context, submission *Submission) (*ClassificationResult, error)
}
