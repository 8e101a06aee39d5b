package core

import (
	"time"
)

// Submission is an email handed to the classifier, either typed in as
// fields or uploaded as a document
type Submission struct {
	From    string
	Subject string
	Body    string
	File    *Attachment
}

// Attachment is an uploaded .txt or .pdf document
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// HasContent reports whether the submission carries anything to classify
func (s *Submission) HasContent() bool {
	if s == nil {
		return false
	}
	return s.File != nil || s.Body != ""
}

// EmailFields holds the parts recovered from an exported email document
type EmailFields struct {
	From    string
	To      string
	Date    string
	Subject string
	Body    string
}

// ModelOutput is the structured reply produced by the model
type ModelOutput struct {
	Classification string `json:"classificacao,omitempty"`
	To             string `json:"para,omitempty"`
	Subject        string `json:"assunto,omitempty"`
	SuggestedReply string `json:"resposta_sugerida,omitempty"`
	RawOutput      string `json:"raw_output,omitempty"`
}

// Preprocess summarises the text that was sent to the model
type Preprocess struct {
	CleanedTextPreview string   `json:"cleaned_text_preview"`
	Keywords           []string `json:"keywords"`
}

// ProcessResponse is the JSON document exchanged with the classification
// endpoint
type ProcessResponse struct {
	Preprocess  *Preprocess  `json:"preprocess,omitempty"`
	ModelOutput *ModelOutput `json:"model_output,omitempty"`
	Error       string       `json:"error,omitempty"`
	Detail      string       `json:"detail,omitempty"`
}

// ClassificationResult represents the result of processing a submission
type ClassificationResult struct {
	Preprocess   Preprocess
	Output       ModelOutput
	AnalyzedAt   time.Time
	ModelUsed    string
	Cached       bool
	ProcessingID string
}

// Response converts the result to its wire form
func (r *ClassificationResult) Response() *ProcessResponse {
	pre := r.Preprocess
	if pre.Keywords == nil {
		pre.Keywords = []string{}
	}
	out := r.Output
	return &ProcessResponse{
		Preprocess:  &pre,
		ModelOutput: &out,
	}
}

// CacheEntry is a stored model output keyed by a prompt digest
type CacheEntry struct {
	Key       string
	Output    ModelOutput
	ModelUsed string
	CreatedAt time.Time
	ExpiresAt time.Time
}
