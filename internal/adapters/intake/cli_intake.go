package intake

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/form"
	"go.uber.org/zap"
)

// CLIIntake classifies one document from the command line and prints a
// report
type CLIIntake struct {
	service core.Classifier
	logger  *zap.Logger
	out     io.Writer
	verbose bool
}

// NewCLIIntake creates a new CLI intake writing its report to out
func NewCLIIntake(service core.Classifier, logger *zap.Logger, out io.Writer, verbose bool) *CLIIntake {
	return &CLIIntake{
		service: service,
		logger:  logger,
		out:     out,
		verbose: verbose,
	}
}

// Classify processes the submission and prints the summary, the
// classification and the suggested reply
func (c *CLIIntake) Classify(ctx context.Context, submission *core.Submission) (*core.ClassificationResult, error) {
	c.logger.Debug("Processing email", zap.String("from", submission.From))

	fmt.Fprintf(c.out, "\n=== Email Summary ===\n")
	if submission.File != nil {
		fmt.Fprintf(c.out, "File: %s\n", submission.File.Filename)
		fmt.Fprintf(c.out, "Size: %d bytes\n", len(submission.File.Data))
	} else {
		fmt.Fprintf(c.out, "From: %s\n", submission.From)
		fmt.Fprintf(c.out, "Subject: %s\n", submission.Subject)
		fmt.Fprintf(c.out, "Body length: %d bytes\n", len(submission.Body))
	}

	fmt.Fprintf(c.out, "\n=== Analysis ===\n")
	fmt.Fprintf(c.out, "Classifying email with LLM...\n")
	start := time.Now()
	result, err := c.service.ProcessEmail(ctx, submission)
	if err != nil {
		c.logger.Error("Failed to classify email", zap.Error(err))
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return nil, err
	}
	duration := time.Since(start)

	if c.verbose {
		fmt.Fprintf(c.out, "\nCleaned text preview:\n%s\n", result.Preprocess.CleanedTextPreview)
		fmt.Fprintf(c.out, "Keywords: %v\n", result.Preprocess.Keywords)
	}

	fmt.Fprintf(c.out, "\n=== Results ===\n")
	if result.Output.RawOutput != "" {
		fmt.Fprintf(c.out, "Model reply was not JSON:\n%s\n", result.Output.RawOutput)
	} else {
		fmt.Fprintf(c.out, "Classification: %s\n", result.Output.Classification)
		fmt.Fprintf(c.out, "\nSuggested reply:\n%s\n\n", form.ComposeSuggestion(&result.Output))
	}
	fmt.Fprintf(c.out, "Model used: %s\n", result.ModelUsed)
	fmt.Fprintf(c.out, "Cached: %t\n", result.Cached)
	fmt.Fprintf(c.out, "Processing time: %v\n", duration)

	return result, nil
}

// Start is a no-op for the CLI intake
func (c *CLIIntake) Start() error {
	return nil
}

// Stop is a no-op for the CLI intake
func (c *CLIIntake) Stop() error {
	return nil
}
