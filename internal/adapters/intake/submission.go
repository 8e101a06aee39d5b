package intake

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/extract"
)

// FromMessage turns a parsed message into typed submission fields
func FromMessage(msg *extract.Message) *core.Submission {
	return &core.Submission{
		From:    msg.From,
		Subject: msg.Subject,
		Body:    msg.Body,
	}
}

// LoadSubmission reads the CLI input. A .eml file, or stdin when path is
// empty or "-", is parsed as an RFC 5322 message. Any other file is
// uploaded as a document and its extension decides how it is read.
func LoadSubmission(path string, stdin io.Reader) (*core.Submission, error) {
	if path == "" || path == "-" {
		msg, err := extract.ParseMessage(stdin)
		if err != nil {
			return nil, err
		}
		return FromMessage(msg), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".eml") {
		msg, err := extract.ParseMessage(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return FromMessage(msg), nil
	}

	return &core.Submission{
		File: &core.Attachment{
			Filename: filepath.Base(path),
			Data:     data,
		},
	}, nil
}
