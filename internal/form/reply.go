package form

import (
	"strings"

	"github.com/mikey/email-classifier/internal/core"
)

// Unspecified replaces a recipient or subject the model did not return
const Unspecified = "Não especificado"

// ComposeSuggestion formats the model output as the reply shown to the user:
// recipient and subject lines, a blank line, then the suggested text
func ComposeSuggestion(out *core.ModelOutput) string {
	to, subject := out.To, out.Subject
	if to == "" {
		to = Unspecified
	}
	if subject == "" {
		subject = Unspecified
	}

	var sb strings.Builder
	sb.WriteString("Para: ")
	sb.WriteString(to)
	sb.WriteString("\nAssunto: ")
	sb.WriteString(subject)
	sb.WriteString("\n\n")
	sb.WriteString(out.SuggestedReply)
	return sb.String()
}
