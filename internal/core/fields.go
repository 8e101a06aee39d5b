package core

import (
	"regexp"
	"strings"
)

// Patterns matching the layout of a conversation printed from Gmail in
// Portuguese. The subject sits on the line before "1 mensagem", the sender
// and date on the line after it.
var (
	subjectPattern   = regexp.MustCompile(`(?i)\n(.+)\n1 mensagem`)
	senderLongDate   = regexp.MustCompile(`(?i)1 mensagem\n(.+?)\s+(\d{1,2} de [a-zç]+ de \d{4} às \d{1,2}:\d{2})`)
	senderShortDate  = regexp.MustCompile(`1 mensagem\n(.+?)\s+(\d{1,2}/\d{1,2}/\d{4}, \d{1,2}:\d{2})`)
	recipientPattern = regexp.MustCompile(`Para:\s*([^\n]+)`)
	bodyPattern      = regexp.MustCompile(`(?s)Para:[^\n]+\n(.+?)(?:\n\d{1,2}/\d{1,2}/\d{4}|Gmail -|https?://|\z)`)
)

// ExtractEmailFields recovers sender, recipient, date, subject and body from
// the text of an exported email. Fields that cannot be found are left empty.
func ExtractEmailFields(text string) EmailFields {
	var fields EmailFields

	if m := subjectPattern.FindStringSubmatch(text); m != nil {
		fields.Subject = strings.TrimSpace(m[1])
	}

	m := senderLongDate.FindStringSubmatch(text)
	if m == nil {
		m = senderShortDate.FindStringSubmatch(text)
	}
	if m != nil {
		fields.From = strings.TrimSpace(m[1])
		fields.Date = strings.TrimSpace(m[2])
	}

	if m := recipientPattern.FindStringSubmatch(text); m != nil {
		fields.To = strings.TrimSpace(m[1])
	}

	if m := bodyPattern.FindStringSubmatch(text); m != nil {
		fields.Body = strings.TrimSpace(m[1])
	}

	return fields
}
