package extract

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// Message is the readable part of an RFC 5322 message
type Message struct {
	From    string
	To      string
	Subject string
	Date    time.Time
	Body    string
}

// ParseMessage reads a raw message and decodes its headers and first text
// body part. HTML is used only when the message has no plain text part.
func ParseMessage(r io.Reader) (*Message, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("failed to parse email: %w", err)
	}
	defer mr.Close()

	out := &Message{
		From: addressHeader(mr.Header, "From"),
		To:   addressHeader(mr.Header, "To"),
	}
	if subject, err := mr.Header.Subject(); err == nil {
		out.Subject = subject
	} else {
		out.Subject = mr.Header.Get("Subject")
	}
	if date, err := mr.Header.Date(); err == nil {
		out.Date = date
	}

	var plain, html string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			// Keep whatever was found before the broken part
			break
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()

		switch {
		case contentType == "text/plain" && plain == "":
			body, err := io.ReadAll(part.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to read message body: %w", err)
			}
			plain = DecodeText(body)
		case contentType == "text/html" && html == "":
			body, err := io.ReadAll(part.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to read message body: %w", err)
			}
			html = DecodeText(body)
		}
	}

	if plain != "" {
		out.Body = strings.TrimSpace(plain)
	} else {
		out.Body = strings.TrimSpace(html)
	}

	return out, nil
}

func addressHeader(h mail.Header, key string) string {
	addrs, err := h.AddressList(key)
	if err != nil || len(addrs) == 0 {
		if text, err := h.Text(key); err == nil {
			return text
		}
		return h.Get(key)
	}

	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a.Name != "" {
			parts = append(parts, a.Name+" <"+a.Address+">")
		} else {
			parts = append(parts, a.Address)
		}
	}
	return strings.Join(parts, ", ")
}
