package intake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/extract"
	"go.uber.org/zap"
)

// ProcessTimeout bounds the classification of one message
const ProcessTimeout = 60 * time.Second

// SMTPIntake receives mail over SMTP, stamps it with the classification and
// the suggested reply and relays it to the next hop
type SMTPIntake struct {
	service core.Classifier
	logger  *zap.Logger
	cfg     config.SMTPConfig
	server  *smtp.Server
	addr    net.Addr
}

// NewSMTPIntake creates a new SMTP intake
func NewSMTPIntake(service core.Classifier, logger *zap.Logger, cfg config.SMTPConfig) *SMTPIntake {
	return &SMTPIntake{
		service: service,
		logger:  logger,
		cfg:     cfg,
	}
}

// Start starts the SMTP server in the background
func (f *SMTPIntake) Start() error {
	f.server = smtp.NewServer(&smtpBackend{intake: f})

	f.server.Addr = f.cfg.ListenAddress
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	f.server.MaxRecipients = 50

	ln, err := net.Listen("tcp", f.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", f.cfg.ListenAddress, err)
	}
	f.addr = ln.Addr()

	f.logger.Info("SMTP intake starting", zap.String("address", f.addr.String()))

	go func() {
		if err := f.server.Serve(ln); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the bound address once started
func (f *SMTPIntake) Addr() net.Addr {
	return f.addr
}

// Stop stops the SMTP server
func (f *SMTPIntake) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessMessage classifies a raw message and returns it with the result
// headers prepended. Parse and classification failures are reported in the
// error header and never reject the message.
func (f *SMTPIntake) ProcessMessage(ctx context.Context, raw []byte) []byte {
	var stamped bytes.Buffer

	msg, err := extract.ParseMessage(bytes.NewReader(raw))
	if err != nil {
		f.logger.Error("Failed to parse email message", zap.Error(err))
		writeHeader(&stamped, f.cfg.ErrorHeader, err.Error())
		stamped.Write(raw)
		return stamped.Bytes()
	}

	submission := FromMessage(msg)

	result, err := f.service.ProcessEmail(ctx, submission)
	if err != nil {
		f.logger.Error("Failed to classify email",
			zap.Error(err),
			zap.String("from", msg.From))
		writeHeader(&stamped, f.cfg.ErrorHeader, err.Error())
	} else {
		writeHeader(&stamped, f.cfg.ClassificationHeader, result.Output.Classification)
		if result.Output.SuggestedReply != "" {
			writeHeader(&stamped, f.cfg.ReplyHeader, result.Output.SuggestedReply)
		}

		f.logger.Info("Classified email",
			zap.String("from", msg.From),
			zap.String("classification", result.Output.Classification),
			zap.Bool("cached", result.Cached),
			zap.String("model", result.ModelUsed))
	}

	// The original message follows untouched, attachments included
	stamped.Write(raw)
	return stamped.Bytes()
}

// writeHeader writes one header, RFC 2047 encoding non-ASCII values and
// folding long encoded values
func writeHeader(w io.Writer, name, value string) {
	encoded := mime.QEncoding.Encode("utf-8", value)
	encoded = strings.ReplaceAll(encoded, "?= =?", "?=\r\n =?")
	fmt.Fprintf(w, "%s: %s\r\n", name, encoded)
}

// forward relays the message to the configured next hop
func (f *SMTPIntake) forward(sender string, recipients []string, data []byte) error {
	nextHop := net.JoinHostPort(f.cfg.ForwardAddress, strconv.Itoa(f.cfg.ForwardPort))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", nextHop, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", nextHop, err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	accepted := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			continue
		}
		accepted = true
	}
	if !accepted {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		// Already delivered
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

type smtpBackend struct {
	intake *SMTPIntake
}

func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{intake: b.intake}, nil
}

type smtpSession struct {
	intake     *SMTPIntake
	sender     string
	recipients []string
}

func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.intake.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), ProcessTimeout)
	defer cancel()

	stamped := s.intake.ProcessMessage(ctx, raw)

	if !s.intake.cfg.ForwardEnabled {
		s.intake.logger.Warn("Forwarding disabled, message dropped after classification",
			zap.String("sender", s.sender))
		return nil
	}

	if err := s.intake.forward(s.sender, s.recipients, stamped); err != nil {
		s.intake.logger.Error("Failed to relay email",
			zap.Error(err),
			zap.String("sender", s.sender))
		return err
	}
	return nil
}

func (s *smtpSession) Logout() error {
	return nil
}
