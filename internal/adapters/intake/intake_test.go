package intake

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/core"
	"go.uber.org/zap/zaptest"
)

type stubService struct {
	mu     sync.Mutex
	got    []*core.Submission
	result *core.ClassificationResult
	err    error
}

func (s *stubService) ProcessEmail(_ context.Context, sub *core.Submission) (*core.ClassificationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, sub)
	return s.result, s.err
}

const sampleMessage = "From: Cliente <cliente@ex.com>\r\n" +
	"To: suporte@empresa.com\r\n" +
	"Subject: =?utf-8?q?D=C3=BAvida_sobre_fatura?=\r\n" +
	"Date: Mon, 2 Jun 2025 10:30:00 -0300\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Poderiam enviar a segunda via da fatura?\r\n"

func testSMTPConfig() config.SMTPConfig {
	return config.SMTPConfig{
		ListenAddress:        "127.0.0.1:0",
		ClassificationHeader: "X-Email-Classification",
		ReplyHeader:          "X-Email-Suggested-Reply",
		ErrorHeader:          "X-Email-Classification-Error",
	}
}

func classified() *core.ClassificationResult {
	return &core.ClassificationResult{
		Output: core.ModelOutput{
			Classification: "Produtivo",
			SuggestedReply: "Olá,\nsegue a segunda via.",
		},
		ModelUsed: "stub",
	}
}

func TestProcessMessageStampsHeaders(t *testing.T) {
	svc := &stubService{result: classified()}
	in := NewSMTPIntake(svc, zaptest.NewLogger(t), testSMTPConfig())

	out := in.ProcessMessage(context.Background(), []byte(sampleMessage))

	sub := svc.got[0]
	if sub.Subject != "Dúvida sobre fatura" || sub.From != "Cliente <cliente@ex.com>" {
		t.Errorf("submission = %+v", sub)
	}
	if !strings.Contains(sub.Body, "segunda via") {
		t.Errorf("body = %q", sub.Body)
	}

	msg, err := mail.ReadMessage(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("stamped message does not parse: %v", err)
	}
	if got := msg.Header.Get("X-Email-Classification"); got != "Produtivo" {
		t.Errorf("classification header = %q", got)
	}
	reply, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("X-Email-Suggested-Reply"))
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if reply != "Olá,\nsegue a segunda via." {
		t.Errorf("reply header = %q", reply)
	}
	if !bytes.HasSuffix(out, []byte(sampleMessage)) {
		t.Error("original message should follow the new headers untouched")
	}
}

func TestProcessMessageErrorHeader(t *testing.T) {
	svc := &stubService{err: errors.New("model call failed: quota")}
	in := NewSMTPIntake(svc, zaptest.NewLogger(t), testSMTPConfig())

	out := in.ProcessMessage(context.Background(), []byte(sampleMessage))

	msg, _ := mail.ReadMessage(bytes.NewReader(out))
	if got := msg.Header.Get("X-Email-Classification-Error"); !strings.Contains(got, "quota") {
		t.Errorf("error header = %q", got)
	}
	if msg.Header.Get("X-Email-Classification") != "" {
		t.Error("no classification header expected")
	}
}

func TestProcessMessageUnparsable(t *testing.T) {
	svc := &stubService{result: classified()}
	in := NewSMTPIntake(svc, zaptest.NewLogger(t), testSMTPConfig())

	raw := []byte("not a header line\r\n\r\ncorpo\r\n")
	out := in.ProcessMessage(context.Background(), raw)

	if len(svc.got) != 0 {
		t.Error("an unparsable message should not be classified")
	}
	if !bytes.HasPrefix(out, []byte("X-Email-Classification-Error: ")) {
		t.Errorf("error header missing:\n%s", out)
	}
	if !bytes.HasSuffix(out, raw) {
		t.Error("the original message should be relayed untouched")
	}
}

type captureBackend struct {
	mu       sync.Mutex
	received chan []byte
	rcpts    []string
}

func (b *captureBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &captureSession{b: b}, nil
}

type captureSession struct{ b *captureBackend }

func (s *captureSession) Reset()        {}
func (s *captureSession) Logout() error { return nil }
func (s *captureSession) Mail(string, *smtp.MailOptions) error {
	return nil
}
func (s *captureSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.b.mu.Lock()
	s.b.rcpts = append(s.b.rcpts, to)
	s.b.mu.Unlock()
	return nil
}
func (s *captureSession) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.b.received <- data
	return nil
}

func TestSMTPIntakeRelays(t *testing.T) {
	downstream := &captureBackend{received: make(chan []byte, 1)}
	next := smtp.NewServer(downstream)
	next.Domain = "localhost"
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go func() { _ = next.Serve(ln) }()
	defer next.Close()

	host, port, _ := net.SplitHostPort(ln.Addr().String())
	cfg := testSMTPConfig()
	cfg.ForwardEnabled = true
	cfg.ForwardAddress = host
	cfg.ForwardPort, _ = strconv.Atoi(port)

	in := NewSMTPIntake(&stubService{result: classified()}, zaptest.NewLogger(t), cfg)
	if err := in.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer in.Stop()

	c, err := smtp.Dial(in.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()
	if err := c.Hello("test"); err != nil {
		t.Fatal(err)
	}
	if err := c.Mail("cliente@ex.com", nil); err != nil {
		t.Fatal(err)
	}
	if err := c.Rcpt("suporte@empresa.com", nil); err != nil {
		t.Fatal(err)
	}
	wc, err := c.Data()
	if err != nil {
		t.Fatal(err)
	}
	_, _ = wc.Write([]byte(sampleMessage))
	if err := wc.Close(); err != nil {
		t.Fatalf("DATA: %v", err)
	}
	_ = c.Quit()

	select {
	case data := <-downstream.received:
		if !bytes.Contains(data, []byte("X-Email-Classification: Produtivo")) {
			t.Errorf("relayed message lacks the classification header:\n%s", data)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("message was not relayed")
	}

	downstream.mu.Lock()
	defer downstream.mu.Unlock()
	if len(downstream.rcpts) != 1 || downstream.rcpts[0] != "suporte@empresa.com" {
		t.Errorf("recipients = %v", downstream.rcpts)
	}
}

func TestCLIIntakeReport(t *testing.T) {
	var out bytes.Buffer
	svc := &stubService{result: classified()}
	cli := NewCLIIntake(svc, zaptest.NewLogger(t), &out, false)

	if _, err := cli.Classify(context.Background(), &core.Submission{Body: "oi"}); err != nil {
		t.Fatalf("Classify: %v", err)
	}

	report := out.String()
	for _, want := range []string{
		"Classification: Produtivo",
		"Para: Não especificado\nAssunto: Não especificado\n\nOlá,\nsegue a segunda via.",
		"Model used: stub",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report lacks %q:\n%s", want, report)
		}
	}
}

func TestCLIIntakeError(t *testing.T) {
	var out bytes.Buffer
	cli := NewCLIIntake(&stubService{err: core.ErrEmptySubmission}, zaptest.NewLogger(t), &out, false)

	if _, err := cli.Classify(context.Background(), &core.Submission{}); !errors.Is(err, core.ErrEmptySubmission) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(out.String(), "Error: empty submission") {
		t.Errorf("report = %q", out.String())
	}
}

func TestLoadSubmission(t *testing.T) {
	dir := t.TempDir()
	eml := filepath.Join(dir, "pedido.EML")
	txt := filepath.Join(dir, "pedido.txt")
	_ = os.WriteFile(eml, []byte(sampleMessage), 0o600)
	_ = os.WriteFile(txt, []byte("Olá"), 0o600)

	sub, err := LoadSubmission(eml, nil)
	if err != nil {
		t.Fatalf("LoadSubmission(eml): %v", err)
	}
	if sub.File != nil || sub.Subject != "Dúvida sobre fatura" {
		t.Errorf("eml submission = %+v", sub)
	}

	sub, err = LoadSubmission(txt, nil)
	if err != nil {
		t.Fatalf("LoadSubmission(txt): %v", err)
	}
	if sub.File == nil || sub.File.Filename != "pedido.txt" || string(sub.File.Data) != "Olá" {
		t.Errorf("txt submission = %+v", sub)
	}

	sub, err = LoadSubmission("-", strings.NewReader(sampleMessage))
	if err != nil {
		t.Fatalf("LoadSubmission(stdin): %v", err)
	}
	if !strings.Contains(sub.Body, "segunda via") {
		t.Errorf("stdin body = %q", sub.Body)
	}

	if _, err := LoadSubmission(filepath.Join(dir, "missing.pdf"), nil); err == nil {
		t.Error("expected error for a missing file")
	}
}
