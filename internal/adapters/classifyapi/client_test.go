package classifyapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mikey/email-classifier/internal/form"
	"go.uber.org/zap/zaptest"
)

func TestClassifySendsFields(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != ProcessPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		if len(r.MultipartForm.File) != 0 {
			t.Error("no file should be sent")
		}
		got = map[string]string{
			"from_":   r.FormValue("from_"),
			"subject": r.FormValue("subject"),
			"body":    r.FormValue("body"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"preprocess":{"cleaned_text_preview":"x","keywords":["a"]},
			"model_output":{"classificacao":"Produtivo","para":"a@b.com","assunto":"Dúvida","resposta_sugerida":"Obrigado."}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", 0, zaptest.NewLogger(t))
	out, err := c.Classify(context.Background(), form.Submission{
		Fields: &form.Input{From: "x@y.com", Subject: "Dúvida", Body: "Olá"},
	})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	want := map[string]string{"from_": "x@y.com", "subject": "Dúvida", "body": "Olá"}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("field %s = %q, want %q", k, got[k], v)
		}
	}
	if out.Classification != "Produtivo" || out.To != "a@b.com" || out.Subject != "Dúvida" || out.SuggestedReply != "Obrigado." {
		t.Errorf("unexpected output %+v", out)
	}
}

func TestClassifySendsFileOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		for _, name := range []string{"from_", "subject", "body"} {
			if _, ok := r.MultipartForm.Value[name]; ok {
				t.Errorf("field %s should not be sent with a file", name)
			}
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != `relatorio "final".pdf` {
			t.Errorf("filename = %q", hdr.Filename)
		}
		if ct := hdr.Header.Get("Content-Type"); ct != form.ContentTypePDF {
			t.Errorf("content type = %q", ct)
		}
		if string(data) != "%PDF-1.4" {
			t.Errorf("data = %q", data)
		}
		_, _ = io.WriteString(w, `{"model_output":{"classificacao":"Improdutivo"}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, zaptest.NewLogger(t))
	out, err := c.Classify(context.Background(), form.Submission{
		File: &form.UploadedFile{Name: `relatorio "final".pdf`, ContentType: form.ContentTypePDF, Data: []byte("%PDF-1.4")},
	})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if out.Classification != "Improdutivo" {
		t.Errorf("classification = %q", out.Classification)
	}
}

func TestClassifyErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantSvc bool
	}{
		{"bad gateway", http.StatusBadGateway, `{"error":"Falha ao chamar Gemini","detail":"quota"}`, true},
		{"error with 200", http.StatusOK, `{"error":"Envie body/subject ou um arquivo .txt/.pdf"}`, true},
		{"missing model output", http.StatusOK, `{"preprocess":{"cleaned_text_preview":"","keywords":[]}}`, true},
		{"html error page", http.StatusInternalServerError, `<html>oops</html>`, true},
		{"garbage 200", http.StatusOK, `not json`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, 0, zaptest.NewLogger(t))
			out, err := c.Classify(context.Background(), form.Submission{Fields: &form.Input{Body: "oi"}})
			if err == nil {
				t.Fatalf("expected error, got %+v", out)
			}
			if errors.Is(err, ErrServiceError) != tt.wantSvc {
				t.Errorf("errors.Is(ErrServiceError) = %v for %v", !tt.wantSvc, err)
			}
		})
	}
}

func TestClassifyUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, 0, zaptest.NewLogger(t))
	if _, err := c.Classify(context.Background(), form.Submission{Fields: &form.Input{Body: "oi"}}); err == nil {
		t.Fatal("expected connection error")
	}
}

func TestClassifyEmptySubmission(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", 0, zaptest.NewLogger(t))
	if _, err := c.Classify(context.Background(), form.Submission{}); !errors.Is(err, form.ErrNothingToSubmit) {
		t.Fatalf("err = %v, want ErrNothingToSubmit", err)
	}
}
