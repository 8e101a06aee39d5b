package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	if got := cfg.GetLLM().Provider; got != "gemini" {
		t.Errorf("llm provider = %q, want gemini", got)
	}
	if got := cfg.GetGemini().ModelName; got != "gemini-2.5-flash-lite" {
		t.Errorf("gemini model = %q", got)
	}

	pre := cfg.GetPreprocess()
	if pre.MaxPromptChars != 5000 || pre.KeywordCount != 12 || pre.PreviewChars != 1000 {
		t.Errorf("preprocess defaults = %+v", pre)
	}

	api := cfg.GetAPI()
	if len(api.AllowedOrigins) != 3 {
		t.Errorf("allowed origins = %v, want 3 entries", api.AllowedOrigins)
	}

	web, err := cfg.GetWeb()
	if err != nil {
		t.Fatalf("GetWeb: %v", err)
	}
	if web.RequestTimeout != 0 {
		t.Errorf("request timeout = %v, want none", web.RequestTimeout)
	}
	if web.SessionTTL != 24*time.Hour {
		t.Errorf("session ttl = %v", web.SessionTTL)
	}
	if web.ClassifierURL != "http://localhost:8000" {
		t.Errorf("classifier url = %q", web.ClassifierURL)
	}

	cache, err := cfg.GetCache()
	if err != nil {
		t.Fatalf("GetCache: %v", err)
	}
	if cache.Type != "memory" || !cache.Enabled {
		t.Errorf("cache defaults = %+v", cache)
	}
}

func TestInvalidDuration(t *testing.T) {
	v := NewEmptyViper()
	v.Set("cache.ttl", "soon")
	cfg := NewFromViper(v)

	if _, err := cfg.GetCache(); err == nil {
		t.Fatal("expected error for invalid cache ttl")
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("llm:\n  provider: openai\nweb:\n  classifier_url: http://classifier:9000\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewFromFile(path)
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}
	if got := cfg.GetLLM().Provider; got != "openai" {
		t.Errorf("provider = %q, want openai", got)
	}
	web, err := cfg.GetWeb()
	if err != nil {
		t.Fatal(err)
	}
	if web.ClassifierURL != "http://classifier:9000" {
		t.Errorf("classifier url = %q", web.ClassifierURL)
	}
	// untouched keys keep their defaults
	if got := cfg.GetSMTP().ClassificationHeader; got != "X-Email-Classification" {
		t.Errorf("classification header = %q", got)
	}
}
