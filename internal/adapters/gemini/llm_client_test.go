package gemini

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/email-classifier/internal/config"
	"go.uber.org/zap/zaptest"
)

func TestResponseText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{"nil", nil, ""},
		{"no candidates", &genai.GenerateContentResponse{}, ""},
		{
			name: "text parts",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{Parts: []genai.Part{
						genai.Text(`{"classificacao":`),
						genai.Text(`"Produtivo"}`),
					}},
				}},
			},
			want: `{"classificacao":"Produtivo"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := responseText(tt.resp); got != tt.want {
				t.Fatalf("responseText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFactoryRequiresAPIKey(t *testing.T) {
	v := config.NewEmptyViper()
	v.Set("gemini.model_name", "gemini-2.5-flash-lite")

	f := NewFactory(config.NewFromViper(v), zaptest.NewLogger(t))
	if _, err := f.CreateClient(); err == nil {
		t.Fatal("expected error without API key")
	}
}
