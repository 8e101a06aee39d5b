package core

import (
	"strings"
	"testing"
)

func TestParseModelOutput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ModelOutput
	}{
		{
			name: "plain json",
			in:   `{"classificacao":"Improdutivo","resposta_sugerida":"Obrigado!"}`,
			want: ModelOutput{Classification: "Improdutivo", SuggestedReply: "Obrigado!"},
		},
		{
			name: "fenced json",
			in:   "```json\n{\"classificacao\":\"Produtivo\",\"para\":\"a@b.com\"}\n```",
			want: ModelOutput{Classification: "Produtivo", To: "a@b.com"},
		},
		{
			name: "prose around object",
			in:   "Aqui está: {\"assunto\":\"Re: Oi\"} espero ter ajudado",
			want: ModelOutput{Subject: "Re: Oi"},
		},
		{
			name: "no object",
			in:   "sem json aqui",
			want: ModelOutput{RawOutput: "sem json aqui"},
		},
		{
			name: "broken object",
			in:   "{\"classificacao\": }",
			want: ModelOutput{RawOutput: "{\"classificacao\": }"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseModelOutput(tt.in); got != tt.want {
				t.Fatalf("ParseModelOutput() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBuildPromptWithoutMetadata(t *testing.T) {
	p := BuildPrompt("texto", []string{"reunião", "projeto"}, nil)
	if strings.Contains(p, "Metadados extraídos") {
		t.Error("metadata block should be omitted")
	}
	if !strings.Contains(p, "Palavras-chave (lematizadas e sem stopwords): ['reunião', 'projeto']") {
		t.Error("keywords not rendered")
	}
	if !strings.Contains(p, "E-mail (texto limpo):\ntexto\n") {
		t.Error("email text not rendered")
	}
}

func TestPromptKey(t *testing.T) {
	a := PromptKey("m1", "prompt")
	if a != PromptKey("m1", "prompt") {
		t.Error("key should be deterministic")
	}
	if a == PromptKey("m2", "prompt") {
		t.Error("key should depend on the model")
	}
	if len(a) != 64 {
		t.Errorf("key length = %d", len(a))
	}
}
