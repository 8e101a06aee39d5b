package core

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

const notIdentified = "não identificado"

const promptTemplate = `
Você é um assistente que analisa e-mails para classificá-los (Produtivo / Improdutivo) e sugerir uma resposta apropriada.
%s
Palavras-chave (lematizadas e sem stopwords): %s

E-mail (texto limpo):
%s

Tarefas:
1) Classifique o e-mail como:
Produtivo: Emails que requerem uma ação ou resposta específica (ex.: solicitações de suporte técnico, atualização sobre casos em aberto, dúvidas sobre o sistema).
Improdutivo: Emails que não necessitam de uma ação imediata (ex.: mensagens de felicitações, agradecimentos).
2) Gere uma sugestão de resposta educada, concisa (2-6 frases), apropriada ao tom do e-mail.
3) Retorne SOMENTE um JSON bem-formado com as chaves:
   {
     "classificacao": "Produtivo" | "Improdutivo",
     "para": "endereço extraído ou vazio",
     "assunto": "assunto extraído ou vazio",
     "resposta_sugerida": "texto da resposta sugerida"
   }

Importante: não explique nada além do JSON. Retorne a resposta_sugerida na formatação de um e-mail, iniciando com uma saudação (ex.: "Olá," ou "Prezado(a),").
`

// BuildPrompt assembles the instruction sent to the model. The email text is
// expected to be already truncated.
func BuildPrompt(text string, keywords []string, fields *EmailFields) string {
	meta := ""
	if fields != nil {
		meta = fmt.Sprintf(`
Metadados extraídos:
- De: %s
- Assunto: %s
- Data: %s
`, orNotIdentified(fields.From), orNotIdentified(fields.Subject), orNotIdentified(fields.Date))
	}

	return fmt.Sprintf(promptTemplate, meta, formatKeywords(keywords), text)
}

func orNotIdentified(s string) string {
	if strings.TrimSpace(s) == "" {
		return notIdentified
	}
	return s
}

func formatKeywords(keywords []string) string {
	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = "'" + k + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// PromptKey derives the cache key for a prompt sent to a given model
func PromptKey(model, prompt string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}

// ParseModelOutput decodes the JSON object in a model reply. Models often
// wrap the object in prose or code fences, so when the whole reply is not
// valid JSON the span from the first '{' to the last '}' is tried. A reply
// that still cannot be decoded is kept verbatim in RawOutput.
func ParseModelOutput(text string) ModelOutput {
	var out ModelOutput
	if err := json.Unmarshal([]byte(text), &out); err == nil {
		return out
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		out = ModelOutput{}
		if err := json.Unmarshal([]byte(text[start:end+1]), &out); err == nil {
			return out
		}
	}

	return ModelOutput{RawOutput: text}
}
