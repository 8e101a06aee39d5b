package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap/zaptest"
)

type fakeInvoker struct {
	input *bedrockruntime.InvokeModelInput
	body  []byte
	err   error
}

func (f *fakeInvoker) InvokeModel(_ context.Context, params *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: f.body}, nil
}

func TestGenerateAnthropic(t *testing.T) {
	inv := &fakeInvoker{body: []byte(`{"content":[{"type":"text","text":"{\"classificacao\":\"Produtivo\"}"}]}`)}
	c := NewBedrockClient(inv, "anthropic.claude-3-haiku-20240307-v1:0", 500, 0.2, 0.9, zaptest.NewLogger(t))

	text, err := c.Generate(context.Background(), "classifique")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != `{"classificacao":"Produtivo"}` {
		t.Errorf("text = %q", text)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(inv.input.Body, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload["anthropic_version"] != "bedrock-2023-05-31" {
		t.Errorf("payload = %v", payload)
	}
	if *inv.input.ModelId != "anthropic.claude-3-haiku-20240307-v1:0" {
		t.Errorf("model id = %s", *inv.input.ModelId)
	}
}

func TestGenerateTitan(t *testing.T) {
	inv := &fakeInvoker{body: []byte(`{"results":[{"outputText":"ok"}]}`)}
	c := NewBedrockClient(inv, "amazon.titan-text-express-v1", 500, 0.2, 0.9, zaptest.NewLogger(t))

	text, err := c.Generate(context.Background(), "p")
	if err != nil || text != "ok" {
		t.Fatalf("Generate = %q, %v", text, err)
	}

	var payload map[string]interface{}
	_ = json.Unmarshal(inv.input.Body, &payload)
	if payload["inputText"] != "p" {
		t.Errorf("payload = %v", payload)
	}
}

func TestGenerateEmpty(t *testing.T) {
	inv := &fakeInvoker{body: []byte(`{"results":[]}`)}
	c := NewBedrockClient(inv, "amazon.titan-text-express-v1", 500, 0.2, 0.9, zaptest.NewLogger(t))

	if _, err := c.Generate(context.Background(), "p"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestGenerateInvokeError(t *testing.T) {
	boom := errors.New("throttled")
	c := NewBedrockClient(&fakeInvoker{err: boom}, "meta.llama3", 500, 0.2, 0.9, zaptest.NewLogger(t))

	if _, err := c.Generate(context.Background(), "p"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}
