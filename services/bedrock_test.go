package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

type fakeInvoker struct {
	body    string
	err     error
	lastReq *bedrockruntime.InvokeModelInput
}

func (f *fakeInvoker) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.lastReq = params
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.body)}, nil
}

func newTestBedrock(invoker *fakeInvoker) *BedrockService {
	return &BedrockService{
		client:    invoker,
		model:     "anthropic.claude-test",
		maxTokens: 256,
	}
}

func TestBedrock_InvokeWithPrompt(t *testing.T) {
	SetGlobalRegistry(NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))

	invoker := &fakeInvoker{
		body: `{"content": [{"type": "text", "text": "A balanced view."}], "stop_reason": "end_turn", "usage": {"input_tokens": 100, "output_tokens": 20}}`,
	}
	svc := newTestBedrock(invoker)

	text, err := svc.InvokeWithPrompt(context.Background(), "system", "user prompt")
	if err != nil {
		t.Fatalf("InvokeWithPrompt failed: %v", err)
	}
	if text != "A balanced view." {
		t.Errorf("unexpected text %q", text)
	}

	if invoker.lastReq == nil || *invoker.lastReq.ModelId != "anthropic.claude-test" {
		t.Fatal("expected configured model ID on the request")
	}

	var req claudeRequest
	if err := json.Unmarshal(invoker.lastReq.Body, &req); err != nil {
		t.Fatalf("request body should be valid JSON: %v", err)
	}
	if req.MaxTokens != 256 {
		t.Errorf("expected max_tokens 256, got %d", req.MaxTokens)
	}
	if req.System != "system" {
		t.Errorf("expected system prompt forwarded, got %q", req.System)
	}
	if len(req.Messages) != 1 || req.Messages[0].Content != "user prompt" {
		t.Errorf("unexpected messages: %+v", req.Messages)
	}
}

func TestBedrock_EmptyContent(t *testing.T) {
	SetGlobalRegistry(NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))

	svc := newTestBedrock(&fakeInvoker{body: `{"content": []}`})

	_, err := svc.InvokeWithPrompt(context.Background(), "system", "user")
	if err == nil {
		t.Fatal("expected error for empty content")
	}
	if code := CodeOf(err); code != ErrDataFormat {
		t.Errorf("expected DATA_FORMAT_ERROR, got %s", code)
	}
}
