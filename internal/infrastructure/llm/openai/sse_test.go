package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	llm "github.com/driftchat/driftchat/internal/infrastructure/llm"
)

type recordingSink struct {
	text      []string
	reasoning []string
}

func (s *recordingSink) OnText(d string)      { s.text = append(s.text, d) }
func (s *recordingSink) OnReasoning(d string) { s.reasoning = append(s.reasoning, d) }

func sseBody(events ...string) string {
	var b strings.Builder
	for _, e := range events {
		b.WriteString("data: ")
		b.WriteString(e)
		b.WriteString("\n\n")
	}
	return b.String()
}

func TestParseSSEStream_TextAndCompletion(t *testing.T) {
	body := sseBody(
		`{"type":"response.output_text.delta","delta":"Hel"}`,
		`{"type":"response.output_text.delta","delta":"lo"}`,
		`{"type":"response.completed","response":{"id":"resp_1","output":[{"type":"message","content":[{"type":"output_text","text":"Hello"}]}]}}`,
	)

	sink := &recordingSink{}
	result, err := ParseSSEStream(context.Background(), strings.NewReader(body), sink, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	if result.MsgID != "resp_1" {
		t.Errorf("msg id: got %q, want %q", result.MsgID, "resp_1")
	}
	if result.Content != "Hello" {
		t.Errorf("content: got %q, want %q", result.Content, "Hello")
	}
	if result.Reasoning != nil {
		t.Errorf("reasoning: got %q, want nil", *result.Reasoning)
	}
	if strings.Join(sink.text, "") != "Hello" {
		t.Errorf("streamed text: got %q, want %q", strings.Join(sink.text, ""), "Hello")
	}
}

func TestParseSSEStream_ReasoningDeltas(t *testing.T) {
	body := sseBody(
		`{"type":"response.reasoning_summary_text.delta","delta":"thinking "}`,
		`{"type":"response.reasoning_summary_text.delta","delta":"hard"}`,
		`{"type":"response.output_text.delta","delta":"42"}`,
		`{"type":"response.completed","response":{"id":"resp_2","output":[{"type":"message","content":[{"type":"output_text","text":"42"}]}]}}`,
	)

	sink := &recordingSink{}
	result, err := ParseSSEStream(context.Background(), strings.NewReader(body), sink, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	if result.Reasoning == nil || *result.Reasoning != "thinking hard" {
		t.Errorf("reasoning: got %v, want %q", result.Reasoning, "thinking hard")
	}
	if len(sink.reasoning) != 2 {
		t.Errorf("reasoning deltas: got %d, want 2", len(sink.reasoning))
	}
}

func TestParseSSEStream_ReasoningFromCompletedOutput(t *testing.T) {
	body := sseBody(
		`{"type":"response.completed","response":{"id":"resp_3","output":[` +
			`{"type":"reasoning","summary":[{"type":"summary_text","text":"step one"},{"type":"summary_text","text":"step two"}]},` +
			`{"type":"message","content":[{"type":"output_text","text":"done"}]}]}}`,
	)

	result, err := ParseSSEStream(context.Background(), strings.NewReader(body), &recordingSink{}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if result.Reasoning == nil || *result.Reasoning != "step one\n\nstep two" {
		t.Errorf("reasoning: got %v", result.Reasoning)
	}
}

func TestParseSSEStream_Failure(t *testing.T) {
	body := sseBody(
		`{"type":"response.failed","response":{"id":"resp_4","error":{"message":"rate limited"}}}`,
	)

	_, err := ParseSSEStream(context.Background(), strings.NewReader(body), &recordingSink{}, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("error: got %v, want rate limited", err)
	}
}

func TestParseSSEStream_UnknownEventsIgnored(t *testing.T) {
	body := sseBody(
		`{"type":"response.created"}`,
		`{"type":"response.in_progress"}`,
		`{"type":"response.completed","response":{"id":"resp_5","output":[{"type":"message","content":[{"type":"output_text","text":"ok"}]}]}}`,
	)

	result, err := ParseSSEStream(context.Background(), strings.NewReader(body), &recordingSink{}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if result.Content != "ok" {
		t.Errorf("content: got %q, want %q", result.Content, "ok")
	}
}

func TestStream_RequiresEffortForReasoningModels(t *testing.T) {
	p := New(zap.NewNop())
	_, err := p.Stream(context.Background(), "sk-test", llm.StreamRequest{
		Model:   "o3",
		History: []llm.Turn{{Role: "user", Content: "hi"}},
	}, &recordingSink{})
	if err == nil || !strings.Contains(err.Error(), "requires a reasoning effort") {
		t.Errorf("error: got %v, want effort requirement", err)
	}
}

func TestGenerateTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/responses" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("auth header: got %q", auth)
		}
		fmt.Fprint(w, `{"id":"resp_t","output":[{"type":"message","content":[{"type":"output_text","text":"  A Short Title  "}]}]}`)
	}))
	defer server.Close()

	p := New(zap.NewNop())
	p.baseURL = server.URL

	title, err := p.GenerateTitle(context.Background(), "sk-test", "hello world")
	if err != nil {
		t.Fatal(err)
	}
	if title != "A Short Title" {
		t.Errorf("title: got %q, want %q", title, "A Short Title")
	}
}

func TestStream_EndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseBody(
			`{"type":"response.output_text.delta","delta":"hi"}`,
			`{"type":"response.completed","response":{"id":"resp_e","output":[{"type":"message","content":[{"type":"output_text","text":"hi"}]}]}}`,
		))
	}))
	defer server.Close()

	p := New(zap.NewNop())
	p.baseURL = server.URL

	sink := &recordingSink{}
	result, err := p.Stream(context.Background(), "sk-test", llm.StreamRequest{
		Model:   "gpt-4.1-mini",
		History: []llm.Turn{{Role: "user", Content: "say hi"}},
	}, sink)
	if err != nil {
		t.Fatal(err)
	}
	if result.MsgID != "resp_e" || result.Content != "hi" {
		t.Errorf("result: got %+v", result)
	}
}
