package anthropic

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

func TestParseSSEStream_AccumulatesTextDeltas(t *testing.T) {
	body := sseBody(
		`{"type":"message_start","message":{"id":"msg_1","role":"assistant"}}`,
		`{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`,
		`{"type":"ping"}`,
		`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello"}}`,
		`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":", world"}}`,
		`{"type":"content_block_stop","index":0}`,
		`{"type":"message_delta","delta":{"stop_reason":"end_turn"}}`,
		`{"type":"message_stop"}`,
	)

	sink := &recordingSink{}
	result, err := ParseSSEStream(context.Background(), strings.NewReader(body), sink, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	if result.Content != "Hello, world" {
		t.Errorf("content: got %q, want %q", result.Content, "Hello, world")
	}
	if result.MsgID == "" {
		t.Error("expected a generated msg id")
	}
	if result.Reasoning != nil {
		t.Errorf("reasoning: got %v, want nil", result.Reasoning)
	}
	if len(sink.text) != 2 {
		t.Errorf("deltas: got %d, want 2", len(sink.text))
	}
}

func TestParseSSEStream_UnknownEventsIgnored(t *testing.T) {
	body := sseBody(
		`{"type":"some_future_event","payload":{"x":1}}`,
		`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"ok"}}`,
		`{"type":"message_stop"}`,
	)

	result, err := ParseSSEStream(context.Background(), strings.NewReader(body), &recordingSink{}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if result.Content != "ok" {
		t.Errorf("content: got %q, want %q", result.Content, "ok")
	}
}

func TestGenerateTitle_SendsVersionHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		if key := r.Header.Get("x-api-key"); key != "sk-ant" {
			t.Errorf("api key header: got %q", key)
		}
		if v := r.Header.Get("anthropic-version"); v != "2023-06-01" {
			t.Errorf("version header: got %q", v)
		}
		fmt.Fprint(w, `{"id":"msg_t","content":[{"type":"text","text":" Chat About Go "}]}`)
	}))
	defer server.Close()

	p := New(zap.NewNop())
	p.baseURL = server.URL

	title, err := p.GenerateTitle(context.Background(), "sk-ant", "how do goroutines work?")
	if err != nil {
		t.Fatal(err)
	}
	if title != "Chat About Go" {
		t.Errorf("title: got %q, want %q", title, "Chat About Go")
	}
}

func TestStream_EndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseBody(
			`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"hi"}}`,
			`{"type":"message_stop"}`,
		))
	}))
	defer server.Close()

	p := New(zap.NewNop())
	p.baseURL = server.URL

	result, err := p.Stream(context.Background(), "sk-ant", llm.StreamRequest{
		Model:   "claude-sonnet-4-20250514",
		History: []llm.Turn{{Role: "user", Content: "say hi"}},
	}, &recordingSink{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Content != "hi" {
		t.Errorf("content: got %q, want %q", result.Content, "hi")
	}
}
