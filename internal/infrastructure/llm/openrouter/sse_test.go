package openrouter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
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

func TestParseSSEStream_StopFinishReason(t *testing.T) {
	body := sseBody(
		`{"id":"gen-1","choices":[{"delta":{"role":"assistant","content":"Hel"},"finish_reason":null}]}`,
		`{"id":"gen-1","choices":[{"delta":{"content":"lo"},"finish_reason":null}]}`,
		`{"id":"gen-1","choices":[{"delta":{},"finish_reason":"stop"}]}`,
	)

	sink := &recordingSink{}
	result, err := ParseSSEStream(context.Background(), strings.NewReader(body), sink, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if result.Content != "Hello" {
		t.Errorf("content: got %q, want %q", result.Content, "Hello")
	}
	if len(sink.text) != 2 {
		t.Errorf("deltas: got %d, want 2", len(sink.text))
	}
}

func TestParseSSEStream_DoneSentinel(t *testing.T) {
	body := sseBody(
		`{"id":"gen-2","choices":[{"delta":{"content":"ok"},"finish_reason":null}]}`,
		`[DONE]`,
	)

	result, err := ParseSSEStream(context.Background(), strings.NewReader(body), &recordingSink{}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if result.Content != "ok" {
		t.Errorf("content: got %q, want %q", result.Content, "ok")
	}
}

func TestGenerateTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer or-key" {
			t.Errorf("auth header: got %q", auth)
		}
		fmt.Fprint(w, `{"id":"gen-t","choices":[{"message":{"role":"assistant","content":" Free Models "}}]}`)
	}))
	defer server.Close()

	p := New(zap.NewNop())
	p.baseURL = server.URL

	title, err := p.GenerateTitle(context.Background(), "or-key", "what free models exist?")
	if err != nil {
		t.Fatal(err)
	}
	if title != "Free Models" {
		t.Errorf("title: got %q, want %q", title, "Free Models")
	}
}
