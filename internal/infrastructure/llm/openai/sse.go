package openai

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	llm "github.com/driftchat/driftchat/internal/infrastructure/llm"
)

// ParseSSEStream reads a Responses API event stream, forwarding deltas to
// sink and returning the assembled result from the terminal
// response.completed event. Text deltas are not accumulated locally: the
// completed event carries the authoritative final content.
func ParseSSEStream(ctx context.Context, reader io.Reader, sink llm.DeltaSink, logger *zap.Logger) (*llm.StreamResult, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var reasoningBuilder strings.Builder

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}

		var event StreamEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			logger.Debug("Skip unparseable SSE event", zap.Error(err))
			continue
		}

		switch event.Type {
		case "response.output_text.delta":
			sink.OnText(event.Delta)

		case "response.reasoning_summary_text.delta":
			sink.OnReasoning(event.Delta)
			reasoningBuilder.WriteString(event.Delta)

		case "response.completed":
			if event.Response == nil {
				return nil, fmt.Errorf("response.completed without response object")
			}
			content, ok := event.Response.messageText()
			if !ok {
				return nil, fmt.Errorf("completed response has no output text")
			}

			reasoning := reasoningBuilder.String()
			if reasoning == "" {
				reasoning = event.Response.reasoningSummary()
			}

			result := &llm.StreamResult{
				MsgID:   event.Response.ID,
				Content: content,
			}
			if reasoning != "" {
				result.Reasoning = &reasoning
			}
			return result, nil

		case "response.failed":
			msg := "unknown error"
			if event.Response != nil && event.Response.Error != nil {
				msg = event.Response.Error.Message
			}
			return nil, fmt.Errorf("openai stream failed: %s", msg)

		default:
			logger.Debug("Ignoring SSE event", zap.String("type", event.Type))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("SSE scan error: %w", err)
	}
	return nil, fmt.Errorf("stream ended without completion")
}
