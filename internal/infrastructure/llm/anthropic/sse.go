package anthropic

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	llm "github.com/driftchat/driftchat/internal/infrastructure/llm"
)

// ParseSSEStream reads a Messages API event stream, forwarding text deltas
// to sink. The API does not name the assistant message the way we store
// it, so the result carries a fresh UUID.
func ParseSSEStream(ctx context.Context, reader io.Reader, sink llm.DeltaSink, logger *zap.Logger) (*llm.StreamResult, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var contentBuilder strings.Builder

scan:
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
		data := strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			break
		}

		var event StreamEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			logger.Debug("Skip unparseable SSE event", zap.Error(err))
			continue
		}

		switch event.Type {
		case "content_block_delta":
			if event.Delta != nil && event.Delta.Text != "" {
				sink.OnText(event.Delta.Text)
				contentBuilder.WriteString(event.Delta.Text)
			}
		case "message_stop":
			break scan
		case "ping":
			// keepalive
		default:
			// message_start, content_block_start, content_block_stop,
			// message_delta and anything newer carry nothing we need.
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("SSE scan error: %w", err)
	}

	return &llm.StreamResult{
		MsgID:   uuid.NewString(),
		Content: contentBuilder.String(),
	}, nil
}
