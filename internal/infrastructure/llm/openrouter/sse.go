package openrouter

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

// ParseSSEStream reads an OpenAI-dialect completion stream: content deltas
// in choices[0].delta.content, terminated by finish_reason "stop" or a
// [DONE] sentinel.
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

		var chunk StreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			logger.Debug("Skip unparseable SSE chunk", zap.Error(err))
			continue
		}

		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]

		if choice.Delta.Content != "" {
			sink.OnText(choice.Delta.Content)
			contentBuilder.WriteString(choice.Delta.Content)
		}

		if choice.FinishReason != nil && *choice.FinishReason == "stop" {
			break scan
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
