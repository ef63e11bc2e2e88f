package gemini

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

// ParseSSEStream reads a streamGenerateContent event stream. A candidate
// finishReason of "STOP" is normal termination; any other value is a
// provider-side failure.
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

		var payload Payload
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			logger.Warn("Gemini JSON parse error", zap.Error(err))
			continue
		}

		if delta := payload.text(); delta != "" {
			contentBuilder.WriteString(delta)
			sink.OnText(delta)
		}

		for _, cand := range payload.Candidates {
			switch cand.FinishReason {
			case "", "STOP":
			default:
				return nil, fmt.Errorf("gemini stopped: %s", cand.FinishReason)
			}
			if cand.FinishReason == "STOP" {
				break scan
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("SSE scan error: %w", err)
	}

	if contentBuilder.Len() == 0 {
		return nil, fmt.Errorf("gemini stream ended with no text")
	}

	return &llm.StreamResult{
		MsgID:   uuid.NewString(),
		Content: contentBuilder.String(),
	}, nil
}
