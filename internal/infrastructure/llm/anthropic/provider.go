package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	llm "github.com/driftchat/driftchat/internal/infrastructure/llm"
)

func init() {
	llm.Register("anthropic", func(logger *zap.Logger) llm.Provider {
		return New(logger)
	})
}

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	titleModel     = "claude-3-5-haiku-latest"

	chatMaxTokens  = 1024
	titleMaxTokens = 32
)

var models = []string{
	"claude-3-5-haiku-latest",
	"claude-sonnet-4-20250514",
	"claude-opus-4-20250514",
}

// Provider speaks the Anthropic Messages API.
type Provider struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func New(logger *zap.Logger) *Provider {
	return &Provider{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 5 * time.Minute},
		logger:  logger.With(zap.String("provider", "anthropic")),
	}
}

var _ llm.Provider = (*Provider)(nil)

func (p *Provider) Name() string     { return "anthropic" }
func (p *Provider) Models() []string { return models }

func (p *Provider) SupportsModel(model string) bool {
	for _, m := range models {
		if m == model {
			return true
		}
	}
	return false
}

func (p *Provider) TitleModel() string { return titleModel }

func (p *Provider) GenerateTitle(ctx context.Context, apiKey, firstBody string) (string, error) {
	req := Request{
		Model:     titleModel,
		MaxTokens: titleMaxTokens,
		Messages:  []Message{{Role: "user", Content: llm.TitlePrompt(firstBody)}},
	}

	resp, err := p.post(ctx, apiKey, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read title response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic API error %d: %s", resp.StatusCode, string(body))
	}

	var parsed Response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse title response: %w", err)
	}

	for _, block := range parsed.Content {
		if block.Type == "text" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", fmt.Errorf("no text block in title response")
}

func (p *Provider) Stream(ctx context.Context, apiKey string, req llm.StreamRequest, sink llm.DeltaSink) (*llm.StreamResult, error) {
	messages := make([]Message, 0, len(req.History))
	for _, t := range req.History {
		messages = append(messages, Message{Role: t.Role, Content: t.Content})
	}

	apiReq := Request{
		Model:     req.Model,
		MaxTokens: chatMaxTokens,
		Messages:  messages,
		Stream:    true,
	}

	resp, err := p.post(ctx, apiKey, apiReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("anthropic API error %d: %s", resp.StatusCode, string(body))
	}

	return ParseSSEStream(ctx, resp.Body, sink, p.logger)
}

func (p *Provider) post(ctx context.Context, apiKey string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}
	return resp, nil
}
