package openrouter

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
	llm.Register("openrouter", func(logger *zap.Logger) llm.Provider {
		return New(logger)
	})
}

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	titleModel     = "google/gemini-2.0-flash-exp:free"

	titleMaxTokens = 32
)

var models = []string{
	"deepseek/deepseek-r1-0528-qwen3-8b:free",
	"google/gemini-2.0-flash-exp:free",
}

// Provider speaks the OpenRouter chat/completions API.
type Provider struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func New(logger *zap.Logger) *Provider {
	return &Provider{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 5 * time.Minute},
		logger:  logger.With(zap.String("provider", "openrouter")),
	}
}

var _ llm.Provider = (*Provider)(nil)

func (p *Provider) Name() string     { return "openrouter" }
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
		Messages:  []Message{{Role: "user", Content: llm.TitlePrompt(firstBody)}},
		MaxTokens: titleMaxTokens,
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
		return "", fmt.Errorf("openrouter API error %d: %s", resp.StatusCode, string(body))
	}

	var parsed Response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse title response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in title response")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func (p *Provider) Stream(ctx context.Context, apiKey string, req llm.StreamRequest, sink llm.DeltaSink) (*llm.StreamResult, error) {
	messages := make([]Message, 0, len(req.History))
	for _, t := range req.History {
		messages = append(messages, Message{Role: t.Role, Content: t.Content})
	}

	apiReq := Request{
		Model:    req.Model,
		Messages: messages,
		Stream:   true,
	}

	resp, err := p.post(ctx, apiKey, apiReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openrouter API error %d: %s", resp.StatusCode, string(body))
	}

	return ParseSSEStream(ctx, resp.Body, sink, p.logger)
}

func (p *Provider) post(ctx context.Context, apiKey string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openrouter request failed: %w", err)
	}
	return resp, nil
}
