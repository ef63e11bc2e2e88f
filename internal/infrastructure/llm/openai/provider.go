package openai

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
	llm.Register("openai", func(logger *zap.Logger) llm.Provider {
		return New(logger)
	})
}

const (
	defaultBaseURL = "https://api.openai.com/v1"
	titleModel     = "gpt-4.1-nano"

	instructions = "All code that you generate MUST be generated so that it is correctly rendered inside of a <code> block. Keep decoration in text to a minimum, just respond with clear information, in markdown format. RemarkGFM is used to help parse your output."
)

var models = []string{
	"gpt-4o",
	"gpt-4.1",
	"gpt-4.1-mini",
	"gpt-4.1-nano",
	"o3-mini",
	"o4-mini",
	"o3",
}

// requiresEffort reports whether the model rejects requests without a
// reasoning block.
func requiresEffort(model string) bool {
	switch model {
	case "o3", "o3-mini", "o4-mini":
		return true
	}
	return false
}

// Provider speaks the OpenAI Responses API.
type Provider struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func New(logger *zap.Logger) *Provider {
	return &Provider{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 5 * time.Minute},
		logger:  logger.With(zap.String("provider", "openai")),
	}
}

var _ llm.Provider = (*Provider)(nil)

func (p *Provider) Name() string     { return "openai" }
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
		Model:  titleModel,
		Input:  llm.TitlePrompt(firstBody),
		Stream: false,
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
		return "", fmt.Errorf("openai API error %d: %s", resp.StatusCode, string(body))
	}

	var obj ResponseObject
	if err := json.Unmarshal(body, &obj); err != nil {
		return "", fmt.Errorf("parse title response: %w", err)
	}

	title, ok := obj.messageText()
	if !ok {
		return "", fmt.Errorf("title response contained no output text")
	}
	return strings.TrimSpace(title), nil
}

func (p *Provider) Stream(ctx context.Context, apiKey string, req llm.StreamRequest, sink llm.DeltaSink) (*llm.StreamResult, error) {
	apiReq := Request{
		Model:        req.Model,
		Input:        buildTurns(req.History),
		Stream:       true,
		Instructions: instructions,
	}

	if requiresEffort(req.Model) {
		if req.Effort == "" {
			return nil, fmt.Errorf("model %s requires a reasoning effort", req.Model)
		}
		apiReq.Reasoning = &Reasoning{Effort: string(req.Effort), Summary: "detailed"}
	}

	resp, err := p.post(ctx, apiKey, apiReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openai API error %d: %s", resp.StatusCode, string(body))
	}

	return ParseSSEStream(ctx, resp.Body, sink, p.logger)
}

// buildTurns collapses history roles onto the two the API accepts.
func buildTurns(history []llm.Turn) []llm.Turn {
	turns := make([]llm.Turn, 0, len(history))
	for _, t := range history {
		role := "user"
		if t.Role == "assistant" {
			role = "assistant"
		}
		turns = append(turns, llm.Turn{Role: role, Content: t.Content})
	}
	return turns
}

func (p *Provider) post(ctx context.Context, apiKey string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/responses", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	return resp, nil
}
