package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	llm "github.com/driftchat/driftchat/internal/infrastructure/llm"
)

func init() {
	llm.Register("google", func(logger *zap.Logger) llm.Provider {
		return New(logger)
	})
}

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	titleModel     = "gemini-2.0-flash"
)

var models = []string{
	"gemini-2.5-pro",
	"gemini-2.5-flash",
	"gemini-2.0-flash",
}

// Provider speaks the Gemini generateContent API. The API key travels as a
// query parameter, not a header.
type Provider struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func New(logger *zap.Logger) *Provider {
	return &Provider{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 5 * time.Minute},
		logger:  logger.With(zap.String("provider", "google")),
	}
}

var _ llm.Provider = (*Provider)(nil)

func (p *Provider) Name() string     { return "google" }
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
	req := Request{Contents: []Content{{
		Role:  "user",
		Parts: []Part{{Text: llm.TitlePrompt(firstBody)}},
	}}}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s",
		p.baseURL, titleModel, url.QueryEscape(apiKey))

	resp, err := p.post(ctx, endpoint, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read title response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API error %d: %s", resp.StatusCode, string(body))
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("parse title response: %w", err)
	}

	title := strings.TrimSpace(payload.text())
	if title == "" {
		return "", fmt.Errorf("gemini returned empty title")
	}
	return title, nil
}

func (p *Provider) Stream(ctx context.Context, apiKey string, req llm.StreamRequest, sink llm.DeltaSink) (*llm.StreamResult, error) {
	apiReq := Request{Contents: buildContents(req.History)}

	endpoint := fmt.Sprintf("%s/%s:streamGenerateContent?alt=sse&key=%s",
		p.baseURL, req.Model, url.QueryEscape(apiKey))

	resp, err := p.post(ctx, endpoint, apiReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gemini API error %d: %s", resp.StatusCode, string(body))
	}

	return ParseSSEStream(ctx, resp.Body, sink, p.logger)
}

// buildContents maps history roles onto Gemini's vocabulary: assistant
// turns become "model", everything else "user".
func buildContents(history []llm.Turn) []Content {
	contents := make([]Content, 0, len(history))
	for _, t := range history {
		role := "user"
		if t.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, Content{
			Role:  role,
			Parts: []Part{{Text: t.Content}},
		})
	}
	return contents
}

func (p *Provider) post(ctx context.Context, endpoint string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	return resp, nil
}
