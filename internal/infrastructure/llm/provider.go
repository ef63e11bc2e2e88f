package llm

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Effort is the reasoning effort level for models that require one.
type Effort string

const (
	EffortLow    Effort = "low"
	EffortMedium Effort = "medium"
	EffortHigh   Effort = "high"
)

// ParseEffort validates a stored effort string. An empty string is valid
// and means "no effort configured".
func ParseEffort(s string) (Effort, error) {
	switch Effort(s) {
	case "", EffortLow, EffortMedium, EffortHigh:
		return Effort(s), nil
	default:
		return "", fmt.Errorf("invalid effort level: %q", s)
	}
}

// Turn is one message of the conversation history sent upstream.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StreamRequest describes one streamed completion.
type StreamRequest struct {
	Model   string
	Effort  Effort
	History []Turn
}

// StreamResult is the assembled outcome of a completed stream.
type StreamResult struct {
	MsgID     string
	Content   string
	Reasoning *string
}

// DeltaSink receives incremental output while a stream is in flight.
// Implementations must not block; the hub behind them drops rather than
// stalls.
type DeltaSink interface {
	OnText(delta string)
	OnReasoning(delta string)
}

// Provider is one upstream AI vendor. API keys are per-user and therefore
// passed per call, never stored on the provider.
type Provider interface {
	// Name returns the provider identifier (e.g. "openai", "google").
	Name() string

	// Models returns the supported model identifiers.
	Models() []string

	// SupportsModel checks if a specific model is supported.
	SupportsModel(model string) bool

	// TitleModel returns the cheap model used for title generation.
	TitleModel() string

	// GenerateTitle produces a short chat title from the first message.
	// Non-streaming; the result is trimmed.
	GenerateTitle(ctx context.Context, apiKey, firstBody string) (string, error)

	// Stream runs one completion, feeding deltas to sink as they arrive,
	// and returns the assembled result.
	Stream(ctx context.Context, apiKey string, req StreamRequest, sink DeltaSink) (*StreamResult, error)
}

// TitlePrompt builds the fixed title-generation prompt.
func TitlePrompt(msg string) string {
	return fmt.Sprintf(
		"Summarize the following message into a short, concise title of 5 words or less, without quotation marks: %q",
		msg)
}

// --- Provider Factory Registry ---
// Providers register themselves via init() in their own package.
// Adding a new vendor = implement Provider + Register("name", New).

// Factory creates a Provider.
type Factory func(logger *zap.Logger) Provider

var (
	factoryMu sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers a provider factory under its name. Called from init()
// in each vendor sub-package.
func Register(name string, factory Factory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	factories[name] = factory
}

// New creates the Provider registered under name.
func New(name string, logger *zap.Logger) (Provider, error) {
	factoryMu.RLock()
	factory, ok := factories[name]
	factoryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown provider %q (available: %v)", name, Names())
	}
	return factory(logger), nil
}

// Names lists the registered provider names.
func Names() []string {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}
