package anthropic

// --- Anthropic Messages API types ---

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []Message `json:"messages"`
	System    string    `json:"system,omitempty"`
	Stream    bool      `json:"stream,omitempty"`
}

type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Response is the non-streaming /v1/messages response.
type Response struct {
	ID      string         `json:"id"`
	Content []ContentBlock `json:"content"`
}

// StreamEvent is one SSE payload, discriminated by Type. Only the fields
// the parser consumes are mapped; unrecognised event types are ignorable
// per the API contract.
type StreamEvent struct {
	Type  string     `json:"type"`
	Delta *TextDelta `json:"delta"`
}

type TextDelta struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
