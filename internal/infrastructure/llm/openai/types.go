package openai

// --- OpenAI Responses API types ---

// Request is the /responses request body. Input is either a plain string
// (title prompt) or an ordered []llm.Turn (chat history).
type Request struct {
	Model        string     `json:"model"`
	Input        any        `json:"input"`
	Stream       bool       `json:"stream"`
	Instructions string     `json:"instructions,omitempty"`
	Reasoning    *Reasoning `json:"reasoning,omitempty"`
}

type Reasoning struct {
	Effort  string `json:"effort"`
	Summary string `json:"summary"`
}

// StreamEvent is one SSE payload, discriminated by Type.
type StreamEvent struct {
	Type     string          `json:"type"`
	Delta    string          `json:"delta"`
	Response *ResponseObject `json:"response"`
}

type ResponseObject struct {
	ID     string   `json:"id"`
	Output []Output `json:"output"`
	Error  *Error   `json:"error"`
}

type Output struct {
	Type    string        `json:"type"`
	Content []ContentPart `json:"content"`
	Summary []SummaryPart `json:"summary"`
}

type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type SummaryPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Error struct {
	Message string `json:"message"`
}

// messageText returns the final assistant text of a completed response.
func (r *ResponseObject) messageText() (string, bool) {
	for _, out := range r.Output {
		if out.Type != "message" {
			continue
		}
		for _, part := range out.Content {
			if part.Type == "output_text" {
				return part.Text, true
			}
		}
	}
	return "", false
}

// reasoningSummary joins the summary_text parts of the reasoning output.
func (r *ResponseObject) reasoningSummary() string {
	for _, out := range r.Output {
		if out.Type != "reasoning" {
			continue
		}
		var parts []string
		for _, part := range out.Summary {
			if part.Type == "summary_text" {
				parts = append(parts, part.Text)
			}
		}
		if len(parts) > 0 {
			return joinParagraphs(parts)
		}
	}
	return ""
}

func joinParagraphs(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += "\n\n" + p
	}
	return out
}
