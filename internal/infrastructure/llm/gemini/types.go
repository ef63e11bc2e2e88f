package gemini

// --- Gemini generateContent API types ---

type Part struct {
	Text string `json:"text"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type Request struct {
	Contents []Content `json:"contents"`
}

// Payload is one streamed (or the single non-streamed) response body.
type Payload struct {
	Candidates []Candidate `json:"candidates"`
}

type Candidate struct {
	Content      *Content `json:"content"`
	FinishReason string   `json:"finishReason"`
}

// text concatenates every part of every candidate.
func (p *Payload) text() string {
	var out string
	for _, c := range p.Candidates {
		if c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			out += part.Text
		}
	}
	return out
}
