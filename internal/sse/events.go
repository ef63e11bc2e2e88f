package sse

import "encoding/json"

// Wire-level event tags.
const (
	EventChunk  = "chat-stream-chunk"
	EventDone   = "chat-stream-done"
	EventError  = "chat-stream-error"
	EventExit   = "chat-stream-exit"
	EventPoke   = "replicache-poke"
	EventLagged = "lagged"
)

// Event is one SSE message. ChatID is routing metadata for backlog
// bookkeeping and is not serialised; chat-scoped payloads repeat the chat
// id inside Data.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`

	chatID string
}

// ChatID returns the chat this event belongs to, or "" for broadcast-only
// events such as pokes.
func (e Event) ChatID() string {
	return e.chatID
}

func mustData(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

// Chunk carries one streamed text fragment.
func Chunk(chatID, chunk string) Event {
	return Event{
		Type:   EventChunk,
		Data:   mustData(map[string]string{"chat_id": chatID, "chunk": chunk}),
		chatID: chatID,
	}
}

// ReasoningChunk carries one streamed reasoning-summary fragment.
func ReasoningChunk(chatID, reasoning string) Event {
	return Event{
		Type:   EventChunk,
		Data:   mustData(map[string]string{"chat_id": chatID, "reasoning": reasoning}),
		chatID: chatID,
	}
}

// Done signals a completed stream and names the persisted assistant
// message.
func Done(chatID, msgID string) Event {
	return Event{
		Type:   EventDone,
		Data:   mustData(map[string]string{"chat_id": chatID, "msg_id": msgID}),
		chatID: chatID,
	}
}

// StreamError signals a failed stream, carrying the upstream message so
// the UI can render a failure state for the affected chat.
func StreamError(chatID, message string) Event {
	return Event{
		Type:   EventError,
		Data:   mustData(map[string]string{"chat_id": chatID, "error": message}),
		chatID: chatID,
	}
}

// Exit signals that the pipeline gave up before streaming, e.g. a missing
// API key.
func Exit(chatID string) Event {
	return Event{
		Type:   EventExit,
		Data:   mustData(map[string]string{"chat_id": chatID}),
		chatID: chatID,
	}
}

// Poke tells clients to pull. Contentless and never backlogged.
func Poke() Event {
	return Event{Type: EventPoke}
}

func lagged() Event {
	return Event{Type: EventLagged}
}
