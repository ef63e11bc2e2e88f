package sse

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// Per-subscriber channel capacity. A subscriber that falls this far
	// behind starts losing its oldest events and sees a lag marker.
	subscriberBuffer = 2048

	// Per-chat backlog bound. Streams longer than this lose their oldest
	// chunks on replay; live subscribers are unaffected.
	backlogLimit = 4096
)

// userState is everything the hub tracks for one user: live subscribers,
// per-chat chunk backlogs for reconnect replay, and the set of chats with
// a stream in flight.
type userState struct {
	subs      map[string]chan Event
	backlog   map[string][]Event
	openChats map[string]struct{}
}

func newUserState() *userState {
	return &userState{
		subs:      map[string]chan Event{},
		backlog:   map[string][]Event{},
		openChats: map[string]struct{}{},
	}
}

// Hub fans events out to every connected client of a user. All methods are
// safe for concurrent use.
type Hub struct {
	mu     sync.RWMutex
	users  map[string]*userState
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		users:  map[string]*userState{},
		logger: logger.With(zap.String("component", "sse_hub")),
	}
}

// AddClient registers a subscriber and returns its id, its event channel,
// and a snapshot of all current chat backlogs. The caller replays the
// snapshot before draining the channel, so a reconnecting client sees
// chunks it missed for any stream still in flight.
func (h *Hub) AddClient(userID string) (string, <-chan Event, []Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := h.users[userID]
	if !ok {
		state = newUserState()
		h.users[userID] = state
	}

	clientID := uuid.NewString()
	ch := make(chan Event, subscriberBuffer)
	state.subs[clientID] = ch

	chatIDs := make([]string, 0, len(state.backlog))
	for chatID := range state.backlog {
		chatIDs = append(chatIDs, chatID)
	}
	sort.Strings(chatIDs)

	var snapshot []Event
	for _, chatID := range chatIDs {
		snapshot = append(snapshot, state.backlog[chatID]...)
	}

	h.logger.Info("SSE client added",
		zap.String("user_id", userID),
		zap.String("client_id", clientID),
		zap.Int("backlog", len(snapshot)))

	return clientID, ch, snapshot
}

// RemoveClient drops a subscriber and garbage-collects the user's state if
// nothing else needs it.
func (h *Hub) RemoveClient(userID, clientID string) {
	h.mu.Lock()
	state, ok := h.users[userID]
	if ok {
		if ch, exists := state.subs[clientID]; exists {
			delete(state.subs, clientID)
			close(ch)
			h.logger.Info("SSE client removed",
				zap.String("user_id", userID),
				zap.String("client_id", clientID))
		}
	}
	h.mu.Unlock()

	h.TryGC(userID)
}

// SendToUser publishes an event to every subscriber of the user without
// blocking. With no user state the event is dropped: nobody is listening
// and chat-scoped events will be re-derived from the database on pull.
func (h *Hub) SendToUser(userID string, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := h.users[userID]
	if !ok {
		h.logger.Debug("No active SSE clients, dropping event",
			zap.String("user_id", userID),
			zap.String("type", ev.Type))
		return
	}

	h.track(state, ev)

	for clientID, ch := range state.subs {
		if !offer(ch, ev) {
			h.logger.Warn("SSE subscriber lagging, dropping oldest events",
				zap.String("user_id", userID),
				zap.String("client_id", clientID))
		}
	}
}

// track maintains backlog and open-chat bookkeeping. Chunks mark the chat
// open and accumulate; done, error and exit close the chat and clear its
// backlog; pokes are never backlogged.
func (h *Hub) track(state *userState, ev Event) {
	chatID := ev.ChatID()
	if chatID == "" {
		return
	}

	switch ev.Type {
	case EventChunk:
		state.openChats[chatID] = struct{}{}
		backlog := append(state.backlog[chatID], ev)
		if len(backlog) > backlogLimit {
			backlog = backlog[len(backlog)-backlogLimit:]
		}
		state.backlog[chatID] = backlog
	case EventDone, EventError, EventExit:
		delete(state.openChats, chatID)
		delete(state.backlog, chatID)
	}
}

// offer sends without blocking. When the channel is full it evicts the
// oldest buffered event, substitutes a lag marker so the client knows it
// skipped forward, and retries. Reports whether the subscriber kept up.
func offer(ch chan Event, ev Event) bool {
	select {
	case ch <- ev:
		return true
	default:
	}

	select {
	case <-ch:
	default:
	}
	select {
	case ch <- lagged():
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- ev:
	default:
	}
	return false
}

// ReplicachePoke tells all of the user's clients to pull.
func (h *Hub) ReplicachePoke(userID string) {
	h.SendToUser(userID, Poke())
}

// TryGC removes the user's state iff no subscribers remain and no chat is
// mid-stream. Called on client drop; a user with an open stream keeps
// their backlog so the next reconnect can replay it.
func (h *Hub) TryGC(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, ok := h.users[userID]
	if !ok {
		return
	}
	if len(state.subs) == 0 && len(state.openChats) == 0 {
		delete(h.users, userID)
		h.logger.Debug("Removed idle SSE user state", zap.String("user_id", userID))
	}
}
