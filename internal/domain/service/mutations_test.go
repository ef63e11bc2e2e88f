package service

import (
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/driftchat/driftchat/internal/replicache"
	apperrors "github.com/driftchat/driftchat/pkg/errors"
)

type recordingEnqueuer struct {
	titles    []string
	responses []string
}

func (r *recordingEnqueuer) EnqueueGenerateTitle(chatID, userID, firstBody string) {
	r.titles = append(r.titles, chatID)
}

func (r *recordingEnqueuer) EnqueueGenerateResponse(chatID, userID string) {
	r.responses = append(r.responses, chatID)
}

func newTestMutator(enqueuer JobEnqueuer) *Mutator {
	logger := zap.NewNop()
	return NewMutator(
		NewChatService(logger),
		NewMessageService(logger),
		NewActiveModelService(logger),
		enqueuer,
		logger,
	)
}

func mustMarshal(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestApply_FirstUserMessageEnqueuesTitleAndResponse(t *testing.T) {
	db := testDB(t)
	seedUsers(t, db, "u1")
	enqueuer := &recordingEnqueuer{}
	mu := newTestMutator(enqueuer)

	now := time.Now().UTC()
	if err := mu.Apply(db, "u1", replicache.Mutation{
		Name: "createChat",
		Args: mustMarshal(t, CreateChatArgs{ID: "c1", CreatedAt: now, UpdatedAt: now}),
	}); err != nil {
		t.Fatal(err)
	}

	if err := mu.Apply(db, "u1", replicache.Mutation{
		Name: "createMessage",
		Args: mustMarshal(t, CreateMessageArgs{
			ID: "m1", ChatID: "c1", Role: "user", Body: "first question",
			CreatedAt: now, UpdatedAt: now,
		}),
	}); err != nil {
		t.Fatal(err)
	}

	if len(enqueuer.titles) != 1 || enqueuer.titles[0] != "c1" {
		t.Errorf("title jobs: got %v", enqueuer.titles)
	}
	if len(enqueuer.responses) != 1 || enqueuer.responses[0] != "c1" {
		t.Errorf("response jobs: got %v", enqueuer.responses)
	}
}

func TestApply_SecondUserMessageSkipsTitleJob(t *testing.T) {
	db := testDB(t)
	seedUsers(t, db, "u1")
	enqueuer := &recordingEnqueuer{}
	mu := newTestMutator(enqueuer)

	now := time.Now().UTC()
	if err := mu.Apply(db, "u1", replicache.Mutation{
		Name: "createChat",
		Args: mustMarshal(t, CreateChatArgs{ID: "c1", CreatedAt: now, UpdatedAt: now}),
	}); err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{"m1", "m2"} {
		if err := mu.Apply(db, "u1", replicache.Mutation{
			Name: "createMessage",
			Args: mustMarshal(t, CreateMessageArgs{
				ID: id, ChatID: "c1", Role: "user", Body: "q",
				CreatedAt: now, UpdatedAt: now,
			}),
		}); err != nil {
			t.Fatal(err)
		}
		now = now.Add(time.Second)
	}

	if len(enqueuer.titles) != 1 {
		t.Errorf("title jobs: got %d, want 1", len(enqueuer.titles))
	}
	if len(enqueuer.responses) != 2 {
		t.Errorf("response jobs: got %d, want 2", len(enqueuer.responses))
	}
}

func TestApply_AssistantMessageEnqueuesNothing(t *testing.T) {
	db := testDB(t)
	seedUsers(t, db, "u1")
	enqueuer := &recordingEnqueuer{}
	mu := newTestMutator(enqueuer)

	now := time.Now().UTC()
	if err := mu.Apply(db, "u1", replicache.Mutation{
		Name: "createChat",
		Args: mustMarshal(t, CreateChatArgs{ID: "c1", CreatedAt: now, UpdatedAt: now}),
	}); err != nil {
		t.Fatal(err)
	}

	if err := mu.Apply(db, "u1", replicache.Mutation{
		Name: "createMessage",
		Args: mustMarshal(t, CreateMessageArgs{
			ID: "m1", ChatID: "c1", Role: "assistant", Body: "imported reply",
			CreatedAt: now, UpdatedAt: now,
		}),
	}); err != nil {
		t.Fatal(err)
	}

	if len(enqueuer.titles) != 0 || len(enqueuer.responses) != 0 {
		t.Errorf("jobs for assistant message: titles %v responses %v",
			enqueuer.titles, enqueuer.responses)
	}
}

func TestApply_UnknownMutationRejected(t *testing.T) {
	db := testDB(t)
	mu := newTestMutator(&recordingEnqueuer{})

	err := mu.Apply(db, "u1", replicache.Mutation{
		Name: "dropAllTables",
		Args: json.RawMessage(`{}`),
	})
	if !apperrors.IsInvalidInput(err) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestApply_MalformedArgsRejected(t *testing.T) {
	db := testDB(t)
	mu := newTestMutator(&recordingEnqueuer{})

	err := mu.Apply(db, "u1", replicache.Mutation{
		Name: "createChat",
		Args: json.RawMessage(`{"id":42}`),
	})
	if !apperrors.IsInvalidInput(err) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
