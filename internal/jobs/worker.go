package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/driftchat/driftchat/internal/domain/service"
	"github.com/driftchat/driftchat/internal/infrastructure/config"
	llm "github.com/driftchat/driftchat/internal/infrastructure/llm"
	"github.com/driftchat/driftchat/internal/infrastructure/persistence/models"
	"github.com/driftchat/driftchat/internal/sse"
	apperrors "github.com/driftchat/driftchat/pkg/errors"
	"github.com/driftchat/driftchat/pkg/safego"
)

const (
	retryInitialInterval = 500 * time.Millisecond
	// Two retries after the first attempt: three attempts total.
	maxRetries = 2
)

// Worker drains the queue, running each job in its own goroutine with
// jittered exponential backoff. A job that exhausts its attempts is logged
// and dropped; the client learns about the failure through SSE error
// events, not through the push response.
type Worker struct {
	db           *gorm.DB
	queue        *Queue
	hub          *sse.Hub
	chats        *service.ChatService
	messages     *service.MessageService
	activeModels *service.ActiveModelService
	apiKeys      *service.ApiKeyService
	ai           config.AIConfig
	logger       *zap.Logger

	// Seam for tests; defaults to the package registry.
	newProvider func(name string, logger *zap.Logger) (llm.Provider, error)
}

func NewWorker(
	db *gorm.DB,
	queue *Queue,
	hub *sse.Hub,
	chats *service.ChatService,
	messages *service.MessageService,
	activeModels *service.ActiveModelService,
	apiKeys *service.ApiKeyService,
	ai config.AIConfig,
	logger *zap.Logger,
) *Worker {
	return &Worker{
		db:           db,
		queue:        queue,
		hub:          hub,
		chats:        chats,
		messages:     messages,
		activeModels: activeModels,
		apiKeys:      apiKeys,
		ai:           ai,
		logger:       logger.With(zap.String("component", "job_worker")),
		newProvider:  llm.New,
	}
}

// Run consumes jobs until ctx is cancelled. Each job gets its own
// goroutine so a slow stream never delays the next job.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-w.queue.Jobs():
			if !ok {
				return
			}
			safego.Go(w.logger, "job-"+job.Kind(), func() {
				w.process(ctx, job)
			})
		}
	}
}

func (w *Worker) process(ctx context.Context, job Job) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = retryInitialInterval

	err := backoff.Retry(func() error {
		return w.handle(ctx, job)
	}, backoff.WithContext(backoff.WithMaxRetries(policy, maxRetries), ctx))

	if err != nil {
		w.logger.Error("Job permanently failed",
			zap.String("kind", job.Kind()),
			zap.Error(err))
	}
}

func (w *Worker) handle(ctx context.Context, job Job) error {
	switch j := job.(type) {
	case GenerateTitle:
		return w.generateTitle(ctx, j)
	case GenerateResponse:
		return w.generateResponse(ctx, j)
	default:
		return fmt.Errorf("unknown job kind %q", job.Kind())
	}
}

// providerSetup is the resolved (provider, model, effort, key) for one job.
type providerSetup struct {
	provider llm.Provider
	model    string
	effort   llm.Effort
	apiKey   string
}

// pickProvider resolves the user's active model, falling back to the
// configured default, and decrypts the matching API key. A missing key
// surfaces as a missing-key error so callers can short-circuit.
func (w *Worker) pickProvider(tx *gorm.DB, userID string) (*providerSetup, error) {
	name := w.ai.DefaultProvider
	model := w.ai.DefaultModel
	var effort llm.Effort

	active, err := w.activeModels.GetForUser(tx, userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		name = active.Provider
		model = active.Model
		if active.Reasoning != nil {
			effort, err = llm.ParseEffort(*active.Reasoning)
			if err != nil {
				return nil, err
			}
		}
	}

	provider, err := w.newProvider(name, w.logger)
	if err != nil {
		return nil, err
	}

	apiKey, err := w.apiKeys.GetAndDecrypt(tx, userID, name)
	if err != nil {
		return nil, err
	}

	return &providerSetup{
		provider: provider,
		model:    model,
		effort:   effort,
		apiKey:   apiKey,
	}, nil
}

// reportMissingKey completes a job user-visibly when no API key is stored:
// an assistant message explains the problem, an exit event ends the
// client's streaming state, and a poke makes every client pull the new
// message. Returns nil so the job is not retried.
func (w *Worker) reportMissingKey(chatID, userID string, cause error) error {
	provider := apperrors.MissingKeyProvider(cause)
	w.logger.Warn("No API key stored, aborting job",
		zap.String("provider", provider),
		zap.String("chat_id", chatID))

	err := w.db.Transaction(func(tx *gorm.DB) error {
		_, err := w.messages.SaveAssistantError(tx, userID, chatID, provider)
		return err
	})
	if err != nil {
		return err
	}

	w.hub.SendToUser(userID, sse.Exit(chatID))
	w.hub.ReplicachePoke(userID)
	return nil
}

func (w *Worker) generateTitle(ctx context.Context, job GenerateTitle) error {
	var setup *providerSetup
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		setup, err = w.pickProvider(tx, job.UserID)
		return err
	})
	if err != nil {
		if apperrors.IsMissingKey(err) {
			return w.reportMissingKey(job.ChatID, job.UserID, err)
		}
		return err
	}

	title, err := setup.provider.GenerateTitle(ctx, setup.apiKey, job.FirstBody)
	if err != nil {
		return err
	}

	err = w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := w.chats.UpdateTitle(tx, job.UserID, job.ChatID, title)
		return err
	})
	if err != nil {
		return err
	}

	w.logger.Info("Generated chat title",
		zap.String("chat_id", job.ChatID),
		zap.String("title", title))
	w.hub.ReplicachePoke(job.UserID)
	return nil
}

func (w *Worker) generateResponse(ctx context.Context, job GenerateResponse) error {
	var (
		setup   *providerSetup
		history []llm.Turn
	)
	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		setup, err = w.pickProvider(tx, job.UserID)
		if err != nil {
			return err
		}

		msgs, err := w.messages.ListForChat(tx, job.UserID, job.ChatID)
		if err != nil {
			return err
		}
		history = buildHistory(msgs)
		return nil
	})
	if err != nil {
		if apperrors.IsMissingKey(err) {
			return w.reportMissingKey(job.ChatID, job.UserID, err)
		}
		return err
	}

	sink := hubSink{hub: w.hub, userID: job.UserID, chatID: job.ChatID}
	result, err := setup.provider.Stream(ctx, setup.apiKey, llm.StreamRequest{
		Model:   setup.model,
		Effort:  setup.effort,
		History: history,
	}, sink)
	if err != nil {
		w.hub.SendToUser(job.UserID, sse.StreamError(job.ChatID, err.Error()))
		return err
	}

	err = w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := w.messages.SaveAssistantReply(
			tx, job.UserID, job.ChatID, result.MsgID, result.Content, result.Reasoning)
		return err
	})
	if err != nil {
		return err
	}

	w.hub.SendToUser(job.UserID, sse.Done(job.ChatID, result.MsgID))
	return nil
}

func buildHistory(msgs []models.Message) []llm.Turn {
	turns := make([]llm.Turn, 0, len(msgs))
	for _, m := range msgs {
		turns = append(turns, llm.Turn{Role: m.Role, Content: m.Body})
	}
	return turns
}

// hubSink forwards stream deltas to the user's SSE subscribers.
type hubSink struct {
	hub    *sse.Hub
	userID string
	chatID string
}

func (s hubSink) OnText(delta string) {
	s.hub.SendToUser(s.userID, sse.Chunk(s.chatID, delta))
}

func (s hubSink) OnReasoning(delta string) {
	s.hub.SendToUser(s.userID, sse.ReasoningChunk(s.chatID, delta))
}
