package service

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/driftchat/driftchat/internal/infrastructure/persistence/models"
	"github.com/driftchat/driftchat/internal/replicache"
	apperrors "github.com/driftchat/driftchat/pkg/errors"
)

// JobEnqueuer hands AI work to the background pipeline. Enqueueing must not
// block: mutations are applied inside a database transaction.
type JobEnqueuer interface {
	EnqueueGenerateTitle(chatID, userID, firstBody string)
	EnqueueGenerateResponse(chatID, userID string)
}

// Mutator dispatches push mutations by name to the domain services. It is
// the single write path for client-originated state.
type Mutator struct {
	chats        *ChatService
	messages     *MessageService
	activeModels *ActiveModelService
	jobs         JobEnqueuer
	logger       *zap.Logger
}

func NewMutator(chats *ChatService, messages *MessageService, activeModels *ActiveModelService, jobs JobEnqueuer, logger *zap.Logger) *Mutator {
	return &Mutator{
		chats:        chats,
		messages:     messages,
		activeModels: activeModels,
		jobs:         jobs,
		logger:       logger.With(zap.String("component", "mutator")),
	}
}

var _ replicache.Applier = (*Mutator)(nil)

// Apply runs one mutation's business logic inside the caller's transaction.
// An unknown mutation name is an error so a misbehaving client is rejected
// instead of silently acknowledged.
func (mu *Mutator) Apply(tx *gorm.DB, userID string, m replicache.Mutation) error {
	switch m.Name {
	case "createChat":
		var args CreateChatArgs
		if err := unmarshalArgs(m, &args); err != nil {
			return err
		}
		_, err := mu.chats.Create(tx, userID, args)
		return err

	case "updateChat":
		var args UpdateChatArgs
		if err := unmarshalArgs(m, &args); err != nil {
			return err
		}
		_, err := mu.chats.Update(tx, userID, args)
		return err

	case "deleteChat":
		var args deleteArgs
		if err := unmarshalArgs(m, &args); err != nil {
			return err
		}
		_, err := mu.chats.Delete(tx, userID, args.ID)
		return err

	case "forkChat":
		var args ForkChatArgs
		if err := unmarshalArgs(m, &args); err != nil {
			return err
		}
		_, err := mu.chats.Fork(tx, userID, args)
		return err

	case "createMessage":
		var args CreateMessageArgs
		if err := unmarshalArgs(m, &args); err != nil {
			return err
		}
		return mu.createMessage(tx, userID, args)

	case "updateMessage":
		var args UpdateMessageArgs
		if err := unmarshalArgs(m, &args); err != nil {
			return err
		}
		_, err := mu.messages.Update(tx, userID, args)
		return err

	case "deleteMessage":
		var args deleteArgs
		if err := unmarshalArgs(m, &args); err != nil {
			return err
		}
		_, err := mu.messages.Delete(tx, userID, args.ID)
		return err

	case "createActiveModel":
		var args CreateActiveModelArgs
		if err := unmarshalArgs(m, &args); err != nil {
			return err
		}
		_, err := mu.activeModels.Create(tx, userID, args)
		return err

	case "updateActiveModel":
		var args UpdateActiveModelArgs
		if err := unmarshalArgs(m, &args); err != nil {
			return err
		}
		_, err := mu.activeModels.Update(tx, userID, args)
		return err

	case "deleteActiveModel":
		var args deleteArgs
		if err := unmarshalArgs(m, &args); err != nil {
			return err
		}
		_, err := mu.activeModels.Delete(tx, userID, args.ID)
		return err

	default:
		return apperrors.NewInvalidInputError("unknown mutation: " + m.Name)
	}
}

// createMessage persists the message and, for user messages, triggers the
// AI pipeline: a response job always, a title job when this is the chat's
// first message.
func (mu *Mutator) createMessage(tx *gorm.DB, userID string, args CreateMessageArgs) error {
	if _, err := mu.messages.Create(tx, userID, args); err != nil {
		return err
	}

	if args.Role != models.RoleUser {
		return nil
	}

	msgs, err := mu.messages.ListForChat(tx, userID, args.ChatID)
	if err != nil {
		return err
	}

	if len(msgs) == 1 {
		mu.logger.Info("First message in chat, enqueueing title generation",
			zap.String("chat_id", args.ChatID))
		mu.jobs.EnqueueGenerateTitle(args.ChatID, userID, args.Body)
	}
	mu.jobs.EnqueueGenerateResponse(args.ChatID, userID)

	return nil
}

type deleteArgs struct {
	ID string `json:"id"`
}

func unmarshalArgs(m replicache.Mutation, out any) error {
	if err := json.Unmarshal(m.Args, out); err != nil {
		return apperrors.NewInvalidInputError(
			fmt.Sprintf("malformed args for %s: %v", m.Name, err))
	}
	return nil
}
