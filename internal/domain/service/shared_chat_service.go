package service

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/driftchat/driftchat/internal/domain/dto"
	"github.com/driftchat/driftchat/internal/infrastructure/persistence"
	"github.com/driftchat/driftchat/internal/infrastructure/persistence/models"
	apperrors "github.com/driftchat/driftchat/pkg/errors"
)

// SharedChatService publishes frozen snapshots of private chats. A snapshot
// gets a fresh UUID, copies title and messages at share time, and never
// reflects later edits to the source chat.
type SharedChatService struct {
	chats      persistence.ChatRepository
	msgs       persistence.MessageRepository
	shared     persistence.SharedChatRepository
	sharedMsgs persistence.SharedMessageRepository
	logger     *zap.Logger
}

func NewSharedChatService(logger *zap.Logger) *SharedChatService {
	return &SharedChatService{logger: logger.With(zap.String("service", "shared_chat"))}
}

// Share snapshots the chat and its messages under a new public id.
func (s *SharedChatService) Share(tx *gorm.DB, userID, chatID string) (*models.SharedChat, error) {
	chat, err := s.chats.FindByID(tx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.UserID != userID {
		return nil, apperrors.NewForbiddenError("you do not have access to this chat")
	}

	msgs, err := s.msgs.FindByChat(tx, chatID)
	if err != nil {
		return nil, err
	}

	snapshot := &models.SharedChat{
		ID:             uuid.NewString(),
		OriginalChatID: chat.ID,
		OwnerUserID:    userID,
		Title:          chat.Title,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.shared.Create(tx, snapshot); err != nil {
		return nil, err
	}

	frozen := make([]models.SharedMessage, 0, len(msgs))
	for _, m := range msgs {
		frozen = append(frozen, models.SharedMessage{
			ID:           uuid.NewString(),
			SharedChatID: snapshot.ID,
			Role:         m.Role,
			Body:         m.Body,
			Reasoning:    m.Reasoning,
			CreatedAt:    m.CreatedAt,
		})
	}
	if err := s.sharedMsgs.BulkCreate(tx, frozen); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// Get returns a snapshot with its messages. No authentication; the
// snapshot id is the only credential.
func (s *SharedChatService) Get(tx *gorm.DB, id string) (*dto.SharedChatWithMessages, error) {
	snapshot, err := s.shared.Get(tx, id)
	if err != nil {
		return nil, err
	}

	msgs, err := s.sharedMsgs.ListForSharedChat(tx, id)
	if err != nil {
		return nil, err
	}

	out := &dto.SharedChatWithMessages{
		ID:        snapshot.ID,
		Title:     snapshot.Title,
		CreatedAt: snapshot.CreatedAt,
		Messages:  make([]dto.SharedMessage, 0, len(msgs)),
	}
	for i := range msgs {
		out.Messages = append(out.Messages, dto.SharedMessageFromModel(&msgs[i]))
	}
	return out, nil
}

// Unshare deletes a snapshot and its messages. Only the owner may revoke.
func (s *SharedChatService) Unshare(tx *gorm.DB, userID, id string) error {
	if err := s.sharedMsgs.DeleteForSharedChat(tx, id); err != nil {
		return err
	}
	return s.shared.Delete(tx, id, userID)
}
