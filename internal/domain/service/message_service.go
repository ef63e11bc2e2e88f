package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/driftchat/driftchat/internal/infrastructure/persistence"
	"github.com/driftchat/driftchat/internal/infrastructure/persistence/models"
	apperrors "github.com/driftchat/driftchat/pkg/errors"
)

// CreateMessageArgs mirrors the createMessage mutation payload.
type CreateMessageArgs struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Role      string    `json:"role"`
	Body      string    `json:"body"`
	Reasoning *string   `json:"reasoning"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateMessageArgs mirrors the updateMessage mutation payload.
type UpdateMessageArgs struct {
	ID        string    `json:"id"`
	Body      *string   `json:"body"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageService owns message lifecycle inside a chat the caller must own.
type MessageService struct {
	chats  persistence.ChatRepository
	msgs   persistence.MessageRepository
	logger *zap.Logger
}

func NewMessageService(logger *zap.Logger) *MessageService {
	return &MessageService{logger: logger.With(zap.String("service", "message"))}
}

func (s *MessageService) checkChatOwnership(tx *gorm.DB, chatID, userID string) error {
	chat, err := s.chats.FindByID(tx, chatID)
	if err != nil {
		return err
	}
	if chat.UserID != userID {
		return apperrors.NewForbiddenError("you do not have access to this chat")
	}
	return nil
}

// Create inserts the message after verifying chat ownership. Replays of the
// same id are no-ops at the storage layer.
func (s *MessageService) Create(tx *gorm.DB, userID string, args CreateMessageArgs) (*models.Message, error) {
	if err := s.checkChatOwnership(tx, args.ChatID, userID); err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:        args.ID,
		ChatID:    args.ChatID,
		UserID:    userID,
		Role:      args.Role,
		Body:      args.Body,
		Reasoning: args.Reasoning,
		Version:   1,
		CreatedAt: args.CreatedAt,
		UpdatedAt: args.UpdatedAt,
	}
	if err := s.msgs.Create(tx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *MessageService) Update(tx *gorm.DB, userID string, args UpdateMessageArgs) (*models.Message, error) {
	existing, err := s.msgs.FindByIDForUpdate(tx, args.ID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, apperrors.NewForbiddenError("you do not have access to this message")
	}

	fields := map[string]any{
		"version":    existing.Version + 1,
		"updated_at": args.UpdatedAt,
	}
	if args.Body != nil {
		fields["body"] = *args.Body
	}

	return s.msgs.Update(tx, args.ID, fields)
}

func (s *MessageService) Delete(tx *gorm.DB, userID, id string) (*models.Message, error) {
	msg, err := s.msgs.FindByIDForUpdate(tx, id)
	if err != nil {
		return nil, err
	}
	if msg.UserID != userID {
		return nil, apperrors.NewForbiddenError("you do not have access to this message")
	}
	if err := s.msgs.Delete(tx, id); err != nil {
		return nil, err
	}
	return msg, nil
}

// ListForChat returns the chat's messages in creation order.
func (s *MessageService) ListForChat(tx *gorm.DB, userID, chatID string) ([]models.Message, error) {
	if err := s.checkChatOwnership(tx, chatID, userID); err != nil {
		return nil, err
	}
	return s.msgs.FindByChat(tx, chatID)
}

// SaveAssistantReply persists a completed model response under the id the
// provider assigned to it.
func (s *MessageService) SaveAssistantReply(tx *gorm.DB, userID, chatID, msgID, body string, reasoning *string) (*models.Message, error) {
	now := time.Now().UTC()
	msg := &models.Message{
		ID:        msgID,
		ChatID:    chatID,
		UserID:    userID,
		Role:      models.RoleAssistant,
		Body:      body,
		Reasoning: reasoning,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.msgs.Create(tx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// SaveAssistantError records a user-visible assistant message explaining
// that no API key is stored for the provider.
func (s *MessageService) SaveAssistantError(tx *gorm.DB, userID, chatID, provider string) (*models.Message, error) {
	now := time.Now().UTC()
	msg := &models.Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		UserID:    userID,
		Role:      models.RoleAssistant,
		Body:      fmt.Sprintf("Error: Missing API key for %s", provider),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.msgs.Create(tx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
