package service

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/driftchat/driftchat/internal/infrastructure/persistence"
	"github.com/driftchat/driftchat/internal/infrastructure/persistence/models"
	apperrors "github.com/driftchat/driftchat/pkg/errors"
)

// CreateChatArgs mirrors the createChat mutation payload.
type CreateChatArgs struct {
	ID        string    `json:"id"`
	Forked    bool      `json:"forked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateChatArgs mirrors the updateChat mutation payload. Nil pointers mean
// "leave unchanged".
type UpdateChatArgs struct {
	ID        string     `json:"id"`
	Title     *string    `json:"title"`
	Pinned    *bool      `json:"pinned"`
	PinnedAt  *time.Time `json:"pinned_at"`
	Archived  *bool      `json:"archived"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ForkChatArgs mirrors the forkChat mutation payload: a new chat id plus
// the messages to copy into it.
type ForkChatArgs struct {
	NewID string          `json:"new_id"`
	Title string          `json:"title"`
	Msgs  []ForkedMessage `json:"msgs"`
	Time  time.Time       `json:"time"`
}

type ForkedMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Body      string    `json:"body"`
	Reasoning *string   `json:"reasoning"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatService owns chat lifecycle and the version discipline: every
// successful update bumps version by exactly one under a row lock.
type ChatService struct {
	chats  persistence.ChatRepository
	msgs   persistence.MessageRepository
	logger *zap.Logger
}

func NewChatService(logger *zap.Logger) *ChatService {
	return &ChatService{logger: logger.With(zap.String("service", "chat"))}
}

// checkOwnership loads the chat and rejects callers that do not own it.
func (s *ChatService) checkOwnership(tx *gorm.DB, chatID, userID string) (*models.Chat, error) {
	chat, err := s.chats.FindByID(tx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.UserID != userID {
		return nil, apperrors.NewForbiddenError("you do not have access to this chat")
	}
	return chat, nil
}

func (s *ChatService) Create(tx *gorm.DB, userID string, args CreateChatArgs) (*models.Chat, error) {
	chat := &models.Chat{
		ID:        args.ID,
		UserID:    userID,
		Forked:    args.Forked,
		Version:   1,
		CreatedAt: args.CreatedAt,
		UpdatedAt: args.UpdatedAt,
	}
	if err := s.chats.Create(tx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *ChatService) Update(tx *gorm.DB, userID string, args UpdateChatArgs) (*models.Chat, error) {
	existing, err := s.chats.FindByIDForUpdate(tx, args.ID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, apperrors.NewForbiddenError("you do not have access to this chat")
	}

	fields := map[string]any{
		"version":    existing.Version + 1,
		"updated_at": args.UpdatedAt,
	}
	if args.Title != nil {
		fields["title"] = *args.Title
	}
	if args.Pinned != nil {
		fields["pinned"] = *args.Pinned
		fields["pinned_at"] = args.PinnedAt
	}
	if args.Archived != nil {
		fields["archived"] = *args.Archived
	}

	return s.chats.Update(tx, args.ID, fields)
}

// UpdateTitle sets a generated title, bumping version like any other
// update. Used by the title job after the chat's first message.
func (s *ChatService) UpdateTitle(tx *gorm.DB, userID, chatID, title string) (*models.Chat, error) {
	return s.Update(tx, userID, UpdateChatArgs{
		ID:        chatID,
		Title:     &title,
		UpdatedAt: time.Now().UTC(),
	})
}

// Delete removes the chat and cascades to its messages.
func (s *ChatService) Delete(tx *gorm.DB, userID, id string) (*models.Chat, error) {
	chat, err := s.chats.FindByIDForUpdate(tx, id)
	if err != nil {
		return nil, err
	}
	if chat.UserID != userID {
		return nil, apperrors.NewForbiddenError("you do not have access to this chat")
	}

	if err := s.msgs.DeleteByChat(tx, id); err != nil {
		return nil, err
	}
	if err := s.chats.Delete(tx, id); err != nil {
		return nil, err
	}
	return chat, nil
}

// Fork creates a new chat marked forked=true and copies the given messages
// into it, all at version 1.
func (s *ChatService) Fork(tx *gorm.DB, userID string, args ForkChatArgs) (*models.Chat, error) {
	chat := &models.Chat{
		ID:        args.NewID,
		UserID:    userID,
		Title:     &args.Title,
		Forked:    true,
		Version:   1,
		CreatedAt: args.Time,
		UpdatedAt: args.Time,
	}
	if err := s.chats.Create(tx, chat); err != nil {
		return nil, err
	}

	for _, m := range args.Msgs {
		msg := &models.Message{
			ID:        m.ID,
			ChatID:    args.NewID,
			UserID:    userID,
			Role:      m.Role,
			Body:      m.Body,
			Reasoning: m.Reasoning,
			Version:   1,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		}
		if err := s.msgs.Create(tx, msg); err != nil {
			return nil, err
		}
	}

	return chat, nil
}

func (s *ChatService) Get(tx *gorm.DB, userID, id string) (*models.Chat, error) {
	return s.checkOwnership(tx, id, userID)
}

func (s *ChatService) ListForUser(tx *gorm.DB, userID string) ([]models.Chat, error) {
	return s.chats.FindByUser(tx, userID)
}
