// Package dto defines the client-facing shapes of every entity. Storage
// records are converted through these before serialisation so internal
// fields (user_id, version, encrypted material) never reach a client.
package dto

import (
	"time"

	"github.com/driftchat/driftchat/internal/infrastructure/persistence/models"
)

type Chat struct {
	ID        string     `json:"id"`
	Title     *string    `json:"title"`
	Pinned    bool       `json:"pinned"`
	Archived  bool       `json:"archived"`
	Forked    bool       `json:"forked"`
	PinnedAt  *time.Time `json:"pinned_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func ChatFromModel(m *models.Chat) Chat {
	return Chat{
		ID:        m.ID,
		Title:     m.Title,
		Pinned:    m.Pinned,
		Archived:  m.Archived,
		Forked:    m.Forked,
		PinnedAt:  m.PinnedAt,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Role      string    `json:"role"`
	Body      string    `json:"body"`
	Reasoning *string   `json:"reasoning"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func MessageFromModel(m *models.Message) Message {
	return Message{
		ID:        m.ID,
		ChatID:    m.ChatID,
		Role:      m.Role,
		Body:      m.Body,
		Reasoning: m.Reasoning,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type ActiveModel struct {
	ID        string    `json:"id"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Reasoning *string   `json:"reasoning"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ActiveModelFromModel(m *models.ActiveModel) ActiveModel {
	return ActiveModel{
		ID:        m.ID,
		Provider:  m.Provider,
		Model:     m.Model,
		Reasoning: m.Reasoning,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ApiKey deliberately omits any key material, encrypted or not.
type ApiKey struct {
	ID        uint      `json:"id"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ApiKeyFromModel(m *models.ApiKey) ApiKey {
	return ApiKey{
		ID:        m.ID,
		Provider:  m.Provider,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type SharedMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Body      string    `json:"body"`
	Reasoning *string   `json:"reasoning"`
	CreatedAt time.Time `json:"created_at"`
}

func SharedMessageFromModel(m *models.SharedMessage) SharedMessage {
	return SharedMessage{
		ID:        m.ID,
		Role:      m.Role,
		Body:      m.Body,
		Reasoning: m.Reasoning,
		CreatedAt: m.CreatedAt,
	}
}

type SharedChat struct {
	ID        string    `json:"id"`
	Title     *string   `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

func SharedChatFromModel(m *models.SharedChat) SharedChat {
	return SharedChat{
		ID:        m.ID,
		Title:     m.Title,
		CreatedAt: m.CreatedAt,
	}
}

type SharedChatWithMessages struct {
	ID        string          `json:"id"`
	Title     *string         `json:"title"`
	CreatedAt time.Time       `json:"created_at"`
	Messages  []SharedMessage `json:"messages"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func UserFromModel(m *models.User) User {
	return User{
		ID:        m.ID,
		Email:     m.Email,
		CreatedAt: m.CreatedAt,
	}
}
