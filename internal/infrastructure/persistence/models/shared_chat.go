package models

import "time"

// SharedChat is a frozen public snapshot of a private chat, created on
// demand under a fresh UUID. Read-only after creation.
type SharedChat struct {
	ID             string  `gorm:"primaryKey;size:64"`
	OriginalChatID string  `gorm:"index;size:64;not null"`
	OwnerUserID    string  `gorm:"index;size:64;not null"`
	Title          *string `gorm:"size:255"`
	CreatedAt      time.Time
}

func (SharedChat) TableName() string {
	return "shared_chats"
}

// SharedMessage is a frozen copy of a message inside a shared chat.
type SharedMessage struct {
	ID           string  `gorm:"primaryKey;size:64"`
	SharedChatID string  `gorm:"index;size:64;not null"`
	Role         string  `gorm:"size:16;not null"`
	Body         string  `gorm:"type:text;not null"`
	Reasoning    *string `gorm:"type:text"`
	CreatedAt    time.Time
}

func (SharedMessage) TableName() string {
	return "shared_messages"
}
