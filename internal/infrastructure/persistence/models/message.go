package models

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message belongs to a chat. UserID is carried redundantly so authorization
// checks do not need the chat row. Creation is insert-or-ignore on ID to
// make mutation replays no-ops.
type Message struct {
	ID        string  `gorm:"primaryKey;size:64"`
	ChatID    string  `gorm:"index;size:64;not null"`
	UserID    string  `gorm:"index;size:64;not null"`
	Role      string  `gorm:"size:16;not null"`
	Body      string  `gorm:"type:text;not null"`
	Reasoning *string `gorm:"type:text"`
	Version   int     `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Message) TableName() string {
	return "messages"
}
