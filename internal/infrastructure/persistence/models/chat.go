package models

import "time"

// Chat is a conversation owned by a user. The owner is immutable and
// version increases by exactly one per successful update.
type Chat struct {
	ID        string  `gorm:"primaryKey;size:64"`
	UserID    string  `gorm:"index;size:64;not null"`
	Title     *string `gorm:"size:255"`
	Pinned    bool    `gorm:"not null;default:false"`
	Archived  bool    `gorm:"not null;default:false"`
	Forked    bool    `gorm:"not null;default:false"`
	Version   int     `gorm:"not null;default:1"`
	PinnedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Chat) TableName() string {
	return "chats"
}
