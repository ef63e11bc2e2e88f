package models

import "time"

// ActiveModel is a user's current (provider, model, reasoning effort)
// selection. Reasoning holds an effort level (low/medium/high) and is only
// set for models that require it.
type ActiveModel struct {
	ID        string  `gorm:"primaryKey;size:64"`
	UserID    string  `gorm:"index;size:64;not null"`
	Provider  string  `gorm:"size:32;not null"`
	Model     string  `gorm:"size:64;not null"`
	Reasoning *string `gorm:"size:16"`
	Version   int     `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ActiveModel) TableName() string {
	return "active_models"
}
