package models

import "time"

// ApiKey stores a user's provider credential. EncryptedKey is a 12-byte
// nonce followed by AES-256-GCM ciphertext; plaintext is never persisted.
type ApiKey struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	UserID       string `gorm:"index:idx_api_keys_user_provider,unique;size:64;not null"`
	Provider     string `gorm:"index:idx_api_keys_user_provider,unique;size:32;not null"`
	EncryptedKey []byte `gorm:"type:bytea;not null"`
	Version      int    `gorm:"not null;default:1"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (ApiKey) TableName() string {
	return "api_keys"
}
