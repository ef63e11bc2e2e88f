package models

import "time"

// ReplicacheClientGroup is a set of clients (tabs/devices) sharing one sync
// identity for a user. Ownership is fixed on first use; CvrVersion is the
// per-group monotone watermark.
type ReplicacheClientGroup struct {
	ID         string `gorm:"primaryKey;size:64"`
	UserID     string `gorm:"index;size:64;not null"`
	CvrVersion int    `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (ReplicacheClientGroup) TableName() string {
	return "replicache_client_groups"
}

// ReplicacheClient tracks the per-client mutation counter. Only the mutation
// with id == LastMutationID+1 is accepted.
type ReplicacheClient struct {
	ID             string `gorm:"primaryKey;size:64"`
	ClientGroupID  string `gorm:"index;size:64;not null"`
	LastMutationID int    `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (ReplicacheClient) TableName() string {
	return "replicache_clients"
}
