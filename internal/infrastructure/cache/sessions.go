package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session/"
	sessionTTL       = 30 * 24 * time.Hour
)

// SessionStore keeps opaque session tokens in redis, mapping token → user
// id with a sliding 30-day TTL.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Create mints a fresh token for the user.
func (s *SessionStore) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, sessionKeyPrefix+token, userID, sessionTTL).Err(); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

// Resolve returns the user id for a token, refreshing its TTL. An unknown
// token returns "" with no error.
func (s *SessionStore) Resolve(ctx context.Context, token string) (string, error) {
	userID, err := s.client.GetEx(ctx, sessionKeyPrefix+token, sessionTTL).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("resolve session: %w", err)
	}
	return userID, nil
}

// Delete revokes a token. Deleting an unknown token is a no-op.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
