package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/driftchat/driftchat/internal/replicache"
)

const cvrKeyPrefix = "cvr/"

// CvrStore persists CVR snapshots in redis under "cvr/<uuid>". Entries are
// written without a TTL: eviction only costs the next pull a full diff, so
// correctness never depends on retention.
type CvrStore struct {
	client *redis.Client
}

func NewCvrStore(client *redis.Client) *CvrStore {
	return &CvrStore{client: client}
}

var _ replicache.Snapshots = (*CvrStore)(nil)

// Get returns (nil, nil) on a cache miss.
func (s *CvrStore) Get(ctx context.Context, cvrID string) (*replicache.CVR, error) {
	data, err := s.client.Get(ctx, cvrKeyPrefix+cvrID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cvr snapshot: %w", err)
	}

	var cvr replicache.CVR
	if err := json.Unmarshal([]byte(data), &cvr); err != nil {
		return nil, fmt.Errorf("parse cvr snapshot: %w", err)
	}
	if cvr.Entities == nil {
		cvr.Entities = map[string]int{}
	}
	if cvr.LastMutationIDs == nil {
		cvr.LastMutationIDs = map[string]int{}
	}
	return &cvr, nil
}

func (s *CvrStore) Put(ctx context.Context, cvrID string, cvr *replicache.CVR) error {
	data, err := json.Marshal(cvr)
	if err != nil {
		return fmt.Errorf("serialise cvr snapshot: %w", err)
	}
	if err := s.client.Set(ctx, cvrKeyPrefix+cvrID, data, 0).Err(); err != nil {
		return fmt.Errorf("write cvr snapshot: %w", err)
	}
	return nil
}
