package application

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/driftchat/driftchat/internal/domain/dto"
	"github.com/driftchat/driftchat/internal/infrastructure/persistence"
	"github.com/driftchat/driftchat/internal/replicache"
)

// registerSyncedEntities binds every client-replicated entity type to the
// sync registry. Values go through DTOs so replicated state matches what the
// REST surface would return.
func registerSyncedEntities(registry *replicache.Registry) error {
	var (
		chats        persistence.ChatRepository
		messages     persistence.MessageRepository
		activeModels persistence.ActiveModelRepository
	)

	entries := []replicache.Entry{
		{
			Prefix: "chat",
			Load: func(tx *gorm.DB, ids []string) (map[string]json.RawMessage, error) {
				rows, err := chats.FindByIDs(tx, ids)
				if err != nil {
					return nil, err
				}
				out := make(map[string]json.RawMessage, len(rows))
				for i := range rows {
					data, err := json.Marshal(dto.ChatFromModel(&rows[i]))
					if err != nil {
						return nil, err
					}
					out[rows[i].ID] = data
				}
				return out, nil
			},
			List: func(tx *gorm.DB, userID string) (map[string]int, error) {
				rows, err := chats.FindByUser(tx, userID)
				if err != nil {
					return nil, err
				}
				out := make(map[string]int, len(rows))
				for i := range rows {
					out[rows[i].ID] = rows[i].Version
				}
				return out, nil
			},
		},
		{
			Prefix: "message",
			Load: func(tx *gorm.DB, ids []string) (map[string]json.RawMessage, error) {
				rows, err := messages.FindByIDs(tx, ids)
				if err != nil {
					return nil, err
				}
				out := make(map[string]json.RawMessage, len(rows))
				for i := range rows {
					data, err := json.Marshal(dto.MessageFromModel(&rows[i]))
					if err != nil {
						return nil, err
					}
					out[rows[i].ID] = data
				}
				return out, nil
			},
			List: func(tx *gorm.DB, userID string) (map[string]int, error) {
				rows, err := messages.FindByUser(tx, userID)
				if err != nil {
					return nil, err
				}
				out := make(map[string]int, len(rows))
				for i := range rows {
					out[rows[i].ID] = rows[i].Version
				}
				return out, nil
			},
		},
		{
			Prefix: "activeModel",
			Load: func(tx *gorm.DB, ids []string) (map[string]json.RawMessage, error) {
				rows, err := activeModels.FindByIDs(tx, ids)
				if err != nil {
					return nil, err
				}
				out := make(map[string]json.RawMessage, len(rows))
				for i := range rows {
					data, err := json.Marshal(dto.ActiveModelFromModel(&rows[i]))
					if err != nil {
						return nil, err
					}
					out[rows[i].ID] = data
				}
				return out, nil
			},
			List: func(tx *gorm.DB, userID string) (map[string]int, error) {
				rows, err := activeModels.FindByUser(tx, userID)
				if err != nil {
					return nil, err
				}
				out := make(map[string]int, len(rows))
				for i := range rows {
					out[rows[i].ID] = rows[i].Version
				}
				return out, nil
			},
		},
	}

	for _, e := range entries {
		if err := registry.Register(e); err != nil {
			return fmt.Errorf("register %s loader: %w", e.Prefix, err)
		}
	}
	return nil
}
