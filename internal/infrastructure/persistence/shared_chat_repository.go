package persistence

import (
	"errors"

	"gorm.io/gorm"

	"github.com/driftchat/driftchat/internal/infrastructure/persistence/models"
	apperrors "github.com/driftchat/driftchat/pkg/errors"
)

// SharedChatRepository is a stateless accessor for frozen chat snapshots.
type SharedChatRepository struct{}

func (SharedChatRepository) Get(tx *gorm.DB, id string) (*models.SharedChat, error) {
	var chat models.SharedChat
	if err := tx.First(&chat, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("shared chat not found: " + id)
		}
		return nil, apperrors.NewInternalErrorWithCause("find shared chat", err)
	}
	return &chat, nil
}

func (SharedChatRepository) Create(tx *gorm.DB, chat *models.SharedChat) error {
	if err := tx.Create(chat).Error; err != nil {
		return apperrors.NewInternalErrorWithCause("create shared chat", err)
	}
	return nil
}

func (SharedChatRepository) Delete(tx *gorm.DB, id, ownerUserID string) error {
	res := tx.Delete(&models.SharedChat{}, "id = ? AND owner_user_id = ?", id, ownerUserID)
	if res.Error != nil {
		return apperrors.NewInternalErrorWithCause("delete shared chat", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("shared chat not found for delete: " + id)
	}
	return nil
}

// SharedMessageRepository is a stateless accessor for frozen messages.
type SharedMessageRepository struct{}

func (SharedMessageRepository) ListForSharedChat(tx *gorm.DB, sharedChatID string) ([]models.SharedMessage, error) {
	var msgs []models.SharedMessage
	if err := tx.Where("shared_chat_id = ?", sharedChatID).Order("created_at asc").Find(&msgs).Error; err != nil {
		return nil, apperrors.NewInternalErrorWithCause("list shared messages", err)
	}
	return msgs, nil
}

func (SharedMessageRepository) BulkCreate(tx *gorm.DB, msgs []models.SharedMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	if err := tx.Create(&msgs).Error; err != nil {
		return apperrors.NewInternalErrorWithCause("create shared messages", err)
	}
	return nil
}

// DeleteForSharedChat removes a snapshot's messages; used by the shared
// chat delete cascade.
func (SharedMessageRepository) DeleteForSharedChat(tx *gorm.DB, sharedChatID string) error {
	if err := tx.Delete(&models.SharedMessage{}, "shared_chat_id = ?", sharedChatID).Error; err != nil {
		return apperrors.NewInternalErrorWithCause("delete shared messages", err)
	}
	return nil
}
