package persistence

import (
	"errors"

	"gorm.io/gorm"

	"github.com/driftchat/driftchat/internal/infrastructure/persistence/models"
	apperrors "github.com/driftchat/driftchat/pkg/errors"
)

// ChatRepository is a stateless accessor for chat rows. All methods take the
// transaction handle explicitly so callers control transaction scope.
type ChatRepository struct{}

func (ChatRepository) FindByID(tx *gorm.DB, id string) (*models.Chat, error) {
	var chat models.Chat
	if err := tx.First(&chat, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("chat not found: " + id)
		}
		return nil, apperrors.NewInternalErrorWithCause("find chat", err)
	}
	return &chat, nil
}

// FindByIDForUpdate locks the row until the surrounding transaction ends.
func (ChatRepository) FindByIDForUpdate(tx *gorm.DB, id string) (*models.Chat, error) {
	var chat models.Chat
	if err := forUpdate(tx).First(&chat, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("chat not found: " + id)
		}
		return nil, apperrors.NewInternalErrorWithCause("find chat for update", err)
	}
	return &chat, nil
}

func (ChatRepository) FindByIDs(tx *gorm.DB, ids []string) ([]models.Chat, error) {
	var chats []models.Chat
	if err := tx.Where("id IN ?", ids).Find(&chats).Error; err != nil {
		return nil, apperrors.NewInternalErrorWithCause("find chats by ids", err)
	}
	return chats, nil
}

func (ChatRepository) FindByUser(tx *gorm.DB, userID string) ([]models.Chat, error) {
	var chats []models.Chat
	if err := tx.Where("user_id = ?", userID).Order("created_at asc").Find(&chats).Error; err != nil {
		return nil, apperrors.NewInternalErrorWithCause("list chats", err)
	}
	return chats, nil
}

func (ChatRepository) Create(tx *gorm.DB, chat *models.Chat) error {
	if err := tx.Create(chat).Error; err != nil {
		return apperrors.NewInternalErrorWithCause("create chat", err)
	}
	return nil
}

// Update applies the given column map and returns the fresh row. Callers
// are expected to hold the row lock and include the bumped version.
func (ChatRepository) Update(tx *gorm.DB, id string, fields map[string]any) (*models.Chat, error) {
	res := tx.Model(&models.Chat{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, apperrors.NewInternalErrorWithCause("update chat", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NewNotFoundError("chat not found for update: " + id)
	}
	return ChatRepository{}.FindByID(tx, id)
}

func (ChatRepository) Delete(tx *gorm.DB, id string) error {
	res := tx.Delete(&models.Chat{}, "id = ?", id)
	if res.Error != nil {
		return apperrors.NewInternalErrorWithCause("delete chat", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("chat not found for delete: " + id)
	}
	return nil
}
