package persistence

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/driftchat/driftchat/internal/infrastructure/persistence/models"
	apperrors "github.com/driftchat/driftchat/pkg/errors"
)

// MessageRepository is a stateless accessor for message rows.
type MessageRepository struct{}

func (MessageRepository) FindByID(tx *gorm.DB, id string) (*models.Message, error) {
	var msg models.Message
	if err := tx.First(&msg, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("message not found: " + id)
		}
		return nil, apperrors.NewInternalErrorWithCause("find message", err)
	}
	return &msg, nil
}

func (MessageRepository) FindByIDForUpdate(tx *gorm.DB, id string) (*models.Message, error) {
	var msg models.Message
	if err := forUpdate(tx).First(&msg, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("message not found: " + id)
		}
		return nil, apperrors.NewInternalErrorWithCause("find message for update", err)
	}
	return &msg, nil
}

func (MessageRepository) FindByIDs(tx *gorm.DB, ids []string) ([]models.Message, error) {
	var msgs []models.Message
	if err := tx.Where("id IN ?", ids).Find(&msgs).Error; err != nil {
		return nil, apperrors.NewInternalErrorWithCause("find messages by ids", err)
	}
	return msgs, nil
}

func (MessageRepository) FindByChat(tx *gorm.DB, chatID string) ([]models.Message, error) {
	var msgs []models.Message
	if err := tx.Where("chat_id = ?", chatID).Order("created_at asc").Find(&msgs).Error; err != nil {
		return nil, apperrors.NewInternalErrorWithCause("list messages for chat", err)
	}
	return msgs, nil
}

func (MessageRepository) FindByUser(tx *gorm.DB, userID string) ([]models.Message, error) {
	var msgs []models.Message
	if err := tx.Where("user_id = ?", userID).Order("created_at asc").Find(&msgs).Error; err != nil {
		return nil, apperrors.NewInternalErrorWithCause("list messages for user", err)
	}
	return msgs, nil
}

// Create inserts the message, ignoring the write if the id already exists.
// Replayed createMessage mutations therefore become no-ops.
func (MessageRepository) Create(tx *gorm.DB, msg *models.Message) error {
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(msg).Error
	if err != nil {
		return apperrors.NewInternalErrorWithCause("create message", err)
	}
	return nil
}

func (MessageRepository) Update(tx *gorm.DB, id string, fields map[string]any) (*models.Message, error) {
	res := tx.Model(&models.Message{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, apperrors.NewInternalErrorWithCause("update message", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NewNotFoundError("message not found for update: " + id)
	}
	return MessageRepository{}.FindByID(tx, id)
}

func (MessageRepository) Delete(tx *gorm.DB, id string) error {
	res := tx.Delete(&models.Message{}, "id = ?", id)
	if res.Error != nil {
		return apperrors.NewInternalErrorWithCause("delete message", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("message not found for delete: " + id)
	}
	return nil
}

// DeleteByChat removes all messages of a chat; used by the chat delete
// cascade.
func (MessageRepository) DeleteByChat(tx *gorm.DB, chatID string) error {
	if err := tx.Delete(&models.Message{}, "chat_id = ?", chatID).Error; err != nil {
		return apperrors.NewInternalErrorWithCause("delete messages for chat", err)
	}
	return nil
}
