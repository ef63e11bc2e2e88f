package persistence

import (
	"errors"

	"gorm.io/gorm"

	"github.com/driftchat/driftchat/internal/infrastructure/persistence/models"
	apperrors "github.com/driftchat/driftchat/pkg/errors"
)

// ApiKeyRepository is a stateless accessor for encrypted API-key rows.
type ApiKeyRepository struct{}

func (ApiKeyRepository) Create(tx *gorm.DB, key *models.ApiKey) error {
	if err := tx.Create(key).Error; err != nil {
		return apperrors.NewInternalErrorWithCause("create api key", err)
	}
	return nil
}

func (ApiKeyRepository) ListForUser(tx *gorm.DB, userID string) ([]models.ApiKey, error) {
	var keys []models.ApiKey
	if err := tx.Where("user_id = ?", userID).Order("created_at asc").Find(&keys).Error; err != nil {
		return nil, apperrors.NewInternalErrorWithCause("list api keys", err)
	}
	return keys, nil
}

func (ApiKeyRepository) GetForProvider(tx *gorm.DB, userID, provider string) (*models.ApiKey, error) {
	var key models.ApiKey
	err := tx.Where("user_id = ? AND provider = ?", userID, provider).First(&key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("api key not found for provider: " + provider)
		}
		return nil, apperrors.NewInternalErrorWithCause("find api key", err)
	}
	return &key, nil
}

func (ApiKeyRepository) Delete(tx *gorm.DB, id uint, userID string) error {
	res := tx.Delete(&models.ApiKey{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return apperrors.NewInternalErrorWithCause("delete api key", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("api key not found for delete")
	}
	return nil
}
