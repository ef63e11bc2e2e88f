package persistence

import (
	"errors"

	"gorm.io/gorm"

	"github.com/driftchat/driftchat/internal/infrastructure/persistence/models"
	apperrors "github.com/driftchat/driftchat/pkg/errors"
)

// ActiveModelRepository is a stateless accessor for active-model rows.
type ActiveModelRepository struct{}

func (ActiveModelRepository) FindByID(tx *gorm.DB, id string) (*models.ActiveModel, error) {
	var am models.ActiveModel
	if err := tx.First(&am, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("active model not found: " + id)
		}
		return nil, apperrors.NewInternalErrorWithCause("find active model", err)
	}
	return &am, nil
}

func (ActiveModelRepository) FindByIDForUpdate(tx *gorm.DB, id string) (*models.ActiveModel, error) {
	var am models.ActiveModel
	if err := forUpdate(tx).First(&am, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("active model not found: " + id)
		}
		return nil, apperrors.NewInternalErrorWithCause("find active model for update", err)
	}
	return &am, nil
}

func (ActiveModelRepository) FindByIDs(tx *gorm.DB, ids []string) ([]models.ActiveModel, error) {
	var ams []models.ActiveModel
	if err := tx.Where("id IN ?", ids).Find(&ams).Error; err != nil {
		return nil, apperrors.NewInternalErrorWithCause("find active models by ids", err)
	}
	return ams, nil
}

func (ActiveModelRepository) FindByUser(tx *gorm.DB, userID string) ([]models.ActiveModel, error) {
	var ams []models.ActiveModel
	if err := tx.Where("user_id = ?", userID).Find(&ams).Error; err != nil {
		return nil, apperrors.NewInternalErrorWithCause("list active models", err)
	}
	return ams, nil
}

// FirstForUser returns the user's selection, or nil when none exists.
func (ActiveModelRepository) FirstForUser(tx *gorm.DB, userID string) (*models.ActiveModel, error) {
	var am models.ActiveModel
	err := tx.Where("user_id = ?", userID).Order("created_at asc").First(&am).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewInternalErrorWithCause("find active model for user", err)
	}
	return &am, nil
}

func (ActiveModelRepository) Create(tx *gorm.DB, am *models.ActiveModel) error {
	if err := tx.Create(am).Error; err != nil {
		return apperrors.NewInternalErrorWithCause("create active model", err)
	}
	return nil
}

func (ActiveModelRepository) Update(tx *gorm.DB, id string, fields map[string]any) (*models.ActiveModel, error) {
	res := tx.Model(&models.ActiveModel{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, apperrors.NewInternalErrorWithCause("update active model", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NewNotFoundError("active model not found for update: " + id)
	}
	return ActiveModelRepository{}.FindByID(tx, id)
}

func (ActiveModelRepository) Delete(tx *gorm.DB, id string) error {
	res := tx.Delete(&models.ActiveModel{}, "id = ?", id)
	if res.Error != nil {
		return apperrors.NewInternalErrorWithCause("delete active model", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("active model not found for delete: " + id)
	}
	return nil
}
