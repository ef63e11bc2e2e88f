package persistence

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/driftchat/driftchat/internal/infrastructure/persistence/models"
	apperrors "github.com/driftchat/driftchat/pkg/errors"
)

// UserRepository is a stateless accessor for user rows.
type UserRepository struct{}

func (UserRepository) FindByID(tx *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("user not found: " + id)
		}
		return nil, apperrors.NewInternalErrorWithCause("find user", err)
	}
	return &user, nil
}

func (UserRepository) FindByEmail(tx *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, "email = ?", strings.ToLower(email)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("user not found")
		}
		return nil, apperrors.NewInternalErrorWithCause("find user by email", err)
	}
	return &user, nil
}

func (UserRepository) Create(tx *gorm.DB, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	if err := tx.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "unique") {
			return apperrors.NewConflictError("email already registered")
		}
		return apperrors.NewInternalErrorWithCause("create user", err)
	}
	return nil
}
