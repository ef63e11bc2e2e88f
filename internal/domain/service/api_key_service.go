package service

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/driftchat/driftchat/internal/infrastructure/crypto"
	"github.com/driftchat/driftchat/internal/infrastructure/persistence"
	"github.com/driftchat/driftchat/internal/infrastructure/persistence/models"
	apperrors "github.com/driftchat/driftchat/pkg/errors"
)

// ApiKeyService stores provider credentials encrypted at rest. Plaintext
// keys exist only transiently: on the way in during Create and on the way
// out during GetAndDecrypt.
type ApiKeyService struct {
	repo      persistence.ApiKeyRepository
	masterKey []byte
	logger    *zap.Logger
}

func NewApiKeyService(masterKey []byte, logger *zap.Logger) *ApiKeyService {
	return &ApiKeyService{
		masterKey: masterKey,
		logger:    logger.With(zap.String("service", "api_key")),
	}
}

func (s *ApiKeyService) Create(tx *gorm.DB, userID, provider, plaintext string) (*models.ApiKey, error) {
	if provider == "" || plaintext == "" {
		return nil, apperrors.NewInvalidInputError("provider and key are required")
	}

	blob, err := crypto.Encrypt(s.masterKey, []byte(plaintext))
	if err != nil {
		return nil, apperrors.NewInternalErrorWithCause("encrypt api key", err)
	}

	key := &models.ApiKey{
		UserID:       userID,
		Provider:     provider,
		EncryptedKey: blob,
	}
	if err := s.repo.Create(tx, key); err != nil {
		return nil, err
	}
	return key, nil
}

func (s *ApiKeyService) List(tx *gorm.DB, userID string) ([]models.ApiKey, error) {
	return s.repo.ListForUser(tx, userID)
}

func (s *ApiKeyService) Delete(tx *gorm.DB, id uint, userID string) error {
	return s.repo.Delete(tx, id, userID)
}

// GetAndDecrypt returns the plaintext key for a provider. A missing row
// becomes a missing-key error so callers can surface it to the user rather
// than retry.
func (s *ApiKeyService) GetAndDecrypt(tx *gorm.DB, userID, provider string) (string, error) {
	key, err := s.repo.GetForProvider(tx, userID, provider)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return "", apperrors.NewMissingKeyError(provider)
		}
		return "", err
	}

	plaintext, err := crypto.Decrypt(s.masterKey, key.EncryptedKey)
	if err != nil {
		return "", apperrors.NewInternalErrorWithCause("decrypt api key", err)
	}
	return string(plaintext), nil
}
