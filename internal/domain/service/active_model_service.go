package service

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/driftchat/driftchat/internal/infrastructure/persistence"
	"github.com/driftchat/driftchat/internal/infrastructure/persistence/models"
	apperrors "github.com/driftchat/driftchat/pkg/errors"
)

// CreateActiveModelArgs mirrors the createActiveModel mutation payload.
type CreateActiveModelArgs struct {
	ID        string    `json:"id"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Reasoning *string   `json:"reasoning"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateActiveModelArgs mirrors the updateActiveModel mutation payload.
type UpdateActiveModelArgs struct {
	ID        string    `json:"id"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Reasoning *string   `json:"reasoning"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ActiveModelService owns the user's (provider, model, effort) selection.
type ActiveModelService struct {
	repo   persistence.ActiveModelRepository
	logger *zap.Logger
}

func NewActiveModelService(logger *zap.Logger) *ActiveModelService {
	return &ActiveModelService{logger: logger.With(zap.String("service", "active_model"))}
}

func (s *ActiveModelService) Create(tx *gorm.DB, userID string, args CreateActiveModelArgs) (*models.ActiveModel, error) {
	am := &models.ActiveModel{
		ID:        args.ID,
		UserID:    userID,
		Provider:  args.Provider,
		Model:     args.Model,
		Reasoning: args.Reasoning,
		Version:   1,
		CreatedAt: args.CreatedAt,
		UpdatedAt: args.UpdatedAt,
	}
	if err := s.repo.Create(tx, am); err != nil {
		return nil, err
	}
	return am, nil
}

func (s *ActiveModelService) Update(tx *gorm.DB, userID string, args UpdateActiveModelArgs) (*models.ActiveModel, error) {
	existing, err := s.repo.FindByIDForUpdate(tx, args.ID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, apperrors.NewForbiddenError("you do not have access to this selection")
	}

	return s.repo.Update(tx, args.ID, map[string]any{
		"provider":   args.Provider,
		"model":      args.Model,
		"reasoning":  args.Reasoning,
		"version":    existing.Version + 1,
		"updated_at": args.UpdatedAt,
	})
}

func (s *ActiveModelService) Delete(tx *gorm.DB, userID, id string) (*models.ActiveModel, error) {
	existing, err := s.repo.FindByIDForUpdate(tx, id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, apperrors.NewForbiddenError("you do not have access to this selection")
	}
	if err := s.repo.Delete(tx, id); err != nil {
		return nil, err
	}
	return existing, nil
}

// GetForUser returns the user's current selection, or nil when the user
// never picked a model. Callers fall back to the configured default.
func (s *ActiveModelService) GetForUser(tx *gorm.DB, userID string) (*models.ActiveModel, error) {
	return s.repo.FirstForUser(tx, userID)
}
