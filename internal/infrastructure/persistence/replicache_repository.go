package persistence

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/driftchat/driftchat/internal/infrastructure/persistence/models"
	apperrors "github.com/driftchat/driftchat/pkg/errors"
)

// ClientGroupRepository manages replicache client groups. A group's owner is
// fixed on first use; later access by a different user is Unauthorized.
type ClientGroupRepository struct{}

func (ClientGroupRepository) Find(tx *gorm.DB, id string) (*models.ReplicacheClientGroup, error) {
	var group models.ReplicacheClientGroup
	if err := tx.First(&group, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewInternalErrorWithCause("find client group", err)
	}
	return &group, nil
}

// FindOrCreate resolves the group, creating it owned by userID on first
// sight. An owner mismatch is an authorization failure.
func (r ClientGroupRepository) FindOrCreate(tx *gorm.DB, id, userID string) (*models.ReplicacheClientGroup, error) {
	group, err := r.Find(tx, id)
	if err != nil {
		return nil, err
	}
	if group != nil {
		if group.UserID != userID {
			return nil, apperrors.NewUnauthorizedError("client group " + id + " belongs to a different user")
		}
		return group, nil
	}

	group = &models.ReplicacheClientGroup{ID: id, UserID: userID, CvrVersion: 0}
	if err := tx.Create(group).Error; err != nil {
		return nil, apperrors.NewInternalErrorWithCause("create client group", err)
	}
	return group, nil
}

func (ClientGroupRepository) UpdateCvrVersion(tx *gorm.DB, id string, version int) error {
	res := tx.Model(&models.ReplicacheClientGroup{}).
		Where("id = ?", id).
		Updates(map[string]any{"cvr_version": version, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return apperrors.NewInternalErrorWithCause("update cvr version", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("client group not found for update: " + id)
	}
	return nil
}

// ClientRepository manages per-client mutation counters.
type ClientRepository struct{}

func (ClientRepository) Find(tx *gorm.DB, id string) (*models.ReplicacheClient, error) {
	var client models.ReplicacheClient
	if err := tx.First(&client, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewInternalErrorWithCause("find client", err)
	}
	return &client, nil
}

// FindOrCreate resolves the client, creating it in the given group on first
// sight. A client cannot migrate between groups.
func (r ClientRepository) FindOrCreate(tx *gorm.DB, id, groupID string) (*models.ReplicacheClient, error) {
	client, err := r.Find(tx, id)
	if err != nil {
		return nil, err
	}
	if client != nil {
		if client.ClientGroupID != groupID {
			return nil, apperrors.NewConflictError("client " + id + " belongs to a different group")
		}
		return client, nil
	}

	client = &models.ReplicacheClient{ID: id, ClientGroupID: groupID, LastMutationID: 0}
	if err := tx.Create(client).Error; err != nil {
		return nil, apperrors.NewInternalErrorWithCause("create client", err)
	}
	return client, nil
}

func (ClientRepository) ListForGroup(tx *gorm.DB, groupID string) ([]models.ReplicacheClient, error) {
	var clients []models.ReplicacheClient
	if err := tx.Where("client_group_id = ?", groupID).Find(&clients).Error; err != nil {
		return nil, apperrors.NewInternalErrorWithCause("list clients for group", err)
	}
	return clients, nil
}

func (ClientRepository) UpdateLastMutationID(tx *gorm.DB, id string, mutationID int) error {
	res := tx.Model(&models.ReplicacheClient{}).
		Where("id = ?", id).
		Updates(map[string]any{"last_mutation_id": mutationID, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return apperrors.NewInternalErrorWithCause("update last mutation id", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("client not found for update: " + id)
	}
	return nil
}
