package replicache

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/driftchat/driftchat/internal/infrastructure/persistence"
)

// Puller answers pull requests with minimal diff patches against the
// client's cached base CVR.
type Puller struct {
	db        *gorm.DB
	snapshots Snapshots
	registry  *Registry
	groups    persistence.ClientGroupRepository
	clients   persistence.ClientRepository
	logger    *zap.Logger
}

func NewPuller(db *gorm.DB, snapshots Snapshots, registry *Registry, logger *zap.Logger) *Puller {
	return &Puller{
		db:        db,
		snapshots: snapshots,
		registry:  registry,
		logger:    logger.With(zap.String("component", "pull")),
	}
}

type pullResult struct {
	unchanged  bool
	cvrVersion int
	nextCVR    *CVR
	patch      []PatchOp
}

// Pull resolves the base snapshot, builds the next CVR from authoritative
// state, and returns either an empty patch (view unchanged) or the diff
// with a freshly cached snapshot and bumped cookie order.
func (p *Puller) Pull(ctx context.Context, userID string, req PullRequest) (*PullResponse, error) {
	base, err := p.baseCVR(ctx, req.Cookie)
	if err != nil {
		return nil, err
	}

	cookieOrder := 0
	if req.Cookie != nil {
		cookieOrder = req.Cookie.Order
	}

	var res pullResult
	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, err := p.groups.FindOrCreate(tx, req.ClientGroupID, userID)
		if err != nil {
			return err
		}

		next, err := p.buildNextCVR(tx, group.ID, userID)
		if err != nil {
			return err
		}

		if next.Equal(base) {
			p.logger.Debug("CVR unchanged, returning early",
				zap.String("client_group_id", group.ID))
			res = pullResult{unchanged: true, cvrVersion: group.CvrVersion}
			return nil
		}

		patch, err := GeneratePatch(tx, p.registry, base, next)
		if err != nil {
			return err
		}

		newVersion := max(cookieOrder, group.CvrVersion) + 1
		if err := p.groups.UpdateCvrVersion(tx, group.ID, newVersion); err != nil {
			return err
		}

		res = pullResult{cvrVersion: newVersion, nextCVR: next, patch: patch}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.unchanged {
		cookie := Cookie{Order: res.cvrVersion, CvrID: uuid.NewString()}
		if req.Cookie != nil {
			cookie = *req.Cookie
		}
		return &PullResponse{
			Cookie:                cookie,
			LastMutationIDChanges: map[string]int{},
			Patch:                 []PatchOp{},
		}, nil
	}

	cvrID := uuid.NewString()
	if err := p.snapshots.Put(ctx, cvrID, res.nextCVR); err != nil {
		return nil, fmt.Errorf("cache next CVR: %w", err)
	}

	p.logger.Debug("Pull produced patch",
		zap.String("client_group_id", req.ClientGroupID),
		zap.Int("ops", len(res.patch)),
		zap.Int("order", res.cvrVersion))

	return &PullResponse{
		Cookie:                Cookie{Order: res.cvrVersion, CvrID: cvrID},
		LastMutationIDChanges: res.nextCVR.LastMutationIDs,
		Patch:                 res.patch,
	}, nil
}

// baseCVR resolves the snapshot named by the cookie. No cookie or a cache
// miss both mean "client knows nothing": an empty record forcing a full
// diff.
func (p *Puller) baseCVR(ctx context.Context, cookie *Cookie) (*CVR, error) {
	if cookie == nil {
		return NewCVR(), nil
	}

	cvr, err := p.snapshots.Get(ctx, cookie.CvrID)
	if err != nil {
		return nil, fmt.Errorf("read base CVR: %w", err)
	}
	if cvr == nil {
		p.logger.Info("CVR snapshot missing, using empty base",
			zap.String("cvr_id", cookie.CvrID))
		return NewCVR(), nil
	}
	return cvr, nil
}

func (p *Puller) buildNextCVR(tx *gorm.DB, groupID, userID string) (*CVR, error) {
	entities, err := p.registry.ListAll(tx, userID)
	if err != nil {
		return nil, err
	}

	clients, err := p.clients.ListForGroup(tx, groupID)
	if err != nil {
		return nil, err
	}

	next := NewCVR()
	next.Entities = entities
	for _, client := range clients {
		next.LastMutationIDs[client.ID] = client.LastMutationID
	}
	return next, nil
}
