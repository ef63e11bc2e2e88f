package replicache

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/driftchat/driftchat/internal/infrastructure/persistence"
	apperrors "github.com/driftchat/driftchat/pkg/errors"
)

// Applier dispatches a mutation's business logic by name. Unknown names
// must fail the mutation.
type Applier interface {
	Apply(tx *gorm.DB, userID string, m Mutation) error
}

// Poker notifies a user's live clients that new state is pullable.
type Poker interface {
	ReplicachePoke(userID string)
}

// Pusher applies a client's ordered mutation list.
type Pusher struct {
	db      *gorm.DB
	applier Applier
	poker   Poker
	groups  persistence.ClientGroupRepository
	clients persistence.ClientRepository
	logger  *zap.Logger
}

func NewPusher(db *gorm.DB, applier Applier, poker Poker, logger *zap.Logger) *Pusher {
	return &Pusher{
		db:      db,
		applier: applier,
		poker:   poker,
		logger:  logger.With(zap.String("component", "push")),
	}
}

// Push applies each mutation in order, each in its own transaction. A
// mutation whose business logic fails is retried once in error mode: the
// second transaction skips the business logic but still advances the
// client's counter, so a poisoned mutation cannot wedge its client in a
// replay loop. After all mutations, connected clients are poked to pull.
func (p *Pusher) Push(ctx context.Context, userID string, req PushRequest) (*PushResponse, error) {
	for _, m := range req.Mutations {
		err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return p.applyMutation(tx, userID, req.ClientGroupID, m, false)
		})
		if err == nil {
			continue
		}

		if apperrors.IsUnauthorized(err) {
			return nil, err
		}

		p.logger.Warn("Mutation failed, retrying in error mode to advance mutation id",
			zap.Int("mutation_id", m.ID),
			zap.String("mutation", m.Name),
			zap.Error(err))

		err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return p.applyMutation(tx, userID, req.ClientGroupID, m, true)
		})
		if err != nil {
			// An out-of-order mutation fails both phases; the client
			// stalls until the gap arrives.
			p.logger.Error("Mutation failed in error mode, leaving unapplied",
				zap.Int("mutation_id", m.ID),
				zap.String("client_id", m.ClientID),
				zap.Error(err))
		}
	}

	p.poker.ReplicachePoke(userID)
	return &PushResponse{Success: true}, nil
}

// applyMutation runs the per-mutation pipeline: causality check against the
// client's counter, optional business dispatch, counter advance. In error
// mode the dispatch is skipped but the counter still moves.
func (p *Pusher) applyMutation(tx *gorm.DB, userID, groupID string, m Mutation, errorMode bool) error {
	if _, err := p.groups.FindOrCreate(tx, groupID, userID); err != nil {
		return err
	}

	client, err := p.clients.FindOrCreate(tx, m.ClientID, groupID)
	if err != nil {
		return err
	}

	next := client.LastMutationID + 1

	if m.ID < next {
		p.logger.Info("Mutation already processed, skipping",
			zap.Int("mutation_id", m.ID),
			zap.String("client_id", m.ClientID))
		return nil
	}
	if m.ID > next {
		return apperrors.NewConflictError(
			fmt.Sprintf("out-of-order mutation: expected %d, got %d", next, m.ID))
	}

	if !errorMode {
		if err := p.applier.Apply(tx, userID, m); err != nil {
			return err
		}
	}

	return p.clients.UpdateLastMutationID(tx, client.ID, next)
}
