package merging

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
)

var (
	ErrNoStrategy           = errors.New("no merge strategy for entity type")
	ErrStagedRecordNotFound = errors.New("staged record not found")
)

// Strategy carries out the entity-specific halves of a merge resolution.
// Transaction scope belongs to the caller; a strategy only issues the
// repository calls.
type Strategy interface {
	EntityType() staging.EntityType

	// DiscardStaged skips the staged record so it never commits. masterID
	// is the production row that absorbed it, nil when the surviving side
	// is staged too.
	DiscardStaged(ctx context.Context, packageID uuid.UUID, originalID string, masterID *uuid.UUID) error

	// AbsorbProduction merges the discarded production row into the master:
	// empty fields on the master are filled from the discarded row,
	// dependents are re-pointed, the discarded row is retired. The returned
	// payload documents what changed.
	AbsorbProduction(ctx context.Context, masterID, discardedID uuid.UUID) (json.RawMessage, error)
}

// Registry maps entity types to their merge strategies. The set is fixed at
// startup; only persons and property units participate in merging.
type Registry struct {
	strategies map[staging.EntityType]Strategy
}

func NewRegistry(strategies ...Strategy) *Registry {
	m := make(map[staging.EntityType]Strategy, len(strategies))
	for _, s := range strategies {
		m[s.EntityType()] = s
	}
	return &Registry{strategies: m}
}

func (r *Registry) For(entityType staging.EntityType) (Strategy, error) {
	s, ok := r.strategies[entityType]
	if !ok {
		return nil, errors.Wrapf(ErrNoStrategy, "entity type %q", entityType)
	}
	return s, nil
}

func (r *Registry) Supports(entityType staging.EntityType) bool {
	_, ok := r.strategies[entityType]
	return ok
}
