package composables

import (
	"context"
	"errors"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/constants"
	"github.com/google/uuid"
)

// ErrNoActor is returned when a mutating operation runs without an
// authenticated actor in context.
var ErrNoActor = errors.New("no actor found in context")

// WithActor records the id of the user performing the current operation.
// The surrounding application authenticates; the pipeline only attributes.
func WithActor(ctx context.Context, actorID uuid.UUID) context.Context {
	return context.WithValue(ctx, constants.ActorKey, actorID)
}

func UseActor(ctx context.Context) (uuid.UUID, error) {
	v := ctx.Value(constants.ActorKey)
	if v == nil {
		return uuid.Nil, ErrNoActor
	}
	id, ok := v.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, ErrNoActor
	}
	return id, nil
}
