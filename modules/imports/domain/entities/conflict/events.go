package conflict

import (
	"context"

	"github.com/google/uuid"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
)

type ResolvedEvent struct {
	Conflict *Conflict
	ActorID  uuid.UUID
}

func NewResolvedEvent(ctx context.Context, c *Conflict) (*ResolvedEvent, error) {
	actor, err := composables.UseActor(ctx)
	if err != nil {
		return nil, err
	}
	return &ResolvedEvent{Conflict: c, ActorID: actor}, nil
}
