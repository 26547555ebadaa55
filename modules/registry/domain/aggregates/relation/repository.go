package relation

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Relation, error)
	Create(ctx context.Context, r Relation) (Relation, error)
	RepointPerson(ctx context.Context, from, to uuid.UUID) (int64, error)
	RepointUnit(ctx context.Context, from, to uuid.UUID) (int64, error)
}
