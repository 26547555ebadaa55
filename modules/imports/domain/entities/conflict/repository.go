package conflict

import (
	"context"

	"github.com/google/uuid"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
)

// FindParams narrow conflict listings. Zero Limit means no paging.
type FindParams struct {
	Statuses    []Status
	EntityTypes []staging.EntityType
	Limit       int
	Offset      int
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Conflict, error)
	GetByPackage(ctx context.Context, packageID uuid.UUID, params *FindParams) ([]*Conflict, error)
	// CountOpen counts the package's unresolved conflicts.
	CountOpen(ctx context.Context, packageID uuid.UUID) (int64, error)
	// ExistsPair reports whether the canonicalized pair is already recorded
	// for the package, any status.
	ExistsPair(ctx context.Context, packageID uuid.UUID, left, right Ref) (bool, error)
	Create(ctx context.Context, c *Conflict) (*Conflict, error)
	Update(ctx context.Context, c *Conflict) (*Conflict, error)
	DeleteByPackage(ctx context.Context, packageID uuid.UUID) error
}
