package unit

import (
	"context"

	"github.com/google/uuid"
)

// Key identifies a unit by its composite business key.
type Key struct {
	UnitID       uuid.UUID
	BuildingCode string
	UnitNumber   string
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (PropertyUnit, error)
	// GetKeys returns the (building code, unit number) key of every unit,
	// used by exact-key duplicate matching.
	GetKeys(ctx context.Context) ([]Key, error)
	Create(ctx context.Context, u PropertyUnit) (PropertyUnit, error)
	Update(ctx context.Context, u PropertyUnit) (PropertyUnit, error)
	// RepointBuilding moves every unit of one building to another and
	// returns the number of rows touched.
	RepointBuilding(ctx context.Context, from, to uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
