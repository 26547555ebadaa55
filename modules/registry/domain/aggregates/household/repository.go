package household

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Household, error)
	Create(ctx context.Context, h Household) (Household, error)
	// RepointHead moves headship from one person to another and returns
	// the number of rows touched.
	RepointHead(ctx context.Context, from, to uuid.UUID) (int64, error)
	RepointUnit(ctx context.Context, from, to uuid.UUID) (int64, error)
}
