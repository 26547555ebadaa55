package claim

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Claim, error)
	Create(ctx context.Context, c Claim) (Claim, error)
	// RepointClaimant moves every claim filed by old onto new. Used when a
	// duplicate person record is merged away.
	RepointClaimant(ctx context.Context, oldPersonID, newPersonID uuid.UUID) (int64, error)
	// RepointUnit moves every claim against old onto new. Used when a
	// duplicate property unit record is merged away.
	RepointUnit(ctx context.Context, oldUnitID, newUnitID uuid.UUID) (int64, error)
}
