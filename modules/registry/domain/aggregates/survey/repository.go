package survey

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Survey, error)
	GetByPackageID(ctx context.Context, packageID uuid.UUID) ([]Survey, error)
	Create(ctx context.Context, s Survey) (Survey, error)
}
