package building

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Building, error)
	GetByCode(ctx context.Context, code string) (Building, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, b Building) (Building, error)
}
