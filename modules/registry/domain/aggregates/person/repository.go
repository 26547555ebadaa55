package person

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Person, error)
	// GetActive returns every active person, loaded into memory for the
	// duplicate matcher.
	GetActive(ctx context.Context) ([]Person, error)
	Create(ctx context.Context, p Person) (Person, error)
	Update(ctx context.Context, p Person) (Person, error)
	// Deactivate soft-removes a person absorbed by a production merge.
	Deactivate(ctx context.Context, id uuid.UUID) error
}
