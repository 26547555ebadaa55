package importpackage

import (
	"context"

	"github.com/google/uuid"
)

// FindParams filter and page package listings. Zero Limit means no paging.
type FindParams struct {
	Statuses []Status
	Limit    int
	Offset   int
	SortAsc  bool
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (ImportPackage, error)
	GetByCode(ctx context.Context, code string) (ImportPackage, error)
	List(ctx context.Context, params *FindParams) ([]ImportPackage, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	Create(ctx context.Context, p ImportPackage) (ImportPackage, error)
	Update(ctx context.Context, p ImportPackage) (ImportPackage, error)
}
