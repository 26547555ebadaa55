package evidence

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Evidence, error)
	Create(ctx context.Context, e Evidence) (Evidence, error)
	// LinkClaim sets the claim reference on an evidence row that was
	// inserted before its claim existed.
	LinkClaim(ctx context.Context, evidenceID, claimID uuid.UUID) error
	CountByAttachment(ctx context.Context, attachmentID uuid.UUID) (int64, error)
}
