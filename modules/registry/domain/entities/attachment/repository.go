package attachment

import (
	"context"
	"io"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Attachment, error)
	GetByHash(ctx context.Context, hash string) (*Attachment, error)
	Create(ctx context.Context, a *Attachment) (*Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Storage writes and reads attachment payloads on a backing store. The key
// is a relative path assigned by the service, not by the caller.
type Storage interface {
	Save(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}
