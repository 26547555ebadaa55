package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entry is one attributed pipeline action. Entries are append-only; cleanup
// keeps them as the package's history.
type Entry struct {
	ID        int64
	PackageID uuid.UUID
	ActorID   uuid.UUID
	Action    string
	Payload   json.RawMessage
	CreatedAt time.Time
}

type Repository interface {
	Insert(ctx context.Context, e *Entry) error
	ListByPackage(ctx context.Context, packageID uuid.UUID) ([]*Entry, error)
}
