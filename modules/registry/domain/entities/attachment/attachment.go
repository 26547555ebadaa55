package attachment

import (
	"time"

	"github.com/google/uuid"
)

// Attachment is a stored document or photo. Files are content-addressed:
// two uploads with the same SHA-256 hash share one Attachment row and one
// file on disk.
type Attachment struct {
	id        uuid.UUID
	hash      string
	path      string
	name      string
	size      int64
	mimeType  string
	createdAt time.Time
	updatedAt time.Time
}

type Option func(*Attachment)

func WithID(id uuid.UUID) Option {
	return func(a *Attachment) {
		a.id = id
	}
}

func WithName(name string) Option {
	return func(a *Attachment) {
		a.name = name
	}
}

func WithMimeType(mimeType string) Option {
	return func(a *Attachment) {
		a.mimeType = mimeType
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(a *Attachment) {
		a.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(a *Attachment) {
		a.updatedAt = updatedAt
	}
}

func New(hash, path string, size int64, opts ...Option) *Attachment {
	a := &Attachment{
		id:        uuid.New(),
		hash:      hash,
		path:      path,
		size:      size,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Attachment) ID() uuid.UUID {
	return a.id
}

func (a *Attachment) Hash() string {
	return a.hash
}

func (a *Attachment) Path() string {
	return a.path
}

func (a *Attachment) Name() string {
	return a.name
}

func (a *Attachment) Size() int64 {
	return a.size
}

func (a *Attachment) MimeType() string {
	return a.mimeType
}

func (a *Attachment) CreatedAt() time.Time {
	return a.createdAt
}

func (a *Attachment) UpdatedAt() time.Time {
	return a.updatedAt
}
