package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/evidence"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/entities/attachment"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/infrastructure/persistence"
)

// AttachmentService stores uploaded files content-addressed by SHA-256.
// Importing the same document twice, even from different packages, yields
// one stored file and one attachment row.
type AttachmentService struct {
	repo         attachment.Repository
	evidenceRepo evidence.Repository
	storage      attachment.Storage
}

func NewAttachmentService(
	repo attachment.Repository,
	evidenceRepo evidence.Repository,
	storage attachment.Storage,
) *AttachmentService {
	return &AttachmentService{
		repo:         repo,
		evidenceRepo: evidenceRepo,
		storage:      storage,
	}
}

func (s *AttachmentService) GetByID(ctx context.Context, id uuid.UUID) (*attachment.Attachment, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores the payload and returns its attachment. When a file with
// the same content hash already exists, the existing attachment is returned
// and nothing is written.
func (s *AttachmentService) Create(ctx context.Context, name string, r io.Reader) (*attachment.Attachment, error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read attachment payload")
	}

	sum := sha256.Sum256(payload)
	hash := hex.EncodeToString(sum[:])

	existing, err := s.repo.GetByHash(ctx, hash)
	if err != nil && !errors.Is(err, persistence.ErrAttachmentNotFound) {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	key := storageKey(hash)
	size, err := s.storage.Save(ctx, key, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	entity := attachment.New(
		hash,
		key,
		size,
		attachment.WithName(name),
		attachment.WithMimeType(mimetype.Detect(payload).String()),
	)
	created, err := s.repo.Create(ctx, entity)
	if err != nil {
		// Lost a race against a concurrent import of the same file. The
		// stored payload is identical, so the winner's row is ours too.
		if errors.Is(err, persistence.ErrAttachmentHashTaken) {
			return s.repo.GetByHash(ctx, hash)
		}
		return nil, err
	}
	return created, nil
}

func (s *AttachmentService) Open(ctx context.Context, id uuid.UUID) (io.ReadCloser, error) {
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.storage.Open(ctx, entity.Path())
}

// DeleteIfUnreferenced removes the attachment row and its file, but only
// when no evidence record points at it. Returns whether a delete happened.
func (s *AttachmentService) DeleteIfUnreferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	refs, err := s.evidenceRepo.CountByAttachment(ctx, id)
	if err != nil {
		return false, err
	}
	if refs > 0 {
		return false, nil
	}

	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrAttachmentNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return false, err
	}
	if err := s.storage.Remove(ctx, entity.Path()); err != nil {
		return false, err
	}
	return true, nil
}

// storageKey shards files by hash prefix so no directory accumulates every
// attachment of the registry.
func storageKey(hash string) string {
	return fmt.Sprintf("%s/%s/%s", hash[:2], hash[2:4], hash)
}
