package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/entities/attachment"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/infrastructure/persistence/models"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/repo"
)

var (
	ErrAttachmentNotFound  = errors.New("attachment not found")
	ErrAttachmentHashTaken = errors.New("attachment hash already stored")
)

const (
	attachmentFindQuery = `
        SELECT
            a.id,
            a.hash,
            a.path,
            a.name,
            a.size,
            a.mimetype,
            a.created_at,
            a.updated_at
        FROM attachments a`

	attachmentDeleteQuery = `DELETE FROM attachments WHERE id = $1`
)

type PgAttachmentRepository struct{}

func NewAttachmentRepository() attachment.Repository {
	return &PgAttachmentRepository{}
}

func (g *PgAttachmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*attachment.Attachment, error) {
	return g.queryOne(ctx, attachmentFindQuery+" WHERE a.id = $1", id.String())
}

func (g *PgAttachmentRepository) GetByHash(ctx context.Context, hash string) (*attachment.Attachment, error) {
	return g.queryOne(ctx, attachmentFindQuery+" WHERE a.hash = $1", hash)
}

func (g *PgAttachmentRepository) Create(ctx context.Context, a *attachment.Attachment) (*attachment.Attachment, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	fields := []string{
		"id",
		"hash",
		"path",
		"name",
		"size",
		"mimetype",
	}
	values := []interface{}{
		a.ID().String(),
		a.Hash(),
		a.Path(),
		a.Name(),
		a.Size(),
		a.MimeType(),
	}

	q := repo.Insert("attachments", fields, "id")
	var id string
	if err := tx.QueryRow(ctx, q, values...).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAttachmentHashTaken
		}
		return nil, errors.Wrap(err, "failed to insert attachment")
	}
	return g.GetByID(ctx, uuid.MustParse(id))
}

func (g *PgAttachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	if _, err := tx.Exec(ctx, attachmentDeleteQuery, id.String()); err != nil {
		return errors.Wrapf(err, "failed to delete attachment %s", id)
	}
	return nil
}

func (g *PgAttachmentRepository) queryOne(ctx context.Context, query string, args ...interface{}) (*attachment.Attachment, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	var row models.Attachment
	err = tx.QueryRow(ctx, query, args...).Scan(
		&row.ID,
		&row.Hash,
		&row.Path,
		&row.Name,
		&row.Size,
		&row.MimeType,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttachmentNotFound
		}
		return nil, errors.Wrap(err, "failed to query attachment")
	}
	return toDomainAttachment(&row)
}
