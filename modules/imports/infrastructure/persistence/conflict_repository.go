package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/conflict"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/infrastructure/persistence/models"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/repo"
)

var (
	ErrConflictNotFound   = errors.New("conflict not found")
	ErrConflictPairExists = errors.New("conflict pair already recorded")
)

const (
	conflictFindQuery = `
        SELECT c.id,
               c.import_package_id,
               c.entity_type,
               c.left_source,
               c.left_key,
               c.left_label,
               c.right_source,
               c.right_key,
               c.right_label,
               c.score,
               c.confidence,
               c.matched_criteria,
               c.status,
               c.resolution,
               c.resolution_payload,
               c.auto_detected,
               c.resolved_by,
               c.resolved_at,
               c.created_at
        FROM import_conflicts c`

	conflictInsertQuery = `
        INSERT INTO import_conflicts (
            id,
            import_package_id,
            entity_type,
            left_source,
            left_key,
            left_label,
            right_source,
            right_key,
            right_label,
            score,
            confidence,
            matched_criteria,
            status,
            resolution,
            resolution_payload,
            auto_detected,
            resolved_by,
            resolved_at,
            created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	conflictUpdateQuery = `
        UPDATE import_conflicts SET
            status = $2,
            resolution = $3,
            resolution_payload = $4,
            resolved_by = $5,
            resolved_at = $6
        WHERE id = $1`
)

type PgConflictRepository struct{}

func NewConflictRepository() conflict.Repository {
	return &PgConflictRepository{}
}

func (g *PgConflictRepository) queryConflicts(ctx context.Context, query string, args ...any) ([]*conflict.Conflict, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query conflicts")
	}
	defer rows.Close()

	var out []*conflict.Conflict
	for rows.Next() {
		var m models.Conflict
		if err := rows.Scan(
			&m.ID,
			&m.PackageID,
			&m.EntityType,
			&m.LeftSource,
			&m.LeftKey,
			&m.LeftLabel,
			&m.RightSource,
			&m.RightKey,
			&m.RightLabel,
			&m.Score,
			&m.Confidence,
			&m.MatchedCriteria,
			&m.Status,
			&m.Resolution,
			&m.ResolutionPayload,
			&m.AutoDetected,
			&m.ResolvedBy,
			&m.ResolvedAt,
			&m.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan conflict row")
		}
		c, err := toDomainConflict(&m)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (g *PgConflictRepository) GetByID(ctx context.Context, id uuid.UUID) (*conflict.Conflict, error) {
	conflicts, err := g.queryConflicts(ctx, conflictFindQuery+` WHERE c.id = $1`, id.String())
	if err != nil {
		return nil, err
	}
	if len(conflicts) == 0 {
		return nil, ErrConflictNotFound
	}
	return conflicts[0], nil
}

func (g *PgConflictRepository) GetByPackage(ctx context.Context, packageID uuid.UUID, params *conflict.FindParams) ([]*conflict.Conflict, error) {
	conditions := []string{"c.import_package_id = $1"}
	args := []any{packageID.String()}

	if params != nil && len(params.Statuses) > 0 {
		statuses := make([]string, 0, len(params.Statuses))
		for _, s := range params.Statuses {
			statuses = append(statuses, string(s))
		}
		args = append(args, statuses)
		conditions = append(conditions, fmt.Sprintf("c.status = ANY($%d)", len(args)))
	}
	if params != nil && len(params.EntityTypes) > 0 {
		types := make([]string, 0, len(params.EntityTypes))
		for _, t := range params.EntityTypes {
			types = append(types, string(t))
		}
		args = append(args, types)
		conditions = append(conditions, fmt.Sprintf("c.entity_type = ANY($%d)", len(args)))
	}

	query := repo.Join(
		conflictFindQuery,
		repo.JoinWhere(conditions...),
		"ORDER BY c.score DESC, c.created_at, c.id",
	)
	if params != nil {
		query = repo.Join(query, repo.FormatLimitOffset(params.Limit, params.Offset))
	}
	return g.queryConflicts(ctx, query, args...)
}

func (g *PgConflictRepository) CountOpen(ctx context.Context, packageID uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}

	var count int64
	if err := tx.QueryRow(ctx, `
        SELECT COUNT(*) FROM import_conflicts
        WHERE import_package_id = $1 AND status = $2`,
		packageID.String(), string(conflict.StatusUnresolved),
	).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count open conflicts")
	}
	return count, nil
}

func (g *PgConflictRepository) ExistsPair(ctx context.Context, packageID uuid.UUID, left, right conflict.Ref) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed to get transaction")
	}

	a, b := conflict.Canonicalize(left, right)
	var exists bool
	if err := tx.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM import_conflicts
            WHERE import_package_id = $1
              AND left_source = $2 AND left_key = $3
              AND right_source = $4 AND right_key = $5
        )`,
		packageID.String(), string(a.Source), a.Key, string(b.Source), b.Key,
	).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "failed to check conflict pair")
	}
	return exists, nil
}

func (g *PgConflictRepository) Create(ctx context.Context, c *conflict.Conflict) (*conflict.Conflict, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	m, err := toDBConflict(c)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, conflictInsertQuery,
		m.ID,
		m.PackageID,
		m.EntityType,
		m.LeftSource,
		m.LeftKey,
		m.LeftLabel,
		m.RightSource,
		m.RightKey,
		m.RightLabel,
		m.Score,
		m.Confidence,
		m.MatchedCriteria,
		m.Status,
		m.Resolution,
		m.ResolutionPayload,
		m.AutoDetected,
		m.ResolvedBy,
		m.ResolvedAt,
		m.CreatedAt,
	); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrConflictPairExists
		}
		return nil, errors.Wrap(err, "failed to create conflict")
	}
	return g.GetByID(ctx, c.ID())
}

func (g *PgConflictRepository) Update(ctx context.Context, c *conflict.Conflict) (*conflict.Conflict, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	m, err := toDBConflict(c)
	if err != nil {
		return nil, err
	}
	tag, err := tx.Exec(ctx, conflictUpdateQuery,
		m.ID,
		m.Status,
		m.Resolution,
		m.ResolutionPayload,
		m.ResolvedBy,
		m.ResolvedAt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update conflict")
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrConflictNotFound
	}
	return g.GetByID(ctx, c.ID())
}

func (g *PgConflictRepository) DeleteByPackage(ctx context.Context, packageID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM import_conflicts WHERE import_package_id = $1`, packageID.String()); err != nil {
		return errors.Wrap(err, "failed to delete package conflicts")
	}
	return nil
}

var _ conflict.Repository = (*PgConflictRepository)(nil)
