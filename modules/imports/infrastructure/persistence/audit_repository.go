package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/audit"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/infrastructure/persistence/models"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
)

const (
	auditInsertQuery = `
        INSERT INTO import_audit_log (
            import_package_id,
            actor_id,
            action,
            payload
        ) VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`

	auditListQuery = `
        SELECT id,
               import_package_id,
               actor_id,
               action,
               payload,
               created_at
        FROM import_audit_log
        WHERE import_package_id = $1
        ORDER BY id`
)

type PgAuditRepository struct{}

func NewAuditRepository() audit.Repository {
	return &PgAuditRepository{}
}

func (g *PgAuditRepository) Insert(ctx context.Context, e *audit.Entry) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	payload := []byte(e.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	if err := tx.QueryRow(ctx, auditInsertQuery,
		e.PackageID.String(),
		e.ActorID.String(),
		e.Action,
		payload,
	).Scan(&e.ID, &e.CreatedAt); err != nil {
		return errors.Wrap(err, "failed to insert audit entry")
	}
	return nil
}

func (g *PgAuditRepository) ListByPackage(ctx context.Context, packageID uuid.UUID) ([]*audit.Entry, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, auditListQuery, packageID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to query audit log")
	}
	defer rows.Close()

	var out []*audit.Entry
	for rows.Next() {
		var m models.AuditEntry
		if err := rows.Scan(
			&m.ID,
			&m.PackageID,
			&m.ActorID,
			&m.Action,
			&m.Payload,
			&m.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan audit row")
		}
		e, err := toDomainAuditEntry(&m)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var _ audit.Repository = (*PgAuditRepository)(nil)
