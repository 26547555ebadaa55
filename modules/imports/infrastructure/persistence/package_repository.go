package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/aggregates/importpackage"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/infrastructure/persistence/models"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/repo"
)

var (
	ErrPackageNotFound  = errors.New("import package not found")
	ErrPackageCodeTaken = errors.New("package code already ingested")
)

const (
	packageFindQuery = `
        SELECT
            p.id,
            p.package_code,
            p.status,
            p.failed_stage,
            p.original_file_name,
            p.container_path,
            p.archive_path,
            p.schema_version,
            p.exported_by,
            p.exported_at,
            p.device_id,
            p.imported_by,
            p.record_counts,
            p.has_unresolved_conflicts,
            p.validation_report,
            p.commit_report,
            p.error_message,
            p.validated_at,
            p.reviewed_at,
            p.committed_at,
            p.created_at,
            p.updated_at
        FROM import_packages p`

	packageCountQuery = `SELECT COUNT(*) FROM import_packages p`
)

type PgPackageRepository struct{}

func NewPackageRepository() importpackage.Repository {
	return &PgPackageRepository{}
}

func (g *PgPackageRepository) queryPackages(ctx context.Context, query string, args ...interface{}) ([]importpackage.ImportPackage, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query import packages")
	}
	defer rows.Close()

	var out []importpackage.ImportPackage
	for rows.Next() {
		var row models.ImportPackage
		if err := rows.Scan(
			&row.ID,
			&row.PackageCode,
			&row.Status,
			&row.FailedStage,
			&row.OriginalFileName,
			&row.ContainerPath,
			&row.ArchivePath,
			&row.SchemaVersion,
			&row.ExportedBy,
			&row.ExportedAt,
			&row.DeviceID,
			&row.ImportedBy,
			&row.RecordCounts,
			&row.HasUnresolvedConflicts,
			&row.ValidationReport,
			&row.CommitReport,
			&row.ErrorMessage,
			&row.ValidatedAt,
			&row.ReviewedAt,
			&row.CommittedAt,
			&row.CreatedAt,
			&row.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan import package")
		}
		p, err := toDomainPackage(&row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (g *PgPackageRepository) GetByID(ctx context.Context, id uuid.UUID) (importpackage.ImportPackage, error) {
	packages, err := g.queryPackages(ctx, packageFindQuery+" WHERE p.id = $1", id.String())
	if err != nil {
		return importpackage.ImportPackage{}, err
	}
	if len(packages) == 0 {
		return importpackage.ImportPackage{}, ErrPackageNotFound
	}
	return packages[0], nil
}

func (g *PgPackageRepository) GetByCode(ctx context.Context, code string) (importpackage.ImportPackage, error) {
	packages, err := g.queryPackages(ctx, packageFindQuery+" WHERE p.package_code = $1", code)
	if err != nil {
		return importpackage.ImportPackage{}, err
	}
	if len(packages) == 0 {
		return importpackage.ImportPackage{}, ErrPackageNotFound
	}
	return packages[0], nil
}

func listFilters(params *importpackage.FindParams) (string, []interface{}) {
	if params == nil {
		return "", nil
	}
	where := ""
	var args []interface{}
	if len(params.Statuses) > 0 {
		statuses := make([]string, 0, len(params.Statuses))
		for _, s := range params.Statuses {
			statuses = append(statuses, string(s))
		}
		args = append(args, statuses)
		where = " WHERE p.status = ANY($1)"
	}
	return where, args
}

func (g *PgPackageRepository) List(ctx context.Context, params *importpackage.FindParams) ([]importpackage.ImportPackage, error) {
	where, args := listFilters(params)

	order := " ORDER BY p.created_at DESC"
	limit := ""
	if params != nil {
		if params.SortAsc {
			order = " ORDER BY p.created_at ASC"
		}
		if params.Limit > 0 {
			limit = " " + repo.FormatLimitOffset(params.Limit, params.Offset)
		}
	}
	return g.queryPackages(ctx, packageFindQuery+where+order+limit, args...)
}

func (g *PgPackageRepository) Count(ctx context.Context, params *importpackage.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}

	where, args := listFilters(params)
	var count int64
	if err := tx.QueryRow(ctx, packageCountQuery+where, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count import packages")
	}
	return count, nil
}

func (g *PgPackageRepository) Create(ctx context.Context, p importpackage.ImportPackage) (importpackage.ImportPackage, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return importpackage.ImportPackage{}, errors.Wrap(err, "failed to get transaction")
	}

	row, err := toDBPackage(p)
	if err != nil {
		return importpackage.ImportPackage{}, err
	}

	fields := []string{
		"package_code",
		"status",
		"failed_stage",
		"original_file_name",
		"container_path",
		"archive_path",
		"schema_version",
		"exported_by",
		"exported_at",
		"device_id",
		"imported_by",
		"record_counts",
		"has_unresolved_conflicts",
		"validation_report",
		"commit_report",
		"error_message",
	}
	values := []interface{}{
		row.PackageCode,
		row.Status,
		row.FailedStage,
		row.OriginalFileName,
		row.ContainerPath,
		row.ArchivePath,
		row.SchemaVersion,
		row.ExportedBy,
		row.ExportedAt,
		row.DeviceID,
		row.ImportedBy,
		row.RecordCounts,
		row.HasUnresolvedConflicts,
		row.ValidationReport,
		row.CommitReport,
		row.ErrorMessage,
	}

	q := repo.Insert("import_packages", fields, "id")
	var id string
	if err := tx.QueryRow(ctx, q, values...).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return importpackage.ImportPackage{}, ErrPackageCodeTaken
		}
		return importpackage.ImportPackage{}, errors.Wrap(err, "failed to insert import package")
	}
	return g.GetByID(ctx, uuid.MustParse(id))
}

func (g *PgPackageRepository) Update(ctx context.Context, p importpackage.ImportPackage) (importpackage.ImportPackage, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return importpackage.ImportPackage{}, errors.Wrap(err, "failed to get transaction")
	}

	row, err := toDBPackage(p)
	if err != nil {
		return importpackage.ImportPackage{}, err
	}

	fields := []string{
		"status",
		"failed_stage",
		"archive_path",
		"record_counts",
		"has_unresolved_conflicts",
		"validation_report",
		"commit_report",
		"error_message",
		"validated_at",
		"reviewed_at",
		"committed_at",
		"updated_at",
	}
	values := []interface{}{
		row.Status,
		row.FailedStage,
		row.ArchivePath,
		row.RecordCounts,
		row.HasUnresolvedConflicts,
		row.ValidationReport,
		row.CommitReport,
		row.ErrorMessage,
		row.ValidatedAt,
		row.ReviewedAt,
		row.CommittedAt,
		time.Now(),
		row.ID,
	}

	q := repo.Update("import_packages", fields, "id = $13")
	tag, err := tx.Exec(ctx, q, values...)
	if err != nil {
		return importpackage.ImportPackage{}, errors.Wrap(err, "failed to update import package")
	}
	if tag.RowsAffected() == 0 {
		return importpackage.ImportPackage{}, ErrPackageNotFound
	}
	return g.GetByID(ctx, p.ID())
}

var _ importpackage.Repository = (*PgPackageRepository)(nil)
