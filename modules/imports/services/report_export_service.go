package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/aggregates/importpackage"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/entities/attachment"
	registryservices "github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/services"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/excel"
)

// findingsExportQuery flattens the eight staging tables into one sheet of
// records that carry validation findings.
const findingsExportQuery = `
        SELECT 'building' AS entity_type, original_id, validation_status, validation_errors::text AS errors, validation_warnings::text AS warnings
        FROM staging_buildings
        WHERE import_package_id = $1 AND (jsonb_array_length(validation_errors) > 0 OR jsonb_array_length(validation_warnings) > 0)
        UNION ALL
        SELECT 'property_unit', original_id, validation_status, validation_errors::text, validation_warnings::text
        FROM staging_property_units
        WHERE import_package_id = $1 AND (jsonb_array_length(validation_errors) > 0 OR jsonb_array_length(validation_warnings) > 0)
        UNION ALL
        SELECT 'person', original_id, validation_status, validation_errors::text, validation_warnings::text
        FROM staging_persons
        WHERE import_package_id = $1 AND (jsonb_array_length(validation_errors) > 0 OR jsonb_array_length(validation_warnings) > 0)
        UNION ALL
        SELECT 'household', original_id, validation_status, validation_errors::text, validation_warnings::text
        FROM staging_households
        WHERE import_package_id = $1 AND (jsonb_array_length(validation_errors) > 0 OR jsonb_array_length(validation_warnings) > 0)
        UNION ALL
        SELECT 'relation', original_id, validation_status, validation_errors::text, validation_warnings::text
        FROM staging_relations
        WHERE import_package_id = $1 AND (jsonb_array_length(validation_errors) > 0 OR jsonb_array_length(validation_warnings) > 0)
        UNION ALL
        SELECT 'evidence', original_id, validation_status, validation_errors::text, validation_warnings::text
        FROM staging_evidences
        WHERE import_package_id = $1 AND (jsonb_array_length(validation_errors) > 0 OR jsonb_array_length(validation_warnings) > 0)
        UNION ALL
        SELECT 'claim', original_id, validation_status, validation_errors::text, validation_warnings::text
        FROM staging_claims
        WHERE import_package_id = $1 AND (jsonb_array_length(validation_errors) > 0 OR jsonb_array_length(validation_warnings) > 0)
        UNION ALL
        SELECT 'survey', original_id, validation_status, validation_errors::text, validation_warnings::text
        FROM staging_surveys
        WHERE import_package_id = $1 AND (jsonb_array_length(validation_errors) > 0 OR jsonb_array_length(validation_warnings) > 0)
        ORDER BY entity_type, original_id`

// ReportExportService renders package reports as XLSX files stored through
// the attachment service.
type ReportExportService struct {
	packages    importpackage.Repository
	pool        *pgxpool.Pool
	attachments *registryservices.AttachmentService
	exporter    *excel.ExcelExporter
}

func NewReportExportService(
	packages importpackage.Repository,
	pool *pgxpool.Pool,
	attachments *registryservices.AttachmentService,
) *ReportExportService {
	return &ReportExportService{
		packages:    packages,
		pool:        pool,
		attachments: attachments,
		exporter:    excel.NewExcelExporter(excel.DefaultExportOptions(), excel.DefaultStyleOptions()),
	}
}

// ExportCommitReport writes the package's latest commit report as a stored
// XLSX attachment.
func (s *ReportExportService) ExportCommitReport(ctx context.Context, packageID uuid.UUID) (*attachment.Attachment, error) {
	pkg, err := s.packages.GetByID(ctx, packageID)
	if err != nil {
		return nil, err
	}
	report := pkg.CommitReport()
	if report == nil {
		return nil, errors.Errorf("package %s has no commit report", pkg.PackageCode())
	}

	headers := []string{"Entity Type", "Committed", "Skipped", "Failed", "Errors"}
	rows := make([][]any, 0, len(report.Batches))
	for _, batch := range report.Batches {
		rows = append(rows, []any{
			string(batch.EntityType),
			batch.Committed,
			batch.Skipped,
			batch.Failed,
			joinCommitErrors(batch.Errors),
		})
	}

	payload, err := s.exporter.Export(ctx, excel.NewSliceDataSource("Commit Report", headers, rows))
	if err != nil {
		return nil, errors.Wrap(err, "render commit report")
	}
	name := fmt.Sprintf("%s-commit-report.xlsx", pkg.PackageCode())
	return s.attachments.Create(ctx, name, bytes.NewReader(payload))
}

// ExportFindings writes every staged record with validation findings, all
// entity types in one sheet, as a stored XLSX attachment.
func (s *ReportExportService) ExportFindings(ctx context.Context, packageID uuid.UUID) (*attachment.Attachment, error) {
	pkg, err := s.packages.GetByID(ctx, packageID)
	if err != nil {
		return nil, err
	}

	ds := excel.NewPgxDataSource(s.pool, findingsExportQuery, pkg.ID().String()).
		WithSheetName("Validation Findings")
	payload, err := s.exporter.Export(ctx, ds)
	if err != nil {
		return nil, errors.Wrap(err, "render validation findings")
	}
	name := fmt.Sprintf("%s-validation-findings.xlsx", pkg.PackageCode())
	return s.attachments.Create(ctx, name, bytes.NewReader(payload))
}

func joinCommitErrors(errs []importpackage.CommitError) string {
	if len(errs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.OriginalID == "" {
			parts = append(parts, e.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", e.OriginalID, e.Message))
	}
	return strings.Join(parts, "; ")
}
