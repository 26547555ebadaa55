package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/aggregates/importpackage"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/validation"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
)

// ValidationService loads a package's staged records, runs the level
// pipeline over them and persists the settled envelopes. After a pass no
// record of the package is left Pending.
type ValidationService struct {
	staged   staging.Repository
	pipeline *validation.Pipeline
}

func NewValidationService(staged staging.Repository, pipeline *validation.Pipeline) *ValidationService {
	return &ValidationService{
		staged:   staged,
		pipeline: pipeline,
	}
}

func (s *ValidationService) Run(ctx context.Context, packageID uuid.UUID) (importpackage.ValidationReport, error) {
	snap, err := validation.Load(ctx, s.staged, packageID)
	if err != nil {
		return importpackage.ValidationReport{}, err
	}

	report, err := s.pipeline.Run(ctx, snap)
	if err != nil {
		return importpackage.ValidationReport{}, err
	}

	// One transaction for all eight envelope batches; a validation pass is
	// visible entirely or not at all.
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		for _, entityType := range staging.CommitOrder() {
			records := snap.Records(entityType)
			if len(records) == 0 {
				continue
			}
			if err := s.staged.UpdateEnvelopes(txCtx, entityType, records); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return importpackage.ValidationReport{}, err
	}
	return report, nil
}
