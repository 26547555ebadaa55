package services

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/aggregates/importpackage"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/conflict"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/merging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/eventbus"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/serrors"
)

// ResolveDTO settles one conflict. MasterRef names the surviving side and is
// required for merges; kept-distinct resolutions leave it empty.
type ResolveDTO struct {
	ConflictID uuid.UUID           `json:"conflict_id"`
	MasterRef  conflict.Ref        `json:"master_ref"`
	Resolution conflict.Resolution `json:"resolution"`
}

func (d *ResolveDTO) Ok() (serrors.ValidationErrors, bool) {
	errs := make(serrors.ValidationErrors)
	if d.ConflictID == uuid.Nil {
		errs["conflict_id"] = serrors.NewFieldRequiredError("conflict_id", "")
	}
	switch d.Resolution {
	case conflict.ResolutionMerged:
		if d.MasterRef.Key == "" {
			errs["master_ref"] = serrors.NewFieldRequiredError("master_ref", "")
		}
	case conflict.ResolutionKeptDistinct:
	default:
		errs["resolution"] = serrors.NewError(
			"INVALID_RESOLUTION",
			"resolution must be merged or kept_distinct",
			"",
		)
	}
	return errs, len(errs) == 0
}

// mergeSummary is the resolution payload of a discard-staged merge; the
// production-absorption path records a field diff instead.
type mergeSummary struct {
	Master    conflict.Ref `json:"master"`
	Discarded conflict.Ref `json:"discarded"`
}

// MergeService settles detected conflicts. Each conflict resolves exactly
// once; the package's unresolved flag drains in the same transaction as the
// resolution that clears it.
type MergeService struct {
	conflicts conflict.Repository
	packages  importpackage.Repository
	registry  *merging.Registry
	publisher eventbus.EventBus
}

func NewMergeService(
	conflicts conflict.Repository,
	packages importpackage.Repository,
	registry *merging.Registry,
	publisher eventbus.EventBus,
) *MergeService {
	return &MergeService{
		conflicts: conflicts,
		packages:  packages,
		registry:  registry,
		publisher: publisher,
	}
}

func (s *MergeService) Get(ctx context.Context, id uuid.UUID) (*conflict.Conflict, error) {
	return s.conflicts.GetByID(ctx, id)
}

func (s *MergeService) ListByPackage(ctx context.Context, packageID uuid.UUID, params *conflict.FindParams) ([]*conflict.Conflict, error) {
	return s.conflicts.GetByPackage(ctx, packageID, params)
}

// Resolve applies the chosen resolution. Merges dispatch through the
// strategy registry; resolving an already settled conflict fails without
// touching anything.
func (s *MergeService) Resolve(ctx context.Context, dto ResolveDTO) (*conflict.Conflict, error) {
	if errs, ok := dto.Ok(); !ok {
		return nil, errs
	}
	actor, err := composables.UseActor(ctx)
	if err != nil {
		return nil, err
	}

	resolved, err := composables.InTxResult(ctx, func(txCtx context.Context) (*conflict.Conflict, error) {
		c, err := s.conflicts.GetByID(txCtx, dto.ConflictID)
		if err != nil {
			return nil, err
		}

		var payload json.RawMessage
		if dto.Resolution == conflict.ResolutionMerged {
			if c.Status() == conflict.StatusResolved {
				return nil, errors.Wrapf(conflict.ErrAlreadyResolved, "conflict %s", c.ID())
			}
			payload, err = s.merge(txCtx, c, dto.MasterRef)
			if err != nil {
				return nil, err
			}
		}

		if err := c.Resolve(dto.Resolution, payload, actor); err != nil {
			return nil, err
		}
		if _, err := s.conflicts.Update(txCtx, c); err != nil {
			return nil, err
		}

		open, err := s.conflicts.CountOpen(txCtx, c.PackageID())
		if err != nil {
			return nil, err
		}
		pkg, err := s.packages.GetByID(txCtx, c.PackageID())
		if err != nil {
			return nil, err
		}
		if pkg.HasUnresolvedConflicts() != (open > 0) {
			if _, err := s.packages.Update(txCtx, pkg.WithUnresolvedConflicts(open > 0)); err != nil {
				return nil, err
			}
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}

	ev, err := conflict.NewResolvedEvent(ctx, resolved)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(ev)
	return resolved, nil
}

func (s *MergeService) merge(ctx context.Context, c *conflict.Conflict, masterRef conflict.Ref) (json.RawMessage, error) {
	master, ok := c.Side(masterRef)
	if !ok {
		return nil, errors.Errorf("master ref %s:%s is not a side of conflict %s", masterRef.Source, masterRef.Key, c.ID())
	}
	discarded, _ := c.Other(master)

	strategy, err := s.registry.For(c.EntityType())
	if err != nil {
		return nil, err
	}

	switch discarded.Source {
	case conflict.SourceStaged:
		// The commit engine translates references through the conflict when
		// the master is itself staged, so the link stays nil here.
		var masterID *uuid.UUID
		if master.Source == conflict.SourceProduction {
			id, err := uuid.Parse(master.Key)
			if err != nil {
				return nil, errors.Wrapf(err, "production master key %q", master.Key)
			}
			masterID = &id
		}
		if err := strategy.DiscardStaged(ctx, c.PackageID(), discarded.Key, masterID); err != nil {
			return nil, err
		}
		return json.Marshal(mergeSummary{Master: master, Discarded: discarded})

	case conflict.SourceProduction:
		if master.Source != conflict.SourceProduction {
			return nil, errors.New("a staged record cannot absorb a production record; discard the staged side instead")
		}
		masterID, err := uuid.Parse(master.Key)
		if err != nil {
			return nil, errors.Wrapf(err, "production master key %q", master.Key)
		}
		discardedID, err := uuid.Parse(discarded.Key)
		if err != nil {
			return nil, errors.Wrapf(err, "production discarded key %q", discarded.Key)
		}
		return strategy.AbsorbProduction(ctx, masterID, discardedID)
	}
	return nil, errors.Errorf("unknown conflict side source %q", discarded.Source)
}
