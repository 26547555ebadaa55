package merging

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/wI2L/jsondiff"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/claim"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/household"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/relation"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/unit"
)

// UnitStrategy merges duplicate property units. A unit has no soft-delete
// flag, so once its dependents are re-pointed the discarded row is removed.
type UnitStrategy struct {
	staged     staging.Repository
	units      unit.Repository
	households household.Repository
	relations  relation.Repository
	claims     claim.Repository
}

func NewUnitStrategy(
	staged staging.Repository,
	units unit.Repository,
	households household.Repository,
	relations relation.Repository,
	claims claim.Repository,
) *UnitStrategy {
	return &UnitStrategy{
		staged:     staged,
		units:      units,
		households: households,
		relations:  relations,
		claims:     claims,
	}
}

func (s *UnitStrategy) EntityType() staging.EntityType {
	return staging.EntityUnit
}

func (s *UnitStrategy) DiscardStaged(ctx context.Context, packageID uuid.UUID, originalID string, masterID *uuid.UUID) error {
	rows, err := s.staged.UnitsByPackage(ctx, packageID)
	if err != nil {
		return errors.Wrap(err, "load staged units")
	}
	for _, row := range rows {
		if row.OriginalID == originalID {
			return s.staged.MarkSkipped(ctx, staging.EntityUnit, row.ID, masterID)
		}
	}
	return errors.Wrapf(ErrStagedRecordNotFound, "unit %q in package %s", originalID, packageID)
}

func (s *UnitStrategy) AbsorbProduction(ctx context.Context, masterID, discardedID uuid.UUID) (json.RawMessage, error) {
	master, err := s.units.GetByID(ctx, masterID)
	if err != nil {
		return nil, errors.Wrap(err, "load master unit")
	}
	discarded, err := s.units.GetByID(ctx, discardedID)
	if err != nil {
		return nil, errors.Wrap(err, "load discarded unit")
	}

	before, err := json.Marshal(unitView(master))
	if err != nil {
		return nil, err
	}
	updated, err := s.units.Update(ctx, fillUnit(master, discarded))
	if err != nil {
		return nil, errors.Wrap(err, "update master unit")
	}
	after, err := json.Marshal(unitView(updated))
	if err != nil {
		return nil, err
	}
	changes, err := jsondiff.CompareJSON(before, after)
	if err != nil {
		return nil, errors.Wrap(err, "diff merged unit")
	}

	repointed := map[string]int64{}
	if repointed["relations"], err = s.relations.RepointUnit(ctx, discardedID, masterID); err != nil {
		return nil, errors.Wrap(err, "repoint relations")
	}
	if repointed["households"], err = s.households.RepointUnit(ctx, discardedID, masterID); err != nil {
		return nil, errors.Wrap(err, "repoint households")
	}
	if repointed["claims"], err = s.claims.RepointUnit(ctx, discardedID, masterID); err != nil {
		return nil, errors.Wrap(err, "repoint claims")
	}
	if err := s.units.Delete(ctx, discardedID); err != nil {
		return nil, errors.Wrap(err, "delete discarded unit")
	}

	return json.Marshal(absorption{
		MasterID:    masterID,
		DiscardedID: discardedID,
		Changes:     changes,
		Repointed:   repointed,
	})
}

func fillUnit(master, donor unit.PropertyUnit) unit.PropertyUnit {
	if master.FloorNumber() == 0 && donor.FloorNumber() != 0 {
		master = master.WithFloorNumber(donor.FloorNumber())
	}
	if master.AreaSqm() == nil && donor.AreaSqm() != nil {
		master = master.WithAreaSqm(donor.AreaSqm())
	}
	if master.UnitType() == "" && donor.UnitType() != "" {
		master = master.WithUnitType(donor.UnitType())
	}
	if master.OccupancyStatus() == "" && donor.OccupancyStatus() != "" {
		master = master.WithOccupancyStatus(donor.OccupancyStatus())
	}
	if master.Notes() == "" && donor.Notes() != "" {
		master = master.WithNotes(donor.Notes())
	}
	return master
}

func unitView(u unit.PropertyUnit) map[string]any {
	view := map[string]any{
		"building_id":      u.BuildingID().String(),
		"unit_number":      u.UnitNumber(),
		"floor_number":     u.FloorNumber(),
		"unit_type":        u.UnitType(),
		"occupancy_status": u.OccupancyStatus(),
		"notes":            u.Notes(),
	}
	if u.AreaSqm() != nil {
		view["area_sqm"] = *u.AreaSqm()
	}
	return view
}
