package validation

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
)

// Snapshot is one package's staged records loaded into memory, indexed by
// original id per entity type. Validators share a single snapshot per pass,
// so reference checks are map lookups rather than queries; findings
// accumulate on the records in place and are persisted once at the end.
type Snapshot struct {
	PackageID uuid.UUID

	Buildings  []*staging.Building
	Units      []*staging.PropertyUnit
	Persons    []*staging.Person
	Households []*staging.Household
	Relations  []*staging.Relation
	Evidences  []*staging.Evidence
	Claims     []*staging.Claim
	Surveys    []*staging.Survey

	buildings map[string]*staging.Building
	units     map[string]*staging.PropertyUnit
	persons   map[string]*staging.Person
	relations map[string]*staging.Relation
	claims    map[string]*staging.Claim

	evidencesByRelation map[string][]*staging.Evidence
	relationsByUnit     map[string][]*staging.Relation
	unitsByBuilding     map[string][]*staging.PropertyUnit
}

// Load reads every staged row of the package and builds the indexes.
func Load(ctx context.Context, repo staging.Repository, packageID uuid.UUID) (*Snapshot, error) {
	s := &Snapshot{PackageID: packageID}

	var err error
	if s.Buildings, err = repo.BuildingsByPackage(ctx, packageID); err != nil {
		return nil, errors.Wrap(err, "load staged buildings")
	}
	if s.Units, err = repo.UnitsByPackage(ctx, packageID); err != nil {
		return nil, errors.Wrap(err, "load staged units")
	}
	if s.Persons, err = repo.PersonsByPackage(ctx, packageID); err != nil {
		return nil, errors.Wrap(err, "load staged persons")
	}
	if s.Households, err = repo.HouseholdsByPackage(ctx, packageID); err != nil {
		return nil, errors.Wrap(err, "load staged households")
	}
	if s.Relations, err = repo.RelationsByPackage(ctx, packageID); err != nil {
		return nil, errors.Wrap(err, "load staged relations")
	}
	if s.Evidences, err = repo.EvidencesByPackage(ctx, packageID); err != nil {
		return nil, errors.Wrap(err, "load staged evidences")
	}
	if s.Claims, err = repo.ClaimsByPackage(ctx, packageID); err != nil {
		return nil, errors.Wrap(err, "load staged claims")
	}
	if s.Surveys, err = repo.SurveysByPackage(ctx, packageID); err != nil {
		return nil, errors.Wrap(err, "load staged surveys")
	}

	s.reindex()
	return s, nil
}

// NewSnapshot builds a snapshot from records already in memory. Tests and
// the unpacker use it to validate without a round-trip through the store.
func NewSnapshot(
	packageID uuid.UUID,
	buildings []*staging.Building,
	units []*staging.PropertyUnit,
	persons []*staging.Person,
	households []*staging.Household,
	relations []*staging.Relation,
	evidences []*staging.Evidence,
	claims []*staging.Claim,
	surveys []*staging.Survey,
) *Snapshot {
	s := &Snapshot{
		PackageID:  packageID,
		Buildings:  buildings,
		Units:      units,
		Persons:    persons,
		Households: households,
		Relations:  relations,
		Evidences:  evidences,
		Claims:     claims,
		Surveys:    surveys,
	}
	s.reindex()
	return s
}

func (s *Snapshot) reindex() {
	s.buildings = make(map[string]*staging.Building, len(s.Buildings))
	for _, b := range s.Buildings {
		s.buildings[b.OriginalID] = b
	}
	s.units = make(map[string]*staging.PropertyUnit, len(s.Units))
	s.unitsByBuilding = make(map[string][]*staging.PropertyUnit)
	for _, u := range s.Units {
		s.units[u.OriginalID] = u
		if u.BuildingRef != "" {
			s.unitsByBuilding[u.BuildingRef] = append(s.unitsByBuilding[u.BuildingRef], u)
		}
	}
	s.persons = make(map[string]*staging.Person, len(s.Persons))
	for _, p := range s.Persons {
		s.persons[p.OriginalID] = p
	}
	s.relations = make(map[string]*staging.Relation, len(s.Relations))
	s.relationsByUnit = make(map[string][]*staging.Relation)
	for _, r := range s.Relations {
		s.relations[r.OriginalID] = r
		if r.UnitRef != "" {
			s.relationsByUnit[r.UnitRef] = append(s.relationsByUnit[r.UnitRef], r)
		}
	}
	s.claims = make(map[string]*staging.Claim, len(s.Claims))
	for _, c := range s.Claims {
		s.claims[c.OriginalID] = c
	}
	s.evidencesByRelation = make(map[string][]*staging.Evidence)
	for _, e := range s.Evidences {
		if e.RelationRef != "" {
			s.evidencesByRelation[e.RelationRef] = append(s.evidencesByRelation[e.RelationRef], e)
		}
	}
}

func (s *Snapshot) Building(ref string) (*staging.Building, bool) {
	b, ok := s.buildings[ref]
	return b, ok
}

func (s *Snapshot) Unit(ref string) (*staging.PropertyUnit, bool) {
	u, ok := s.units[ref]
	return u, ok
}

func (s *Snapshot) Person(ref string) (*staging.Person, bool) {
	p, ok := s.persons[ref]
	return p, ok
}

func (s *Snapshot) Relation(ref string) (*staging.Relation, bool) {
	r, ok := s.relations[ref]
	return r, ok
}

func (s *Snapshot) Claim(ref string) (*staging.Claim, bool) {
	c, ok := s.claims[ref]
	return c, ok
}

// EvidencesOfRelation returns the staged evidences referencing a relation.
func (s *Snapshot) EvidencesOfRelation(relationRef string) []*staging.Evidence {
	return s.evidencesByRelation[relationRef]
}

// RelationsOfUnit returns the staged relations referencing a unit.
func (s *Snapshot) RelationsOfUnit(unitRef string) []*staging.Relation {
	return s.relationsByUnit[unitRef]
}

// UnitsOfBuilding returns the staged units referencing a building.
func (s *Snapshot) UnitsOfBuilding(buildingRef string) []*staging.PropertyUnit {
	return s.unitsByBuilding[buildingRef]
}

// Total counts every staged record in the snapshot.
func (s *Snapshot) Total() int {
	return len(s.Buildings) + len(s.Units) + len(s.Persons) + len(s.Households) +
		len(s.Relations) + len(s.Evidences) + len(s.Claims) + len(s.Surveys)
}

// Records returns the envelope pointers of one entity type, for bulk
// persistence after finalization.
func (s *Snapshot) Records(entityType staging.EntityType) []*staging.Record {
	switch entityType {
	case staging.EntityBuilding:
		out := make([]*staging.Record, len(s.Buildings))
		for i, r := range s.Buildings {
			out[i] = &r.Record
		}
		return out
	case staging.EntityUnit:
		out := make([]*staging.Record, len(s.Units))
		for i, r := range s.Units {
			out[i] = &r.Record
		}
		return out
	case staging.EntityPerson:
		out := make([]*staging.Record, len(s.Persons))
		for i, r := range s.Persons {
			out[i] = &r.Record
		}
		return out
	case staging.EntityHousehold:
		out := make([]*staging.Record, len(s.Households))
		for i, r := range s.Households {
			out[i] = &r.Record
		}
		return out
	case staging.EntityRelation:
		out := make([]*staging.Record, len(s.Relations))
		for i, r := range s.Relations {
			out[i] = &r.Record
		}
		return out
	case staging.EntityEvidence:
		out := make([]*staging.Record, len(s.Evidences))
		for i, r := range s.Evidences {
			out[i] = &r.Record
		}
		return out
	case staging.EntityClaim:
		out := make([]*staging.Record, len(s.Claims))
		for i, r := range s.Claims {
			out[i] = &r.Record
		}
		return out
	case staging.EntitySurvey:
		out := make([]*staging.Record, len(s.Surveys))
		for i, r := range s.Surveys {
			out[i] = &r.Record
		}
		return out
	}
	return nil
}

// eligible reports whether validators should look at the record at all.
// Skipped records were discarded by a merge resolution and stay untouched
// across re-validation.
func eligible(r *staging.Record) bool {
	return r.ValidationStatus != staging.StatusSkipped
}
