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
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/person"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/relation"
)

// absorption documents a production-absorbs-production merge for the
// conflict's resolution payload.
type absorption struct {
	MasterID    uuid.UUID        `json:"master_id"`
	DiscardedID uuid.UUID        `json:"discarded_id"`
	Changes     jsondiff.Patch   `json:"changes"`
	Repointed   map[string]int64 `json:"repointed,omitempty"`
}

// PersonStrategy merges duplicate persons. Identity fields (first and family
// name) always keep the master's values; only gaps are filled.
type PersonStrategy struct {
	staged     staging.Repository
	persons    person.Repository
	households household.Repository
	relations  relation.Repository
	claims     claim.Repository
}

func NewPersonStrategy(
	staged staging.Repository,
	persons person.Repository,
	households household.Repository,
	relations relation.Repository,
	claims claim.Repository,
) *PersonStrategy {
	return &PersonStrategy{
		staged:     staged,
		persons:    persons,
		households: households,
		relations:  relations,
		claims:     claims,
	}
}

func (s *PersonStrategy) EntityType() staging.EntityType {
	return staging.EntityPerson
}

func (s *PersonStrategy) DiscardStaged(ctx context.Context, packageID uuid.UUID, originalID string, masterID *uuid.UUID) error {
	rows, err := s.staged.PersonsByPackage(ctx, packageID)
	if err != nil {
		return errors.Wrap(err, "load staged persons")
	}
	for _, row := range rows {
		if row.OriginalID == originalID {
			return s.staged.MarkSkipped(ctx, staging.EntityPerson, row.ID, masterID)
		}
	}
	return errors.Wrapf(ErrStagedRecordNotFound, "person %q in package %s", originalID, packageID)
}

func (s *PersonStrategy) AbsorbProduction(ctx context.Context, masterID, discardedID uuid.UUID) (json.RawMessage, error) {
	master, err := s.persons.GetByID(ctx, masterID)
	if err != nil {
		return nil, errors.Wrap(err, "load master person")
	}
	discarded, err := s.persons.GetByID(ctx, discardedID)
	if err != nil {
		return nil, errors.Wrap(err, "load discarded person")
	}

	before, err := json.Marshal(personView(master))
	if err != nil {
		return nil, err
	}
	updated, err := s.persons.Update(ctx, fillPerson(master, discarded))
	if err != nil {
		return nil, errors.Wrap(err, "update master person")
	}
	after, err := json.Marshal(personView(updated))
	if err != nil {
		return nil, err
	}
	changes, err := jsondiff.CompareJSON(before, after)
	if err != nil {
		return nil, errors.Wrap(err, "diff merged person")
	}

	repointed := map[string]int64{}
	if repointed["relations"], err = s.relations.RepointPerson(ctx, discardedID, masterID); err != nil {
		return nil, errors.Wrap(err, "repoint relations")
	}
	if repointed["households"], err = s.households.RepointHead(ctx, discardedID, masterID); err != nil {
		return nil, errors.Wrap(err, "repoint household heads")
	}
	if repointed["claims"], err = s.claims.RepointClaimant(ctx, discardedID, masterID); err != nil {
		return nil, errors.Wrap(err, "repoint claimants")
	}
	if err := s.persons.Deactivate(ctx, discardedID); err != nil {
		return nil, errors.Wrap(err, "deactivate discarded person")
	}

	return json.Marshal(absorption{
		MasterID:    masterID,
		DiscardedID: discardedID,
		Changes:     changes,
		Repointed:   repointed,
	})
}

// fillPerson copies the donor's values into the master's empty fields.
func fillPerson(master, donor person.Person) person.Person {
	if master.NationalID() == "" && donor.NationalID() != "" {
		master = master.WithNationalID(donor.NationalID())
	}
	if master.FatherName() == "" && donor.FatherName() != "" {
		master = master.WithFatherName(donor.FatherName())
	}
	if master.GrandfatherName() == "" && donor.GrandfatherName() != "" {
		master = master.WithGrandfatherName(donor.GrandfatherName())
	}
	if master.Gender() == person.GenderUnknown && donor.Gender() != person.GenderUnknown {
		master = master.WithGender(donor.Gender())
	}
	if master.BirthYear() == 0 && donor.BirthYear() != 0 {
		master = master.WithBirthYear(donor.BirthYear())
	}
	if master.Phone() == "" && donor.Phone() != "" {
		master = master.WithPhone(donor.Phone())
	}
	if master.Notes() == "" && donor.Notes() != "" {
		master = master.WithNotes(donor.Notes())
	}
	return master
}

func personView(p person.Person) map[string]any {
	return map[string]any{
		"national_id":      p.NationalID(),
		"first_name":       p.FirstName(),
		"father_name":      p.FatherName(),
		"grandfather_name": p.GrandfatherName(),
		"family_name":      p.FamilyName(),
		"gender":           string(p.Gender()),
		"birth_year":       p.BirthYear(),
		"phone":            p.Phone(),
		"notes":            p.Notes(),
	}
}
