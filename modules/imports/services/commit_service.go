package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/aggregates/importpackage"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/conflict"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/building"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/claim"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/evidence"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/household"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/person"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/relation"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/survey"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/unit"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/entities/attachment"
	registryservices "github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/services"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
)

// RegistryRepos bundles the production repositories the commit engine writes
// through, one per staged entity type.
type RegistryRepos struct {
	Buildings  building.Repository
	Units      unit.Repository
	Persons    person.Repository
	Households household.Repository
	Relations  relation.Repository
	Evidences  evidence.Repository
	Claims     claim.Repository
	Surveys    survey.Repository
}

// refMap translates staged original ids into production ids. ids holds
// settled translations; aliases point merge casualties at the staged record
// that survived them, resolved lazily because the survivor may commit later
// in the same pass.
type refMap struct {
	ids     map[staging.EntityType]map[string]uuid.UUID
	aliases map[staging.EntityType]map[string]string
}

func newRefMap() *refMap {
	return &refMap{
		ids:     map[staging.EntityType]map[string]uuid.UUID{},
		aliases: map[staging.EntityType]map[string]string{},
	}
}

func (m *refMap) set(entityType staging.EntityType, originalID string, id uuid.UUID) {
	ids := m.ids[entityType]
	if ids == nil {
		ids = map[string]uuid.UUID{}
		m.ids[entityType] = ids
	}
	ids[originalID] = id
}

func (m *refMap) alias(entityType staging.EntityType, from, to string) {
	aliases := m.aliases[entityType]
	if aliases == nil {
		aliases = map[string]string{}
		m.aliases[entityType] = aliases
	}
	aliases[from] = to
}

// resolve follows merge aliases until it lands on a committed id. The walk
// is bounded so a corrupted alias chain cannot hang a commit.
func (m *refMap) resolve(entityType staging.EntityType, originalID string) (uuid.UUID, bool) {
	key := originalID
	for i := 0; i < 32; i++ {
		if id, ok := m.ids[entityType][key]; ok {
			return id, true
		}
		next, ok := m.aliases[entityType][key]
		if !ok {
			return uuid.Nil, false
		}
		key = next
	}
	return uuid.Nil, false
}

// stagedRows is one package's staging data loaded up front, all eight types.
type stagedRows struct {
	buildings  []*staging.Building
	units      []*staging.PropertyUnit
	persons    []*staging.Person
	households []*staging.Household
	relations  []*staging.Relation
	evidences  []*staging.Evidence
	claims     []*staging.Claim
	surveys    []*staging.Survey
}

// envelopes returns the shared record envelopes of one entity type.
func (r stagedRows) envelopes(entityType staging.EntityType) []*staging.Record {
	switch entityType {
	case staging.EntityBuilding:
		out := make([]*staging.Record, len(r.buildings))
		for i := range r.buildings {
			out[i] = &r.buildings[i].Record
		}
		return out
	case staging.EntityUnit:
		out := make([]*staging.Record, len(r.units))
		for i := range r.units {
			out[i] = &r.units[i].Record
		}
		return out
	case staging.EntityPerson:
		out := make([]*staging.Record, len(r.persons))
		for i := range r.persons {
			out[i] = &r.persons[i].Record
		}
		return out
	case staging.EntityHousehold:
		out := make([]*staging.Record, len(r.households))
		for i := range r.households {
			out[i] = &r.households[i].Record
		}
		return out
	case staging.EntityRelation:
		out := make([]*staging.Record, len(r.relations))
		for i := range r.relations {
			out[i] = &r.relations[i].Record
		}
		return out
	case staging.EntityEvidence:
		out := make([]*staging.Record, len(r.evidences))
		for i := range r.evidences {
			out[i] = &r.evidences[i].Record
		}
		return out
	case staging.EntityClaim:
		out := make([]*staging.Record, len(r.claims))
		for i := range r.claims {
			out[i] = &r.claims[i].Record
		}
		return out
	case staging.EntitySurvey:
		out := make([]*staging.Record, len(r.surveys))
		for i := range r.surveys {
			out[i] = &r.surveys[i].Record
		}
		return out
	}
	return nil
}

// CommitService writes approved staged records into the production registry,
// one transaction per entity type in dependency order. A batch that fails
// rolls back alone; earlier batches stay committed and the remaining ones
// are not attempted.
type CommitService struct {
	staged      staging.Repository
	conflicts   conflict.Repository
	registry    RegistryRepos
	attachments *registryservices.AttachmentService
	blobs       attachment.Storage
	log         logrus.FieldLogger
}

// NewCommitService wires the commit engine. blobs is the staging-area store
// the unpacker extracted attachment payloads into.
func NewCommitService(
	staged staging.Repository,
	conflicts conflict.Repository,
	registry RegistryRepos,
	attachments *registryservices.AttachmentService,
	blobs attachment.Storage,
	log logrus.FieldLogger,
) *CommitService {
	return &CommitService{
		staged:      staged,
		conflicts:   conflicts,
		registry:    registry,
		attachments: attachments,
		blobs:       blobs,
		log:         log,
	}
}

// Commit runs one commit pass over the package and returns its report. The
// returned error is reserved for failures before the first batch opens;
// batch failures are folded into the report's outcome instead.
func (s *CommitService) Commit(ctx context.Context, pkg importpackage.ImportPackage) (importpackage.CommitReport, error) {
	report := importpackage.CommitReport{StartedAt: time.Now()}

	rows, err := s.loadRows(ctx, pkg.ID())
	if err != nil {
		return report, err
	}
	refs := newRefMap()
	seedCommitted(refs, rows)
	if err := s.seedMergeAliases(ctx, pkg.ID(), refs, rows); err != nil {
		return report, err
	}

	// pendingClaimLinks collects evidence rows that reference a claim; the
	// claim batch backfills the link once the claim exists. Keyed by the
	// claim's original id.
	pendingClaimLinks := map[string][]uuid.UUID{}

	steps := []struct {
		entityType staging.EntityType
		run        func(ctx context.Context, batch *importpackage.BatchReport) error
	}{
		{staging.EntityBuilding, func(ctx context.Context, b *importpackage.BatchReport) error {
			return s.commitBuildings(ctx, rows.buildings, refs, b)
		}},
		{staging.EntityUnit, func(ctx context.Context, b *importpackage.BatchReport) error {
			return s.commitUnits(ctx, rows.units, refs, b)
		}},
		{staging.EntityPerson, func(ctx context.Context, b *importpackage.BatchReport) error {
			return s.commitPersons(ctx, rows.persons, refs, b)
		}},
		{staging.EntityHousehold, func(ctx context.Context, b *importpackage.BatchReport) error {
			return s.commitHouseholds(ctx, rows.households, refs, b)
		}},
		{staging.EntityRelation, func(ctx context.Context, b *importpackage.BatchReport) error {
			return s.commitRelations(ctx, rows.relations, refs, b)
		}},
		{staging.EntityEvidence, func(ctx context.Context, b *importpackage.BatchReport) error {
			return s.commitEvidences(ctx, rows.evidences, refs, pendingClaimLinks, b)
		}},
		{staging.EntityClaim, func(ctx context.Context, b *importpackage.BatchReport) error {
			return s.commitClaims(ctx, rows.claims, refs, pendingClaimLinks, b)
		}},
		{staging.EntitySurvey, func(ctx context.Context, b *importpackage.BatchReport) error {
			return s.commitSurveys(ctx, rows.surveys, pkg.ID(), refs, b)
		}},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return report, errors.Wrap(err, "commit cancelled")
		}
		batch := importpackage.BatchReport{EntityType: step.entityType}
		err := composables.InTx(ctx, func(txCtx context.Context) error {
			return step.run(txCtx, &batch)
		})
		if err != nil {
			// The whole batch rolled back, so its tallies collapse into
			// one failure entry and later batches are not attempted.
			failed := batch.Committed + batch.Failed
			if failed == 0 {
				failed = 1
			}
			batch.Committed = 0
			batch.Failed = failed
			batch.Errors = append(batch.Errors, importpackage.CommitError{Message: err.Error()})
			report.Batches = append(report.Batches, batch)
			report.FinishedAt = time.Now()
			if report.TotalCommitted() == 0 {
				report.Outcome = importpackage.OutcomeFailed
			} else {
				report.Outcome = importpackage.OutcomePartiallyCompleted
			}
			s.log.WithFields(logrus.Fields{
				"package": pkg.ID(),
				"batch":   step.entityType,
				"outcome": report.Outcome,
			}).WithError(err).Warn("commit: batch failed, remaining batches skipped")
			return report, nil
		}
		report.Batches = append(report.Batches, batch)
	}

	report.FinishedAt = time.Now()
	if report.TotalFailed() == 0 {
		report.Outcome = importpackage.OutcomeCompleted
	} else {
		report.Outcome = importpackage.OutcomePartiallyCompleted
	}
	s.log.WithFields(logrus.Fields{
		"package":   pkg.ID(),
		"committed": report.TotalCommitted(),
		"failed":    report.TotalFailed(),
		"outcome":   report.Outcome,
	}).Info("commit: pass finished")
	return report, nil
}

func (s *CommitService) loadRows(ctx context.Context, packageID uuid.UUID) (stagedRows, error) {
	var rows stagedRows
	var err error
	if rows.buildings, err = s.staged.BuildingsByPackage(ctx, packageID); err != nil {
		return rows, errors.Wrap(err, "load staged buildings")
	}
	if rows.units, err = s.staged.UnitsByPackage(ctx, packageID); err != nil {
		return rows, errors.Wrap(err, "load staged units")
	}
	if rows.persons, err = s.staged.PersonsByPackage(ctx, packageID); err != nil {
		return rows, errors.Wrap(err, "load staged persons")
	}
	if rows.households, err = s.staged.HouseholdsByPackage(ctx, packageID); err != nil {
		return rows, errors.Wrap(err, "load staged households")
	}
	if rows.relations, err = s.staged.RelationsByPackage(ctx, packageID); err != nil {
		return rows, errors.Wrap(err, "load staged relations")
	}
	if rows.evidences, err = s.staged.EvidencesByPackage(ctx, packageID); err != nil {
		return rows, errors.Wrap(err, "load staged evidences")
	}
	if rows.claims, err = s.staged.ClaimsByPackage(ctx, packageID); err != nil {
		return rows, errors.Wrap(err, "load staged claims")
	}
	if rows.surveys, err = s.staged.SurveysByPackage(ctx, packageID); err != nil {
		return rows, errors.Wrap(err, "load staged surveys")
	}
	return rows, nil
}

// seedCommitted preloads translations for records that already carry a
// production id, either from an earlier partial attempt or because review
// absorbed them into a production master.
func seedCommitted(refs *refMap, rows stagedRows) {
	for _, entityType := range staging.CommitOrder() {
		for _, rec := range rows.envelopes(entityType) {
			if rec.CommittedEntityID != nil {
				refs.set(entityType, rec.OriginalID, *rec.CommittedEntityID)
			}
		}
	}
}

// seedMergeAliases points each staged record discarded by a staged-to-staged
// merge at its surviving counterpart, so references to the casualty land on
// whatever id the survivor commits under.
func (s *CommitService) seedMergeAliases(ctx context.Context, packageID uuid.UUID, refs *refMap, rows stagedRows) error {
	resolved, err := s.conflicts.GetByPackage(ctx, packageID, &conflict.FindParams{
		Statuses: []conflict.Status{conflict.StatusResolved},
	})
	if err != nil {
		return errors.Wrap(err, "load resolved conflicts")
	}

	skipped := map[staging.EntityType]map[string]bool{}
	for _, entityType := range staging.CommitOrder() {
		index := map[string]bool{}
		for _, rec := range rows.envelopes(entityType) {
			if rec.ValidationStatus == staging.StatusSkipped {
				index[rec.OriginalID] = true
			}
		}
		skipped[entityType] = index
	}

	for _, c := range resolved {
		if c.Resolution() != conflict.ResolutionMerged {
			continue
		}
		left, right := c.Left(), c.Right()
		if left.Source != conflict.SourceStaged || right.Source != conflict.SourceStaged {
			// Production-master merges already stamped the casualty's
			// committed id; seedCommitted covered them.
			continue
		}
		switch {
		case skipped[c.EntityType()][left.Key]:
			refs.alias(c.EntityType(), left.Key, right.Key)
		case skipped[c.EntityType()][right.Key]:
			refs.alias(c.EntityType(), right.Key, left.Key)
		}
	}
	return nil
}

// recordFailure books one record-level commit failure without aborting the
// batch.
func recordFailure(batch *importpackage.BatchReport, originalID, message string) {
	batch.Failed++
	batch.Errors = append(batch.Errors, importpackage.CommitError{OriginalID: originalID, Message: message})
}

func (s *CommitService) commitBuildings(ctx context.Context, rows []*staging.Building, refs *refMap, batch *importpackage.BatchReport) error {
	for _, row := range rows {
		if row.ValidationStatus == staging.StatusSkipped {
			batch.Skipped++
			continue
		}
		if !row.Committable() {
			continue
		}
		b := building.New(row.BuildingCode, row.Address)
		if row.NeighborhoodCode != "" {
			b = b.WithNeighborhoodCode(row.NeighborhoodCode)
		}
		if row.BuildingType != "" {
			b = b.WithBuildingType(row.BuildingType)
		}
		if row.Status != "" {
			b = b.WithStatus(row.Status)
		}
		if row.FloorsCount != nil {
			b = b.WithFloorsCount(*row.FloorsCount)
		}
		if row.Latitude != nil || row.Longitude != nil {
			b = b.WithCoordinates(row.Latitude, row.Longitude)
		}
		if row.FootprintWKT != "" {
			b = b.WithFootprintWKT(row.FootprintWKT)
		}
		if row.Notes != "" {
			b = b.WithNotes(row.Notes)
		}
		created, err := s.registry.Buildings.Create(ctx, b)
		if err != nil {
			return errors.Wrapf(err, "insert building %s", row.OriginalID)
		}
		if err := s.staged.StampCommitted(ctx, staging.EntityBuilding, row.ID, created.ID()); err != nil {
			return errors.Wrapf(err, "stamp building %s", row.OriginalID)
		}
		refs.set(staging.EntityBuilding, row.OriginalID, created.ID())
		batch.Committed++
	}
	return nil
}

func (s *CommitService) commitUnits(ctx context.Context, rows []*staging.PropertyUnit, refs *refMap, batch *importpackage.BatchReport) error {
	for _, row := range rows {
		if row.ValidationStatus == staging.StatusSkipped {
			batch.Skipped++
			continue
		}
		if !row.Committable() {
			continue
		}
		buildingID, ok := refs.resolve(staging.EntityBuilding, row.BuildingRef)
		if !ok {
			recordFailure(batch, row.OriginalID, fmt.Sprintf("unresolvable reference: building %q was not committed", row.BuildingRef))
			continue
		}
		u := unit.New(buildingID, row.UnitNumber)
		if row.FloorNumber != nil {
			u = u.WithFloorNumber(*row.FloorNumber)
		}
		if row.AreaSqm != nil {
			u = u.WithAreaSqm(row.AreaSqm)
		}
		if row.UnitType != "" {
			u = u.WithUnitType(row.UnitType)
		}
		if row.OccupancyStatus != "" {
			u = u.WithOccupancyStatus(row.OccupancyStatus)
		}
		if row.Notes != "" {
			u = u.WithNotes(row.Notes)
		}
		created, err := s.registry.Units.Create(ctx, u)
		if err != nil {
			return errors.Wrapf(err, "insert property unit %s", row.OriginalID)
		}
		if err := s.staged.StampCommitted(ctx, staging.EntityUnit, row.ID, created.ID()); err != nil {
			return errors.Wrapf(err, "stamp property unit %s", row.OriginalID)
		}
		refs.set(staging.EntityUnit, row.OriginalID, created.ID())
		batch.Committed++
	}
	return nil
}

func (s *CommitService) commitPersons(ctx context.Context, rows []*staging.Person, refs *refMap, batch *importpackage.BatchReport) error {
	for _, row := range rows {
		if row.ValidationStatus == staging.StatusSkipped {
			batch.Skipped++
			continue
		}
		if !row.Committable() {
			continue
		}
		p := person.New(row.FirstName, row.FamilyName)
		if row.NationalID != "" {
			p = p.WithNationalID(row.NationalID)
		}
		if row.FatherName != "" {
			p = p.WithFatherName(row.FatherName)
		}
		if row.GrandfatherName != "" {
			p = p.WithGrandfatherName(row.GrandfatherName)
		}
		if g, ok := person.ParseGender(row.Gender); ok {
			p = p.WithGender(g)
		}
		if row.BirthYear != nil {
			p = p.WithBirthYear(*row.BirthYear)
		}
		if row.Phone != "" {
			p = p.WithPhone(row.Phone)
		}
		if row.Notes != "" {
			p = p.WithNotes(row.Notes)
		}
		created, err := s.registry.Persons.Create(ctx, p)
		if err != nil {
			return errors.Wrapf(err, "insert person %s", row.OriginalID)
		}
		if err := s.staged.StampCommitted(ctx, staging.EntityPerson, row.ID, created.ID()); err != nil {
			return errors.Wrapf(err, "stamp person %s", row.OriginalID)
		}
		refs.set(staging.EntityPerson, row.OriginalID, created.ID())
		batch.Committed++
	}
	return nil
}

func (s *CommitService) commitHouseholds(ctx context.Context, rows []*staging.Household, refs *refMap, batch *importpackage.BatchReport) error {
	for _, row := range rows {
		if row.ValidationStatus == staging.StatusSkipped {
			batch.Skipped++
			continue
		}
		if !row.Committable() {
			continue
		}
		unitID, ok := refs.resolve(staging.EntityUnit, row.UnitRef)
		if !ok {
			recordFailure(batch, row.OriginalID, fmt.Sprintf("unresolvable reference: property unit %q was not committed", row.UnitRef))
			continue
		}
		headID, ok := refs.resolve(staging.EntityPerson, row.HeadPersonRef)
		if !ok {
			recordFailure(batch, row.OriginalID, fmt.Sprintf("unresolvable reference: person %q was not committed", row.HeadPersonRef))
			continue
		}
		if row.HouseholdSize == nil {
			recordFailure(batch, row.OriginalID, "household size is missing")
			continue
		}
		h := household.New(unitID, headID, *row.HouseholdSize)
		h = h.WithDemographics(row.MaleCount, row.FemaleCount, row.MaleChildCount, row.FemaleChildCount, row.ElderlyCount, row.DisabledCount)
		if row.DisplacementStatus != "" {
			h = h.WithDisplacementStatus(row.DisplacementStatus)
		}
		created, err := s.registry.Households.Create(ctx, h)
		if err != nil {
			return errors.Wrapf(err, "insert household %s", row.OriginalID)
		}
		if err := s.staged.StampCommitted(ctx, staging.EntityHousehold, row.ID, created.ID()); err != nil {
			return errors.Wrapf(err, "stamp household %s", row.OriginalID)
		}
		refs.set(staging.EntityHousehold, row.OriginalID, created.ID())
		batch.Committed++
	}
	return nil
}

func (s *CommitService) commitRelations(ctx context.Context, rows []*staging.Relation, refs *refMap, batch *importpackage.BatchReport) error {
	for _, row := range rows {
		if row.ValidationStatus == staging.StatusSkipped {
			batch.Skipped++
			continue
		}
		if !row.Committable() {
			continue
		}
		personID, ok := refs.resolve(staging.EntityPerson, row.PersonRef)
		if !ok {
			recordFailure(batch, row.OriginalID, fmt.Sprintf("unresolvable reference: person %q was not committed", row.PersonRef))
			continue
		}
		unitID, ok := refs.resolve(staging.EntityUnit, row.UnitRef)
		if !ok {
			recordFailure(batch, row.OriginalID, fmt.Sprintf("unresolvable reference: property unit %q was not committed", row.UnitRef))
			continue
		}
		// Unrecognized legacy types ride the TypeOther fallback; the raw
		// code stays queryable on the staging row.
		relationType, _ := relation.ParseType(row.RelationType)
		rel := relation.New(personID, unitID, relationType)
		if !row.OwnershipShare.IsZero() {
			rel = rel.WithOwnershipShare(row.OwnershipShare)
		}
		if d, err := staging.ParseDate(row.StartDate); err == nil && d != nil {
			rel = rel.WithStartDate(d)
		}
		if row.Notes != "" {
			rel = rel.WithNotes(row.Notes)
		}
		created, err := s.registry.Relations.Create(ctx, rel)
		if err != nil {
			return errors.Wrapf(err, "insert relation %s", row.OriginalID)
		}
		if err := s.staged.StampCommitted(ctx, staging.EntityRelation, row.ID, created.ID()); err != nil {
			return errors.Wrapf(err, "stamp relation %s", row.OriginalID)
		}
		refs.set(staging.EntityRelation, row.OriginalID, created.ID())
		batch.Committed++
	}
	return nil
}

// commitEvidences inserts evidence rows and promotes their staged files into
// permanent attachment storage, deduplicated by content hash. Claims commit
// after evidence, so claim references are parked in pendingClaimLinks for the
// claim batch to backfill.
func (s *CommitService) commitEvidences(ctx context.Context, rows []*staging.Evidence, refs *refMap, pendingClaimLinks map[string][]uuid.UUID, batch *importpackage.BatchReport) error {
	for _, row := range rows {
		if row.ValidationStatus == staging.StatusSkipped {
			batch.Skipped++
			continue
		}
		if !row.Committable() {
			// Evidence committed by an earlier attempt may still owe its
			// claim link if that attempt died before the claim batch.
			if row.CommittedEntityID != nil && row.ClaimRef != "" {
				if _, done := refs.resolve(staging.EntityClaim, row.ClaimRef); !done {
					pendingClaimLinks[row.ClaimRef] = append(pendingClaimLinks[row.ClaimRef], *row.CommittedEntityID)
				}
			}
			continue
		}
		ev := evidence.New(row.EvidenceType)
		if row.RelationRef != "" {
			relationID, ok := refs.resolve(staging.EntityRelation, row.RelationRef)
			if !ok {
				recordFailure(batch, row.OriginalID, fmt.Sprintf("unresolvable reference: relation %q was not committed", row.RelationRef))
				continue
			}
			ev = ev.WithRelationID(&relationID)
		}
		if row.DocumentNumber != "" || row.IssuedBy != "" || row.IssueDate != "" {
			issueDate, _ := staging.ParseDate(row.IssueDate)
			ev = ev.WithDocument(row.DocumentNumber, row.IssuedBy, issueDate)
		}
		if row.FilePath != "" {
			attachmentID, err := s.promoteAttachment(ctx, row)
			if err != nil {
				recordFailure(batch, row.OriginalID, err.Error())
				continue
			}
			ev = ev.WithAttachmentID(&attachmentID)
		}
		created, err := s.registry.Evidences.Create(ctx, ev)
		if err != nil {
			return errors.Wrapf(err, "insert evidence %s", row.OriginalID)
		}
		if err := s.staged.StampCommitted(ctx, staging.EntityEvidence, row.ID, created.ID()); err != nil {
			return errors.Wrapf(err, "stamp evidence %s", row.OriginalID)
		}
		refs.set(staging.EntityEvidence, row.OriginalID, created.ID())
		batch.Committed++
		if row.ClaimRef != "" {
			pendingClaimLinks[row.ClaimRef] = append(pendingClaimLinks[row.ClaimRef], created.ID())
		}
	}
	return nil
}

// promoteAttachment moves one staged blob into the permanent content store.
// The attachment service reuses an existing row when the hash is already
// known, so re-imported files never duplicate storage.
func (s *CommitService) promoteAttachment(ctx context.Context, row *staging.Evidence) (uuid.UUID, error) {
	rc, err := s.blobs.Open(ctx, row.FilePath)
	if err != nil {
		return uuid.Nil, errors.Wrapf(err, "open staged attachment %s", row.FilePath)
	}
	defer rc.Close()

	att, err := s.attachments.Create(ctx, row.FileName, rc)
	if err != nil {
		return uuid.Nil, errors.Wrapf(err, "promote attachment %s", row.FilePath)
	}
	return att.ID(), nil
}

func (s *CommitService) commitClaims(ctx context.Context, rows []*staging.Claim, refs *refMap, pendingClaimLinks map[string][]uuid.UUID, batch *importpackage.BatchReport) error {
	for _, row := range rows {
		if row.ValidationStatus == staging.StatusSkipped {
			batch.Skipped++
			continue
		}
		if !row.Committable() {
			continue
		}
		claimantID, ok := refs.resolve(staging.EntityPerson, row.ClaimantRef)
		if !ok {
			recordFailure(batch, row.OriginalID, fmt.Sprintf("unresolvable reference: person %q was not committed", row.ClaimantRef))
			continue
		}
		unitID, ok := refs.resolve(staging.EntityUnit, row.UnitRef)
		if !ok {
			recordFailure(batch, row.OriginalID, fmt.Sprintf("unresolvable reference: property unit %q was not committed", row.UnitRef))
			continue
		}
		c := claim.New(claimantID, unitID, row.ClaimType)
		if status, ok := claim.ParseStatus(row.ClaimStatus); ok {
			c = c.WithStatus(status)
		}
		if row.Description != "" {
			c = c.WithDescription(row.Description)
		}
		if d, err := staging.ParseDate(row.FiledDate); err == nil && d != nil {
			c = c.WithFiledDate(d)
		}
		created, err := s.registry.Claims.Create(ctx, c)
		if err != nil {
			return errors.Wrapf(err, "insert claim %s", row.OriginalID)
		}
		if err := s.staged.StampCommitted(ctx, staging.EntityClaim, row.ID, created.ID()); err != nil {
			return errors.Wrapf(err, "stamp claim %s", row.OriginalID)
		}
		for _, evidenceID := range pendingClaimLinks[row.OriginalID] {
			if err := s.registry.Evidences.LinkClaim(ctx, evidenceID, created.ID()); err != nil {
				return errors.Wrapf(err, "link evidence %s to claim %s", evidenceID, row.OriginalID)
			}
		}
		refs.set(staging.EntityClaim, row.OriginalID, created.ID())
		batch.Committed++
	}
	return nil
}

func (s *CommitService) commitSurveys(ctx context.Context, rows []*staging.Survey, packageID uuid.UUID, refs *refMap, batch *importpackage.BatchReport) error {
	for _, row := range rows {
		if row.ValidationStatus == staging.StatusSkipped {
			batch.Skipped++
			continue
		}
		if !row.Committable() {
			continue
		}
		buildingID, ok := refs.resolve(staging.EntityBuilding, row.BuildingRef)
		if !ok {
			recordFailure(batch, row.OriginalID, fmt.Sprintf("unresolvable reference: building %q was not committed", row.BuildingRef))
			continue
		}
		sv := survey.New(buildingID, row.SurveyorName, row.SurveyType)
		if d, err := staging.ParseDate(row.SurveyDate); err == nil && d != nil {
			sv = sv.WithSurveyDate(d)
		}
		sv = sv.WithPackageID(&packageID)
		if row.Notes != "" {
			sv = sv.WithNotes(row.Notes)
		}
		created, err := s.registry.Surveys.Create(ctx, sv)
		if err != nil {
			return errors.Wrapf(err, "insert survey %s", row.OriginalID)
		}
		if err := s.staged.StampCommitted(ctx, staging.EntitySurvey, row.ID, created.ID()); err != nil {
			return errors.Wrapf(err, "stamp survey %s", row.OriginalID)
		}
		refs.set(staging.EntitySurvey, row.OriginalID, created.ID())
		batch.Committed++
	}
	return nil
}
