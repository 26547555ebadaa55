package services

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/aggregates/importpackage"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/conflict"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/matching"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/person"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/unit"
)

// DetectionService pairs staged records against each other and against the
// production register, recording every candidate duplicate as a conflict.
// Re-running detection never duplicates a pair, whichever way round it was
// stored.
type DetectionService struct {
	staged    staging.Repository
	conflicts conflict.Repository
	persons   person.Repository
	units     unit.Repository

	personMatcher   *matching.PersonMatcher
	propertyMatcher matching.PropertyMatcher
}

func NewDetectionService(
	staged staging.Repository,
	conflicts conflict.Repository,
	persons person.Repository,
	units unit.Repository,
	personMatcher *matching.PersonMatcher,
) *DetectionService {
	return &DetectionService{
		staged:        staged,
		conflicts:     conflicts,
		persons:       persons,
		units:         units,
		personMatcher: personMatcher,
	}
}

// Detect runs both matchers concurrently and records new conflicts. It
// returns how many conflicts this run created and how many are open for the
// package in total.
func (s *DetectionService) Detect(ctx context.Context, pkg importpackage.ImportPackage) (created int, open int64, err error) {
	stagedPersons, productionPersons, err := s.personCandidates(ctx, pkg)
	if err != nil {
		return 0, 0, err
	}
	stagedUnits, productionUnits, err := s.unitCandidates(ctx, pkg)
	if err != nil {
		return 0, 0, err
	}

	var personMatches, unitMatches []matching.Match
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.personMatcher.Match(gctx, stagedPersons, productionPersons)
		if err != nil {
			return errors.Wrap(err, "match persons")
		}
		personMatches = m
		return nil
	})
	g.Go(func() error {
		m, err := s.propertyMatcher.Match(gctx, stagedUnits, productionUnits)
		if err != nil {
			return errors.Wrap(err, "match property units")
		}
		unitMatches = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}

	for _, m := range append(personMatches, unitMatches...) {
		left, right := conflict.Canonicalize(m.Left, m.Right)
		exists, err := s.conflicts.ExistsPair(ctx, pkg.ID(), left, right)
		if err != nil {
			return created, 0, err
		}
		if exists {
			continue
		}
		c := conflict.New(pkg.ID(), m.EntityType, m.Left, m.Right, m.Score, m.Confidence, m.Criteria)
		if _, err := s.conflicts.Create(ctx, c); err != nil {
			return created, 0, err
		}
		created++
	}

	open, err = s.conflicts.CountOpen(ctx, pkg.ID())
	if err != nil {
		return created, 0, err
	}
	return created, open, nil
}

// matchable limits detection to records that passed validation and were not
// merged away by an earlier review round.
func matchable(r staging.Record) bool {
	return r.ValidationStatus == staging.StatusValid || r.ValidationStatus == staging.StatusWarning
}

func (s *DetectionService) personCandidates(ctx context.Context, pkg importpackage.ImportPackage) (staged, production []matching.PersonCandidate, err error) {
	stagedRows, err := s.staged.PersonsByPackage(ctx, pkg.ID())
	if err != nil {
		return nil, nil, errors.Wrap(err, "load staged persons")
	}
	for _, p := range stagedRows {
		if !matchable(p.Record) {
			continue
		}
		staged = append(staged, matching.PersonCandidate{
			Ref: conflict.Ref{
				Source: conflict.SourceStaged,
				Key:    p.OriginalID,
				Label:  p.FullName(),
			},
			NationalID: p.NationalID,
			FullName:   p.FullName(),
			FatherName: p.FatherName,
			FamilyName: p.FamilyName,
			BirthYear:  p.BirthYear,
		})
	}

	productionRows, err := s.persons.GetActive(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load production persons")
	}
	for _, p := range productionRows {
		var birthYear *int
		if y := p.BirthYear(); y != 0 {
			birthYear = &y
		}
		production = append(production, matching.PersonCandidate{
			Ref: conflict.Ref{
				Source: conflict.SourceProduction,
				Key:    p.ID().String(),
				Label:  p.FullName(),
			},
			NationalID: p.NationalID(),
			FullName:   p.FullName(),
			FatherName: p.FatherName(),
			FamilyName: p.FamilyName(),
			BirthYear:  birthYear,
		})
	}
	return staged, production, nil
}

func (s *DetectionService) unitCandidates(ctx context.Context, pkg importpackage.ImportPackage) (staged, production []matching.UnitCandidate, err error) {
	stagedBuildings, err := s.staged.BuildingsByPackage(ctx, pkg.ID())
	if err != nil {
		return nil, nil, errors.Wrap(err, "load staged buildings")
	}
	codeByRef := make(map[string]string, len(stagedBuildings))
	for _, b := range stagedBuildings {
		codeByRef[b.OriginalID] = b.BuildingCode
	}

	stagedUnits, err := s.staged.UnitsByPackage(ctx, pkg.ID())
	if err != nil {
		return nil, nil, errors.Wrap(err, "load staged units")
	}
	for _, u := range stagedUnits {
		if !matchable(u.Record) {
			continue
		}
		code := codeByRef[u.BuildingRef]
		staged = append(staged, matching.UnitCandidate{
			Ref: conflict.Ref{
				Source: conflict.SourceStaged,
				Key:    u.OriginalID,
				Label:  unitLabel(code, u.UnitNumber),
			},
			BuildingCode: code,
			UnitNumber:   u.UnitNumber,
		})
	}

	keys, err := s.units.GetKeys(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load production unit keys")
	}
	for _, k := range keys {
		production = append(production, matching.UnitCandidate{
			Ref: conflict.Ref{
				Source: conflict.SourceProduction,
				Key:    k.UnitID.String(),
				Label:  unitLabel(k.BuildingCode, k.UnitNumber),
			},
			BuildingCode: k.BuildingCode,
			UnitNumber:   k.UnitNumber,
		})
	}
	return staged, production, nil
}

func unitLabel(buildingCode, unitNumber string) string {
	if buildingCode == "" {
		return unitNumber
	}
	return fmt.Sprintf("%s/%s", buildingCode, unitNumber)
}
