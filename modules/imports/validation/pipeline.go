package validation

import (
	"context"
	"sort"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/aggregates/importpackage"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/entities/vocabulary"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/configuration"
)

// Pipeline runs validators over a snapshot in strict ascending level order.
// A panicking validator is contained: its level is reported crashed with the
// sentinel error count and the pipeline moves on. A validator returning an
// error aborts the pass, that is an infrastructure failure, not a data one.
type Pipeline struct {
	log        logrus.FieldLogger
	validators []Validator
}

func NewPipeline(log logrus.FieldLogger, validators ...Validator) *Pipeline {
	sorted := make([]Validator, len(validators))
	copy(sorted, validators)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Level() < sorted[j].Level()
	})
	return &Pipeline{log: log, validators: sorted}
}

// DefaultValidators assembles the eight standard levels.
func DefaultValidators(spatial configuration.SpatialOptions, cache *vocabulary.Cache) []Validator {
	return []Validator{
		ConsistencyValidator{},
		ReferenceValidator{},
		EvidenceValidator{},
		HouseholdValidator{},
		NewSpatialValidator(spatial),
		ClaimValidator{},
		NewVocabularyValidator(cache),
		CodeValidator{},
	}
}

// Run executes every level and finalizes the snapshot's records. After Run
// no eligible record is Pending.
func (p *Pipeline) Run(ctx context.Context, snap *Snapshot) (importpackage.ValidationReport, error) {
	report := importpackage.ValidationReport{
		StartedAt: time.Now(),
		Levels:    make([]importpackage.LevelReport, 0, len(p.validators)),
	}
	for _, v := range p.validators {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		level, err := p.runLevel(ctx, v, snap)
		report.Levels = append(report.Levels, level)
		if err != nil {
			report.FinishedAt = time.Now()
			return report, errors.Wrapf(err, "level %d (%s)", v.Level(), v.Name())
		}
	}

	for _, t := range staging.CommitOrder() {
		for _, r := range snap.Records(t) {
			r.Finalize()
		}
	}
	report.FinishedAt = time.Now()
	return report, nil
}

func (p *Pipeline) runLevel(ctx context.Context, v Validator, snap *Snapshot) (level importpackage.LevelReport, err error) {
	start := time.Now()
	errsBefore, warnsBefore := snap.findingCounts()
	level = importpackage.LevelReport{Level: v.Level(), Name: v.Name()}

	defer func() {
		level.DurationMS = time.Since(start).Milliseconds()
		if r := recover(); r != nil {
			if p.log != nil {
				p.log.Errorf("validation: level %d (%s) panicked on package %s: %v", v.Level(), v.Name(), snap.PackageID, r)
			}
			level.Crashed = true
			level.Errors = importpackage.CrashedErrorCount
			level.Warnings = 0
			err = nil
		}
	}()

	checked, err := v.Validate(ctx, snap)
	if err != nil {
		return level, err
	}
	errsAfter, warnsAfter := snap.findingCounts()
	level.Checked = checked
	level.Errors = errsAfter - errsBefore
	level.Warnings = warnsAfter - warnsBefore
	return level, nil
}

func (s *Snapshot) findingCounts() (errs, warns int) {
	for _, t := range staging.CommitOrder() {
		for _, r := range s.Records(t) {
			errs += len(r.ValidationErrors)
			warns += len(r.ValidationWarnings)
		}
	}
	return errs, warns
}
