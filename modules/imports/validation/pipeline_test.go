package validation_test

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/aggregates/importpackage"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/validation"
)

type stubValidator struct {
	level    int
	name     string
	validate func(ctx context.Context, snap *validation.Snapshot) (int, error)
}

func (s stubValidator) Level() int   { return s.level }
func (s stubValidator) Name() string { return s.name }

func (s stubValidator) Validate(ctx context.Context, snap *validation.Snapshot) (int, error) {
	return s.validate(ctx, snap)
}

func TestPipelineRunsLevelsAscending(t *testing.T) {
	var order []int
	record := func(level int) stubValidator {
		return stubValidator{
			level: level,
			name:  "stub",
			validate: func(context.Context, *validation.Snapshot) (int, error) {
				order = append(order, level)
				return 0, nil
			},
		}
	}

	p := validation.NewPipeline(nil, record(5), record(1), record(3))
	_, err := p.Run(context.Background(), newFixture().snapshot())
	require.NoError(t, err)

	assert.Equal(t, []int{1, 3, 5}, order)
}

func TestPipelineContainsPanickingLevel(t *testing.T) {
	ranAfter := false
	p := validation.NewPipeline(
		nil,
		stubValidator{level: 1, name: "first", validate: func(context.Context, *validation.Snapshot) (int, error) {
			return 1, nil
		}},
		stubValidator{level: 2, name: "unstable", validate: func(context.Context, *validation.Snapshot) (int, error) {
			panic("nil map write")
		}},
		stubValidator{level: 3, name: "after", validate: func(context.Context, *validation.Snapshot) (int, error) {
			ranAfter = true
			return 1, nil
		}},
	)

	report, err := p.Run(context.Background(), newFixture().snapshot())
	require.NoError(t, err)
	require.Len(t, report.Levels, 3)

	crashed := report.Levels[1]
	assert.True(t, crashed.Crashed)
	assert.Equal(t, importpackage.CrashedErrorCount, crashed.Errors)
	assert.True(t, ranAfter, "the pipeline must continue past a crashed level")
	assert.True(t, report.HasCrashedLevel())
}

func TestPipelineAbortsOnValidatorError(t *testing.T) {
	boom := errors.New("vocabulary store unreachable")
	p := validation.NewPipeline(
		nil,
		stubValidator{level: 1, name: "broken", validate: func(context.Context, *validation.Snapshot) (int, error) {
			return 0, boom
		}},
	)

	_, err := p.Run(context.Background(), newFixture().snapshot())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestPipelineFinalizesEveryRecord(t *testing.T) {
	f := newFixture()
	f.complete()
	snap := f.snapshot()

	p := validation.NewPipeline(nil, validation.DefaultValidators(testSpatial(), testCache())...)
	report, err := p.Run(context.Background(), snap)
	require.NoError(t, err)
	require.Len(t, report.Levels, 8)

	for _, entityType := range staging.CommitOrder() {
		for _, rec := range snap.Records(entityType) {
			assert.NotEqualf(t, staging.StatusPending, rec.ValidationStatus,
				"%s %s left pending", entityType, rec.OriginalID)
			assert.Equalf(t, staging.StatusValid, rec.ValidationStatus,
				"%s %s: %v", entityType, rec.OriginalID, rec.ValidationErrors)
			assert.True(t, rec.ApprovedForCommit)
		}
	}
	assert.Zero(t, report.TotalErrors())
}

func TestPipelineCountsPerLevelDeltas(t *testing.T) {
	f := newFixture()
	f.complete()
	broken := f.unit("u-2", "b-404", "2A") // dangling building ref
	snap := f.snapshot()

	p := validation.NewPipeline(nil, validation.DefaultValidators(testSpatial(), testCache())...)
	report, err := p.Run(context.Background(), snap)
	require.NoError(t, err)

	var refLevel importpackage.LevelReport
	for _, l := range report.Levels {
		if l.Level == 2 {
			refLevel = l
		}
	}
	assert.Equal(t, 1, refLevel.Errors)
	assert.Equal(t, staging.StatusError, broken.ValidationStatus)
	assert.False(t, broken.ApprovedForCommit)
}

func TestPipelineStopsWhenContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := validation.NewPipeline(nil, validation.DefaultValidators(testSpatial(), testCache())...)
	_, err := p.Run(ctx, newFixture().snapshot())
	assert.ErrorIs(t, err, context.Canceled)
}
