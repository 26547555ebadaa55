package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/conflict"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/merging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/eventbus"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/serrors"
)

func mergeFixture(conflicts *stubConflicts) *MergeService {
	return NewMergeService(
		conflicts,
		&stubPackages{},
		merging.NewRegistry(),
		eventbus.NewEventPublisher(quietLogger()),
	)
}

func TestResolveDTORequiresMasterForMerge(t *testing.T) {
	dto := ResolveDTO{ConflictID: uuid.New(), Resolution: conflict.ResolutionMerged}

	errs, ok := dto.Ok()
	assert.False(t, ok)
	assert.Contains(t, errs, "master_ref")
}

func TestResolveDTOAllowsKeptDistinctWithoutMaster(t *testing.T) {
	dto := ResolveDTO{ConflictID: uuid.New(), Resolution: conflict.ResolutionKeptDistinct}

	errs, ok := dto.Ok()
	assert.True(t, ok)
	assert.Empty(t, errs)
}

func TestResolveDTORejectsUnknownResolution(t *testing.T) {
	dto := ResolveDTO{ConflictID: uuid.New(), Resolution: conflict.Resolution("purged")}

	errs, ok := dto.Ok()
	assert.False(t, ok)
	assert.Contains(t, errs, "resolution")
}

func TestResolveRejectsInvalidDTOBeforeLoading(t *testing.T) {
	svc := mergeFixture(&stubConflicts{})

	_, err := svc.Resolve(actorContext(), ResolveDTO{})
	var verrs serrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "conflict_id")
}

func TestResolveRequiresActor(t *testing.T) {
	svc := mergeFixture(&stubConflicts{})

	dto := ResolveDTO{ConflictID: uuid.New(), Resolution: conflict.ResolutionKeptDistinct}
	_, err := svc.Resolve(context.Background(), dto)
	require.ErrorIs(t, err, composables.ErrNoActor)
}

func TestListByPackageDelegates(t *testing.T) {
	packageID := uuid.New()
	left := conflict.Ref{Source: conflict.SourceStaged, Key: "P-001", Label: "Ahmad Said"}
	right := conflict.Ref{Source: conflict.SourceStaged, Key: "P-002", Label: "Ahmed Said"}
	existing := conflict.New(packageID, staging.EntityPerson, left, right, 91,
		conflict.ConfidenceHigh, conflict.MatchCriteria{"full_name": 91})

	svc := mergeFixture(&stubConflicts{resolved: []*conflict.Conflict{existing}})

	got, err := svc.ListByPackage(context.Background(), packageID, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, existing.ID(), got[0].ID())
}
