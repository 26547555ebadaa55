package validation_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/validation"
)

func findingCodes(findings []staging.Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.Code
	}
	return out
}

func TestConsistencyRequiredFields(t *testing.T) {
	f := newFixture()
	b := f.building("b-1")
	b.BuildingCode = ""
	p := f.person("p-1", "", "Haddad")

	_, err := (validation.ConsistencyValidator{}).Validate(context.Background(), f.snapshot())
	require.NoError(t, err)

	assert.Contains(t, findingCodes(b.ValidationErrors), validation.CodeRequired)
	assert.Contains(t, findingCodes(p.ValidationErrors), validation.CodeRequired)
}

func TestConsistencyRangesAndDates(t *testing.T) {
	f := newFixture()
	year := 1850
	p := f.person("p-1", "Ahmad", "Haddad")
	p.BirthYear = &year
	r := f.relation("r-1", "p-1", "u-1", "owner", 100)
	r.OwnershipShare = decimal.NewFromInt(130)
	r.StartDate = "not a date"
	c := f.claim("c-1", "p-1", "u-1")
	c.ClaimStatus = "appealed"

	checked, err := (validation.ConsistencyValidator{}).Validate(context.Background(), f.snapshot())
	require.NoError(t, err)
	assert.Equal(t, 3, checked)

	assert.Contains(t, findingCodes(p.ValidationErrors), validation.CodeOutOfRange)
	assert.Contains(t, findingCodes(r.ValidationErrors), validation.CodeOutOfRange)
	assert.Contains(t, findingCodes(r.ValidationErrors), validation.CodeInvalidDate)
	assert.Contains(t, findingCodes(c.ValidationErrors), validation.CodeInvalidValue)
}

func TestConsistencyGenderFallsBackWithWarning(t *testing.T) {
	f := newFixture()
	p := f.person("p-1", "Ahmad", "Haddad")
	p.Gender = "????"

	_, err := (validation.ConsistencyValidator{}).Validate(context.Background(), f.snapshot())
	require.NoError(t, err)

	assert.Empty(t, p.ValidationErrors)
	assert.Contains(t, findingCodes(p.ValidationWarnings), validation.CodeInvalidValue)
}

func TestReferenceResolution(t *testing.T) {
	f := newFixture()
	f.building("b-1")
	good := f.unit("u-1", "b-1", "1A")
	dangling := f.unit("u-2", "b-404", "2A")

	_, err := (validation.ReferenceValidator{}).Validate(context.Background(), f.snapshot())
	require.NoError(t, err)

	assert.Empty(t, good.ValidationErrors)
	require.Len(t, dangling.ValidationErrors, 1)
	assert.Equal(t, validation.CodeBadReference, dangling.ValidationErrors[0].Code)
}

func TestReferenceToInvalidTarget(t *testing.T) {
	f := newFixture()
	b := f.building("b-1")
	b.AddError(validation.CodeRequired, "building_code", "building code is required")
	u := f.unit("u-1", "b-1", "1A")

	_, err := (validation.ReferenceValidator{}).Validate(context.Background(), f.snapshot())
	require.NoError(t, err)

	require.Len(t, u.ValidationErrors, 1)
	assert.Equal(t, validation.CodeBadReference, u.ValidationErrors[0].Code)
}

func TestReferenceSkipsSkippedRecords(t *testing.T) {
	f := newFixture()
	f.building("b-1")
	u := f.unit("u-1", "b-1", "1A")
	u.Skip(nil)

	checked, err := (validation.ReferenceValidator{}).Validate(context.Background(), f.snapshot())
	require.NoError(t, err)

	assert.Equal(t, 0, checked)
	assert.Empty(t, u.ValidationErrors)
}

func TestOwnershipNeedsEvidence(t *testing.T) {
	f := newFixture()
	f.person("p-1", "Ahmad", "Haddad")
	f.unit("u-1", "b-1", "1A")
	owner := f.relation("r-1", "p-1", "u-1", "owner", 60)
	heir := f.relation("r-2", "p-1", "u-1", "heir", 40)
	tenant := f.relation("r-3", "p-1", "u-1", "tenant", 0)
	f.evidence("e-1", "r-1")

	_, err := (validation.EvidenceValidator{}).Validate(context.Background(), f.snapshot())
	require.NoError(t, err)

	assert.Empty(t, owner.ValidationErrors)
	require.Len(t, heir.ValidationErrors, 1)
	assert.Equal(t, validation.CodeMissingProof, heir.ValidationErrors[0].Code)
	assert.Empty(t, tenant.ValidationErrors, "tenancy does not demand documents")
}

func TestOwnershipShareOversubscription(t *testing.T) {
	f := newFixture()
	a := f.relation("r-1", "p-1", "u-1", "owner", 70)
	b := f.relation("r-2", "p-2", "u-1", "owner", 50)
	other := f.relation("r-3", "p-3", "u-2", "owner", 100)
	f.evidence("e-1", "r-1")
	f.evidence("e-2", "r-2")
	f.evidence("e-3", "r-3")

	_, err := (validation.EvidenceValidator{}).Validate(context.Background(), f.snapshot())
	require.NoError(t, err)

	assert.Contains(t, findingCodes(a.ValidationWarnings), validation.CodeShareExceeded)
	assert.Contains(t, findingCodes(b.ValidationWarnings), validation.CodeShareExceeded)
	assert.Empty(t, other.ValidationWarnings)
}

func TestHouseholdDemographics(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(h *staging.Household)
		wantErrs int
	}{
		{name: "coherent", mutate: func(h *staging.Household) {}, wantErrs: 0},
		{
			name: "negative counter",
			mutate: func(h *staging.Household) {
				h.MaleCount = -1
			},
			wantErrs: 1,
		},
		{
			name: "gender split misses size",
			mutate: func(h *staging.Household) {
				h.FemaleCount = 5
			},
			wantErrs: 1,
		},
		{
			name: "children outnumber gender count",
			mutate: func(h *staging.Household) {
				h.MaleChildCount = 3
			},
			wantErrs: 1,
		},
		{
			name: "all members are children",
			mutate: func(h *staging.Household) {
				h.MaleChildCount = 2
				h.FemaleChildCount = 2
			},
			wantErrs: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.person("p-1", "Ahmad", "Haddad")
			h := f.household("h-1", "u-1", "p-1")
			tt.mutate(h)

			_, err := (validation.HouseholdValidator{}).Validate(context.Background(), f.snapshot())
			require.NoError(t, err)
			assert.Len(t, h.ValidationErrors, tt.wantErrs)
		})
	}
}

func TestHouseholdHeadMustBeAdult(t *testing.T) {
	f := newFixture()
	head := f.person("p-1", "Samir", "Haddad")
	year := 2015
	head.BirthYear = &year
	h := f.household("h-1", "u-1", "p-1")

	_, err := (validation.HouseholdValidator{}).Validate(context.Background(), f.snapshot())
	require.NoError(t, err)

	require.Len(t, h.ValidationErrors, 1)
	assert.Equal(t, validation.CodeDemographics, h.ValidationErrors[0].Code)
}

func TestSpatialBounds(t *testing.T) {
	v := validation.NewSpatialValidator(testSpatial())

	f := newFixture()
	inside := f.building("b-1")
	outside := f.building("b-2")
	lat, lon := 33.5, 36.3 // Damascus, outside the Aleppo region
	outside.Latitude, outside.Longitude = &lat, &lon

	_, err := v.Validate(context.Background(), f.snapshot())
	require.NoError(t, err)

	assert.Empty(t, inside.ValidationErrors)
	require.Len(t, outside.ValidationErrors, 1)
	assert.Equal(t, validation.CodeOutOfBounds, outside.ValidationErrors[0].Code)
}

func TestSpatialFootprint(t *testing.T) {
	tests := []struct {
		name     string
		wkt      string
		wantCode string
	}{
		{
			name: "valid polygon",
			wkt:  "POLYGON((37.1 36.2,37.11 36.2,37.11 36.21,37.1 36.21,37.1 36.2))",
		},
		{
			name:     "garbage",
			wkt:      "POLYGON((oops",
			wantCode: validation.CodeBadGeometry,
		},
		{
			name:     "not a polygon",
			wkt:      "POINT(37.1 36.2)",
			wantCode: validation.CodeBadGeometry,
		},
		{
			name:     "degenerate ring",
			wkt:      "POLYGON((37.1 36.2,37.11 36.2,37.1 36.2))",
			wantCode: validation.CodeBadGeometry,
		},
		{
			name:     "zero area",
			wkt:      "POLYGON((37.1 36.2,37.1 36.2,37.1 36.2,37.1 36.2))",
			wantCode: validation.CodeBadGeometry,
		},
		{
			name:     "outside region",
			wkt:      "POLYGON((36.3 33.5,36.31 33.5,36.31 33.51,36.3 33.51,36.3 33.5))",
			wantCode: validation.CodeOutOfBounds,
		},
	}

	v := validation.NewSpatialValidator(testSpatial())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			b := f.building("b-1")
			b.FootprintWKT = tt.wkt

			_, err := v.Validate(context.Background(), f.snapshot())
			require.NoError(t, err)

			if tt.wantCode == "" {
				assert.Empty(t, b.ValidationErrors)
				return
			}
			assert.Contains(t, findingCodes(b.ValidationErrors), tt.wantCode)
		})
	}
}

func TestClaimLifecycle(t *testing.T) {
	f := newFixture()
	draft := f.claim("c-1", "p-1", "u-1")
	draft.ClaimStatus = "draft"
	accepted := f.claim("c-2", "p-1", "u-1")
	accepted.ClaimStatus = "accepted"
	future := f.claim("c-3", "p-1", "u-1")
	future.FiledDate = "2031-01-01"

	_, err := (validation.ClaimValidator{}).Validate(context.Background(), f.snapshot())
	require.NoError(t, err)

	assert.Empty(t, draft.ValidationErrors)
	require.Len(t, accepted.ValidationErrors, 1)
	assert.Equal(t, validation.CodeIllegalStatus, accepted.ValidationErrors[0].Code)
	assert.Contains(t, findingCodes(future.ValidationWarnings), validation.CodeFutureDate)
}

func TestVocabularyCurrency(t *testing.T) {
	v := validation.NewVocabularyValidator(testCache())

	f := newFixture()
	known := f.building("b-1")
	unknown := f.building("b-2")
	unknown.BuildingType = "palace"
	retired := f.evidence("e-1", "r-1")
	retired.EvidenceType = "tax_record"

	_, err := v.Validate(context.Background(), f.snapshot())
	require.NoError(t, err)

	assert.Empty(t, known.ValidationErrors)
	require.Len(t, unknown.ValidationErrors, 1)
	assert.Equal(t, validation.CodeUnknownCode, unknown.ValidationErrors[0].Code)
	assert.Empty(t, retired.ValidationErrors)
	assert.Contains(t, findingCodes(retired.ValidationWarnings), validation.CodeInactiveCode)
}

func TestCodePatterns(t *testing.T) {
	f := newFixture()
	good := f.building("b-1")
	bad := f.building("b-2")
	bad.BuildingCode = "1-2-3-4"
	f.unit("u-1", "b-1", "1A")
	dup := f.unit("u-2", "b-1", "1a")
	elsewhere := f.unit("u-3", "b-2", "1A")

	_, err := (validation.CodeValidator{}).Validate(context.Background(), f.snapshot())
	require.NoError(t, err)

	assert.Empty(t, good.ValidationErrors)
	assert.Contains(t, findingCodes(bad.ValidationErrors), validation.CodeBadPattern)
	assert.Contains(t, findingCodes(dup.ValidationErrors), validation.CodeDuplicateUnit)
	assert.Empty(t, elsewhere.ValidationErrors, "same number in another building is fine")
}
