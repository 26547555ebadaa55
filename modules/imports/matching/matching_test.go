package matching_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/conflict"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/matching"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/configuration"
)

func thresholds() configuration.MatchingOptions {
	return configuration.MatchingOptions{PersonHighThreshold: 85, PersonMediumThreshold: 60}
}

func stagedRef(key string) conflict.Ref {
	return conflict.Ref{Source: conflict.SourceStaged, Key: key}
}

func productionRef(key string) conflict.Ref {
	return conflict.Ref{Source: conflict.SourceProduction, Key: key}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Ahmad   Haddad ", "ahmad haddad"},
		{"Ḥaddād", "haddad"},
		{"MUSTAFA", "mustafa"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matching.Normalize(tt.in))
	}
}

func TestTokenSortIgnoresNameOrder(t *testing.T) {
	assert.Equal(t,
		matching.TokenSort("Ahmad al-Haddad"),
		matching.TokenSort("al-Haddad  AHMAD"),
	)
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"020-304 050", "020304050"},
		{"٠٢٠٣٠٤", "020304"},
		{"no digits", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matching.NormalizeID(tt.in))
	}
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 100, matching.Ratio("ahmad", "ahmad"))
	assert.Equal(t, 0, matching.Ratio("", ""))
	assert.Equal(t, 0, matching.Ratio("ahmad", ""))
	assert.Equal(t, 87, matching.Ratio("mohamad", "mohammad"))
}

func TestPersonMatcherExactNationalID(t *testing.T) {
	m := matching.NewPersonMatcher(thresholds())

	staged := []matching.PersonCandidate{
		{Ref: stagedRef("p-1"), NationalID: "020-304-050", FullName: "Ahmad Haddad"},
	}
	production := []matching.PersonCandidate{
		{Ref: productionRef("c5df0a1e"), NationalID: "020304050", FullName: "Completely Different"},
	}

	matches, err := m.Match(context.Background(), staged, production)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	got := matches[0]
	assert.Equal(t, 100, got.Score)
	assert.Equal(t, conflict.ConfidenceExact, got.Confidence)
	assert.Equal(t, conflict.MatchCriteria{"national_id": 100}, got.Criteria)
}

func TestPersonMatcherCompositeScore(t *testing.T) {
	year1980, year1981 := 1980, 1981

	tests := []struct {
		name           string
		a, b           matching.PersonCandidate
		wantScore      int
		wantConfidence conflict.Confidence
	}{
		{
			name: "perfect composite",
			a: matching.PersonCandidate{
				FullName: "Ahmad Haddad", FatherName: "Mahmoud", FamilyName: "Haddad", BirthYear: &year1980,
			},
			b: matching.PersonCandidate{
				FullName: "Haddad Ahmad", FatherName: "mahmoud", FamilyName: "Haddad", BirthYear: &year1980,
			},
			wantScore:      100,
			wantConfidence: conflict.ConfidenceHigh,
		},
		{
			name: "birth year mismatch drags high to medium",
			a: matching.PersonCandidate{
				FullName: "Ahmad Haddad", FatherName: "Mahmoud", FamilyName: "Haddad", BirthYear: &year1980,
			},
			b: matching.PersonCandidate{
				FullName: "Ahmad Haddad", FatherName: "Mahmoud", FamilyName: "Haddad", BirthYear: &year1981,
			},
			wantScore:      75,
			wantConfidence: conflict.ConfidenceMedium,
		},
		{
			name: "names alone reach medium",
			a:    matching.PersonCandidate{FullName: "Ahmad Haddad", FatherName: "Mahmoud"},
			b:    matching.PersonCandidate{FullName: "Ahmad Haddad", FatherName: "Mahmoud"},
			// 45 + 20, family absent contributes nothing
			wantScore:      65,
			wantConfidence: conflict.ConfidenceMedium,
		},
	}

	m := matching.NewPersonMatcher(thresholds())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.a.Ref = stagedRef("p-1")
			tt.b.Ref = productionRef("p-2")

			matches, err := m.Match(context.Background(), []matching.PersonCandidate{tt.a}, []matching.PersonCandidate{tt.b})
			require.NoError(t, err)
			require.Len(t, matches, 1)
			assert.Equal(t, tt.wantScore, matches[0].Score)
			assert.Equal(t, tt.wantConfidence, matches[0].Confidence)
		})
	}
}

func TestPersonMatcherDiscardsBelowMedium(t *testing.T) {
	m := matching.NewPersonMatcher(thresholds())

	staged := []matching.PersonCandidate{
		{Ref: stagedRef("p-1"), FullName: "Ahmad Haddad"},
	}
	production := []matching.PersonCandidate{
		{Ref: productionRef("p-2"), FullName: "Ahmad Haddad"}, // 45 alone
	}

	matches, err := m.Match(context.Background(), staged, production)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestPersonMatcherScoresEachStagedPairOnce(t *testing.T) {
	m := matching.NewPersonMatcher(thresholds())

	staged := []matching.PersonCandidate{
		{Ref: stagedRef("p-1"), NationalID: "111"},
		{Ref: stagedRef("p-2"), NationalID: "111"},
	}

	matches, err := m.Match(context.Background(), staged, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "p-1", matches[0].Left.Key)
	assert.Equal(t, "p-2", matches[0].Right.Key)
}

func TestPersonMatcherStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := matching.NewPersonMatcher(thresholds())
	_, err := m.Match(ctx, []matching.PersonCandidate{{Ref: stagedRef("p-1")}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPropertyMatcherExactKey(t *testing.T) {
	staged := []matching.UnitCandidate{
		{Ref: stagedRef("u-1"), BuildingCode: "01-02-003-0004", UnitNumber: "1A"},
		{Ref: stagedRef("u-2"), BuildingCode: "01-02-003-0004", UnitNumber: "1 a"},
		{Ref: stagedRef("u-3"), BuildingCode: "01-02-003-0004", UnitNumber: "2B"},
	}
	production := []matching.UnitCandidate{
		{Ref: productionRef("e1a6"), BuildingCode: "01-02-003-0004", UnitNumber: "2b"},
	}

	matches, err := matching.PropertyMatcher{}.Match(context.Background(), staged, production)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	for _, m := range matches {
		assert.Equal(t, 100, m.Score)
		assert.Equal(t, conflict.ConfidenceExact, m.Confidence)
	}
	assert.Equal(t, "u-1", matches[0].Left.Key)
	assert.Equal(t, "u-2", matches[0].Right.Key)
	assert.Equal(t, "u-3", matches[1].Left.Key)
	assert.Equal(t, "e1a6", matches[1].Right.Key)
}

func TestPropertyMatcherIgnoresIncompleteKeys(t *testing.T) {
	staged := []matching.UnitCandidate{
		{Ref: stagedRef("u-1"), BuildingCode: "", UnitNumber: "1A"},
		{Ref: stagedRef("u-2"), BuildingCode: "", UnitNumber: "1A"},
	}

	matches, err := matching.PropertyMatcher{}.Match(context.Background(), staged, nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
