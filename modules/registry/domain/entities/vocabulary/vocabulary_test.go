package vocabulary_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/entities/vocabulary"
)

type countingProvider struct {
	calls int
	sets  map[string]vocabulary.Set
}

func (p *countingProvider) Sets(_ context.Context) (map[string]vocabulary.Set, error) {
	p.calls++
	return p.sets, nil
}

func TestCacheWarmupAndGet(t *testing.T) {
	provider := &countingProvider{
		sets: map[string]vocabulary.Set{
			vocabulary.BuildingType: {"residential": true, "commercial": true, "barracks": false},
		},
	}
	cache := vocabulary.NewCache(provider)
	ctx := context.Background()

	require.NoError(t, cache.Warmup(ctx))

	set, err := cache.Get(ctx, vocabulary.BuildingType)
	require.NoError(t, err)
	assert.True(t, set.Contains("residential"))
	assert.True(t, set.IsActive("residential"))
	assert.True(t, set.Contains("barracks"))
	assert.False(t, set.IsActive("barracks"))
	assert.False(t, set.Contains("palace"))

	// Repeated reads never hit the provider again.
	for i := 0; i < 5; i++ {
		_, err := cache.Get(ctx, vocabulary.BuildingType)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, provider.calls)
}

func TestCacheGetWarmsLazily(t *testing.T) {
	provider := &countingProvider{sets: map[string]vocabulary.Set{}}
	cache := vocabulary.NewCache(provider)

	set, err := cache.Get(context.Background(), vocabulary.ClaimType)
	require.NoError(t, err)
	assert.Empty(t, set)
	assert.Equal(t, 1, provider.calls)
}

func TestCacheInvalidateReloads(t *testing.T) {
	provider := &countingProvider{
		sets: map[string]vocabulary.Set{vocabulary.UnitType: {"apartment": true}},
	}
	cache := vocabulary.NewCache(provider)
	ctx := context.Background()

	_, err := cache.Get(ctx, vocabulary.UnitType)
	require.NoError(t, err)

	provider.sets = map[string]vocabulary.Set{vocabulary.UnitType: {"apartment": true, "shop": true}}
	cache.Invalidate()

	set, err := cache.Get(ctx, vocabulary.UnitType)
	require.NoError(t, err)
	assert.True(t, set.Contains("shop"))
	assert.Equal(t, 2, provider.calls)
}

func TestFileProviderLoad(t *testing.T) {
	seed := `
[[codes]]
vocabulary = "building_type"
code = "residential"
label = "Residential"

[[codes]]
vocabulary = "building_type"
code = "ruin"
label = "Ruin"
active = false

[[codes]]
vocabulary = "claim_type"
code = "restitution"
label = "Restitution"
position = 7
`
	path := filepath.Join(t.TempDir(), "vocabularies.toml")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	provider := vocabulary.NewFileProvider(path)

	codes, err := provider.Load()
	require.NoError(t, err)
	require.Len(t, codes, 3)
	assert.True(t, codes[0].Active())
	assert.False(t, codes[1].Active())
	assert.Equal(t, 1, codes[0].Position())
	assert.Equal(t, 7, codes[2].Position())

	sets, err := provider.Sets(context.Background())
	require.NoError(t, err)
	assert.True(t, sets[vocabulary.BuildingType].Contains("ruin"))
	assert.False(t, sets[vocabulary.BuildingType].IsActive("ruin"))
	assert.True(t, sets[vocabulary.ClaimType].IsActive("restitution"))
}

func TestFileProviderRejectsIncompleteEntries(t *testing.T) {
	seed := `
[[codes]]
vocabulary = "building_type"
label = "No code here"
`
	path := filepath.Join(t.TempDir(), "vocabularies.toml")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	_, err := vocabulary.NewFileProvider(path).Load()
	assert.Error(t, err)
}
