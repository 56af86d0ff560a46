package matcher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5sensprod/possync/pkg/matcher"
	"github.com/5sensprod/possync/pkg/records"
)

func TestMatchProbeOrder(t *testing.T) {
	local := []*records.Product{
		{ID: "1", SKU: "S-1", Gencode: "111"},
		{ID: "x2", SKU: "S-2", Gencode: "222"},
		{ID: "x3", SKU: "S-3"},
		{ID: "x4", SKU: "S-9"},
	}
	source := []*records.Product{
		{ID: "1", SKU: "other"},
		{ID: "y2", MetaData: []records.MetaData{{Key: "ean", Value: "222"}}},
		{ID: "y3", SKU: " S-3 "},
		{ID: "y5", SKU: "S-5"},
	}

	r := matcher.Match(local, source)
	require.Len(t, r.Pairs, 3)
	assert.Equal(t, matcher.ByID, r.Pairs[0].By)
	assert.Equal(t, matcher.ByIdentityCode, r.Pairs[1].By)
	assert.Equal(t, "y2", r.Pairs[1].B.ID)
	assert.Equal(t, matcher.BySKU, r.Pairs[2].By)
	assert.Equal(t, 2, r.Pairs[2].AIndex)
	assert.Equal(t, 2, r.Pairs[2].BIndex)

	require.Len(t, r.UnmatchedA, 1)
	assert.Equal(t, "x4", r.UnmatchedA[0].ID)
	require.Len(t, r.UnmatchedB, 1)
	assert.Equal(t, "y5", r.UnmatchedB[0].ID)

	stats := r.Stats()
	assert.Equal(t, 3, stats.Matched)
	assert.Equal(t, 1, stats.ByKey[matcher.BySKU])
}

func TestMatchIDBeatsCode(t *testing.T) {
	local := []*records.Product{{ID: "1", Gencode: "111"}}
	source := []*records.Product{
		{ID: "2", Gencode: "111"},
		{ID: "1"},
	}
	r := matcher.Match(local, source)
	require.Len(t, r.Pairs, 1)
	assert.Equal(t, "1", r.Pairs[0].B.ID)
	assert.Equal(t, matcher.ByID, r.Pairs[0].By)
}

func TestMatchLaterDuplicateOwnsKey(t *testing.T) {
	local := []*records.Product{{ID: "a", SKU: "DUP"}}
	source := []*records.Product{
		{ID: "b1", SKU: "DUP"},
		{ID: "b2", SKU: "DUP"},
	}
	r := matcher.Match(local, source)
	require.Len(t, r.Pairs, 1)
	assert.Equal(t, "b2", r.Pairs[0].B.ID)
	require.Len(t, r.UnmatchedB, 1)
	assert.Equal(t, "b1", r.UnmatchedB[0].ID)
}

func TestMatchNameFallback(t *testing.T) {
	local := []*records.Product{{ID: "a", Name: "Capo Guitare"}}
	source := []*records.Product{{ID: "b", Name: "  capo guitare"}}

	assert.Empty(t, matcher.Match(local, source).Pairs)

	r := matcher.Match(local, source, matcher.WithNameFallback())
	require.Len(t, r.Pairs, 1)
	assert.Equal(t, matcher.ByName, r.Pairs[0].By)
}

func TestMatchEmptyKeysNeverMatch(t *testing.T) {
	local := []*records.Product{{Name: "anonymous"}}
	source := []*records.Product{{Name: "other"}}
	r := matcher.Match(local, source)
	assert.Empty(t, r.Pairs)
	assert.Len(t, r.UnmatchedA, 1)
	assert.Len(t, r.UnmatchedB, 1)
}
