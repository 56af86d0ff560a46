package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5sensprod/possync/pkg/records"
	"github.com/5sensprod/possync/pkg/resolver"
)

func TestParseScope(t *testing.T) {
	tests := []struct {
		in      string
		want    resolver.Scope
		wantErr bool
	}{
		{"identity", resolver.ScopeIdentity, false},
		{"gencode", resolver.ScopeIdentity, false},
		{"SKU", resolver.ScopeSKU, false},
		{"", resolver.ScopeAll, false},
		{"none", resolver.ScopeNone, false},
		{"name", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := resolver.ParseScope(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSalesActivityWinsOverScore(t *testing.T) {
	products := []*records.Product{
		{ID: "a", Name: "Corde nylon", SKU: "CN-1", Gencode: "3000000000000", Description: "Jeu complet", Price: 9.9, Stock: 12, BrandID: "b1", CategoryID: "c1", Image: &records.Image{Src: "x.jpg"}},
		{ID: "b", Name: "Corde", Barcode: "3000000000000", TotalSold: 12},
		{ID: "c", Name: "Corde nylon", MetaData: []records.MetaData{{Key: "barcode", Value: "3000000000000"}}, Stock: 3},
	}

	decisions := resolver.New(nil).Resolve(products, resolver.ScopeIdentity)
	require.Len(t, decisions, 1)

	d := decisions[0]
	assert.Equal(t, "code:3000000000000", d.Key)
	assert.Equal(t, "b", d.Keep.ID)
	assert.Equal(t, resolver.CriterionSales, d.Criterion)
	require.Len(t, d.Remove, 2)
	assert.Equal(t, "a", d.Remove[0].ID)
	assert.Equal(t, "c", d.Remove[1].ID)
	assert.True(t, d.Keep.HasSales)
	assert.Contains(t, d.Reason, "has_sales=true")

	survivors := resolver.Apply(products, decisions)
	require.Len(t, survivors, 1)
	assert.Equal(t, "b", survivors[0].ID)
	assert.Len(t, products, 3)
}

func TestPublishedBeatsDraft(t *testing.T) {
	products := []*records.Product{
		{ID: "p1", Name: "Capo", SKU: "ABC123", Status: records.StatusDraft},
		{ID: "p2", Name: "Capo", SKU: "ABC123", Status: records.StatusPublished},
	}

	decisions := resolver.New(nil).Resolve(products, resolver.ScopeSKU)
	require.Len(t, decisions, 1)
	assert.Equal(t, "sku:ABC123", decisions[0].Key)
	assert.Equal(t, "p2", decisions[0].Keep.ID)
	assert.Equal(t, 20, decisions[0].Keep.Score)
	assert.Equal(t, resolver.CriterionScore, decisions[0].Criterion)
	assert.Equal(t, "p1", decisions[0].Remove[0].ID)
}

func TestStockBeforeScore(t *testing.T) {
	d := resolver.New(nil).ResolveGroup([]*records.Product{
		{ID: "rich", Name: "Ampli", SKU: "AMP", Price: 300, Description: "20W"},
		{ID: "stocked", Stock: 1},
	})
	require.NotNil(t, d)
	assert.Equal(t, "stocked", d.Keep.ID)
	assert.Equal(t, resolver.CriterionStock, d.Criterion)
}

func TestInputOrderBreaksTies(t *testing.T) {
	d := resolver.New(nil).ResolveGroup([]*records.Product{
		{ID: "first", SKU: "X1", Name: "Pied"},
		{ID: "second", SKU: "X1", Name: "Pied"},
	})
	require.NotNil(t, d)
	assert.Equal(t, "first", d.Keep.ID)
	assert.Equal(t, resolver.CriterionInputOrder, d.Criterion)
}

func TestResolveGroupSingleMember(t *testing.T) {
	r := resolver.New(nil)
	assert.Nil(t, r.ResolveGroup(nil))
	assert.Nil(t, r.ResolveGroup([]*records.Product{{ID: "solo"}}))
	assert.Nil(t, r.ResolveGroup([]*records.Product{nil, {ID: "solo"}, nil}))
}

func TestResolveGroupSkipsNilMembers(t *testing.T) {
	var d *resolver.Decision
	require.NotPanics(t, func() {
		d = resolver.New(nil).ResolveGroup([]*records.Product{
			nil,
			{ID: "first", SKU: "X1", Name: "Pied"},
			nil,
			{ID: "second", SKU: "X1", Name: "Pied", Stock: 2},
		})
	})
	require.NotNil(t, d)
	assert.Equal(t, "second", d.Keep.ID)
	assert.Equal(t, 3, d.Keep.Index)
	require.Len(t, d.Remove, 1)
	assert.Equal(t, "first", d.Remove[0].ID)
	assert.Equal(t, 1, d.Remove[0].Index)
}

func TestScopeAllUsesSurvivors(t *testing.T) {
	products := []*records.Product{
		{ID: "1", SKU: "S1", Gencode: "111", Stock: 1},
		{ID: "2", SKU: "S2", Gencode: "111"},
		{ID: "3", SKU: "S2"},
		{ID: "4", SKU: "S1"},
	}

	r := resolver.New(nil)
	groups := r.Group(products, resolver.ScopeAll)
	require.Len(t, groups, 2)
	assert.Equal(t, "code:111", groups[0].Key)
	assert.Equal(t, []int{0, 1}, groups[0].Members)
	// product 2 lost the identity group, so S2 has a single survivor
	assert.Equal(t, "sku:S1", groups[1].Key)
	assert.Equal(t, []int{0, 3}, groups[1].Members)

	decisions := r.Resolve(products, resolver.ScopeAll)
	require.Len(t, decisions, 2)
	assert.Equal(t, 2, resolver.RemovedCount(decisions))

	survivors := resolver.Apply(products, decisions)
	ids := make([]string, len(survivors))
	for i, p := range survivors {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"1", "3"}, ids)
}

func TestScopeNone(t *testing.T) {
	products := []*records.Product{{ID: "1", SKU: "S"}, {ID: "2", SKU: "S"}}
	assert.Empty(t, resolver.New(nil).Resolve(products, resolver.ScopeNone))
}

func TestResolveDeterministic(t *testing.T) {
	products := []*records.Product{
		{ID: "1", SKU: "A", Stock: 1},
		{ID: "2", SKU: "A", Stock: 1},
		{ID: "3", SKU: "B"},
		{ID: "4", SKU: "B", TotalSold: 1},
	}
	r := resolver.New(nil)
	first := r.Resolve(products, resolver.ScopeSKU)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, r.Resolve(products, resolver.ScopeSKU))
	}
}
