// Package resolver groups products that share an identity key and decides
// which member of each group to keep.
//
// Ranking, highest priority first: recorded sales activity, positive
// stock, quality score, then input order. The resolver only decides; it
// never mutates records and never deletes. Apply is the explicit step
// that drops the losers.
package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/5sensprod/possync/pkg/errors"
	"github.com/5sensprod/possync/pkg/keys"
	"github.com/5sensprod/possync/pkg/records"
	"github.com/5sensprod/possync/pkg/scorer"
)

// Scope selects the identity dimension duplicates are grouped on.
type Scope string

// Scopes.
const (
	ScopeIdentity Scope = "identity"
	ScopeSKU      Scope = "sku"
	ScopeAll      Scope = "all"
	ScopeNone     Scope = "none"
)

// ParseScope validates a scope name.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeIdentity, "code", "gencode":
		return ScopeIdentity, nil
	case ScopeSKU:
		return ScopeSKU, nil
	case ScopeAll, "":
		return ScopeAll, nil
	case ScopeNone:
		return ScopeNone, nil
	}
	return "", errors.NewValidationError("scope", s, "must be one of identity, sku, all, none")
}

// Criterion names what separated the kept record from the runner-up.
type Criterion string

// Criteria, in ranking order.
const (
	CriterionSales      Criterion = "sales"
	CriterionStock      Criterion = "stock"
	CriterionScore      Criterion = "score"
	CriterionInputOrder Criterion = "input_order"
)

// Key prefixes for group keys.
const (
	PrefixCode = "code:"
	PrefixSKU  = "sku:"
)

// Ref identifies a record inside the collection a decision was made on.
type Ref struct {
	Index    int    `json:"index"`
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	SKU      string `json:"sku,omitempty"`
	Score    int    `json:"score"`
	HasSales bool   `json:"has_sales"`
	HasStock bool   `json:"has_stock"`
}

// Decision is the outcome for one group.
type Decision struct {
	Key       string    `json:"key"`
	Keep      Ref       `json:"keep"`
	Remove    []Ref     `json:"remove"`
	Reason    string    `json:"reason"`
	Criterion Criterion `json:"criterion"`
}

// Group is a set of records sharing a key, as indexes into a collection.
type Group struct {
	Key     string
	Members []int
}

// Resolver ranks duplicate groups.
type Resolver struct {
	scorer *scorer.Scorer
}

// New creates a Resolver. A nil scorer selects the default scorer.
func New(s *scorer.Scorer) *Resolver {
	if s == nil {
		s = scorer.New()
	}
	return &Resolver{scorer: s}
}

// ResolveGroup decides among group members. Nil members are skipped. It
// returns nil when fewer than two members remain. Ref indexes are
// positions within group.
func (r *Resolver) ResolveGroup(group []*records.Product) *Decision {
	idx := make([]int, 0, len(group))
	for i, p := range group {
		if p != nil {
			idx = append(idx, i)
		}
	}
	return r.decide("", group, idx)
}

func (r *Resolver) decide(key string, products []*records.Product, members []int) *Decision {
	if len(members) < 2 {
		return nil
	}

	refs := make([]Ref, len(members))
	for i, idx := range members {
		p := products[idx]
		refs[i] = Ref{
			Index:    idx,
			ID:       p.Key(),
			Name:     p.Name,
			SKU:      p.SKU,
			Score:    r.scorer.Score(p),
			HasSales: p.HasSales(),
			HasStock: p.Stock > 0,
		}
	}

	sort.SliceStable(refs, func(i, j int) bool {
		return outranks(refs[i], refs[j])
	})

	keep, runnerUp := refs[0], refs[1]
	return &Decision{
		Key:       key,
		Keep:      keep,
		Remove:    append([]Ref(nil), refs[1:]...),
		Reason:    fmt.Sprintf("score=%d has_sales=%t has_stock=%t", keep.Score, keep.HasSales, keep.HasStock),
		Criterion: separating(keep, runnerUp),
	}
}

// outranks reports whether a ranks strictly above b.
func outranks(a, b Ref) bool {
	if a.HasSales != b.HasSales {
		return a.HasSales
	}
	if a.HasStock != b.HasStock {
		return a.HasStock
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Index < b.Index
}

func separating(keep, runnerUp Ref) Criterion {
	switch {
	case keep.HasSales != runnerUp.HasSales:
		return CriterionSales
	case keep.HasStock != runnerUp.HasStock:
		return CriterionStock
	case keep.Score != runnerUp.Score:
		return CriterionScore
	default:
		return CriterionInputOrder
	}
}

// Group builds the duplicate groups for scope in order of first
// appearance. With ScopeAll, identity groups come first and SKU groups are
// built from the records that survive identity resolution.
func (r *Resolver) Group(products []*records.Product, scope Scope) []Group {
	if scope != ScopeAll {
		return groupBy(products, scope, nil)
	}
	identity := groupBy(products, ScopeIdentity, nil)
	removed := RemovedSet(r.resolveGroups(products, identity))
	return append(identity, groupBy(products, ScopeSKU, removed)...)
}

func groupBy(products []*records.Product, scope Scope, skip map[int]bool) []Group {
	var keyOf func(p *records.Product) string
	switch scope {
	case ScopeIdentity:
		keyOf = func(p *records.Product) string {
			if code := keys.ExtractIdentityCode(p); code != "" {
				return PrefixCode + code
			}
			return ""
		}
	case ScopeSKU:
		keyOf = func(p *records.Product) string {
			if sku := strings.TrimSpace(p.SKU); sku != "" {
				return PrefixSKU + sku
			}
			return ""
		}
	default:
		return nil
	}

	byKey := make(map[string]*Group)
	var order []string
	for i, p := range products {
		if p == nil || skip[i] {
			continue
		}
		k := keyOf(p)
		if k == "" {
			continue
		}
		g, ok := byKey[k]
		if !ok {
			g = &Group{Key: k}
			byKey[k] = g
			order = append(order, k)
		}
		g.Members = append(g.Members, i)
	}

	var out []Group
	for _, k := range order {
		if g := byKey[k]; len(g.Members) > 1 {
			out = append(out, *g)
		}
	}
	return out
}

// Resolve groups products per scope and decides every group. With
// ScopeAll, identity groups are resolved first and SKU groups are built
// from the survivors.
func (r *Resolver) Resolve(products []*records.Product, scope Scope) []Decision {
	return r.resolveGroups(products, r.Group(products, scope))
}

func (r *Resolver) resolveGroups(products []*records.Product, groups []Group) []Decision {
	var out []Decision
	for _, g := range groups {
		if d := r.decide(g.Key, products, g.Members); d != nil {
			out = append(out, *d)
		}
	}
	return out
}

// RemovedSet returns the indexes marked for removal.
func RemovedSet(decisions []Decision) map[int]bool {
	removed := make(map[int]bool)
	for _, d := range decisions {
		for _, ref := range d.Remove {
			removed[ref.Index] = true
		}
	}
	return removed
}

// RemovedCount returns how many records the decisions remove.
func RemovedCount(decisions []Decision) int {
	return len(RemovedSet(decisions))
}

// Apply returns the products that survive the decisions. Decisions must
// have been computed on the same slice. The input is not modified.
func Apply(products []*records.Product, decisions []Decision) []*records.Product {
	removed := RemovedSet(decisions)
	out := make([]*records.Product, 0, len(products)-len(removed))
	for i, p := range products {
		if !removed[i] {
			out = append(out, p)
		}
	}
	return out
}
