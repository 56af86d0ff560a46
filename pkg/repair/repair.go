// Package repair finds structural corruption in product collections and
// fixes what can be fixed without a human decision.
//
// Duplicate meta_data keys are repaired. woo_id collisions and dangling
// references are only reported.
package repair

import (
	"sort"
	"strings"

	"github.com/5sensprod/possync/pkg/errors"
	"github.com/5sensprod/possync/pkg/records"
)

// MetaRepair describes the meta_data keys collapsed on one product.
type MetaRepair struct {
	ID      string   `json:"id"`
	Index   int      `json:"index"`
	Keys    []string `json:"keys"`
	Dropped int      `json:"dropped"`
}

// DedupeMetaData returns a copy of p with one meta_data entry per key and
// the keys that were duplicated. The surviving entry sits at the position
// of the first occurrence and carries the value of the last one. When
// nothing is duplicated p itself is returned.
func DedupeMetaData(p *records.Product) (*records.Product, []string) {
	if p == nil || len(p.MetaData) < 2 {
		return p, nil
	}

	last := make(map[string]int, len(p.MetaData))
	count := make(map[string]int, len(p.MetaData))
	for i, m := range p.MetaData {
		last[m.Key] = i
		count[m.Key]++
	}
	if len(last) == len(p.MetaData) {
		return p, nil
	}

	out := p.Clone()
	out.MetaData = make([]records.MetaData, 0, len(last))
	var dupKeys []string
	seen := make(map[string]bool, len(last))
	for _, m := range p.MetaData {
		if seen[m.Key] {
			continue
		}
		seen[m.Key] = true
		winner := p.MetaData[last[m.Key]]
		entry := m
		entry.Value = winner.Value
		out.MetaData = append(out.MetaData, entry)
		if count[m.Key] > 1 {
			dupKeys = append(dupKeys, m.Key)
		}
	}
	return out, dupKeys
}

// RepairMetaData dedupes meta_data across a collection. The returned slice
// shares unchanged records with the input.
func RepairMetaData(products []*records.Product) ([]*records.Product, []MetaRepair) {
	out := make([]*records.Product, len(products))
	var repairs []MetaRepair
	for i, p := range products {
		fixed, keys := DedupeMetaData(p)
		out[i] = fixed
		if len(keys) > 0 {
			repairs = append(repairs, MetaRepair{
				ID:      p.Key(),
				Index:   i,
				Keys:    keys,
				Dropped: len(p.MetaData) - len(fixed.MetaData),
			})
		}
	}
	return out, repairs
}

// Collision is a woo_id shared by more than one product.
type Collision struct {
	WooID int64    `json:"woo_id"`
	IDs   []string `json:"ids"`
}

// WooIDCollisions lists woo_ids held by more than one product, ordered by
// woo_id.
func WooIDCollisions(products []*records.Product) []Collision {
	holders := make(map[int64][]string)
	for _, p := range products {
		if p == nil || p.WooID == nil {
			continue
		}
		holders[*p.WooID] = append(holders[*p.WooID], p.Key())
	}
	var out []Collision
	for id, ids := range holders {
		if len(ids) > 1 {
			out = append(out, Collision{WooID: id, IDs: ids})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WooID < out[j].WooID })
	return out
}

// References holds the id indexes product references are checked against.
// A nil index skips that check.
type References struct {
	Categories records.Index
	Brands     records.Index
	Suppliers  records.Index
}

// DanglingReferences reports product references that do not resolve.
func DanglingReferences(products []*records.Product, refs References) []*errors.ReferenceError {
	var out []*errors.ReferenceError
	check := func(p *records.Product, field, ref string, ix records.Index) {
		ref = strings.TrimSpace(ref)
		if ix == nil || ref == "" || ix.Contains(ref) {
			return
		}
		out = append(out, errors.NewReferenceError(errors.RefDangling, "product", p.Key(), field, ref))
	}
	for _, p := range products {
		if p == nil {
			continue
		}
		check(p, records.FieldCategoryID, p.CategoryID, refs.Categories)
		for _, c := range p.Categories {
			if c != p.CategoryID {
				check(p, records.FieldCategories, c, refs.Categories)
			}
		}
		check(p, records.FieldBrandID, p.BrandID, refs.Brands)
		check(p, records.FieldSupplierID, p.SupplierID, refs.Suppliers)
	}
	return out
}

// Result collects every finding of Check.
type Result struct {
	Products   []*records.Product
	MetaData   []MetaRepair
	Collisions []Collision
	Dangling   []*errors.ReferenceError
}

// Changed reports whether any product was repaired.
func (r *Result) Changed() bool {
	return len(r.MetaData) > 0
}

// Check repairs meta_data and reports collisions and dangling references.
// The input is not modified.
func Check(products []*records.Product, refs References) *Result {
	fixed, meta := RepairMetaData(products)
	return &Result{
		Products:   fixed,
		MetaData:   meta,
		Collisions: WooIDCollisions(fixed),
		Dangling:   DanglingReferences(fixed, refs),
	}
}
