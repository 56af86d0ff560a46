package sync

import (
	"context"

	"github.com/5sensprod/possync/pkg/records"
	"github.com/5sensprod/possync/pkg/report"
	"github.com/5sensprod/possync/pkg/repair"
)

// Report counters written by Repair.
const (
	StatMetaDataRepaired   = "meta_data_repaired"
	StatDanglingReferences = "dangling_references"
)

// Repair dedupes meta_data keys and reports woo_id collisions and
// references to categories, brands or suppliers that do not exist.
func (e *Engine) Repair(ctx context.Context) (*Result, error) {
	r := e.begin(ctx, report.OperationRepair)
	stats := r.result.Stats

	products, err := load(r, e.products, "products", e.cfg.LocalPath)
	if err != nil {
		return e.finish(r, err)
	}
	var refs repair.References
	if refs.Categories, err = loadIndex[records.Category](r, e.categories, "categories", e.cfg.CategoriesPath); err != nil {
		return e.finish(r, err)
	}
	if refs.Brands, err = loadIndex[records.Entity](r, e.entities, "brands", e.cfg.BrandsPath); err != nil {
		return e.finish(r, err)
	}
	if refs.Suppliers, err = loadIndex[records.Entity](r, e.entities, "suppliers", e.cfg.SuppliersPath); err != nil {
		return e.finish(r, err)
	}
	stats[StatProducts] = len(products.Records)
	stats[StatSkippedLines] = products.Skipped
	r.to(StateLoaded)

	res := repair.Check(products.Records, refs)
	stats[StatMetaDataRepaired] = len(res.MetaData)
	stats[StatWooIDCollisions] = len(res.Collisions)
	stats[StatDanglingReferences] = len(res.Dangling)

	for _, m := range res.MetaData {
		r.detail(map[string]any{"type": "meta_data", "id": m.ID, "keys": m.Keys, "dropped": m.Dropped})
	}
	for _, c := range res.Collisions {
		r.warn("woo_id %d is shared by %d products", c.WooID, len(c.IDs))
		r.detail(map[string]any{"type": "woo_id_collision", "woo_id": c.WooID, "ids": c.IDs})
	}
	for _, d := range res.Dangling {
		r.warn("%s", d.Error())
		r.detail(map[string]any{"type": d.Kind, "id": d.ID, "field": d.Field, "ref": d.Ref})
	}
	r.to(StateDecided)

	return e.finish(r, conclude(r, e.products, e.cfg.LocalPath, res.Products, res.Changed()))
}
