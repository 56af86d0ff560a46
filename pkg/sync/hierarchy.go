package sync

import (
	"context"

	"github.com/5sensprod/possync/pkg/errors"
	"github.com/5sensprod/possync/pkg/hierarchy"
	"github.com/5sensprod/possync/pkg/report"
)

// Report counters written by Hierarchy.
const (
	StatCategories         = "categories"
	StatLevelsChanged      = "levels_changed"
	StatCircularReferences = "circular_references"
	StatMissingParents     = "missing_parents"
)

// Hierarchy recomputes category levels and saves the ones that changed.
// Loops and absent parents are reported, never fatal.
func (e *Engine) Hierarchy(ctx context.Context) (*Result, error) {
	r := e.begin(ctx, report.OperationHierarchy)
	stats := r.result.Stats

	cats, err := load(r, e.categories, "categories", e.cfg.CategoriesPath)
	if err != nil {
		return e.finish(r, err)
	}
	stats[StatCategories] = len(cats.Records)
	stats[StatSkippedLines] = cats.Skipped
	r.to(StateLoaded)

	built := hierarchy.Build(cats.Records)
	stats[StatLevelsChanged] = len(built.Changed)
	stats[StatCircularReferences] = built.Circular()
	stats[StatMissingParents] = built.MissingParents()

	for _, w := range built.Warnings {
		r.warn("%s", w.Error())
		d := map[string]any{"type": w.Kind, "id": w.ID}
		if w.Kind == errors.RefCircular {
			d["chain"] = w.Chain
		} else {
			d["parent_id"] = w.Ref
		}
		r.detail(d)
	}
	for _, id := range built.Changed {
		c, _ := built.Get(id)
		level := 0
		if c != nil {
			level = c.Level
		}
		r.detail(map[string]any{"type": "level", "id": id, "level": level})
	}
	r.to(StateDecided)

	return e.finish(r, conclude(r, e.categories, e.cfg.CategoriesPath, built.Categories, len(built.Changed) > 0))
}

// Tree loads categories and returns the built hierarchy without writing.
func (e *Engine) Tree(ctx context.Context) (*hierarchy.Result, error) {
	r := e.begin(ctx, report.OperationHierarchy)
	cats, err := load(r, e.categories, "categories", e.cfg.CategoriesPath)
	if err != nil {
		return nil, err
	}
	return hierarchy.Build(cats.Records), nil
}
