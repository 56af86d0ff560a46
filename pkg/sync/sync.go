package sync

import (
	"context"

	"github.com/5sensprod/possync/pkg/differ"
	"github.com/5sensprod/possync/pkg/errors"
	"github.com/5sensprod/possync/pkg/logging"
	"github.com/5sensprod/possync/pkg/matcher"
	"github.com/5sensprod/possync/pkg/records"
	"github.com/5sensprod/possync/pkg/report"
	"github.com/5sensprod/possync/pkg/repair"
	"github.com/5sensprod/possync/pkg/resolver"
	"github.com/5sensprod/possync/pkg/store"
)

// Report counters written by Sync.
const (
	StatProductsLocal      = "products_local"
	StatProductsSource     = "products_source"
	StatMatched            = "matched"
	StatUnmatchedLocal     = "unmatched_local"
	StatUnmatchedSource    = "unmatched_source"
	StatCorrectionsFound   = "corrections_found"
	StatRecordsUpdated     = "records_updated"
	StatDuplicatesResolved = "duplicates_resolved"
	StatRecordsRemoved     = "records_removed"
	StatRecordsAdded       = "records_added"
	StatSkippedLines       = "skipped_lines"
	StatWooIDCollisions    = "woo_id_collisions"
)

// Sync reconciles the local store against the source snapshot. The source
// value wins on every compared field; unmatched source records are added;
// duplicates left in the result are resolved per scope.
func (e *Engine) Sync(ctx context.Context) (*Result, error) {
	r := e.begin(ctx, report.OperationSync)

	final, changed, err := e.planSync(r)
	if err != nil {
		return e.finish(r, err)
	}
	return e.finish(r, conclude(r, e.products, e.cfg.LocalPath, final, changed))
}

// planSync runs the loaded, matched and decided phases.
func (e *Engine) planSync(r *run) ([]*records.Product, bool, error) {
	log := logging.FromContext(r.ctx)
	stats := r.result.Stats

	// Step 1: load both sides; the local side may be empty on reset
	source, err := load(r, e.products, "source", e.cfg.SourcePath)
	if err != nil {
		return nil, false, err
	}
	local, err := e.loadLocal(r)
	if err != nil {
		return nil, false, err
	}
	rsv, err := e.resolverFor(r)
	if err != nil {
		return nil, false, err
	}
	stats[StatProductsLocal] = len(local.Records)
	stats[StatProductsSource] = len(source.Records)
	stats[StatSkippedLines] = local.Skipped + source.Skipped
	r.to(StateLoaded)

	// Step 2: match local against the source
	working := local.Records
	if e.opts.Reset {
		working = nil
	}
	var matchOpts []matcher.Option
	if e.opts.NameFallback {
		matchOpts = append(matchOpts, matcher.WithNameFallback())
	}
	match := matcher.Match(working, source.Records, matchOpts...)
	stats[StatMatched] = len(match.Pairs)
	stats[StatUnmatchedLocal] = len(match.UnmatchedA)
	stats[StatUnmatchedSource] = len(match.UnmatchedB)
	r.to(StateMatched)
	log.Info().
		Int("matched", len(match.Pairs)).
		Int("unmatched_local", len(match.UnmatchedA)).
		Int("unmatched_source", len(match.UnmatchedB)).
		Msg("Collections matched")

	if err := r.check(); err != nil {
		return nil, false, err
	}

	// Step 3: diff pairs, then filter by strategy
	found := e.differ.Changeset(match, e.opts.Fields, nil)
	applied := found.Filter(e.opts.Strategy)
	stats[StatCorrectionsFound] = found.Summary.FieldChanges

	final, err := applyChangeset(working, applied)
	if err != nil {
		return nil, false, err
	}
	stats[StatRecordsUpdated] = len(applied.Updated)
	stats[StatRecordsAdded] = len(applied.Added)

	// Step 4: resolve duplicates over the projected collection
	decisions := rsv.Resolve(final, e.opts.Scope)
	var removed []*records.Product
	if e.opts.Strategy == differ.ApplyAll && len(decisions) > 0 {
		drop := resolver.RemovedSet(decisions)
		for i, p := range final {
			if drop[i] {
				removed = append(removed, p)
			}
		}
		final = resolver.Apply(final, decisions)
	}
	stats[StatDuplicatesResolved] = len(decisions)
	stats[StatRecordsRemoved] = len(removed)
	if e.opts.Reset {
		stats[StatRecordsRemoved] += len(local.Records)
	}

	// Step 5: collisions are reported, not fixed
	collisions := repair.WooIDCollisions(final)
	stats[StatWooIDCollisions] = len(collisions)
	for _, c := range collisions {
		r.warn("woo_id %d is shared by %d products", c.WooID, len(c.IDs))
		r.detail(map[string]any{"type": "woo_id_collision", "woo_id": c.WooID, "ids": c.IDs})
	}

	r.result.Changeset = differ.NewChangeset(applied.Updated, applied.Added, removed)
	r.result.Decisions = decisions
	syncDetails(r, applied, decisions)
	r.to(StateDecided)

	changed := len(applied.Updated) > 0 || len(applied.Added) > 0 || len(removed) > 0 ||
		(e.opts.Reset && len(local.Records) > 0)
	log.Info().
		Int("corrections", found.Summary.FieldChanges).
		Int("duplicates", len(decisions)).
		Bool("changed", changed).
		Msg("Decisions made")
	return final, changed, nil
}

func (e *Engine) loadLocal(r *run) (*store.LoadResult[records.Product], error) {
	if !e.opts.Reset {
		return load(r, e.products, "local", e.cfg.LocalPath)
	}
	if e.cfg.LocalPath == "" {
		return nil, &errors.ValidationError{Field: "local_path", Message: "path is required"}
	}
	return e.products.Load(e.cfg.LocalPath)
}

// applyChangeset projects the changeset onto a copy of local. Updated
// records are cloned; records that already have a woo_id are flagged
// pending_sync so the next push carries the change.
func applyChangeset(local []*records.Product, cs *differ.Changeset) ([]*records.Product, error) {
	index := make(map[*records.Product]int, len(local))
	for i, p := range local {
		index[p] = i
	}

	out := make([]*records.Product, len(local), len(local)+len(cs.Added))
	copy(out, local)
	for _, u := range cs.Updated {
		i, ok := index[u.Local]
		if !ok {
			continue
		}
		cp := out[i].Clone()
		for _, d := range u.Changes {
			if err := cp.SetField(d.Field, d.RemoteValue); err != nil {
				return nil, errors.WrapResource("apply", "product", u.ID, err)
			}
		}
		if cp.WooID != nil && !cp.PendingSync {
			_ = cp.SetField(records.FieldPendingSync, true)
		}
		out[i] = cp
	}
	for _, p := range cs.Added {
		out = append(out, p.Clone())
	}
	return out, nil
}

func syncDetails(r *run, cs *differ.Changeset, decisions []resolver.Decision) {
	for _, u := range cs.Updated {
		for _, d := range u.Changes {
			r.detail(map[string]any{
				"type":         "correction",
				"id":           u.ID,
				"matched_by":   string(u.By),
				"field":        d.Field,
				"local_value":  d.LocalValue,
				"remote_value": d.RemoteValue,
			})
		}
	}
	for _, p := range cs.Added {
		r.detail(map[string]any{"type": "addition", "id": p.Key(), "name": p.Name, "sku": p.SKU})
	}
	for _, d := range decisions {
		r.detail(decisionDetail(d))
	}
}

func decisionDetail(d resolver.Decision) map[string]any {
	remove := make([]string, len(d.Remove))
	for i, ref := range d.Remove {
		remove[i] = ref.ID
	}
	return map[string]any{
		"type":      "duplicate",
		"key":       d.Key,
		"keep":      d.Keep.ID,
		"remove":    remove,
		"reason":    d.Reason,
		"criterion": string(d.Criterion),
	}
}

// Compare loads both sides and returns the full changeset without
// deciding or writing anything. Local records absent from the source are
// listed as removals.
func (e *Engine) Compare(ctx context.Context) (*differ.Changeset, error) {
	r := e.begin(ctx, "diff")
	local, err := load(r, e.products, "local", e.cfg.LocalPath)
	if err != nil {
		return nil, err
	}
	source, err := load(r, e.products, "source", e.cfg.SourcePath)
	if err != nil {
		return nil, err
	}
	var matchOpts []matcher.Option
	if e.opts.NameFallback {
		matchOpts = append(matchOpts, matcher.WithNameFallback())
	}
	match := matcher.Match(local.Records, source.Records, matchOpts...)
	return e.differ.Changeset(match, e.opts.Fields, match.UnmatchedA), nil
}
