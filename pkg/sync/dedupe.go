package sync

import (
	"context"

	"github.com/5sensprod/possync/pkg/differ"
	"github.com/5sensprod/possync/pkg/logging"
	"github.com/5sensprod/possync/pkg/records"
	"github.com/5sensprod/possync/pkg/report"
	"github.com/5sensprod/possync/pkg/resolver"
)

// Report counters written by Dedupe.
const (
	StatProducts        = "products"
	StatDuplicateGroups = "duplicate_groups"
)

// Dedupe resolves duplicates inside the local store only.
func (e *Engine) Dedupe(ctx context.Context) (*Result, error) {
	r := e.begin(ctx, report.OperationDedupe)
	stats := r.result.Stats

	local, err := load(r, e.products, "local", e.cfg.LocalPath)
	if err != nil {
		return e.finish(r, err)
	}
	rsv, err := e.resolverFor(r)
	if err != nil {
		return e.finish(r, err)
	}
	stats[StatProducts] = len(local.Records)
	stats[StatSkippedLines] = local.Skipped
	r.to(StateLoaded)

	groups := rsv.Group(local.Records, e.opts.Scope)
	stats[StatDuplicateGroups] = len(groups)
	r.to(StateMatched)

	decisions := rsv.Resolve(local.Records, e.opts.Scope)
	survivors := resolver.Apply(local.Records, decisions)
	stats[StatDuplicatesResolved] = len(decisions)
	stats[StatRecordsRemoved] = len(local.Records) - len(survivors)
	r.result.Decisions = decisions
	for _, d := range decisions {
		r.detail(decisionDetail(d))
	}
	r.to(StateDecided)

	var removed []*records.Product
	drop := resolver.RemovedSet(decisions)
	for i, p := range local.Records {
		if drop[i] {
			removed = append(removed, p)
		}
	}
	r.result.Changeset = differ.NewChangeset(nil, nil, removed)

	logging.FromContext(r.ctx).Info().
		Int("groups", len(groups)).
		Int("removed", len(removed)).
		Msg("Duplicates resolved")

	return e.finish(r, conclude(r, e.products, e.cfg.LocalPath, survivors, len(removed) > 0))
}
