package sync

import (
	"context"

	"github.com/5sensprod/possync/pkg/errors"
	"github.com/5sensprod/possync/pkg/logging"
	"github.com/5sensprod/possync/pkg/records"
	"github.com/5sensprod/possync/pkg/report"
)

// Report counters written by Pull and Push.
const (
	StatPulled  = "pulled"
	StatPending = "pending"
	StatPushed  = "pushed"
	StatFailed  = "failed"
)

// Remote is a remote catalog products can be fetched from and pushed to.
type Remote interface {
	// Name identifies the remote in logs and reports.
	Name() string
	// Products fetches every remote product.
	Products(ctx context.Context) ([]*records.Product, error)
	// PushProduct creates or updates p remotely and returns its remote id.
	PushProduct(ctx context.Context, p *records.Product) (int64, error)
}

// Pull fetches the remote catalog into an NDJSON snapshot at out, usable
// as a sync source. An existing snapshot is backed up first.
func (e *Engine) Pull(ctx context.Context, remote Remote, out string) (*Result, error) {
	r := e.begin(ctx, report.OperationPull)
	if out == "" {
		return e.finish(r, &errors.ValidationError{Field: "out", Message: "output path is required"})
	}

	products, err := remote.Products(r.ctx)
	if err != nil {
		return e.finish(r, err)
	}
	r.result.Stats[StatPulled] = len(products)
	r.to(StateLoaded)
	logging.FromContext(r.ctx).Info().
		Str("remote", remote.Name()).
		Int("products", len(products)).
		Msg("Remote catalog fetched")

	if len(products) == 0 {
		return e.finish(r, errors.NewEmptyCollectionError(remote.Name(), out))
	}
	r.to(StateDecided)
	return e.finish(r, conclude(r, e.products, out, products, true))
}

// Push sends every pending_sync product to the remote. Pushed products get
// their woo_id and last_sync set and pending_sync cleared. Products that
// fail stay pending and are reported; the successes are saved either way.
func (e *Engine) Push(ctx context.Context, remote Remote) (*Result, error) {
	r := e.begin(ctx, report.OperationPush)
	stats := r.result.Stats
	log := logging.FromContext(r.ctx)

	local, err := load(r, e.products, "local", e.cfg.LocalPath)
	if err != nil {
		return e.finish(r, err)
	}
	stats[StatSkippedLines] = local.Skipped
	r.to(StateLoaded)

	var pending []int
	for i, p := range local.Records {
		if p.PendingSync {
			pending = append(pending, i)
		}
	}
	stats[StatPending] = len(pending)
	stats[StatPushed] = 0
	stats[StatFailed] = 0

	if e.opts.DryRun {
		for _, i := range pending {
			p := local.Records[i]
			r.detail(map[string]any{"type": "pending", "id": p.Key(), "name": p.Name, "woo_id": p.WooID})
		}
		r.to(StateDecided)
		return e.finish(r, conclude(r, e.products, e.cfg.LocalPath, local.Records, false))
	}

	out := make([]*records.Product, len(local.Records))
	copy(out, local.Records)
	var interrupted error
	for _, i := range pending {
		if err := r.check(); err != nil {
			interrupted = err
			r.warn("push interrupted: %v", err)
			break
		}
		p := local.Records[i]
		wooID, err := remote.PushProduct(r.ctx, p)
		if err != nil {
			stats[StatFailed]++
			r.warn("push of %s failed: %v", p.Key(), err)
			r.detail(map[string]any{"type": "failed", "id": p.Key(), "error": err.Error()})
			if errors.IsCanceled(err) {
				interrupted = err
				break
			}
			continue
		}
		cp := p.Clone()
		_ = cp.SetField(records.FieldWooID, wooID)
		_ = cp.SetField(records.FieldLastSync, e.opts.Clock().UTC())
		_ = cp.SetField(records.FieldPendingSync, false)
		out[i] = cp
		stats[StatPushed]++
		r.detail(map[string]any{"type": "pushed", "id": p.Key(), "woo_id": wooID})
		log.Debug().Str("id", p.Key()).Int64("woo_id", wooID).Msg("Product pushed")
	}
	r.to(StateDecided)

	// successes are saved even when canceled
	if interrupted != nil {
		r.ctx = context.WithoutCancel(r.ctx)
	}
	if err := conclude(r, e.products, e.cfg.LocalPath, out, stats[StatPushed] > 0); err != nil {
		return e.finish(r, errors.Join(interrupted, err))
	}
	return e.finish(r, interrupted)
}
