// Package scorer assigns a quality score to a product record. The score
// ranks duplicates: a higher score means a more complete and more
// trustworthy record. Scoring is pure and total; a missing field simply
// contributes its default.
package scorer

import (
	"strings"

	"github.com/5sensprod/possync/pkg/keys"
	"github.com/5sensprod/possync/pkg/records"
)

// Criterion names, as they appear in breakdowns and reports.
const (
	CriterionName         = "name"
	CriterionSKU          = "sku"
	CriterionIdentityCode = "identity_code"
	CriterionDescription  = "description"
	CriterionPrice        = "price"
	CriterionStock        = "stock"
	CriterionBrand        = "brand"
	CriterionCategory     = "category"
	CriterionSupplier     = "supplier"
	CriterionImage        = "image"
	CriterionGallery      = "gallery"
	CriterionTotalSold    = "total_sold"
	CriterionRevenue      = "revenue_total"
	CriterionSalesCount   = "sales_count"
	CriterionWooID        = "woo_id"
	CriterionLastSync     = "last_sync"
	CriterionDraft        = "draft_penalty"
	CriterionBadName      = "name_penalty"
	CriterionBadSKU       = "sku_penalty"
)

// Weights of the rubric.
const (
	WeightName         = 10
	WeightSKU          = 10
	WeightIdentityCode = 15
	WeightDescription  = 5
	WeightPrice        = 10
	WeightStock        = 8
	WeightBrand        = 5
	WeightCategory     = 5
	WeightSupplier     = 3
	WeightImage        = 7
	WeightGallery      = 3
	WeightTotalSold    = 15
	WeightRevenue      = 10
	WeightSalesCount   = 5
	WeightWooID        = 5
	WeightLastSync     = 3
	PenaltyDraft       = -5
	PenaltyName        = -10
	PenaltySKU         = -8
)

// Contribution is the points one criterion added or removed.
type Contribution struct {
	Criterion string `json:"criterion"`
	Points    int    `json:"points"`
}

// Breakdown explains a score.
type Breakdown struct {
	Contributions []Contribution `json:"contributions"`
	Raw           int            `json:"raw"`
	Total         int            `json:"total"` // Raw floored at 0
}

// Scorer scores products against an optional reference index.
type Scorer struct {
	opts *Options
}

// New creates a Scorer.
func New(opts ...Option) *Scorer {
	return &Scorer{opts: Defaults().Apply(opts...)}
}

// With returns a copy of s with opts applied on top of its options.
func (s *Scorer) With(opts ...Option) *Scorer {
	o := *s.opts
	return &Scorer{opts: o.Apply(opts...)}
}

var defaultScorer = New()

// Score scores p with the default scorer (no reference index).
func Score(p *records.Product) int {
	return defaultScorer.Score(p)
}

// Score returns the floored total for p.
func (s *Scorer) Score(p *records.Product) int {
	return s.Breakdown(p).Total
}

// Breakdown returns every non-zero contribution for p, in rubric order.
func (s *Scorer) Breakdown(p *records.Product) Breakdown {
	if p == nil {
		p = &records.Product{}
	}
	var b Breakdown
	add := func(criterion string, points int, when bool) {
		if !when {
			return
		}
		b.Contributions = append(b.Contributions, Contribution{Criterion: criterion, Points: points})
		b.Raw += points
	}

	name := strings.TrimSpace(p.Name)
	sku := strings.TrimSpace(p.SKU)
	validName := name != "" && !s.opts.Names.Match(name)
	validSKU := sku != "" && !s.opts.SKUs.Match(sku)

	add(CriterionName, WeightName, name != "")
	add(CriterionSKU, WeightSKU, validSKU)
	add(CriterionIdentityCode, WeightIdentityCode, keys.ExtractIdentityCode(p) != "")
	add(CriterionDescription, WeightDescription, strings.TrimSpace(p.Description) != "")
	add(CriterionPrice, WeightPrice, p.Price > 0)
	add(CriterionStock, WeightStock, p.Stock > 0)
	add(CriterionBrand, WeightBrand, resolved(p.BrandID, s.opts.Brands))
	add(CriterionCategory, WeightCategory, resolved(primaryCategory(p), s.opts.Categories))
	add(CriterionSupplier, WeightSupplier, resolved(p.SupplierID, s.opts.Suppliers))
	add(CriterionImage, WeightImage, p.Image != nil && (p.Image.LocalPath != "" || p.Image.Src != ""))
	add(CriterionGallery, WeightGallery, len(p.GalleryImages) > 0)

	add(CriterionTotalSold, WeightTotalSold, p.TotalSold > 0)
	add(CriterionRevenue, WeightRevenue, p.RevenueTotal > 0)
	add(CriterionSalesCount, WeightSalesCount, p.SalesCount > 0)

	add(CriterionWooID, WeightWooID, p.WooID != nil)
	add(CriterionLastSync, WeightLastSync, p.LastSync != nil)

	add(CriterionDraft, PenaltyDraft, strings.EqualFold(strings.TrimSpace(p.Status), records.StatusDraft))
	add(CriterionBadName, PenaltyName, !validName)
	add(CriterionBadSKU, PenaltySKU, !validSKU)

	b.Total = max(b.Raw, 0)
	return b
}

// primaryCategory is category_id, or the first entry of categories.
func primaryCategory(p *records.Product) string {
	if id := strings.TrimSpace(p.CategoryID); id != "" {
		return id
	}
	for _, id := range p.Categories {
		if id = strings.TrimSpace(id); id != "" {
			return id
		}
	}
	return ""
}

// resolved: the id is set and, when an index is configured, present in it.
func resolved(id string, index records.Index) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	if index == nil {
		return true
	}
	return index.Contains(id)
}

// Placeholder reports whether name is a placeholder under this scorer.
func (s *Scorer) Placeholder(name string) bool {
	return s.opts.Names.Match(name)
}

// Options returns the scorer's configuration.
func (s *Scorer) Options() Options {
	return *s.opts
}

