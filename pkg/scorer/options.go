package scorer

import (
	"github.com/5sensprod/possync/internal/pattern"
	"github.com/5sensprod/possync/pkg/records"
)

// Options configures a Scorer.
type Options struct {
	Names *pattern.Placeholders
	SKUs  *pattern.Placeholders

	// Reference indexes. A nil index means "not configured": any non-empty
	// id then counts as resolved.
	Brands     records.Index
	Categories records.Index
	Suppliers  records.Index
}

// Option is a function that configures scorer Options.
type Option func(*Options)

// Defaults returns options with the default placeholder lists and no
// reference indexes.
func Defaults() *Options {
	return &Options{
		Names: pattern.MustPlaceholders(pattern.DefaultPlaceholderNames),
		SKUs:  pattern.MustPlaceholders(pattern.DefaultPlaceholderSKUs),
	}
}

// Apply applies the given options.
func (o *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithPlaceholderNames replaces the placeholder name patterns.
func WithPlaceholderNames(p *pattern.Placeholders) Option {
	return func(o *Options) {
		if p != nil {
			o.Names = p
		}
	}
}

// WithPlaceholderSKUs replaces the placeholder SKU patterns.
func WithPlaceholderSKUs(p *pattern.Placeholders) Option {
	return func(o *Options) {
		if p != nil {
			o.SKUs = p
		}
	}
}

// WithBrands sets the brand reference index.
func WithBrands(ix records.Index) Option {
	return func(o *Options) {
		o.Brands = ix
	}
}

// WithCategories sets the category reference index.
func WithCategories(ix records.Index) Option {
	return func(o *Options) {
		o.Categories = ix
	}
}

// WithSuppliers sets the supplier reference index.
func WithSuppliers(ix records.Index) Option {
	return func(o *Options) {
		o.Suppliers = ix
	}
}
