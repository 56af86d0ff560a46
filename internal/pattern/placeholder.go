package pattern

import "strings"

// DefaultPlaceholderNames are product names that carry no information.
var DefaultPlaceholderNames = []string{
	"sans nom",
	"produit sans nom",
	"nouveau produit",
	"produit",
	"unnamed",
	"untitled",
	"no name",
	"new product",
	"n/a",
	"na",
	"none",
	"null",
	"undefined",
	"test",
	`^[-_.?0\s]*$`,
}

// DefaultPlaceholderSKUs are SKU values that carry no information.
var DefaultPlaceholderSKUs = []string{
	"n/a",
	"na",
	"none",
	"null",
	"undefined",
	"sku",
	"tmp-*",
	"temp-*",
	`^[-_.?0\s]*$`,
}

// Placeholders recognizes placeholder values. Inputs are trimmed and
// inner whitespace is collapsed before matching; matching ignores case.
type Placeholders struct {
	set *Set
}

// NewPlaceholders compiles patterns, detecting glob or regex per pattern.
func NewPlaceholders(patterns []string) (*Placeholders, error) {
	set, err := NewSet(patterns, Auto, &Options{CaseInsensitive: true, Anchored: true})
	if err != nil {
		return nil, err
	}
	return &Placeholders{set: set}, nil
}

// MustPlaceholders is NewPlaceholders for known-good pattern lists.
func MustPlaceholders(patterns []string) *Placeholders {
	p, err := NewPlaceholders(patterns)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether value is a placeholder. The empty string is not a
// placeholder; callers treat it as missing.
func (p *Placeholders) Match(value string) bool {
	if p == nil {
		return false
	}
	v := strings.Join(strings.Fields(value), " ")
	if v == "" {
		return false
	}
	return p.set.Match(v)
}

// Patterns returns the configured patterns.
func (p *Placeholders) Patterns() []string {
	if p == nil {
		return nil
	}
	return p.set.Patterns()
}
