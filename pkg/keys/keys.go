// Package keys derives identity keys from product records.
//
// A product's barcode may live in one of four direct fields or inside its
// meta_data list under one of four key names. Every caller that needs an
// identity code goes through ExtractIdentityCode so the lookup order is
// defined once.
package keys

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/5sensprod/possync/pkg/records"
)

// IdentityMetaKeys are the meta_data keys that may hold an identity code.
var IdentityMetaKeys = []string{"barcode", "gencode", "ean", "upc"}

var identityMetaKey = func() map[string]bool {
	m := make(map[string]bool, len(IdentityMetaKeys))
	for _, k := range IdentityMetaKeys {
		m[k] = true
	}
	return m
}()

var lower = cases.Lower(language.Und)

// ExtractIdentityCode returns the product's barcode-like code, trimmed.
// Direct fields are checked first (gencode, barcode, ean, upc), then the
// first meta_data entry, in list order, keyed by one of IdentityMetaKeys.
// It returns "" when nothing is found, including for a nil product.
func ExtractIdentityCode(p *records.Product) string {
	if p == nil {
		return ""
	}
	for _, v := range []string{p.Gencode, p.Barcode, p.EAN, p.UPC} {
		if code := strings.TrimSpace(v); code != "" {
			return code
		}
	}
	for _, m := range p.MetaData {
		if !identityMetaKey[strings.TrimSpace(m.Key)] || m.Value == nil {
			continue
		}
		if code := strings.TrimSpace(metaString(m.Value)); code != "" {
			return code
		}
	}
	return ""
}

// metaString renders a meta value; non-scalar values yield "".
func metaString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		// Barcodes decoded as float64 must not use exponent notation.
		return strconv.FormatFloat(x, 'f', -1, 64)
	case map[string]any, []any:
		return ""
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return ""
		}
		return s
	}
}

// NormalizeName lower-cases a name and collapses its whitespace.
func NormalizeName(name string) string {
	return lower.String(strings.Join(strings.Fields(name), " "))
}

// MatchKey is the derived identity of a product.
type MatchKey struct {
	SKU            string
	IdentityCode   string
	NormalizedName string
	Composite      string
}

// ExtractMatchKey combines SKU, identity code and name. Composite is
// lower("sku_identitycode_name") and is empty when all three are empty.
func ExtractMatchKey(p *records.Product) MatchKey {
	if p == nil {
		return MatchKey{}
	}
	k := MatchKey{
		SKU:            strings.TrimSpace(p.SKU),
		IdentityCode:   ExtractIdentityCode(p),
		NormalizedName: NormalizeName(p.Name),
	}
	if k.SKU != "" || k.IdentityCode != "" || k.NormalizedName != "" {
		k.Composite = lower.String(k.SKU + "_" + k.IdentityCode + "_" + k.NormalizedName)
	}
	return k
}

// Candidate reports whether two keys may denote the same product: any of
// identity code, SKU or composite is equal and non-empty.
func (k MatchKey) Candidate(other MatchKey) bool {
	return (k.IdentityCode != "" && k.IdentityCode == other.IdentityCode) ||
		(k.SKU != "" && k.SKU == other.SKU) ||
		(k.Composite != "" && k.Composite == other.Composite)
}

// Empty reports whether no part of the key is set.
func (k MatchKey) Empty() bool {
	return k.Composite == ""
}
