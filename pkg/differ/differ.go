// Package differ compares product records field by field and assembles
// the resulting changes into a changeset.
package differ

import (
	"bytes"
	"reflect"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cast"

	"github.com/5sensprod/possync/pkg/records"
)

// Kind is the normalization applied to a field before comparison.
type Kind int

// Field kinds.
const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindArray
	KindJSON
)

var kinds = map[string]Kind{
	records.FieldStock:         KindInt,
	records.FieldMinStock:      KindInt,
	records.FieldTotalSold:     KindInt,
	records.FieldSalesCount:    KindInt,
	records.FieldPrice:         KindFloat,
	records.FieldPurchasePrice: KindFloat,
	records.FieldRevenueTotal:  KindFloat,
	records.FieldManageStock:   KindBool,
	records.FieldPendingSync:   KindBool,
	records.FieldCategories:    KindArray,
	records.FieldGalleryImages: KindArray,
	records.FieldMetaData:      KindArray,
	records.FieldWooID:         KindJSON,
	records.FieldLastSync:      KindJSON,
	records.FieldImage:         KindJSON,
}

var known = map[string]bool{
	records.FieldName: true, records.FieldSKU: true, records.FieldDescription: true,
	records.FieldStatus: true, records.FieldCategoryID: true, records.FieldBrandID: true,
	records.FieldSupplierID: true, records.FieldGencode: true, records.FieldBarcode: true,
	records.FieldEAN: true, records.FieldUPC: true, records.FieldID: true,
}

// KindOf returns the kind of a field. Fields the record model does not
// know are compared as normalized JSON.
func KindOf(field string) Kind {
	if k, ok := kinds[field]; ok {
		return k
	}
	if known[field] {
		return KindString
	}
	return KindJSON
}

// DefaultFields are compared when a caller does not name fields.
var DefaultFields = []string{
	records.FieldName,
	records.FieldSKU,
	records.FieldDescription,
	records.FieldPrice,
	records.FieldPurchasePrice,
	records.FieldStock,
	records.FieldMinStock,
	records.FieldStatus,
	records.FieldManageStock,
	records.FieldCategoryID,
	records.FieldCategories,
	records.FieldBrandID,
	records.FieldSupplierID,
	records.FieldGencode,
	records.FieldBarcode,
}

// Diff is one field that differs between two records. Values are the
// normalized values that were compared.
type Diff struct {
	Field       string `json:"field"`
	LocalValue  any    `json:"local_value"`
	RemoteValue any    `json:"remote_value"`
}

// Differ compares records.
type Differ struct {
	opts *Options
}

// New creates a Differ.
func New(opts ...Option) *Differ {
	return &Differ{opts: Defaults().Apply(opts...)}
}

// DiffProducts compares a and b over fields with default options.
func DiffProducts(a, b *records.Product, fields []string) []Diff {
	return New().Diff(a, b, fields)
}

// Diff returns the fields that differ, in the order given. A nil or
// empty fields list selects DefaultFields.
func (d *Differ) Diff(a, b *records.Product, fields []string) []Diff {
	if len(fields) == 0 {
		fields = DefaultFields
	}
	var out []Diff
	for _, field := range fields {
		if d.opts.Ignore[field] {
			continue
		}
		if d.opts.Absence == AbsentAsUnknown && (!a.Has(field) || !b.Has(field)) {
			continue
		}
		av, _ := a.Field(field)
		bv, _ := b.Field(field)
		kind := KindOf(field)
		an, bn := normalize(kind, av), normalize(kind, bv)
		if !equal(kind, an, bn) {
			out = append(out, Diff{Field: field, LocalValue: an, RemoteValue: bn})
		}
	}
	return out
}

// Equal reports whether a and b agree on every field.
func (d *Differ) Equal(a, b *records.Product, fields []string) bool {
	return len(d.Diff(a, b, fields)) == 0
}

func normalize(kind Kind, v any) any {
	switch kind {
	case KindInt:
		return cast.ToInt(v)
	case KindFloat:
		return cast.ToFloat64(v)
	case KindBool:
		return cast.ToBool(v)
	case KindString:
		return strings.TrimSpace(cast.ToString(v))
	case KindArray:
		if v == nil {
			return nil
		}
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice && rv.Len() == 0 {
			return nil
		}
		return v
	default:
		return v
	}
}

func equal(kind Kind, a, b any) bool {
	switch kind {
	case KindArray, KindJSON:
		return bytes.Equal(canonical(a), canonical(b))
	default:
		return a == b
	}
}

// canonical serializes a value for content comparison. Maps are encoded
// with sorted keys.
func canonical(v any) []byte {
	if v == nil {
		return []byte("null")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return []byte(cast.ToString(v))
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return raw
	}
	out, err := json.Marshal(generic)
	if err != nil {
		return raw
	}
	return out
}
