package records

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cast"
)

// Product field names as they appear on disk.
const (
	FieldID            = "id"
	FieldName          = "name"
	FieldSKU           = "sku"
	FieldDescription   = "description"
	FieldPrice         = "price"
	FieldPurchasePrice = "purchase_price"
	FieldStock         = "stock"
	FieldMinStock      = "min_stock"
	FieldStatus        = "status"
	FieldManageStock   = "manage_stock"
	FieldCategoryID    = "category_id"
	FieldCategories    = "categories"
	FieldBrandID       = "brand_id"
	FieldSupplierID    = "supplier_id"
	FieldGencode       = "gencode"
	FieldBarcode       = "barcode"
	FieldEAN           = "ean"
	FieldUPC           = "upc"
	FieldMetaData      = "meta_data"
	FieldWooID         = "woo_id"
	FieldLastSync      = "last_sync"
	FieldPendingSync   = "pending_sync"
	FieldImage         = "image"
	FieldGalleryImages = "gallery_images"
	FieldTotalSold     = "total_sold"
	FieldSalesCount    = "sales_count"
	FieldRevenueTotal  = "revenue_total"
)

// Field returns the value held under a field name. Known fields come back
// with their Go type; unknown fields are decoded from Extra. The boolean is
// false only when the name is neither known nor present in Extra.
func (p *Product) Field(name string) (any, bool) {
	if p == nil {
		return nil, false
	}
	switch name {
	case FieldID, "_id":
		return p.ID, true
	case FieldName:
		return p.Name, true
	case FieldSKU:
		return p.SKU, true
	case FieldDescription:
		return p.Description, true
	case FieldPrice:
		return p.Price, true
	case FieldPurchasePrice:
		return p.PurchasePrice, true
	case FieldStock:
		return p.Stock, true
	case FieldMinStock:
		return p.MinStock, true
	case FieldStatus:
		return p.Status, true
	case FieldManageStock:
		return p.ManageStock, true
	case FieldCategoryID:
		return p.CategoryID, true
	case FieldCategories:
		return p.Categories, true
	case FieldBrandID:
		return p.BrandID, true
	case FieldSupplierID:
		return p.SupplierID, true
	case FieldGencode:
		return p.Gencode, true
	case FieldBarcode:
		return p.Barcode, true
	case FieldEAN:
		return p.EAN, true
	case FieldUPC:
		return p.UPC, true
	case FieldMetaData:
		return p.MetaData, true
	case FieldWooID:
		if p.WooID == nil {
			return nil, true
		}
		return *p.WooID, true
	case FieldLastSync:
		if p.LastSync == nil {
			return nil, true
		}
		return *p.LastSync, true
	case FieldPendingSync:
		return p.PendingSync, true
	case FieldImage:
		if p.Image == nil {
			return nil, true
		}
		return *p.Image, true
	case FieldGalleryImages:
		return p.GalleryImages, true
	case FieldTotalSold:
		return p.TotalSold, true
	case FieldSalesCount:
		return p.SalesCount, true
	case FieldRevenueTotal:
		return p.RevenueTotal, true
	}

	raw, ok := p.Extra[name]
	if !ok {
		return nil, false
	}
	v, err := decodeAny(raw)
	if err != nil {
		return string(raw), true
	}
	return v, true
}

// Has reports whether a field carries a value. For decoded records this is
// whether the key was present and non-null; for records built in code it
// falls back to a non-zero check.
func (p *Product) Has(name string) bool {
	if p == nil {
		return false
	}
	if name == FieldID || name == "_id" {
		return p.ID != ""
	}
	if _, extra := p.Extra[name]; extra {
		return true
	}
	if p.state != nil {
		if p.stateOf(name) == stateValue {
			return true
		}
	}
	v, ok := p.Field(name)
	return ok && !isZero(v)
}

// SetField assigns a value to a field, converting it to the field's type.
func (p *Product) SetField(name string, value any) error {
	var err error
	switch name {
	case FieldID, "_id":
		p.ID, err = cast.ToStringE(value)
	case FieldName:
		p.Name, err = cast.ToStringE(value)
	case FieldSKU:
		p.SKU, err = cast.ToStringE(value)
	case FieldDescription:
		p.Description, err = cast.ToStringE(value)
	case FieldPrice:
		p.Price, err = cast.ToFloat64E(value)
	case FieldPurchasePrice:
		p.PurchasePrice, err = cast.ToFloat64E(value)
	case FieldStock:
		p.Stock, err = cast.ToIntE(value)
	case FieldMinStock:
		p.MinStock, err = cast.ToIntE(value)
	case FieldStatus:
		p.Status, err = cast.ToStringE(value)
	case FieldManageStock:
		p.ManageStock, err = cast.ToBoolE(value)
	case FieldCategoryID:
		p.CategoryID, err = cast.ToStringE(value)
	case FieldCategories:
		if value == nil {
			p.Categories = nil
			break
		}
		p.Categories, err = cast.ToStringSliceE(value)
	case FieldBrandID:
		p.BrandID, err = cast.ToStringE(value)
	case FieldSupplierID:
		p.SupplierID, err = cast.ToStringE(value)
	case FieldGencode:
		p.Gencode, err = cast.ToStringE(value)
	case FieldBarcode:
		p.Barcode, err = cast.ToStringE(value)
	case FieldEAN:
		p.EAN, err = cast.ToStringE(value)
	case FieldUPC:
		p.UPC, err = cast.ToStringE(value)
	case FieldPendingSync:
		p.PendingSync, err = cast.ToBoolE(value)
	case FieldTotalSold:
		p.TotalSold, err = cast.ToIntE(value)
	case FieldSalesCount:
		p.SalesCount, err = cast.ToIntE(value)
	case FieldRevenueTotal:
		p.RevenueTotal, err = cast.ToFloat64E(value)
	case FieldWooID:
		if value == nil {
			p.WooID = nil
			break
		}
		var n int64
		n, err = cast.ToInt64E(value)
		p.WooID = &n
	case FieldLastSync:
		if value == nil {
			p.LastSync = nil
			break
		}
		var ts time.Time
		ts, err = cast.ToTimeE(value)
		p.LastSync = &ts
	case FieldMetaData:
		err = assignJSON(value, &p.MetaData)
	case FieldImage:
		if value == nil {
			p.Image = nil
			break
		}
		var img Image
		err = assignJSON(value, &img)
		p.Image = &img
	case FieldGalleryImages:
		err = assignJSON(value, &p.GalleryImages)
	default:
		raw, merr := json.Marshal(value)
		if merr != nil {
			return fmt.Errorf("field %s: %w", name, merr)
		}
		if p.Extra == nil {
			p.Extra = make(map[string]json.RawMessage)
		}
		p.Extra[name] = raw
		return nil
	}
	if err != nil {
		return fmt.Errorf("field %s: %w", name, err)
	}
	p.mark(name, stateValue)
	return nil
}

// assignJSON converts structured values by round-tripping through JSON.
func assignJSON(value, dst any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func isZero(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case int:
		return x == 0
	case int64:
		return x == 0
	case float64:
		return x == 0
	case bool:
		return !x
	case []string:
		return len(x) == 0
	case []Image:
		return len(x) == 0
	case []MetaData:
		return len(x) == 0
	default:
		return false
	}
}
