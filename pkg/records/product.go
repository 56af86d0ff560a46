// Package records defines the catalog record types exchanged between the
// local store, the source-of-truth snapshot and the remote catalog.
//
// Records are variant tolerant: ids may be stored under "_id" or "id",
// numbers may arrive as numeric strings, and keys the model does not know
// are carried through load and save untouched.
package records

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/5sensprod/possync/internal/utils/ptr"
)

// Product statuses.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// MetaData is one key/value entry of a product's meta_data list.
type MetaData struct {
	ID    any    `json:"id,omitempty"`
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Image references a product picture on disk and, once uploaded, remotely.
type Image struct {
	ID        any    `json:"id,omitempty"`
	LocalPath string `json:"local_path,omitempty"`
	Src       string `json:"src,omitempty"`
}

// Product is one sellable item.
type Product struct {
	ID            string
	Name          string
	SKU           string
	Description   string
	Price         float64
	PurchasePrice float64
	Stock         int
	MinStock      int
	Status        string
	ManageStock   bool

	CategoryID string
	Categories []string
	BrandID    string
	SupplierID string

	Gencode  string
	Barcode  string
	EAN      string
	UPC      string
	MetaData []MetaData

	WooID       *int64
	LastSync    *time.Time
	PendingSync bool

	Image         *Image
	GalleryImages []Image

	TotalSold    int
	SalesCount   int
	RevenueTotal float64

	// Extra holds keys this model does not know, verbatim.
	Extra map[string]json.RawMessage

	tracking
}

// UnmarshalJSON decodes a product line, tolerating legacy shapes.
func (p *Product) UnmarshalJSON(data []byte) error {
	*p = Product{}
	d, err := newFieldDecoder(data, &p.tracking)
	if err != nil {
		return err
	}

	d.id(&p.ID)
	d.take("name", stringInto(&p.Name))
	d.take("sku", stringInto(&p.SKU))
	d.take("description", stringInto(&p.Description))
	d.take("price", floatInto(&p.Price))
	d.take("purchase_price", floatInto(&p.PurchasePrice))
	d.take("stock", intInto(&p.Stock))
	d.take("min_stock", intInto(&p.MinStock))
	d.take("status", stringInto(&p.Status))
	d.take("manage_stock", boolInto(&p.ManageStock))
	d.take("category_id", stringInto(&p.CategoryID))
	d.take("categories", stringsInto(&p.Categories))
	d.take("brand_id", stringInto(&p.BrandID))
	d.take("supplier_id", stringInto(&p.SupplierID))
	d.take("gencode", stringInto(&p.Gencode))
	d.take("barcode", stringInto(&p.Barcode))
	d.take("ean", stringInto(&p.EAN))
	d.take("upc", stringInto(&p.UPC))
	d.take("meta_data", jsonInto(&p.MetaData))
	d.take("woo_id", wooIDInto(&p.WooID))
	d.take("last_sync", timeInto(&p.LastSync))
	d.take("pending_sync", boolInto(&p.PendingSync))
	d.take("image", jsonInto(&p.Image))
	d.take("gallery_images", jsonInto(&p.GalleryImages))
	d.take("total_sold", intInto(&p.TotalSold))
	d.take("sales_count", intInto(&p.SalesCount))
	d.take("revenue_total", floatInto(&p.RevenueTotal))

	p.Extra = d.rest()
	return nil
}

// MarshalJSON encodes the product as one JSON object, known keys first.
func (p Product) MarshalJSON() ([]byte, error) {
	t := &p.tracking
	e := newObjectEncoder()

	e.value(t.idField(), p.ID)
	e.known(t, "name", p.Name, p.Name == "")
	e.known(t, "sku", p.SKU, p.SKU == "")
	e.known(t, "description", p.Description, p.Description == "")
	e.known(t, "price", p.Price, p.Price == 0)
	e.known(t, "purchase_price", p.PurchasePrice, p.PurchasePrice == 0)
	e.known(t, "stock", p.Stock, p.Stock == 0)
	e.known(t, "min_stock", p.MinStock, p.MinStock == 0)
	e.known(t, "status", p.Status, p.Status == "")
	e.known(t, "manage_stock", p.ManageStock, !p.ManageStock)
	e.known(t, "category_id", p.CategoryID, p.CategoryID == "")
	e.known(t, "categories", p.Categories, p.Categories == nil)
	e.known(t, "brand_id", p.BrandID, p.BrandID == "")
	e.known(t, "supplier_id", p.SupplierID, p.SupplierID == "")
	e.known(t, "gencode", p.Gencode, p.Gencode == "")
	e.known(t, "barcode", p.Barcode, p.Barcode == "")
	e.known(t, "ean", p.EAN, p.EAN == "")
	e.known(t, "upc", p.UPC, p.UPC == "")
	e.known(t, "meta_data", p.MetaData, p.MetaData == nil)
	e.known(t, "woo_id", p.WooID, p.WooID == nil)
	e.known(t, "last_sync", formatTime(p.LastSync), p.LastSync == nil)
	e.known(t, "pending_sync", p.PendingSync, !p.PendingSync)
	e.known(t, "image", p.Image, p.Image == nil)
	e.known(t, "gallery_images", p.GalleryImages, p.GalleryImages == nil)
	e.known(t, "total_sold", p.TotalSold, p.TotalSold == 0)
	e.known(t, "sales_count", p.SalesCount, p.SalesCount == 0)
	e.known(t, "revenue_total", p.RevenueTotal, p.RevenueTotal == 0)
	e.extra(p.Extra)

	return e.bytes()
}

// Key returns the record id, satisfying the store's keyed constraint.
func (p *Product) Key() string {
	if p == nil {
		return ""
	}
	return p.ID
}

// IDKey returns the JSON key the id was read with ("_id" or "id").
func (p *Product) IDKey() string {
	return p.idField()
}

// WithIDKey sets the JSON key used for the id on write.
func (p *Product) WithIDKey(key string) *Product {
	p.idKey = key
	return p
}

// HasSales reports recorded commercial activity.
func (p *Product) HasSales() bool {
	return p != nil && (p.TotalSold > 0 || p.SalesCount > 0 || p.RevenueTotal > 0)
}

// Clone returns a deep copy.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	c.tracking = p.tracking.clone()
	if p.Categories != nil {
		c.Categories = append([]string(nil), p.Categories...)
	}
	if p.MetaData != nil {
		c.MetaData = append([]MetaData(nil), p.MetaData...)
	}
	if p.GalleryImages != nil {
		c.GalleryImages = append([]Image(nil), p.GalleryImages...)
	}
	if p.Image != nil {
		c.Image = ptr.To(*p.Image)
	}
	if p.WooID != nil {
		c.WooID = ptr.Int64(*p.WooID)
	}
	if p.LastSync != nil {
		c.LastSync = ptr.Time(*p.LastSync)
	}
	c.Extra = cloneExtra(p.Extra)
	return &c
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}
