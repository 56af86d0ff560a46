package woocommerce

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cast"

	"github.com/5sensprod/possync/internal/utils/ptr"
	"github.com/5sensprod/possync/pkg/constants"
	"github.com/5sensprod/possync/pkg/errors"
	"github.com/5sensprod/possync/pkg/logging"
	"github.com/5sensprod/possync/pkg/records"
)

// Meta keys used to carry local identity through the remote catalog.
const (
	MetaLocalID = "_pos_id"
	MetaGencode = "_pos_gencode"
)

// Product is the subset of the WooCommerce product resource we exchange.
type Product struct {
	ID            int64      `json:"id,omitempty"`
	Name          string     `json:"name"`
	SKU           string     `json:"sku"`
	Description   string     `json:"description,omitempty"`
	RegularPrice  string     `json:"regular_price"`
	StockQuantity *int       `json:"stock_quantity"`
	ManageStock   bool       `json:"manage_stock"`
	Status        string     `json:"status,omitempty"`
	TotalSales    any        `json:"total_sales,omitempty"`
	Images        []Image    `json:"images,omitempty"`
	MetaData      []MetaData `json:"meta_data,omitempty"`
}

// Image is a remote product picture.
type Image struct {
	ID  int64  `json:"id,omitempty"`
	Src string `json:"src,omitempty"`
}

// MetaData is a remote meta entry.
type MetaData struct {
	ID    int64  `json:"id,omitempty"`
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// remote status <-> local status
var (
	toLocalStatus = map[string]string{
		"publish": records.StatusPublished,
		"draft":   records.StatusDraft,
		"pending": records.StatusDraft,
		"private": records.StatusArchived,
	}
	toRemoteStatus = map[string]string{
		records.StatusPublished: "publish",
		records.StatusDraft:     "draft",
		records.StatusArchived:  "private",
	}
)

// Products lists every product of the store, page by page.
func (c *Client) Products(ctx context.Context) ([]*records.Product, error) {
	var out []*records.Product
	for page := 1; page <= constants.MaxRemotePages; page++ {
		req, err := c.request(ctx)
		if err != nil {
			return nil, err
		}
		var batch []Product
		resp, err := req.
			SetQueryParam("per_page", strconv.Itoa(c.pageSize)).
			SetQueryParam("page", strconv.Itoa(page)).
			SetResult(&batch).
			Get("/products")
		if err := check(ctx, resp, err, "/products"); err != nil {
			return nil, err
		}

		for i := range batch {
			p, err := ToRecord(&batch[i])
			if err != nil {
				return nil, errors.WrapParse("json", fmt.Sprintf("products page %d", page), i+1, err)
			}
			out = append(out, p)
		}

		logging.FromContext(ctx).Debug().
			Int("page", page).
			Int("count", len(batch)).
			Msg("Fetched remote products page")

		if len(batch) < c.pageSize {
			break
		}
		if total := cast.ToInt(resp.Header().Get("X-WP-TotalPages")); total > 0 && page >= total {
			break
		}
	}
	return out, nil
}

// PushProduct creates or updates p and returns its remote id.
func (c *Client) PushProduct(ctx context.Context, p *records.Product) (int64, error) {
	body := FromRecord(p)
	req, err := c.request(ctx)
	if err != nil {
		return 0, err
	}

	var created Product
	req.SetBody(body).SetResult(&created)

	endpoint := "/products"
	if p.WooID != nil && *p.WooID > 0 {
		endpoint = fmt.Sprintf("/products/%d", *p.WooID)
		resp, err := req.Put(endpoint)
		if err := check(ctx, resp, err, endpoint); err != nil {
			return 0, err
		}
	} else {
		resp, err := req.Post(endpoint)
		if err := check(ctx, resp, err, endpoint); err != nil {
			return 0, err
		}
	}

	if created.ID == 0 {
		return 0, errors.NewRemoteError(RemoteName, 0, "response carried no product id")
	}
	return created.ID, nil
}

// ToRecord converts a remote product into a catalog record. The record id
// comes from the local-id meta entry when present, else "woo-<id>".
func ToRecord(rp *Product) (*records.Product, error) {
	p := &records.Product{}
	var err error
	set := func(name string, value any) {
		if err == nil {
			err = p.SetField(name, value)
		}
	}

	id := fmt.Sprintf("woo-%d", rp.ID)
	var meta []records.MetaData
	for _, m := range rp.MetaData {
		switch m.Key {
		case MetaLocalID:
			if s := cast.ToString(m.Value); s != "" {
				id = s
			}
		case MetaGencode:
			set(records.FieldGencode, m.Value)
		default:
			meta = append(meta, records.MetaData{ID: m.ID, Key: m.Key, Value: m.Value})
		}
	}

	set(records.FieldID, id)
	set(records.FieldName, rp.Name)
	set(records.FieldSKU, rp.SKU)
	set(records.FieldDescription, rp.Description)
	set(records.FieldManageStock, rp.ManageStock)
	set(records.FieldWooID, rp.ID)
	set(records.FieldTotalSold, cast.ToInt(rp.TotalSales))
	if rp.RegularPrice != "" {
		set(records.FieldPrice, rp.RegularPrice)
	}
	if rp.StockQuantity != nil {
		set(records.FieldStock, *rp.StockQuantity)
	}
	if s, ok := toLocalStatus[rp.Status]; ok {
		set(records.FieldStatus, s)
	}
	if len(meta) > 0 {
		set(records.FieldMetaData, meta)
	}
	if len(rp.Images) > 0 {
		set(records.FieldImage, records.Image{ID: rp.Images[0].ID, Src: rp.Images[0].Src})
		var gallery []records.Image
		for _, img := range rp.Images[1:] {
			gallery = append(gallery, records.Image{ID: img.ID, Src: img.Src})
		}
		if len(gallery) > 0 {
			set(records.FieldGalleryImages, gallery)
		}
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// FromRecord builds the remote payload for a catalog record. Category,
// brand and supplier ids live in the local namespace and are not sent.
func FromRecord(p *records.Product) *Product {
	rp := &Product{
		Name:         p.Name,
		SKU:          p.SKU,
		Description:  p.Description,
		RegularPrice: strconv.FormatFloat(p.Price, 'f', -1, 64),
		ManageStock:  p.ManageStock,
		Status:       toRemoteStatus[p.Status],
	}
	if p.ManageStock || p.Has(records.FieldStock) {
		rp.StockQuantity = ptr.To(p.Stock)
	}

	rp.MetaData = append(rp.MetaData, MetaData{Key: MetaLocalID, Value: p.ID})
	if p.Gencode != "" {
		rp.MetaData = append(rp.MetaData, MetaData{Key: MetaGencode, Value: p.Gencode})
	}
	for _, m := range p.MetaData {
		if m.Key == MetaLocalID || m.Key == MetaGencode {
			continue
		}
		rp.MetaData = append(rp.MetaData, MetaData{ID: cast.ToInt64(m.ID), Key: m.Key, Value: m.Value})
	}

	images := make([]records.Image, 0, 1+len(p.GalleryImages))
	if p.Image != nil {
		images = append(images, *p.Image)
	}
	images = append(images, p.GalleryImages...)
	for _, img := range images {
		if id := cast.ToInt64(img.ID); id > 0 {
			rp.Images = append(rp.Images, Image{ID: id})
		} else if img.Src != "" {
			rp.Images = append(rp.Images, Image{Src: img.Src})
		}
	}
	return rp
}
