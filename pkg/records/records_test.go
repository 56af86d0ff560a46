package records_test

import (
	"testing"
	"time"

	"github.com/5sensprod/possync/pkg/records"
	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeProduct(t *testing.T, line string) *records.Product {
	t.Helper()
	var p records.Product
	require.NoError(t, json.Unmarshal([]byte(line), &p))
	return &p
}

func TestProductDecodeLegacyShapes(t *testing.T) {
	p := decodeProduct(t, `{"_id":"abc","name":"Cable jack","sku":"CJ-3","price":"12,50","stock":"7","manage_stock":"true","categories":["c1",2],"woo_id":"88","total_sold":3,"custom":{"a":1}}`)

	assert.Equal(t, "abc", p.ID)
	assert.Equal(t, "_id", p.IDKey())
	assert.Equal(t, 12.5, p.Price)
	assert.Equal(t, 7, p.Stock)
	assert.True(t, p.ManageStock)
	assert.Equal(t, []string{"c1", "2"}, p.Categories)
	require.NotNil(t, p.WooID)
	assert.Equal(t, int64(88), *p.WooID)
	assert.True(t, p.HasSales())
	assert.JSONEq(t, `{"a":1}`, string(p.Extra["custom"]))
}

func TestProductDecodeIDKey(t *testing.T) {
	p := decodeProduct(t, `{"id":42,"name":"x"}`)
	assert.Equal(t, "42", p.ID)
	assert.Equal(t, "id", p.IDKey())

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"42","name":"x"}`, string(out))
}

func TestProductUninterpretableFieldKeptVerbatim(t *testing.T) {
	p := decodeProduct(t, `{"_id":"a","stock":{"warehouse":3},"last_sync":"yesterday"}`)

	assert.Equal(t, 0, p.Stock)
	assert.Nil(t, p.LastSync)
	assert.Contains(t, p.Extra, "stock")
	assert.Contains(t, p.Extra, "last_sync")

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"a","stock":{"warehouse":3},"last_sync":"yesterday"}`, string(out))
}

func TestProductRejectsNonObject(t *testing.T) {
	var p records.Product
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &p))
}

func TestProductRoundTrip(t *testing.T) {
	line := `{"_id":"p1","name":"Capo","sku":"CAP-1","stock":0,"status":"published","meta_data":[{"key":"barcode","value":"3000000000000"},{"key":"note","value":null}],"woo_id":null,"last_sync":"2024-03-01T10:00:00Z","image":{"local_path":"img/capo.jpg"},"gallery_images":[{"src":"https://shop/capo.jpg"}],"legacy_flag":true}`
	p := decodeProduct(t, line)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, line, string(out))

	again := decodeProduct(t, string(out))
	if diff := cmp.Diff(p, again, cmpopts.IgnoreUnexported(records.Product{})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestProductHas(t *testing.T) {
	t.Run("decoded record uses key presence", func(t *testing.T) {
		p := decodeProduct(t, `{"_id":"a","stock":0,"price":null}`)
		assert.True(t, p.Has("stock"))
		assert.False(t, p.Has("price"))
		assert.False(t, p.Has("min_stock"))
	})

	t.Run("built record falls back to non-zero", func(t *testing.T) {
		p := &records.Product{ID: "a", Stock: 4}
		assert.True(t, p.Has("stock"))
		assert.False(t, p.Has("price"))
		assert.False(t, p.Has("woo_id"))
	})
}

func TestProductSetField(t *testing.T) {
	p := &records.Product{ID: "a"}

	require.NoError(t, p.SetField("stock", "8"))
	require.NoError(t, p.SetField("price", 9.9))
	require.NoError(t, p.SetField("categories", []any{"c1", "c2"}))
	require.NoError(t, p.SetField("woo_id", 12))
	require.NoError(t, p.SetField("last_sync", "2024-01-02T03:04:05Z"))
	require.NoError(t, p.SetField("gallery_images", []records.Image{{Src: "https://x/1.jpg"}}))
	require.NoError(t, p.SetField("color", "red"))

	assert.Equal(t, 8, p.Stock)
	assert.Equal(t, 9.9, p.Price)
	assert.Equal(t, []string{"c1", "c2"}, p.Categories)
	assert.Equal(t, int64(12), *p.WooID)
	assert.True(t, p.LastSync.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.Len(t, p.GalleryImages, 1)

	v, ok := p.Field("color")
	assert.True(t, ok)
	assert.Equal(t, "red", v)

	assert.Error(t, p.SetField("stock", "many"))
}

func TestProductField(t *testing.T) {
	p := &records.Product{ID: "a", Name: "Pick"}
	v, ok := p.Field("name")
	assert.True(t, ok)
	assert.Equal(t, "Pick", v)

	v, ok = p.Field("woo_id")
	assert.True(t, ok)
	assert.Nil(t, v)

	_, ok = p.Field("nope")
	assert.False(t, ok)

	var nilProduct *records.Product
	_, ok = nilProduct.Field("name")
	assert.False(t, ok)
}

func TestProductClone(t *testing.T) {
	woo := int64(5)
	p := &records.Product{
		ID:         "a",
		Categories: []string{"c1"},
		MetaData:   []records.MetaData{{Key: "ean", Value: "1"}},
		WooID:      &woo,
		Image:      &records.Image{LocalPath: "a.jpg"},
		Extra:      map[string]json.RawMessage{"x": json.RawMessage(`1`)},
	}
	c := p.Clone()
	c.Categories[0] = "c2"
	c.MetaData[0].Value = "2"
	*c.WooID = 6
	c.Image.LocalPath = "b.jpg"
	c.Extra["x"] = json.RawMessage(`2`)

	assert.Equal(t, "c1", p.Categories[0])
	assert.Equal(t, "1", p.MetaData[0].Value)
	assert.Equal(t, int64(5), *p.WooID)
	assert.Equal(t, "a.jpg", p.Image.LocalPath)
	assert.Equal(t, `1`, string(p.Extra["x"]))
}

func TestCategoryNullParentPreserved(t *testing.T) {
	var c records.Category
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"root","name":"Guitares","parent_id":null,"level":3}`), &c))
	assert.True(t, c.IsRoot())

	c.SetLevel(0)
	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"root","name":"Guitares","parent_id":null,"level":0}`, string(out))
}

func TestEntityAndIndex(t *testing.T) {
	var e records.Entity
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"b1","name":"Fender","country":"US"}`), &e))
	assert.Equal(t, "Fender", e.Name)
	assert.Contains(t, e.Extra, "country")

	ix := records.IndexOf([]*records.Entity{&e, {ID: ""}, {ID: "b2"}})
	assert.Equal(t, 2, ix.Len())
	assert.True(t, ix.Contains("b1"))
	assert.False(t, ix.Contains(""))
}
