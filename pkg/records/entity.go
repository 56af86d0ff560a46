package records

import "github.com/goccy/go-json"

// Entity is a brand or a supplier. Only the fields needed to resolve
// product references are modeled; the rest rides in Extra.
type Entity struct {
	ID    string
	Name  string
	WooID *int64

	Extra map[string]json.RawMessage

	tracking
}

// UnmarshalJSON decodes a brand or supplier line.
func (e *Entity) UnmarshalJSON(data []byte) error {
	*e = Entity{}
	d, err := newFieldDecoder(data, &e.tracking)
	if err != nil {
		return err
	}
	d.id(&e.ID)
	d.take("name", stringInto(&e.Name))
	d.take("woo_id", wooIDInto(&e.WooID))
	e.Extra = d.rest()
	return nil
}

// MarshalJSON encodes the entity.
func (e Entity) MarshalJSON() ([]byte, error) {
	t := &e.tracking
	enc := newObjectEncoder()
	enc.value(t.idField(), e.ID)
	enc.known(t, "name", e.Name, e.Name == "")
	enc.known(t, "woo_id", e.WooID, e.WooID == nil)
	enc.extra(e.Extra)
	return enc.bytes()
}

// Key returns the entity id.
func (e *Entity) Key() string {
	if e == nil {
		return ""
	}
	return e.ID
}

// Index is a set of ids used to check that references resolve.
type Index map[string]struct{}

// Contains reports whether id is in the index.
func (ix Index) Contains(id string) bool {
	_, ok := ix[id]
	return ok
}

// Len returns the number of ids.
func (ix Index) Len() int {
	return len(ix)
}

// IndexOf builds an index from keyed records.
func IndexOf[T interface{ Key() string }](items []T) Index {
	ix := make(Index, len(items))
	for _, item := range items {
		if k := item.Key(); k != "" {
			ix[k] = struct{}{}
		}
	}
	return ix
}
