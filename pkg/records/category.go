package records

import (
	"github.com/goccy/go-json"

	"github.com/5sensprod/possync/internal/utils/ptr"
)

// Category is a node in the classification tree. Level is derived from
// the parent chain and is recomputed by the hierarchy builder.
type Category struct {
	ID       string
	Name     string
	ParentID string // empty for roots
	Level    int
	WooID    *int64

	Extra map[string]json.RawMessage

	tracking
}

// UnmarshalJSON decodes a category line.
func (c *Category) UnmarshalJSON(data []byte) error {
	*c = Category{}
	d, err := newFieldDecoder(data, &c.tracking)
	if err != nil {
		return err
	}
	d.id(&c.ID)
	d.take("name", stringInto(&c.Name))
	d.take("parent_id", stringInto(&c.ParentID))
	d.take("level", intInto(&c.Level))
	d.take("woo_id", wooIDInto(&c.WooID))
	c.Extra = d.rest()
	return nil
}

// MarshalJSON encodes the category, writing a null parent for roots that
// were read with one.
func (c Category) MarshalJSON() ([]byte, error) {
	t := &c.tracking
	e := newObjectEncoder()
	e.value(t.idField(), c.ID)
	e.known(t, "name", c.Name, c.Name == "")
	e.known(t, "parent_id", c.ParentID, c.ParentID == "")
	e.known(t, "level", c.Level, c.Level == 0)
	e.known(t, "woo_id", c.WooID, c.WooID == nil)
	e.extra(c.Extra)
	return e.bytes()
}

// Key returns the category id.
func (c *Category) Key() string {
	if c == nil {
		return ""
	}
	return c.ID
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == ""
}

// HasLevel reports whether the record carries a level value.
func (c *Category) HasLevel() bool {
	return c.stateOf("level") == stateValue
}

// SetLevel assigns the computed level and marks it for writing.
func (c *Category) SetLevel(level int) {
	c.Level = level
	c.mark("level", stateValue)
}

// Clone returns a deep copy.
func (c *Category) Clone() *Category {
	if c == nil {
		return nil
	}
	out := *c
	out.tracking = c.tracking.clone()
	if c.WooID != nil {
		out.WooID = ptr.Int64(*c.WooID)
	}
	out.Extra = cloneExtra(c.Extra)
	return &out
}
