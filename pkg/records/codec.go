package records

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cast"
)

// fieldState tracks how a known key appeared in the decoded line.
type fieldState uint8

const (
	stateValue fieldState = iota + 1
	stateNull
)

// tracking remembers which id key a record was read with and which known
// keys were present, so a record is written back the way it was read.
type tracking struct {
	idKey string
	state map[string]fieldState
}

func (t *tracking) mark(key string, s fieldState) {
	if t.state == nil {
		t.state = make(map[string]fieldState)
	}
	t.state[key] = s
}

func (t *tracking) stateOf(key string) fieldState {
	if t.state == nil {
		return 0
	}
	return t.state[key]
}

func (t *tracking) idField() string {
	if t.idKey == "" {
		return "_id"
	}
	return t.idKey
}

func (t tracking) clone() tracking {
	c := tracking{idKey: t.idKey}
	if t.state != nil {
		c.state = make(map[string]fieldState, len(t.state))
		for k, v := range t.state {
			c.state[k] = v
		}
	}
	return c
}

// fieldDecoder walks a decoded object, consuming known keys. A known key
// whose value cannot be interpreted is kept verbatim with the unknown keys.
type fieldDecoder struct {
	obj   map[string]json.RawMessage
	track *tracking
}

func newFieldDecoder(data []byte, track *tracking) (*fieldDecoder, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("record is not a JSON object")
	}
	return &fieldDecoder{obj: obj, track: track}, nil
}

func (d *fieldDecoder) take(key string, fn func(json.RawMessage) error) {
	raw, ok := d.obj[key]
	if !ok {
		return
	}
	if isNull(raw) {
		delete(d.obj, key)
		d.track.mark(key, stateNull)
		return
	}
	if err := fn(raw); err != nil {
		return
	}
	delete(d.obj, key)
	d.track.mark(key, stateValue)
}

// id consumes "_id" or "id", preferring "_id".
func (d *fieldDecoder) id(dst *string) {
	for _, key := range []string{"_id", "id"} {
		if _, ok := d.obj[key]; ok {
			d.track.idKey = key
			d.take(key, stringInto(dst))
			return
		}
	}
}

// rest returns the keys that were not consumed.
func (d *fieldDecoder) rest() map[string]json.RawMessage {
	if len(d.obj) == 0 {
		return nil
	}
	return d.obj
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func decodeAny(raw json.RawMessage) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func scalarString(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		return "", fmt.Errorf("expected scalar, got %T", v)
	}
}

func stringInto(dst *string) func(json.RawMessage) error {
	return func(raw json.RawMessage) error {
		v, err := decodeAny(raw)
		if err != nil {
			return err
		}
		s, err := scalarString(v)
		if err != nil {
			return err
		}
		*dst = s
		return nil
	}
}

func intInto(dst *int) func(json.RawMessage) error {
	return func(raw json.RawMessage) error {
		v, err := decodeAny(raw)
		if err != nil {
			return err
		}
		if s, ok := v.(string); ok {
			v = strings.TrimSpace(s)
			if v == "" {
				*dst = 0
				return nil
			}
			if f, err := cast.ToFloat64E(v); err == nil {
				*dst = int(f)
				return nil
			}
		}
		n, err := cast.ToIntE(v)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func floatInto(dst *float64) func(json.RawMessage) error {
	return func(raw json.RawMessage) error {
		v, err := decodeAny(raw)
		if err != nil {
			return err
		}
		if s, ok := v.(string); ok {
			s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
			if s == "" {
				*dst = 0
				return nil
			}
			v = s
		}
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return err
		}
		*dst = f
		return nil
	}
}

func boolInto(dst *bool) func(json.RawMessage) error {
	return func(raw json.RawMessage) error {
		v, err := decodeAny(raw)
		if err != nil {
			return err
		}
		b, err := cast.ToBoolE(v)
		if err != nil {
			return err
		}
		*dst = b
		return nil
	}
}

func stringsInto(dst *[]string) func(json.RawMessage) error {
	return func(raw json.RawMessage) error {
		var items []any
		if err := json.Unmarshal(raw, &items); err != nil {
			return err
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			if item == nil {
				continue
			}
			s, err := scalarString(item)
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		*dst = out
		return nil
	}
}

func wooIDInto(dst **int64) func(json.RawMessage) error {
	return func(raw json.RawMessage) error {
		v, err := decodeAny(raw)
		if err != nil {
			return err
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			*dst = nil
			return nil
		}
		n, err := cast.ToInt64E(v)
		if err != nil {
			return err
		}
		*dst = &n
		return nil
	}
}

func timeInto(dst **time.Time) func(json.RawMessage) error {
	return func(raw json.RawMessage) error {
		v, err := decodeAny(raw)
		if err != nil {
			return err
		}
		switch x := v.(type) {
		case float64:
			t := time.UnixMilli(int64(x)).UTC()
			*dst = &t
			return nil
		case string:
			t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(x))
			if err != nil {
				return err
			}
			*dst = &t
			return nil
		default:
			return fmt.Errorf("expected timestamp, got %T", v)
		}
	}
}

func jsonInto(dst any) func(json.RawMessage) error {
	return func(raw json.RawMessage) error {
		return json.Unmarshal(raw, dst)
	}
}

// objectEncoder writes a JSON object with keys in insertion order.
type objectEncoder struct {
	buf  bytes.Buffer
	seen map[string]bool
	err  error
}

func newObjectEncoder() *objectEncoder {
	e := &objectEncoder{seen: make(map[string]bool)}
	e.buf.WriteByte('{')
	return e
}

func (e *objectEncoder) writeKey(key string) bool {
	if e.err != nil || e.seen[key] {
		return false
	}
	k, err := json.Marshal(key)
	if err != nil {
		e.err = err
		return false
	}
	if len(e.seen) > 0 {
		e.buf.WriteByte(',')
	}
	e.seen[key] = true
	e.buf.Write(k)
	e.buf.WriteByte(':')
	return true
}

func (e *objectEncoder) value(key string, v any) {
	if !e.writeKey(key) {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		e.err = err
		return
	}
	e.buf.Write(b)
}

// known writes a known key when it carries a value, or null when the key
// was read as null and is still unset.
func (e *objectEncoder) known(t *tracking, key string, v any, zero bool) {
	switch {
	case !zero || t.stateOf(key) == stateValue:
		e.value(key, v)
	case t.stateOf(key) == stateNull:
		e.value(key, nil)
	}
}

// extra writes unknown keys sorted by name.
func (e *objectEncoder) extra(extra map[string]json.RawMessage) {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !e.writeKey(k) {
			continue
		}
		raw := bytes.TrimSpace(extra[k])
		if len(raw) == 0 {
			raw = []byte("null")
		}
		e.buf.Write(raw)
	}
}

func (e *objectEncoder) bytes() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.buf.WriteByte('}')
	return e.buf.Bytes(), nil
}

func cloneExtra(extra map[string]json.RawMessage) map[string]json.RawMessage {
	if extra == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(extra))
	for k, v := range extra {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
