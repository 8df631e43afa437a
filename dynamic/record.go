package dynamic

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// Record is a generic message value: field names mapped to values, kept
// in insertion order. The zero value is an empty record.
//
// Values use a fixed set of Go types per field kind:
//
//	int32, sint32, sfixed32     int32
//	uint32, fixed32             uint32
//	int64, sint64, sfixed64     int64
//	uint64, fixed64             uint64
//	float, double               float32, float64
//	bool, string, bytes         bool, string, []byte
//	enum                        value name, or int32 when the number is unknown
//	message                     *Record
//
// Repeated fields hold []any of the element type.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{}
}

// Get returns the value of a field.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Set stores a field value. A new field goes after the existing ones.
func (r *Record) Set(name string, v any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.values[name] = v
}

// Delete removes a field.
func (r *Record) Delete(name string) {
	if _, ok := r.values[name]; !ok {
		return
	}
	delete(r.values, name)
	for i, k := range r.keys {
		if k == name {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the field names in insertion order.
func (r *Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

func (r *Record) Len() int { return len(r.keys) }

// MarshalJSON renders the record as a JSON object with fields in order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
