package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Metadata is an insertion-ordered attribute map. Keys are unique: setting an
// existing key replaces its value but keeps its original position.
type Metadata struct {
	keys   []string
	values map[string]interface{}
}

// NewMetadata creates an empty metadata map
func NewMetadata() *Metadata {
	return &Metadata{values: make(map[string]interface{})}
}

// Set stores value under key
func (m *Metadata) Set(key string, value interface{}) {
	if m.values == nil {
		m.values = make(map[string]interface{})
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key
func (m *Metadata) Get(key string) (interface{}, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present
func (m *Metadata) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Keys returns the keys in insertion order
func (m *Metadata) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys
func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Clone returns a shallow copy
func (m *Metadata) Clone() *Metadata {
	out := NewMetadata()
	if m == nil {
		return out
	}
	for _, k := range m.keys {
		out.Set(k, m.values[k])
	}
	return out
}

// ToMap returns an unordered copy, mainly for storage layers that serialize it anyway
func (m *Metadata) ToMap() map[string]interface{} {
	out := make(map[string]interface{}, m.Len())
	if m == nil {
		return out
	}
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// MarshalJSON writes the keys in insertion order
func (m *Metadata) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("metadata field %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping the document's key order.
// Whole numbers decode as int, other numbers as float64.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = Metadata{values: make(map[string]interface{})}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("metadata must be a JSON object")
	}

	out := Metadata{values: make(map[string]interface{})}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("metadata key must be a string")
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("metadata field %q: %w", key, err)
		}
		out.Set(key, plainNumbers(value))
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

// plainNumbers replaces json.Number values, including nested ones
func plainNumbers(value interface{}) interface{} {
	switch v := value.(type) {
	case json.Number:
		if i, err := strconv.Atoi(v.String()); err == nil {
			return i
		}
		f, _ := v.Float64()
		return f
	case []interface{}:
		for i := range v {
			v[i] = plainNumbers(v[i])
		}
	case map[string]interface{}:
		for k := range v {
			v[k] = plainNumbers(v[k])
		}
	}
	return value
}

// MetadataFromMap builds metadata from a plain map in the order given by keys.
// Keys missing from values are skipped.
func MetadataFromMap(values map[string]interface{}, keys []string) *Metadata {
	out := NewMetadata()
	for _, k := range keys {
		if v, ok := values[k]; ok {
			out.Set(k, v)
		}
	}
	return out
}
