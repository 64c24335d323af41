package form

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Value is an optional string. The zero Value is absent, and empty text is
// normalised to absent so the two states cannot be told apart downstream.
type Value struct {
	text    string
	present bool
}

// ValueOf wraps text, returning the absent Value for the empty string.
func ValueOf(text string) Value {
	if text == "" {
		return Value{}
	}
	return Value{text: text, present: true}
}

// Get returns the text and whether a value is present.
func (v Value) Get() (string, bool) {
	return v.text, v.present
}

// Present reports whether the value carries text.
func (v Value) Present() bool {
	return v.present
}

// String returns the text, or "" when absent.
func (v Value) String() string {
	return v.text
}

// Equal reports whether both values hold the same state.
func (v Value) Equal(other Value) bool {
	return v.present == other.present && v.text == other.text
}

// MarshalJSON encodes absent values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.present {
		return []byte("null"), nil
	}
	return json.Marshal(v.text)
}

// UnmarshalJSON accepts a JSON string or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Value{}
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	*v = ValueOf(text)
	return nil
}

// Payload is the flat key → value structure submitted to a transport. Keys
// keep insertion order; setting an existing key replaces its value in place.
type Payload struct {
	keys   []string
	values map[string]Value
}

// Set stores v under key.
func (p *Payload) Set(key string, v Value) {
	if p.values == nil {
		p.values = make(map[string]Value)
	}
	if _, exists := p.values[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.values[key] = v
}

// Get returns the value stored under key and whether the key is present.
func (p Payload) Get(key string) (Value, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (p Payload) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Len reports the number of keys.
func (p Payload) Len() int {
	return len(p.keys)
}

// Equal reports whether both payloads hold the same keys, in the same order,
// with equal values.
func (p Payload) Equal(other Payload) bool {
	if len(p.keys) != len(other.keys) {
		return false
	}
	for i, key := range p.keys {
		if other.keys[i] != key {
			return false
		}
		if !p.values[key].Equal(other.values[key]) {
			return false
		}
	}
	return true
}

// Map returns a plain map; absent values map to nil.
func (p Payload) Map() map[string]any {
	out := make(map[string]any, len(p.keys))
	for _, key := range p.keys {
		if text, ok := p.values[key].Get(); ok {
			out[key] = text
			continue
		}
		out[key] = nil
	}
	return out
}

// Expand nests dotted keys one level deep ("parent.child" becomes
// {"parent": {"child": ...}}), matching what the member API stores. Keys
// without a dot are copied unchanged; when a plain key collides with a
// parent, the nested map wins.
func (p Payload) Expand() map[string]any {
	out := make(map[string]any, len(p.keys))
	for _, key := range p.keys {
		var value any
		if text, ok := p.values[key].Get(); ok {
			value = text
		}
		parent, child, nested := strings.Cut(key, ".")
		if !nested {
			if _, taken := out[key].(map[string]any); taken {
				continue
			}
			out[key] = value
			continue
		}
		group, ok := out[parent].(map[string]any)
		if !ok {
			group = make(map[string]any)
			out[parent] = group
		}
		group[child] = value
	}
	return out
}

// MarshalJSON encodes the payload as an object in key order.
func (p Payload) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := p.values[key].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
