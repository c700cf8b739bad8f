package model

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Kind identifies which arm of a Value is populated.
type Kind int

// Value kinds.
const (
	KindScalar Kind = iota
	KindList
	KindMapping
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is the untyped tree produced by the block parser and carried in the
// free-form fields of a Place: a scalar string, an ordered list, or a mapping.
type Value struct {
	Kind    Kind
	Scalar  string
	List    []Value
	Mapping Mapping
}

// ScalarValue wraps s as a scalar Value.
func ScalarValue(s string) Value {
	return Value{Kind: KindScalar, Scalar: s}
}

// ListValue wraps items as a list Value.
func ListValue(items ...Value) Value {
	return Value{Kind: KindList, List: items}
}

// MappingValue wraps m as a mapping Value.
func MappingValue(m Mapping) Value {
	return Value{Kind: KindMapping, Mapping: m}
}

// StringsValue builds a list Value of scalars.
func StringsValue(items ...string) Value {
	out := make([]Value, len(items))
	for i, s := range items {
		out[i] = ScalarValue(s)
	}
	return ListValue(out...)
}

// IsZero reports whether v carries no content: an empty scalar, list or mapping.
func (v Value) IsZero() bool {
	switch v.Kind {
	case KindScalar:
		return v.Scalar == ""
	case KindList:
		return len(v.List) == 0
	case KindMapping:
		return v.Mapping.Len() == 0
	}
	return true
}

// MarshalJSON renders v as a JSON string, array or object. Object keys keep
// their mapping order.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	case KindMapping:
		return v.Mapping.MarshalJSON()
	default:
		return json.Marshal(v.Scalar)
	}
}

// MarshalYAML renders v as a YAML node.
func (v Value) MarshalYAML() (any, error) {
	return v.yamlNode(), nil
}

func (v Value) yamlNode() *yaml.Node {
	switch v.Kind {
	case KindList:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range v.List {
			n.Content = append(n.Content, item.yamlNode())
		}
		return n
	case KindMapping:
		return v.Mapping.yamlNode()
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Scalar}
	}
}

// Entry is one key/value pair of a Mapping.
type Entry struct {
	Key   string
	Value Value
}

// Mapping is an insertion-ordered string-keyed map. Setting an existing key
// replaces its value in place.
type Mapping struct {
	Entries []Entry
}

// NewMapping builds a Mapping from entries; later duplicates win.
func NewMapping(entries ...Entry) Mapping {
	var m Mapping
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

// Len returns the number of entries.
func (m Mapping) Len() int { return len(m.Entries) }

// Get returns the value stored under key.
func (m Mapping) Get(key string) (Value, bool) {
	for _, e := range m.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// IsZero reports whether m has no entries.
func (m Mapping) IsZero() bool { return m.Len() == 0 }

// Has reports whether key is present.
func (m Mapping) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set stores v under key, keeping the key's original position if present.
func (m *Mapping) Set(key string, v Value) {
	for i := range m.Entries {
		if m.Entries[i].Key == key {
			m.Entries[i].Value = v
			return
		}
	}
	m.Entries = append(m.Entries, Entry{Key: key, Value: v})
}

// Delete removes key if present.
func (m *Mapping) Delete(key string) {
	for i := range m.Entries {
		if m.Entries[i].Key == key {
			m.Entries = append(m.Entries[:i], m.Entries[i+1:]...)
			return
		}
	}
}

// Keys returns keys in insertion order.
func (m Mapping) Keys() []string {
	keys := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		keys[i] = e.Key
	}
	return keys
}

// MarshalJSON renders m as a JSON object in insertion order.
func (m Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := e.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML renders m as an ordered YAML mapping node.
func (m Mapping) MarshalYAML() (any, error) {
	return m.yamlNode(), nil
}

func (m Mapping) yamlNode() *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range m.Entries {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key},
			e.Value.yamlNode(),
		)
	}
	return n
}
