package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// OrderedMap decodes a YAML mapping node while preserving declaration
// order. A plain Go map loses that order as soon as anything ranges over
// it, but spec.md §4.2 requires it: "Order of bindings in the config is
// preserved and becomes tie-break order when two chains share the same
// prefix and the same terminal chord." bindings/remaps/xcape are all
// decoded through this instead of map[string]string.
type OrderedMap struct {
	Keys   []string
	Values []string
}

// UnmarshalYAML implements yaml.Unmarshaler by walking the mapping node's
// Content pairs in order instead of decoding into a Go map.
func (m *OrderedMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("expected a YAML mapping, got kind %d", value.Kind)
	}
	m.Keys = m.Keys[:0]
	m.Values = m.Values[:0]
	for i := 0; i+1 < len(value.Content); i += 2 {
		var k, v string
		if err := value.Content[i].Decode(&k); err != nil {
			return fmt.Errorf("decoding key at index %d: %w", i, err)
		}
		if err := value.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("decoding value for key %q: %w", k, err)
		}
		m.Keys = append(m.Keys, k)
		m.Values = append(m.Values, v)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler, re-emitting a mapping node in
// the same order the keys were inserted.
func (m OrderedMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for i, k := range m.Keys {
		var kn, vn yaml.Node
		kn.SetString(k)
		vn.SetString(m.Values[i])
		node.Content = append(node.Content, &kn, &vn)
	}
	return node, nil
}

// Get returns the value for key and whether it was present.
func (m OrderedMap) Get(key string) (string, bool) {
	for i, k := range m.Keys {
		if k == key {
			return m.Values[i], true
		}
	}
	return "", false
}

// Set inserts or overwrites a key, appending new keys at the end so
// insertion order is preserved.
func (m *OrderedMap) Set(key, value string) {
	for i, k := range m.Keys {
		if k == key {
			m.Values[i] = value
			return
		}
	}
	m.Keys = append(m.Keys, key)
	m.Values = append(m.Values, value)
}

// Len returns the number of entries.
func (m OrderedMap) Len() int {
	return len(m.Keys)
}

// Pairs yields each (key, value) in insertion order for range-based
// consumers (the Chord Parser walks bindings/remaps/xcape this way).
func (m OrderedMap) Pairs(fn func(key, value string)) {
	for i, k := range m.Keys {
		fn(k, m.Values[i])
	}
}
