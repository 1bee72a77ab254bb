package graph

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Property is one display-safe key/value pair.
type Property struct {
	Key   string
	Value any
}

// Properties is an ordered mapping of string keys to display values. Order
// follows the source document, so the detail panel shows fields the way the
// backend emitted them.
type Properties []Property

// Get returns the value for key and whether it was present.
func (p Properties) Get(key string) (any, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// clone copies the sequence itself; values are treated as immutable display
// data and shared.
func (p Properties) clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	copy(out, p)
	return out
}

// UnmarshalJSON decodes a JSON object preserving key order.
func (p *Properties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("properties: expected object, got %v", tok)
	}

	out := Properties{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("properties: non-string key %v", keyTok)
		}
		var val any
		if err := dec.Decode(&val); err != nil {
			return fmt.Errorf("properties: value for %q: %w", key, err)
		}
		out = append(out, Property{Key: key, Value: val})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = out
	return nil
}

// MarshalJSON writes the pairs back out in order.
func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, fmt.Errorf("properties: value for %q: %w", kv.Key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalYAML decodes a YAML mapping preserving key order. yaml.Node keeps
// mapping entries as alternating key/value children.
func (p *Properties) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("properties: expected mapping, got yaml kind %d", value.Kind)
	}
	out := make(Properties, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var key string
		if err := value.Content[i].Decode(&key); err != nil {
			return err
		}
		var val any
		if err := value.Content[i+1].Decode(&val); err != nil {
			return fmt.Errorf("properties: value for %q: %w", key, err)
		}
		out = append(out, Property{Key: key, Value: val})
	}
	*p = out
	return nil
}

// MarshalYAML emits an ordered mapping node.
func (p Properties) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, kv := range p {
		var key, val yaml.Node
		if err := key.Encode(kv.Key); err != nil {
			return nil, err
		}
		if err := val.Encode(kv.Value); err != nil {
			return nil, fmt.Errorf("properties: value for %q: %w", kv.Key, err)
		}
		node.Content = append(node.Content, &key, &val)
	}
	return node, nil
}
