package config

import (
	"encoding/json"
	"fmt"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"go.yaml.in/yaml/v3"
)

// YAML is a koanf parser that keeps numeric scalars as their literal text.
// Integers and floats come back as json.Number, so amounts reach
// decimal.NewFromString without passing through float64.
type YAML struct{}

// YAMLParser returns a literal-preserving YAML parser.
func YAMLParser() *YAML {
	return &YAML{}
}

// Unmarshal parses b into a nested map.
func (p *YAML) Unmarshal(b []byte) (map[string]any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return map[string]any{}, nil
	}

	v, err := literal(doc.Content[0])
	if err != nil {
		return nil, err
	}
	out, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("yaml: top level must be a mapping, got %s", doc.Content[0].ShortTag())
	}
	return out, nil
}

// Marshal encodes o as YAML.
func (p *YAML) Marshal(o map[string]any) ([]byte, error) {
	return kyaml.Parser().Marshal(o)
}

func literal(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return literal(n.Content[0])
	case yaml.AliasNode:
		return literal(n.Alias)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := literal(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		return mapping(n)
	case yaml.ScalarNode:
		return scalar(n)
	}
	return nil, fmt.Errorf("yaml: line %d: unsupported node kind %d", n.Line, n.Kind)
}

func mapping(n *yaml.Node) (map[string]any, error) {
	out := make(map[string]any, len(n.Content)/2)
	var merged []map[string]any
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		v, err := literal(val)
		if err != nil {
			return nil, err
		}
		if key.ShortTag() == "!!merge" {
			switch m := v.(type) {
			case map[string]any:
				merged = append(merged, m)
			case []any:
				for _, e := range m {
					if em, ok := e.(map[string]any); ok {
						merged = append(merged, em)
					}
				}
			}
			continue
		}
		out[key.Value] = v
	}

	// Explicit keys win over merged ones; earlier merges win over later ones.
	for _, m := range merged {
		for k, v := range m {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
	}
	return out, nil
}

func scalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!int", "!!float":
		if json.Valid([]byte(n.Value)) {
			return json.Number(n.Value), nil
		}
	case "!!str":
		return n.Value, nil
	case "!!null":
		return nil, nil
	}

	// Hex, octal, infinities, booleans and timestamps.
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, fmt.Errorf("yaml: line %d: %w", n.Line, err)
	}
	return v, nil
}
