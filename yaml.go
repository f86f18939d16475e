package datamodel

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FromYAML parses a YAML document and runs the full construction pipeline.
// YAML mappings feed the same raw-input path as FromDict, so hooks, aliases,
// defaults, and deserializers all apply.
func (mt *ModelType) FromYAML(ctx context.Context, data []byte) (*Instance, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, Issues{Issue{Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	v = yamlNormalize(v)
	m, ok := v.(map[string]any)
	if !ok {
		return nil, Issues{Issue{Code: CodeTypeMismatch, Message: fmt.Sprintf("Expected a dict, got %s", typeName(v))}}
	}
	return mt.Construct(ctx, m)
}

// ToYAML encodes the instance's ToDict export as one YAML document. Sets
// encode as sequences in insertion order.
func (in *Instance) ToYAML() ([]byte, error) {
	m, err := in.ToDict()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(yamlExport(m))
}

// yamlExport rewrites engine-only container types into what yaml.v3 marshals.
func yamlExport(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, item := range tv {
			out[k] = yamlExport(item)
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = yamlExport(item)
		}
		return out
	case *Set:
		out := make([]any, 0, tv.Len())
		for _, item := range tv.Values() {
			out = append(out, yamlExport(item))
		}
		return out
	default:
		return v
	}
}

// yamlNormalize rewrites yaml.v3's decoded shapes into the engine's generic
// tree: string-keyed maps and int64 integers.
func yamlNormalize(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		for k, item := range tv {
			tv[k] = yamlNormalize(item)
		}
		return tv
	case map[any]any:
		out := make(map[string]any, len(tv))
		for k, item := range tv {
			out[fmt.Sprint(k)] = yamlNormalize(item)
		}
		return out
	case []any:
		for i, item := range tv {
			tv[i] = yamlNormalize(item)
		}
		return tv
	case int:
		return int64(tv)
	default:
		return v
	}
}
