package datamodel

import (
	"context"
	"fmt"
	"io"
	"reflect"

	"github.com/syntropo/datamodel/internal/jsonwire"
)

// FromJSON parses JSON text and runs the full construction pipeline.
// Malformed text yields a parse_error issue; structural failures aggregate
// like FromDict.
func (mt *ModelType) FromJSON(ctx context.Context, data []byte) (*Instance, error) {
	v, err := jsonwire.Decode(data)
	if err != nil {
		return nil, Issues{Issue{Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, Issues{Issue{Code: CodeTypeMismatch, Message: fmt.Sprintf("Expected a dict, got %s", typeName(v))}}
	}
	return mt.Construct(ctx, m)
}

// FromJSONReader is FromJSON over a stream.
func (mt *ModelType) FromJSONReader(ctx context.Context, r io.Reader) (*Instance, error) {
	v, err := jsonwire.DecodeReader(r)
	if err != nil {
		return nil, Issues{Issue{Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, Issues{Issue{Code: CodeTypeMismatch, Message: fmt.Sprintf("Expected a dict, got %s", typeName(v))}}
	}
	return mt.Construct(ctx, m)
}

// ToJSON encodes the instance as JSON text. Object keys follow declaration
// order, recursively; custom JSON serializers (model-level over global) apply
// per runtime type. Sets encode as arrays in insertion order, times as
// RFC3339 strings unless overridden.
func (in *Instance) ToJSON() ([]byte, error) {
	w := jsonwire.NewObjectWriter()
	for _, fs := range in.model.schema.fields {
		jv, err := exportJSON(in.fields[fs.Name], &in.model.config)
		if err != nil {
			return nil, err
		}
		w.Field(fs.Name, jv)
	}
	return w.Close()
}

// exportJSON converts one stored value into something goccy can marshal
// directly, with nested instances pre-encoded to preserve their key order.
func exportJSON(v any, cfg *Config) (any, error) {
	if v == nil {
		return nil, nil
	}
	if fn := lookupJSONSerializer(cfg, reflect.TypeOf(v)); fn != nil {
		conv, err := fn(v)
		if err != nil {
			return nil, err
		}
		return conv, nil
	}
	switch tv := v.(type) {
	case *Instance:
		raw, err := tv.ToJSON()
		if err != nil {
			return nil, err
		}
		return jsonwire.Raw(raw), nil
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			conv, err := exportJSON(item, cfg)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, item := range tv {
			conv, err := exportJSON(item, cfg)
			if err != nil {
				return nil, err
			}
			out[k] = conv
		}
		return out, nil
	case *Set:
		out := make([]any, 0, tv.Len())
		for _, item := range tv.Values() {
			conv, err := exportJSON(item, cfg)
			if err != nil {
				return nil, err
			}
			out = append(out, conv)
		}
		return out, nil
	default:
		return v, nil
	}
}
