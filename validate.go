package datamodel

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"time"
)

// collector aggregates structural issues across one top-level validation
// pass. Independent fields and elements are never short-circuited; the engine
// finishes the walk and reports everything it found.
type collector struct {
	iss Issues
}

func (c *collector) add(path, code, message string) {
	c.iss = AppendIssues(c.iss, Issue{Path: path, Code: code, Message: message})
}

func (c *collector) merge(prefix string, iss Issues) {
	for _, it := range iss {
		p := it.Path
		if p == "" {
			p = prefix
		} else {
			p = prefix + "." + p
		}
		c.iss = AppendIssues(c.iss, Issue{Path: p, Code: it.Code, Message: it.Message, Hint: it.Hint, Cause: it.Cause, Params: it.Params})
	}
}

func (c *collector) has() bool { return len(c.iss) > 0 }

// typeName renders the runtime type of a value the way error messages spell
// it: int, float, str, bool, list, dict, set, time, bytes, nil, or the model
// name for instances.
func typeName(v any) string {
	switch tv := v.(type) {
	case nil:
		return "nil"
	case bool:
		return "bool"
	case int, int32, int64:
		return "int"
	case float32, float64:
		return "float"
	case string:
		return "str"
	case []byte:
		return "bytes"
	case []any:
		return "list"
	case map[string]any:
		return "dict"
	case *Set:
		return "set"
	case time.Time:
		return "time"
	case *Instance:
		return tv.model.schema.name
	default:
		return reflect.TypeOf(v).String()
	}
}

// validateNode validates and coerces v against node, recording every failure
// under path. It returns the typed value and whether the subtree succeeded.
// The only implicit cross-type coercion is integer -> float; anything else
// must come in through a registered deserializer.
func validateNode(ctx context.Context, node *TypeNode, v any, path string, col *collector, cfg *Config) (any, bool) {
	switch node.Kind {
	case KindAny:
		return v, true
	case KindOptional:
		if v == nil {
			return nil, true
		}
		return validateNode(ctx, node.Elem, v, path, col, cfg)
	case KindClassVar:
		return validateNode(ctx, node.Elem, v, path, col, cfg)
	case KindPrimitive:
		return validatePrimitive(node.Prim, v, path, col, cfg)
	case KindUnion:
		return validateUnion(ctx, node, v, path, col, cfg)
	case KindList:
		return validateList(ctx, node, v, path, col, cfg)
	case KindDict:
		return validateDict(ctx, node, v, path, col, cfg)
	case KindTuple:
		return validateTuple(ctx, node, v, path, col, cfg)
	case KindSet:
		return validateSet(ctx, node, v, path, col, cfg)
	case KindModelRef:
		return validateModelRef(ctx, node, v, path, col, cfg)
	case KindCustom:
		return validateCustom(node, v, path, col, cfg)
	}
	col.add(path, CodeTypeMismatch, "unsupported type node")
	return nil, false
}

func validatePrimitive(p PrimKind, v any, path string, col *collector, cfg *Config) (any, bool) {
	switch p {
	case PrimInt:
		switch tv := v.(type) {
		case int64:
			return tv, true
		case int:
			return int64(tv), true
		case int32:
			return int64(tv), true
		}
	case PrimFloat:
		switch tv := v.(type) {
		case float64:
			return tv, true
		case float32:
			return float64(tv), true
		// The single sanctioned implicit widening.
		case int64:
			return float64(tv), true
		case int:
			return float64(tv), true
		case int32:
			return float64(tv), true
		}
	case PrimStr:
		if s, ok := v.(string); ok {
			return s, true
		}
	case PrimBool:
		if b, ok := v.(bool); ok {
			return b, true
		}
	case PrimTime:
		if t, ok := v.(time.Time); ok {
			return t, true
		}
	case PrimBytes:
		if b, ok := v.([]byte); ok {
			return b, true
		}
	}
	// Not the declared runtime type; a registered deserializer may still
	// produce it. The result is checked against the declared type again.
	if v != nil {
		key := ConvKey{Target: primTarget(p), Source: reflect.TypeOf(normalizeInt(v))}
		if fn := lookupDeserializer(cfg, key); fn != nil {
			conv, err := fn(normalizeInt(v))
			if err == nil {
				scratch := &collector{}
				if out, ok := validatePrimitive(p, conv, path, scratch, nil); ok {
					return out, true
				}
			}
		}
	}
	col.add(path, CodeTypeMismatch, fmt.Sprintf("Expected type %s, got %s", p, typeName(v)))
	return nil, false
}

// normalizeInt folds machine ints into the canonical int64 so deserializer
// source keys only need one integer entry.
func normalizeInt(v any) any {
	switch tv := v.(type) {
	case int:
		return int64(tv)
	case int32:
		return int64(tv)
	}
	return v
}

// validateUnion tries candidates strictly in declared order and commits to
// the first full success. Candidate failures are discarded, not aggregated.
func validateUnion(ctx context.Context, node *TypeNode, v any, path string, col *collector, cfg *Config) (any, bool) {
	for _, cand := range node.Args {
		scratch := &collector{}
		if out, ok := validateNode(ctx, cand, v, path, scratch, cfg); ok && !scratch.has() {
			return out, true
		}
	}
	col.add(path, CodeUnionNoMatch, fmt.Sprintf("Value did not match any candidate in Union: got %s", typeName(v)))
	return nil, false
}

func validateList(ctx context.Context, node *TypeNode, v any, path string, col *collector, cfg *Config) (any, bool) {
	items, ok := v.([]any)
	if !ok {
		col.add(path, CodeTypeMismatch, fmt.Sprintf("Expected a list, got %s", typeName(v)))
		return nil, false
	}
	out := make([]any, len(items))
	allOK := true
	for i, item := range items {
		conv, ok := validateNode(ctx, node.Elem, item, path+"."+strconv.Itoa(i), col, cfg)
		if !ok {
			allOK = false
			continue
		}
		out[i] = conv
	}
	if !allOK {
		return nil, false
	}
	return out, true
}

func validateDict(ctx context.Context, node *TypeNode, v any, path string, col *collector, cfg *Config) (any, bool) {
	src, ok := v.(map[string]any)
	if !ok {
		col.add(path, CodeTypeMismatch, fmt.Sprintf("Expected a dict, got %s", typeName(v)))
		return nil, false
	}
	// key-sorted iteration for deterministic reports
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(src))
	allOK := true
	for _, k := range keys {
		entryPath := path + "." + k
		if _, ok := validateNode(ctx, node.Key, k, entryPath, col, cfg); !ok {
			allOK = false
			continue
		}
		conv, ok := validateNode(ctx, node.Val, src[k], entryPath, col, cfg)
		if !ok {
			allOK = false
			continue
		}
		out[k] = conv
	}
	if !allOK {
		return nil, false
	}
	return out, true
}

func validateTuple(ctx context.Context, node *TypeNode, v any, path string, col *collector, cfg *Config) (any, bool) {
	items, ok := v.([]any)
	if !ok {
		col.add(path, CodeTypeMismatch, fmt.Sprintf("Expected a tuple, got %s", typeName(v)))
		return nil, false
	}
	if len(items) != len(node.Args) {
		col.add(path, CodeTupleArity, fmt.Sprintf("Expected tuple of length %d, got %d", len(node.Args), len(items)))
		return nil, false
	}
	out := make([]any, len(items))
	allOK := true
	for i, item := range items {
		conv, ok := validateNode(ctx, node.Args[i], item, path+"."+strconv.Itoa(i), col, cfg)
		if !ok {
			allOK = false
			continue
		}
		out[i] = conv
	}
	if !allOK {
		return nil, false
	}
	return out, true
}

func validateSet(ctx context.Context, node *TypeNode, v any, path string, col *collector, cfg *Config) (any, bool) {
	var items []any
	switch tv := v.(type) {
	case *Set:
		items = tv.Values()
	case []any:
		// JSON and YAML spell sets as arrays.
		items = tv
	default:
		col.add(path, CodeTypeMismatch, fmt.Sprintf("Expected a set, got %s", typeName(v)))
		return nil, false
	}
	out := NewSet()
	allOK := true
	for i, item := range items {
		conv, ok := validateNode(ctx, node.Elem, item, path+"."+strconv.Itoa(i), col, cfg)
		if !ok {
			allOK = false
			continue
		}
		out.Add(conv)
	}
	if !allOK {
		return nil, false
	}
	return out, true
}

// validateCustom matches a concrete Go type exactly, falling back to the
// deserializer registry for everything else.
func validateCustom(node *TypeNode, v any, path string, col *collector, cfg *Config) (any, bool) {
	if v != nil && reflect.TypeOf(v) == node.RT {
		return v, true
	}
	if v != nil {
		src := normalizeInt(v)
		if fn := lookupDeserializer(cfg, ConvKey{Target: node.RT, Source: reflect.TypeOf(src)}); fn != nil {
			conv, err := fn(src)
			if err == nil && conv != nil && reflect.TypeOf(conv) == node.RT {
				return conv, true
			}
		}
	}
	col.add(path, CodeTypeMismatch, fmt.Sprintf("Expected type %s, got %s", node.RT, typeName(v)))
	return nil, false
}

// validateModelRef recurses into the nested model's full construction
// pipeline; its aggregated errors are re-pathed under the parent field.
func validateModelRef(ctx context.Context, node *TypeNode, v any, path string, col *collector, cfg *Config) (any, bool) {
	if node.model == nil {
		col.add(path, CodeUnknownModel, fmt.Sprintf("unresolved model reference %q", node.Ref))
		return nil, false
	}
	switch tv := v.(type) {
	case *Instance:
		if tv.model == node.model {
			return tv, true
		}
	case map[string]any:
		inst, err := node.model.Construct(ctx, tv)
		if err == nil {
			return inst, true
		}
		if iss, ok := AsIssues(err); ok {
			col.merge(path, iss)
			return nil, false
		}
		// Nested hook failures surface as a single entry at the field path.
		col.iss = AppendIssues(col.iss, Issue{Path: path, Code: CodeHookRaised, Message: err.Error(), Cause: err})
		return nil, false
	}
	col.add(path, CodeTypeMismatch, fmt.Sprintf("Expected type %s, got %s", node.model.schema.name, typeName(v)))
	return nil, false
}
