package datamodel

import (
	"context"
	"fmt"
)

// ModelType is the registered runtime handle for one model: its compiled
// schema, hook table, configuration, and the shared class-attribute values.
type ModelType struct {
	schema   *Schema
	registry *Registry
	hooks    hookTable
	config   Config

	// classVals is shared by every instance of the type. It is append-only
	// after Register; concurrent writers through SetClassAttr must coordinate
	// themselves, the engine takes no locks here.
	classVals map[string]any
}

// Name returns the registered model name.
func (mt *ModelType) Name() string { return mt.schema.name }

// Schema returns the compiled, immutable schema.
func (mt *ModelType) Schema() *Schema { return mt.schema }

// Config returns the model configuration.
func (mt *ModelType) Config() Config { return mt.config }

// ClassAttr reads a class-level attribute value. The value is shared across
// all instances of the type.
func (mt *ModelType) ClassAttr(name string) (any, bool) {
	v, ok := mt.classVals[name]
	return v, ok
}

// SetClassAttr mutates a class-level attribute through the type. The new
// value is validated against the declared type. Mutation is visible to every
// existing and future instance; coordinating concurrent writers is the
// caller's responsibility.
func (mt *ModelType) SetClassAttr(name string, v any) error {
	ca, ok := mt.schema.classAttr(name)
	if !ok {
		return Issues{Issue{Path: name, Code: CodeInvalidClassAttribute, Message: fmt.Sprintf("model %q has no class attribute %q", mt.schema.name, name)}}
	}
	col := &collector{}
	conv, ok := validateNode(context.Background(), ca.Type, v, name, col, &mt.config)
	if !ok {
		return col.iss
	}
	mt.classVals[name] = conv
	return nil
}

// Construct runs the full synchronous pipeline: model-before hooks, field-
// before hooks, alias/default resolution plus structural validation, field-
// after hooks, model-after hooks. Structural failures aggregate into one
// Issues value; a hook failure aborts immediately with a *HookError and is
// never merged into the aggregate.
func (mt *ModelType) Construct(ctx context.Context, fields map[string]any) (*Instance, error) {
	return mt.construct(ctx, fields)
}

// FromDict builds an instance from a raw mapping. It is the mapping-shaped
// spelling of Construct.
func (mt *ModelType) FromDict(ctx context.Context, m map[string]any) (*Instance, error) {
	return mt.Construct(ctx, m)
}

// construct is shared by the sync entry points and phase 2 of the async
// pipeline (which wraps it with the awaited hooks).
func (mt *ModelType) construct(ctx context.Context, fields map[string]any) (*Instance, error) {
	data := make(map[string]any, len(fields))
	for k, v := range fields {
		data[k] = v
	}

	// model-before hooks mutate the raw input mapping; fail-fast on error.
	for _, hook := range mt.hooks.modelBefore {
		patch, err := hook(ctx, data)
		if err != nil {
			return nil, &HookError{Stage: "model-before", Err: err}
		}
		for k, v := range patch {
			data[k] = v
		}
	}

	// field-before hooks mutate raw per-field values, declaration order.
	for _, fs := range mt.schema.fields {
		hooks := mt.hooks.fieldBefore[fs.Name]
		if len(hooks) == 0 {
			continue
		}
		raw, ok := data[fs.Name]
		if !ok {
			continue
		}
		for _, hook := range hooks {
			next, err := hook(ctx, raw)
			if err != nil {
				return nil, &HookError{Stage: "field-before", Field: fs.Name, Err: err}
			}
			raw = next
		}
		data[fs.Name] = raw
	}

	// alias/default resolution and the structural engine; every failure is
	// collected, nothing short-circuits across fields.
	col := &collector{}
	store := make(map[string]any, len(mt.schema.fields))
	for _, fs := range mt.schema.fields {
		raw, found := resolveRaw(data, fs)
		if !found {
			switch {
			case fs.DefaultFactory != nil:
				raw = fs.DefaultFactory()
			case fs.HasDefault:
				raw = fs.Default
			case fs.Type != nil && fs.Type.Kind == KindOptional:
				store[fs.Name] = nil
				continue
			default:
				col.add(fs.Name, CodeMissingRequired, "Missing required field")
				continue
			}
		}
		v, ok := validateNode(ctx, fs.Type, raw, fs.Name, col, &mt.config)
		if !ok {
			continue
		}
		store[fs.Name] = v
	}
	if col.has() {
		return nil, col.iss
	}

	inst := &Instance{model: mt, fields: store}

	// field-after hooks adjust typed values; results re-validate so the
	// stored value always matches the declared type.
	for _, fs := range mt.schema.fields {
		hooks := mt.hooks.fieldAfter[fs.Name]
		if len(hooks) == 0 {
			continue
		}
		v := inst.fields[fs.Name]
		for _, hook := range hooks {
			next, err := hook(ctx, v)
			if err != nil {
				return nil, &HookError{Stage: "field-after", Field: fs.Name, Err: err}
			}
			v = next
		}
		acol := &collector{}
		conv, ok := validateNode(ctx, fs.Type, v, fs.Name, acol, &mt.config)
		if !ok {
			return nil, acol.iss
		}
		inst.fields[fs.Name] = conv
	}

	for _, hook := range mt.hooks.modelAfter {
		if err := hook(ctx, inst); err != nil {
			return nil, &HookError{Stage: "model-after", Err: err}
		}
	}
	return inst, nil
}
