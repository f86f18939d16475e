package datamodel

import (
	"context"
	"fmt"
	"reflect"
)

// Instance is one constructed model value: a field store for its own schema.
// Instances share nothing with each other; nested model fields are owned by
// the parent. Mutation goes through Set, which re-runs single-field
// validation atomically.
type Instance struct {
	model  *ModelType
	fields map[string]any
}

// Model returns the instance's model type.
func (in *Instance) Model() *ModelType { return in.model }

// Get reads a field value by canonical name.
func (in *Instance) Get(name string) (any, bool) {
	v, ok := in.fields[name]
	return v, ok
}

// MustGet is like Get but panics on unknown fields.
func (in *Instance) MustGet(name string) any {
	v, ok := in.fields[name]
	if !ok {
		panic(fmt.Sprintf("datamodel: model %q has no field %q", in.model.schema.name, name))
	}
	return v
}

// Set replaces one field value. With validate-on-set enabled (the default)
// the value is validated and coerced against the declared type first; on
// rejection the field keeps its prior value unchanged. Setting a ClassVar
// through an instance is rejected: class attributes mutate only through the
// type.
func (in *Instance) Set(ctx context.Context, name string, value any) error {
	if _, isClass := in.model.schema.classAttr(name); isClass {
		return Issues{Issue{Path: name, Code: CodeInvalidClassAttribute, Message: "Cannot set ClassVar attribute through an instance"}}
	}
	fs, ok := in.model.schema.Field(name)
	if !ok {
		return Issues{Issue{Path: name, Code: CodeInvalidField, Message: fmt.Sprintf("model %q has no field %q", in.model.schema.name, name)}}
	}
	if !in.model.config.ValidateOnSet {
		in.fields[name] = value
		return nil
	}
	col := &collector{}
	conv, okv := validateNode(ctx, fs.Type, value, name, col, &in.model.config)
	if !okv {
		return col.iss
	}
	in.fields[name] = conv
	return nil
}

// Range iterates fields in declaration order until fn returns false.
func (in *Instance) Range(fn func(name string, value any) bool) {
	for _, fs := range in.model.schema.fields {
		if !fn(fs.Name, in.fields[fs.Name]) {
			return
		}
	}
}

// ToDict exports the instance as a plain mapping. Nested models and
// containers convert recursively; custom dict serializers (model-level over
// global) apply per runtime type. A failing serializer aborts the export, the
// same way ToJSON does. Field iteration follows declaration order, which is
// observable through Range and ToJSON.
func (in *Instance) ToDict() (map[string]any, error) {
	out := make(map[string]any, len(in.model.schema.fields))
	for _, fs := range in.model.schema.fields {
		conv, err := exportDict(in.fields[fs.Name], &in.model.config)
		if err != nil {
			return nil, err
		}
		out[fs.Name] = conv
	}
	return out, nil
}

// Equal reports whether the two instances export identical ToDict values.
// Instances whose export fails compare unequal.
func (in *Instance) Equal(other *Instance) bool {
	if in == nil || other == nil {
		return in == other
	}
	a, err := in.ToDict()
	if err != nil {
		return false
	}
	b, err := other.ToDict()
	if err != nil {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// DeepCopy clones the instance and every owned container and nested model.
func (in *Instance) DeepCopy() *Instance {
	out := &Instance{model: in.model, fields: make(map[string]any, len(in.fields))}
	for k, v := range in.fields {
		out.fields[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch tv := v.(type) {
	case *Instance:
		return tv.DeepCopy()
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = deepCopyValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, item := range tv {
			out[k] = deepCopyValue(item)
		}
		return out
	case *Set:
		out := NewSet()
		for _, item := range tv.Values() {
			out.Add(deepCopyValue(item))
		}
		return out
	case []byte:
		out := make([]byte, len(tv))
		copy(out, tv)
		return out
	default:
		return v
	}
}
