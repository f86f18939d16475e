package datamodel

import (
	"context"
	"fmt"
	"sync"
)

// Registry owns a set of model types that may reference each other by name.
// Registration is two-pass: names are claimed first, then every type
// expression is resolved, so forward and self-references never require an
// inline cycle. After a successful Register the compiled schemas are
// immutable and safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	models map[string]*ModelType
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{models: map[string]*ModelType{}}
}

// Register compiles and installs the given model declarations as one unit.
// Build-time failures (duplicate names, unknown references, class-attribute
// value mismatches, misdeclared hooks or fields) abort the whole batch: no
// model from a failing batch is ever installed, so a misconfigured model can
// never instantiate.
func (r *Registry) Register(builders ...*ModelBuilder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var iss Issues
	staged := make(map[string]*ModelType, len(builders))

	// Pass 1: compile schemas and claim names.
	for _, b := range builders {
		if b == nil {
			continue
		}
		if len(b.issues) > 0 {
			iss = AppendIssues(iss, prefixModel(b.name, b.issues)...)
		}
		if b.name == "" {
			iss = AppendIssues(iss, Issue{Code: CodeInvalidField, Message: "model has no name"})
			continue
		}
		if _, exists := r.models[b.name]; exists {
			iss = AppendIssues(iss, Issue{Code: CodeDuplicateModel, Message: fmt.Sprintf("model %q already registered", b.name)})
			continue
		}
		if _, exists := staged[b.name]; exists {
			iss = AppendIssues(iss, Issue{Code: CodeDuplicateModel, Message: fmt.Sprintf("model %q declared twice in one batch", b.name)})
			continue
		}
		staged[b.name] = newModelType(r, b)
	}

	// Pass 2: resolve model references and run build-time validation.
	for name, mt := range staged {
		iss = AppendIssues(iss, r.resolveModel(name, mt, staged)...)
	}
	for name, mt := range staged {
		iss = AppendIssues(iss, checkDictKeys(name, mt)...)
		iss = AppendIssues(iss, checkClassAttrs(name, mt)...)
		iss = AppendIssues(iss, checkHooks(name, mt)...)
	}
	if len(iss) > 0 {
		return iss
	}
	for name, mt := range staged {
		r.models[name] = mt
	}
	return nil
}

// Model looks up a registered model type by name.
func (r *Registry) Model(name string) (*ModelType, bool) {
	r.mu.RLock()
	mt, ok := r.models[name]
	r.mu.RUnlock()
	return mt, ok
}

// MustModel is like Model but panics when the name is unknown.
func (r *Registry) MustModel(name string) *ModelType {
	mt, ok := r.Model(name)
	if !ok {
		panic(fmt.Sprintf("datamodel: unknown model %q", name))
	}
	return mt
}

// resolveModel walks every type expression of one model and binds ModelRef
// nodes to their target types, preferring models staged in the same batch.
func (r *Registry) resolveModel(name string, mt *ModelType, staged map[string]*ModelType) Issues {
	var iss Issues
	resolve := func(path string, t *TypeNode) {
		walkTypeNodes(t, func(n *TypeNode) {
			if n.Kind != KindModelRef {
				return
			}
			if target, ok := staged[n.Ref]; ok {
				n.model = target
				n.schema = target.schema
				return
			}
			if target, ok := r.models[n.Ref]; ok {
				n.model = target
				n.schema = target.schema
				return
			}
			iss = AppendIssues(iss, Issue{
				Path: path, Code: CodeUnknownModel,
				Message: fmt.Sprintf("model %q references unknown model %q", name, n.Ref),
			})
		})
	}
	for _, fs := range mt.schema.fields {
		resolve(name+"."+fs.Name, fs.Type)
	}
	for _, ca := range mt.schema.classAttrs {
		resolve(name+"."+ca.Name, ca.Type)
	}
	return iss
}

// checkDictKeys rejects Dict declarations whose key type is anything but str
// or Any. Input trees are string-keyed maps, so no other key type could ever
// match at runtime; the mistake surfaces at Register instead of per key.
func checkDictKeys(name string, mt *ModelType) Issues {
	var iss Issues
	check := func(path string, t *TypeNode) {
		walkTypeNodes(t, func(n *TypeNode) {
			if n.Kind != KindDict {
				return
			}
			k := n.Key
			if k == nil || k.Kind == KindAny || (k.Kind == KindPrimitive && k.Prim == PrimStr) {
				return
			}
			iss = AppendIssues(iss, Issue{
				Path: path, Code: CodeInvalidField,
				Message: fmt.Sprintf("Dict keys must be str or Any, got %s", k),
			})
		})
	}
	for _, fs := range mt.schema.fields {
		check(name+"."+fs.Name, fs.Type)
	}
	for _, ca := range mt.schema.classAttrs {
		check(name+"."+ca.Name, ca.Type)
	}
	return iss
}

// checkClassAttrs validates every class-attribute value against its declared
// type, once, at build time.
func checkClassAttrs(name string, mt *ModelType) Issues {
	var iss Issues
	for _, ca := range mt.schema.classAttrs {
		if ca.Type == nil {
			iss = AppendIssues(iss, Issue{
				Path: name + "." + ca.Name, Code: CodeInvalidClassAttribute,
				Message: "class attribute has no type",
			})
			continue
		}
		if ca.Initial == nil {
			iss = AppendIssues(iss, Issue{
				Path: name + "." + ca.Name, Code: CodeInvalidClassAttribute,
				Message: "Missing required class attribute: " + ca.Name,
			})
			continue
		}
		col := &collector{}
		v, ok := validateNode(context.Background(), ca.Type, ca.Initial, ca.Name, col, &mt.config)
		if !ok {
			iss = AppendIssues(iss, Issue{
				Path: name + "." + ca.Name, Code: CodeInvalidClassAttribute,
				Message: fmt.Sprintf("Class attribute %s must be %s, got %s", ca.Name, ca.Type, typeName(ca.Initial)),
			})
			continue
		}
		mt.classVals[ca.Name] = v
	}
	return iss
}

// checkHooks rejects field hooks that name a field the schema does not
// declare. Hook arity is enforced by the Go signatures; the name binding is
// the part left to runtime declaration, so it is what gets validated here.
func checkHooks(name string, mt *ModelType) Issues {
	var iss Issues
	for _, field := range mt.hooks.fieldHookNames() {
		if _, ok := mt.schema.byName[field]; !ok {
			iss = AppendIssues(iss, Issue{
				Path: name + "." + field, Code: CodeInvalidHook,
				Message: fmt.Sprintf("field hook references unknown field %q", field),
			})
		}
	}
	return iss
}

func newModelType(r *Registry, b *ModelBuilder) *ModelType {
	schema := &Schema{
		name:     b.name,
		fields:   b.fields,
		byName:   b.byName,
		classIdx: map[string]*ClassAttrSpec{},
	}
	for _, fs := range b.fields {
		fs.Required = !fs.HasDefault && fs.DefaultFactory == nil &&
			(fs.Type == nil || fs.Type.Kind != KindOptional)
	}
	for _, ca := range b.classAttrs {
		schema.classAttrs = append(schema.classAttrs, ca)
		schema.classIdx[ca.Name] = ca
	}
	return &ModelType{
		schema:    schema,
		registry:  r,
		hooks:     b.hooks,
		config:    b.config,
		classVals: map[string]any{},
	}
}

// walkTypeNodes visits t and every nested node.
func walkTypeNodes(t *TypeNode, fn func(*TypeNode)) {
	if t == nil {
		return
	}
	fn(t)
	walkTypeNodes(t.Elem, fn)
	walkTypeNodes(t.Key, fn)
	walkTypeNodes(t.Val, fn)
	for _, a := range t.Args {
		walkTypeNodes(a, fn)
	}
}

func prefixModel(model string, iss Issues) Issues {
	out := make(Issues, 0, len(iss))
	for _, it := range iss {
		p := it.Path
		if model != "" {
			if p == "" {
				p = model
			} else {
				p = model + "." + p
			}
		}
		out = append(out, Issue{Path: p, Code: it.Code, Message: it.Message, Hint: it.Hint, Cause: it.Cause, Params: it.Params})
	}
	return out
}
