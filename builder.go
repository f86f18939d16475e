package datamodel

// ModelBuilder declares a model type: named, typed fields in declaration
// order, class attributes, hooks, and configuration. Builders are inert until
// passed to Registry.Register, which compiles and validates them.
type ModelBuilder struct {
	name       string
	fields     []*FieldSpec
	byName     map[string]*FieldSpec
	classAttrs []*ClassAttrSpec
	hooks      hookTable
	config     Config
	issues     Issues // declaration-time misuse, surfaced at Register
}

// fieldStep scopes builder methods to the most recently declared field.
type fieldStep struct {
	b    *ModelBuilder
	spec *FieldSpec
}

// NewModel starts a model declaration with safe defaults (validate-on-set
// enabled, no hooks, no converter overrides).
func NewModel(name string) *ModelBuilder {
	return &ModelBuilder{
		name:   name,
		byName: map[string]*FieldSpec{},
		config: NewConfig(),
	}
}

// Field declares an instance field. Declaration order is the export and
// error-report order.
func (b *ModelBuilder) Field(name string, t *TypeNode) *fieldStep {
	spec := &FieldSpec{Name: name, Type: t, Index: len(b.fields)}
	if prev, dup := b.byName[name]; dup {
		b.issues = AppendIssues(b.issues, Issue{
			Path: name, Code: CodeInvalidField,
			Message: "field declared twice",
		})
		return &fieldStep{b: b, spec: prev}
	}
	if t == nil {
		b.issues = AppendIssues(b.issues, Issue{
			Path: name, Code: CodeInvalidField,
			Message: "field has no type",
		})
	} else if t.Kind == KindClassVar {
		b.issues = AppendIssues(b.issues, Issue{
			Path: name, Code: CodeInvalidField,
			Message: "ClassVar types belong to ClassAttr declarations",
		})
	}
	b.fields = append(b.fields, spec)
	b.byName[name] = spec
	return &fieldStep{b: b, spec: spec}
}

// Default sets the field's default value. Mutually exclusive with
// DefaultFactory. Defaults flow through the validation engine on every
// construction, so containers are rebuilt per instance.
func (f *fieldStep) Default(v any) *fieldStep {
	if f.spec.DefaultFactory != nil {
		f.b.issues = AppendIssues(f.b.issues, Issue{
			Path: f.spec.Name, Code: CodeInvalidField,
			Message: "cannot specify both default and default factory",
		})
		return f
	}
	f.spec.Default = v
	f.spec.HasDefault = true
	return f
}

// DefaultFactory sets a factory invoked once per instantiation; its results
// are never shared across instances. Mutually exclusive with Default.
func (f *fieldStep) DefaultFactory(fn func() any) *fieldStep {
	if f.spec.HasDefault {
		f.b.issues = AppendIssues(f.b.issues, Issue{
			Path: f.spec.Name, Code: CodeInvalidField,
			Message: "cannot specify both default and default factory",
		})
		return f
	}
	if fn == nil {
		f.b.issues = AppendIssues(f.b.issues, Issue{
			Path: f.spec.Name, Code: CodeInvalidField,
			Message: "default factory is nil",
		})
		return f
	}
	f.spec.DefaultFactory = fn
	return f
}

// Alias adds accepted input keys for the field. Aliases are tried in the
// declared order before the canonical name.
func (f *fieldStep) Alias(names ...string) *fieldStep {
	f.spec.Aliases = append(f.spec.Aliases, names...)
	return f
}

// Field continues the declaration with the next field.
func (f *fieldStep) Field(name string, t *TypeNode) *fieldStep { return f.b.Field(name, t) }

// Done returns the underlying builder for registration.
func (f *fieldStep) Done() *ModelBuilder { return f.b }

// ClassAttr declares a class-level attribute with its type and initial value.
// The value is shared by every instance of the type and mutated only through
// the ModelType. The value/type match is checked at Register time.
func (b *ModelBuilder) ClassAttr(name string, t *TypeNode, value any) *ModelBuilder {
	inner := t
	if t != nil && t.Kind == KindClassVar {
		inner = t.Elem
	}
	b.classAttrs = append(b.classAttrs, &ClassAttrSpec{Name: name, Type: inner, Initial: value})
	return b
}

// WithConfig replaces the model configuration.
func (b *ModelBuilder) WithConfig(cfg Config) *ModelBuilder {
	b.config = cfg
	return b
}

// ---- hook registration (validated at Register time, not at call time) ----

// BeforeModel registers a synchronous model-before hook.
func (b *ModelBuilder) BeforeModel(fn ModelBeforeHook) *ModelBuilder {
	if fn == nil {
		b.issues = AppendIssues(b.issues, Issue{Code: CodeInvalidHook, Message: "model-before hook is nil"})
		return b
	}
	b.hooks.modelBefore = append(b.hooks.modelBefore, fn)
	return b
}

// AfterModel registers a synchronous model-after hook.
func (b *ModelBuilder) AfterModel(fn ModelAfterHook) *ModelBuilder {
	if fn == nil {
		b.issues = AppendIssues(b.issues, Issue{Code: CodeInvalidHook, Message: "model-after hook is nil"})
		return b
	}
	b.hooks.modelAfter = append(b.hooks.modelAfter, fn)
	return b
}

// BeforeField registers a synchronous before-hook for one field's raw value.
func (b *ModelBuilder) BeforeField(field string, fn FieldHook) *ModelBuilder {
	b.addFieldHook(&b.hooks.fieldBefore, "field-before", field, fn)
	return b
}

// AfterField registers a synchronous after-hook for one field's typed value.
func (b *ModelBuilder) AfterField(field string, fn FieldHook) *ModelBuilder {
	b.addFieldHook(&b.hooks.fieldAfter, "field-after", field, fn)
	return b
}

// AsyncBeforeModel registers a model-before hook that only runs during
// Deferred.Resolve. The context carries cancellation across suspension points.
func (b *ModelBuilder) AsyncBeforeModel(fn ModelBeforeHook) *ModelBuilder {
	if fn == nil {
		b.issues = AppendIssues(b.issues, Issue{Code: CodeInvalidHook, Message: "async model-before hook is nil"})
		return b
	}
	b.hooks.asyncModelBefore = append(b.hooks.asyncModelBefore, fn)
	return b
}

// AsyncAfterModel registers a model-after hook for the async pipeline.
func (b *ModelBuilder) AsyncAfterModel(fn ModelAfterHook) *ModelBuilder {
	if fn == nil {
		b.issues = AppendIssues(b.issues, Issue{Code: CodeInvalidHook, Message: "async model-after hook is nil"})
		return b
	}
	b.hooks.asyncModelAfter = append(b.hooks.asyncModelAfter, fn)
	return b
}

// AsyncBeforeField registers a field-before hook for the async pipeline.
func (b *ModelBuilder) AsyncBeforeField(field string, fn FieldHook) *ModelBuilder {
	b.addFieldHook(&b.hooks.asyncFieldBefore, "async field-before", field, fn)
	return b
}

// AsyncAfterField registers a field-after hook for the async pipeline.
func (b *ModelBuilder) AsyncAfterField(field string, fn FieldHook) *ModelBuilder {
	b.addFieldHook(&b.hooks.asyncFieldAfter, "async field-after", field, fn)
	return b
}

func (b *ModelBuilder) addFieldHook(dst *map[string][]FieldHook, stage, field string, fn FieldHook) {
	if fn == nil {
		b.issues = AppendIssues(b.issues, Issue{
			Path: field, Code: CodeInvalidHook,
			Message: stage + " hook is nil",
		})
		return
	}
	if *dst == nil {
		*dst = map[string][]FieldHook{}
	}
	(*dst)[field] = append((*dst)[field], fn)
}
