package datamodel

// FieldSpec describes one declared instance field. Required is derived at
// build time: a field is required when it has no default, no default factory,
// and its type is not Optional.
type FieldSpec struct {
	Name           string
	Type           *TypeNode
	Required       bool
	Default        any
	HasDefault     bool
	DefaultFactory func() any
	Aliases        []string // accepted input keys, tried in order before Name
	Index          int      // declaration index; fixes export and report order
}

// ClassAttrSpec describes one class-level attribute. Its value lives on the
// ModelType and is shared by all instances.
type ClassAttrSpec struct {
	Name    string
	Type    *TypeNode // the inner type (ClassVar wrapper removed)
	Initial any
}

// Schema is the compiled, immutable shape of one model type: its fields in
// declaration order plus the class-attribute declarations. Built once per
// type by Registry.Register and never reordered.
type Schema struct {
	name       string
	fields     []*FieldSpec
	byName     map[string]*FieldSpec
	classAttrs []*ClassAttrSpec
	classIdx   map[string]*ClassAttrSpec
}

// Name returns the model name the schema was registered under.
func (s *Schema) Name() string { return s.name }

// Fields returns the field specs in declaration order. The slice is shared;
// callers must not mutate it.
func (s *Schema) Fields() []*FieldSpec { return s.fields }

// Field looks a field up by canonical name.
func (s *Schema) Field(name string) (*FieldSpec, bool) {
	fs, ok := s.byName[name]
	return fs, ok
}

// ClassAttrs returns the class-attribute specs in declaration order.
func (s *Schema) ClassAttrs() []*ClassAttrSpec { return s.classAttrs }

func (s *Schema) classAttr(name string) (*ClassAttrSpec, bool) {
	ca, ok := s.classIdx[name]
	return ca, ok
}

// resolveRaw applies alias resolution for one field against the raw input:
// declared aliases are tried in order, the canonical name last. First match
// wins.
func resolveRaw(input map[string]any, spec *FieldSpec) (any, bool) {
	for _, alias := range spec.Aliases {
		if v, ok := input[alias]; ok {
			return v, true
		}
	}
	v, ok := input[spec.Name]
	return v, ok
}
