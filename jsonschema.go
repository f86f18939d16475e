package datamodel

import (
	"fmt"

	"github.com/invopop/jsonschema"
)

// ExportJSONSchema projects a compiled model into a JSON Schema document.
// Nested model references are inlined (the registry already guarantees they
// resolve), unions map to oneOf, optionals allow null, and unknown keys are
// rejected via additionalProperties=false. The projection is one-way; this
// library does not consume JSON Schema.
func ExportJSONSchema(mt *ModelType) (*jsonschema.Schema, error) {
	return modelJSONSchema(mt, map[*ModelType]bool{})
}

func modelJSONSchema(mt *ModelType, seen map[*ModelType]bool) (*jsonschema.Schema, error) {
	if seen[mt] {
		// Self-referential models inline one level and fall back to a free
		// object for the cycle edge.
		return &jsonschema.Schema{Type: "object"}, nil
	}
	seen[mt] = true
	defer delete(seen, mt)

	out := &jsonschema.Schema{
		Type:                 "object",
		Properties:           jsonschema.NewProperties(),
		AdditionalProperties: jsonschema.FalseSchema,
	}
	for _, fs := range mt.schema.fields {
		sub, err := nodeJSONSchema(fs.Type, seen)
		if err != nil {
			return nil, err
		}
		if fs.HasDefault {
			sub.Default = fs.Default
		}
		out.Properties.Set(fs.Name, sub)
		if fs.Required {
			out.Required = append(out.Required, fs.Name)
		}
	}
	return out, nil
}

func nodeJSONSchema(t *TypeNode, seen map[*ModelType]bool) (*jsonschema.Schema, error) {
	if t == nil {
		return &jsonschema.Schema{}, nil
	}
	switch t.Kind {
	case KindPrimitive:
		switch t.Prim {
		case PrimInt:
			return &jsonschema.Schema{Type: "integer"}, nil
		case PrimFloat:
			return &jsonschema.Schema{Type: "number"}, nil
		case PrimStr:
			return &jsonschema.Schema{Type: "string"}, nil
		case PrimBool:
			return &jsonschema.Schema{Type: "boolean"}, nil
		case PrimTime:
			return &jsonschema.Schema{Type: "string", Format: "date-time"}, nil
		case PrimBytes:
			return &jsonschema.Schema{Type: "string"}, nil
		}
	case KindAny:
		return &jsonschema.Schema{}, nil
	case KindOptional:
		inner, err := nodeJSONSchema(t.Elem, seen)
		if err != nil {
			return nil, err
		}
		return &jsonschema.Schema{OneOf: []*jsonschema.Schema{inner, {Type: "null"}}}, nil
	case KindUnion:
		out := &jsonschema.Schema{}
		for _, cand := range t.Args {
			s, err := nodeJSONSchema(cand, seen)
			if err != nil {
				return nil, err
			}
			out.OneOf = append(out.OneOf, s)
		}
		return out, nil
	case KindList, KindSet:
		elem, err := nodeJSONSchema(t.Elem, seen)
		if err != nil {
			return nil, err
		}
		return &jsonschema.Schema{Type: "array", Items: elem}, nil
	case KindTuple:
		// Fixed arity renders as a plain array; positional member types are a
		// runtime concern the draft-07 subset used here does not express.
		return &jsonschema.Schema{Type: "array"}, nil
	case KindDict:
		val, err := nodeJSONSchema(t.Val, seen)
		if err != nil {
			return nil, err
		}
		return &jsonschema.Schema{Type: "object", AdditionalProperties: val}, nil
	case KindModelRef:
		if t.model == nil {
			return nil, fmt.Errorf("datamodel: unresolved model reference %q", t.Ref)
		}
		return modelJSONSchema(t.model, seen)
	case KindClassVar:
		return nodeJSONSchema(t.Elem, seen)
	}
	return &jsonschema.Schema{}, nil
}
