package datamodel

import "reflect"

// SerializeFunc converts a typed value into its exported representation.
type SerializeFunc func(v any) (any, error)

// ConvertFunc converts a raw input value into a value of a declared type. It
// runs before structural validation; the result is validated again.
type ConvertFunc func(v any) (any, error)

// ConvKey identifies one deserializer entry: a declared target type paired
// with the runtime type of the incoming value.
type ConvKey struct {
	Target reflect.Type
	Source reflect.Type
}

// Config carries per-model behavior. Zero value means: no custom converters
// and validate-on-set enabled (see NewConfig).
type Config struct {
	// DictSerializer maps runtime types to custom encoders used by ToDict.
	DictSerializer map[reflect.Type]SerializeFunc
	// JSONSerializer maps runtime types to custom encoders used by ToJSON.
	JSONSerializer map[reflect.Type]SerializeFunc
	// Deserializer overlays the process-wide deserializer table. A model-level
	// entry shadows the global one for the same (target, source) pair.
	Deserializer map[ConvKey]ConvertFunc
	// ValidateOnSet controls whether Instance.Set re-runs single-field
	// validation. Defaults to true.
	ValidateOnSet bool
}

// NewConfig returns the default configuration.
func NewConfig() Config {
	return Config{ValidateOnSet: true}
}

// TypeOf is a convenience for building serializer/deserializer keys from a
// sample value, e.g. TypeOf(time.Time{}).
func TypeOf(sample any) reflect.Type { return reflect.TypeOf(sample) }
