// Package codec ships optional converters for common wire spellings. Each
// Register function installs process-wide serializer/deserializer entries;
// models can shadow them through their Config.
package codec

import (
	"github.com/google/uuid"

	"github.com/syntropo/datamodel"
)

// UUIDType declares a uuid.UUID-valued field. Strings deserialize through
// uuid.Parse once RegisterUUID has run.
func UUIDType() *datamodel.TypeNode { return datamodel.Typed(uuid.UUID{}) }

// RegisterUUID installs string <-> uuid.UUID conversion: canonical text form
// on export, uuid.Parse on import.
func RegisterUUID() {
	datamodel.RegisterDeserializer(uuid.UUID{}, "", func(v any) (any, error) {
		u, err := uuid.Parse(v.(string))
		if err != nil {
			return nil, err
		}
		return u, nil
	})
	datamodel.RegisterDictSerializer(uuid.UUID{}, func(v any) (any, error) {
		return v.(uuid.UUID).String(), nil
	})
	datamodel.RegisterJSONSerializer(uuid.UUID{}, func(v any) (any, error) {
		return v.(uuid.UUID).String(), nil
	})
}
