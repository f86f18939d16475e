package codec

import (
	"time"

	"github.com/syntropo/datamodel"
)

// DurationType declares a time.Duration-valued field. Strings like "1h30m"
// and integer nanosecond counts deserialize once RegisterDuration has run.
func DurationType() *datamodel.TypeNode { return datamodel.Typed(time.Duration(0)) }

// RegisterDuration installs string/int <-> time.Duration conversion using
// time.ParseDuration spellings on export.
func RegisterDuration() {
	datamodel.RegisterDeserializer(time.Duration(0), "", func(v any) (any, error) {
		d, err := time.ParseDuration(v.(string))
		if err != nil {
			return nil, err
		}
		return d, nil
	})
	datamodel.RegisterDeserializer(time.Duration(0), int64(0), func(v any) (any, error) {
		return time.Duration(v.(int64)), nil
	})
	datamodel.RegisterDictSerializer(time.Duration(0), func(v any) (any, error) {
		return v.(time.Duration).String(), nil
	})
	datamodel.RegisterJSONSerializer(time.Duration(0), func(v any) (any, error) {
		return v.(time.Duration).String(), nil
	})
}

// RegisterEpochMillis replaces the default epoch-seconds reading of integer
// timestamps with epoch milliseconds for models that exchange JavaScript-style
// timestamps. Install per model via Config rather than globally when both
// conventions coexist.
func RegisterEpochMillis() {
	datamodel.RegisterDeserializer(time.Time{}, int64(0), func(v any) (any, error) {
		return time.UnixMilli(v.(int64)).UTC(), nil
	})
}
