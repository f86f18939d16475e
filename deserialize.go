package datamodel

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"sync"
	"time"
)

// Process-wide deserializer table, keyed by (declared target type, runtime
// source type). Entries run before structural validation; results still pass
// through the validator for the declared type.
var (
	deserMu             sync.RWMutex
	globalDeserializers = map[ConvKey]ConvertFunc{}
)

// RegisterDeserializer installs a process-wide converter from the runtime type
// of source to the runtime type of target. target and source are samples, e.g.
// RegisterDeserializer(time.Time{}, "", parseTime).
func RegisterDeserializer(target, source any, fn ConvertFunc) {
	if fn == nil {
		return
	}
	key := ConvKey{Target: reflect.TypeOf(target), Source: reflect.TypeOf(source)}
	deserMu.Lock()
	globalDeserializers[key] = fn
	deserMu.Unlock()
}

// lookupDeserializer resolves per-model first, then the global table.
func lookupDeserializer(cfg *Config, key ConvKey) ConvertFunc {
	if cfg != nil && cfg.Deserializer != nil {
		if fn, ok := cfg.Deserializer[key]; ok {
			return fn
		}
	}
	deserMu.RLock()
	fn := globalDeserializers[key]
	deserMu.RUnlock()
	return fn
}

// primTarget maps a primitive kind to the reflect.Type deserializers key on.
func primTarget(p PrimKind) reflect.Type {
	switch p {
	case PrimInt:
		return reflect.TypeOf(int64(0))
	case PrimFloat:
		return reflect.TypeOf(float64(0))
	case PrimStr:
		return reflect.TypeOf("")
	case PrimBool:
		return reflect.TypeOf(false)
	case PrimTime:
		return reflect.TypeOf(time.Time{})
	case PrimBytes:
		return reflect.TypeOf([]byte(nil))
	}
	return nil
}

// isoTimeLayouts are tried in order for string -> time conversion. Beyond
// RFC3339 the zone-less and date-only spellings common in exported data are
// accepted.
var isoTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseISOTime(s string) (time.Time, error) {
	for _, layout := range isoTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("datamodel: cannot parse %q as a time value", s)
}

func init() {
	// Default converters available to every model unless shadowed:
	// ISO-8601 strings and epoch numbers become time.Time.
	RegisterDeserializer(time.Time{}, "", func(v any) (any, error) {
		return parseISOTime(v.(string))
	})
	RegisterDeserializer(time.Time{}, int64(0), func(v any) (any, error) {
		return time.Unix(v.(int64), 0).UTC(), nil
	})
	RegisterDeserializer(time.Time{}, float64(0), func(v any) (any, error) {
		sec, frac := int64(v.(float64)), v.(float64)
		return time.Unix(sec, int64((frac-float64(sec))*1e9)).UTC(), nil
	})
	// JSON spells bytes as base64 text; decode it back for bytes-typed fields.
	RegisterDeserializer([]byte(nil), "", func(v any) (any, error) {
		b, err := base64.StdEncoding.DecodeString(v.(string))
		if err != nil {
			return nil, err
		}
		return b, nil
	})
}
