package datamodel

import (
	"encoding/base64"
	"reflect"
	"sync"
	"time"
)

// Process-wide serializer tables. Append-only after init in typical use; a
// model-level Config entry for the same runtime type shadows the global one.
var (
	serMu                 sync.RWMutex
	globalDictSerializers = map[reflect.Type]SerializeFunc{}
	globalJSONSerializers = map[reflect.Type]SerializeFunc{}
)

// RegisterDictSerializer installs a process-wide ToDict encoder for the
// runtime type of sample.
func RegisterDictSerializer(sample any, fn SerializeFunc) {
	if fn == nil {
		return
	}
	serMu.Lock()
	globalDictSerializers[reflect.TypeOf(sample)] = fn
	serMu.Unlock()
}

// RegisterJSONSerializer installs a process-wide ToJSON encoder for the
// runtime type of sample.
func RegisterJSONSerializer(sample any, fn SerializeFunc) {
	if fn == nil {
		return
	}
	serMu.Lock()
	globalJSONSerializers[reflect.TypeOf(sample)] = fn
	serMu.Unlock()
}

func lookupDictSerializer(cfg *Config, t reflect.Type) SerializeFunc {
	if cfg != nil && cfg.DictSerializer != nil {
		if fn, ok := cfg.DictSerializer[t]; ok {
			return fn
		}
	}
	serMu.RLock()
	fn := globalDictSerializers[t]
	serMu.RUnlock()
	return fn
}

func lookupJSONSerializer(cfg *Config, t reflect.Type) SerializeFunc {
	if cfg != nil && cfg.JSONSerializer != nil {
		if fn, ok := cfg.JSONSerializer[t]; ok {
			return fn
		}
	}
	serMu.RLock()
	fn := globalJSONSerializers[t]
	serMu.RUnlock()
	return fn
}

// exportDict converts one stored field value into its ToDict representation.
// Custom serializers win over the structural defaults; primitives pass
// through, containers and nested models recurse.
func exportDict(v any, cfg *Config) (any, error) {
	if v == nil {
		return nil, nil
	}
	if fn := lookupDictSerializer(cfg, reflect.TypeOf(v)); fn != nil {
		return fn(v)
	}
	switch tv := v.(type) {
	case *Instance:
		m, err := tv.ToDict()
		if err != nil {
			return nil, err
		}
		return m, nil
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			conv, err := exportDict(item, cfg)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, item := range tv {
			conv, err := exportDict(item, cfg)
			if err != nil {
				return nil, err
			}
			out[k] = conv
		}
		return out, nil
	case *Set:
		out := NewSet()
		for _, item := range tv.Values() {
			conv, err := exportDict(item, cfg)
			if err != nil {
				return nil, err
			}
			out.Add(conv)
		}
		return out, nil
	default:
		return v, nil
	}
}

func init() {
	// JSON has no native time value; export as canonical RFC3339. Shadowable
	// per model through Config.JSONSerializer.
	RegisterJSONSerializer(time.Time{}, func(v any) (any, error) {
		t := v.(time.Time)
		return t.UTC().Format(time.RFC3339Nano), nil
	})
	// Bytes export as standard base64 text, the inverse of the default bytes
	// deserializer.
	RegisterJSONSerializer([]byte(nil), func(v any) (any, error) {
		return base64.StdEncoding.EncodeToString(v.([]byte)), nil
	})
}
