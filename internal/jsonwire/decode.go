// Package jsonwire exchanges the generic tree-shaped value representation
// with JSON text. Decoding preserves integer/float distinction by reading
// numbers as json.Number and folding them to int64 or float64.
package jsonwire

import (
	"bytes"
	"io"

	json "github.com/goccy/go-json"
)

// Decode parses one JSON document into the generic tree: map[string]any,
// []any, string, bool, int64, float64, nil.
func Decode(data []byte) (any, error) {
	return DecodeReader(bytes.NewReader(data))
}

// DecodeReader is Decode over an io.Reader.
func DecodeReader(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return normalize(v), nil
}

// normalize folds json.Number leaves into int64 when the literal is integral
// and float64 otherwise.
func normalize(v any) any {
	switch tv := v.(type) {
	case json.Number:
		if i, err := tv.Int64(); err == nil {
			return i
		}
		if f, err := tv.Float64(); err == nil {
			return f
		}
		return string(tv)
	case map[string]any:
		for k, item := range tv {
			tv[k] = normalize(item)
		}
		return tv
	case []any:
		for i, item := range tv {
			tv[i] = normalize(item)
		}
		return tv
	default:
		return v
	}
}
