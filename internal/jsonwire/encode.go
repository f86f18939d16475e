package jsonwire

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// ObjectWriter emits one JSON object with caller-controlled key order. Values
// are marshaled with goccy/go-json; nested ordered objects are written by
// handing a nested writer's bytes to FieldRaw.
type ObjectWriter struct {
	buf   bytes.Buffer
	first bool
	err   error
}

// NewObjectWriter starts an object.
func NewObjectWriter() *ObjectWriter {
	w := &ObjectWriter{first: true}
	w.buf.WriteByte('{')
	return w
}

// Field writes one key/value pair, marshaling the value.
func (w *ObjectWriter) Field(key string, value any) {
	if w.err != nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		w.err = err
		return
	}
	w.FieldRaw(key, raw)
}

// FieldRaw writes one key with pre-encoded JSON bytes.
func (w *ObjectWriter) FieldRaw(key string, raw []byte) {
	if w.err != nil {
		return
	}
	if !w.first {
		w.buf.WriteByte(',')
	}
	w.first = false
	kb, err := json.Marshal(key)
	if err != nil {
		w.err = err
		return
	}
	w.buf.Write(kb)
	w.buf.WriteByte(':')
	w.buf.Write(raw)
}

// Close terminates the object and returns the encoded bytes.
func (w *ObjectWriter) Close() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}

// Marshal encodes an arbitrary value with goccy/go-json.
func Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Raw wraps pre-encoded JSON so it embeds verbatim when marshaled.
func Raw(b []byte) json.RawMessage { return json.RawMessage(b) }
