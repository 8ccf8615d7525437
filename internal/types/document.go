package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotObject    = errors.New("json value is not an object")
	ErrMissingField = errors.New("missing field")
	ErrWrongType    = errors.New("field has unexpected type")
)

// FieldError reports a failed lookup along a dotted key path
type FieldError struct {
	Path string
	Err  error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Document is an untyped JSON object as returned by the weather service.
// The raw text is kept so the document prints with the server's key order and
// number formatting.
type Document struct {
	raw    []byte
	fields map[string]json.RawMessage
}

// ParseDocument parses b, which must hold exactly one JSON object. Syntax
// errors are wrapped so the offset of the problem is kept.
func ParseDocument(b []byte) (*Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: got %s", ErrNotObject, typeErr.Value)
		}
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	// a bare null unmarshals into a nil map without error
	if fields == nil {
		return nil, fmt.Errorf("%w: got null", ErrNotObject)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, bytes.TrimSpace(b)); err != nil {
		return nil, fmt.Errorf("failed to compact json: %w", err)
	}

	return &Document{
		raw:    compact.Bytes(),
		fields: fields,
	}, nil
}

// Entry is one named member of a combined document
type Entry struct {
	Key string
	Doc *Document
}

// Combine builds a single object whose members are the given documents, in order
func Combine(entries ...Entry) (*Document, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range entries {
		if e.Doc == nil {
			return nil, fmt.Errorf("combine: %s: nil document", e.Key)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, fmt.Errorf("combine: %w", err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(e.Doc.raw)
	}
	buf.WriteByte('}')

	return ParseDocument(buf.Bytes())
}

// Lookup returns the raw value at the given key path. Every element of the path
// except the last must resolve to an object.
func (d *Document) Lookup(path ...string) (json.RawMessage, error) {
	if len(path) == 0 {
		return d.raw, nil
	}

	fields := d.fields
	for i, key := range path {
		value, ok := fields[key]
		if !ok {
			return nil, &FieldError{Path: strings.Join(path[:i+1], "."), Err: ErrMissingField}
		}
		if i == len(path)-1 {
			return value, nil
		}

		fields = nil
		if isNull(value) || json.Unmarshal(value, &fields) != nil {
			return nil, &FieldError{Path: strings.Join(path[:i+1], "."), Err: ErrWrongType}
		}
	}

	// unreachable, the loop returns on the last key
	return nil, nil
}

// String returns the string value at the given key path
func (d *Document) String(path ...string) (string, error) {
	value, err := d.Lookup(path...)
	if err != nil {
		return "", err
	}

	var s string
	if isNull(value) || json.Unmarshal(value, &s) != nil {
		return "", &FieldError{Path: strings.Join(path, "."), Err: ErrWrongType}
	}
	return s, nil
}

// Bytes returns the compact JSON text of the document
func (d *Document) Bytes() []byte {
	return d.raw
}

// JSON returns the compact JSON text of the document
func (d *Document) JSON() string {
	return string(d.raw)
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}
