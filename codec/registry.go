// Package codec maps Go value types to the encode/decode strategies
// the driver layer needs: a centralized place for null policy and
// dialect quirks (booleans stored as SQLite integers, JSON round-
// tripped as text, UUIDs as canonical strings) instead of scattering
// per-database value plumbing the way the engine's mapping package
// once scattered type tables per database name.
package codec

import (
	"fmt"
	"sync"

	"github.com/omniql-engine/relq/rqerrors"
)

// Codec encodes a Go value into its wire representation and decodes it
// back. Both functions pass a nil value straight through unchanged,
// matching the null/missing sentinel contract every built-in codec
// honors; Encode/Decode enforce that before calling into the codec.
type Codec struct {
	TypeTag string
	Encode  func(v any) (any, error)
	Decode  func(wire any) (any, error)
}

// Registry holds the codecs known for each type tag. The zero value is
// usable but has no built-ins registered; use NewRegistry to get one
// pre-populated with the standard set.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec
}

// NewRegistry builds a Registry pre-populated with the built-in codecs:
// integer, float, text, boolean, date, datetime, uuid, json, binary.
func NewRegistry() *Registry {
	r := &Registry{codecs: make(map[string]Codec)}
	registerBuiltins(r)
	return r
}

// Register adds or replaces the codec for typeTag.
func (r *Registry) Register(typeTag string, c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[typeTag] = c
}

// GetCodec looks up the codec registered for typeTag.
func (r *Registry) GetCodec(typeTag string) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[typeTag]
	return c, ok
}

// Encode converts v to its wire representation using codec c. A nil v
// passes through as nil without invoking c.Encode.
func Encode(c Codec, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return c.Encode(v)
}

// Decode converts a wire value back to a Go value using codec c. A nil
// wire value passes through as nil without invoking c.Decode.
func Decode(c Codec, wire any) (any, error) {
	if wire == nil {
		return nil, nil
	}
	return c.Decode(wire)
}

// RowShape is implemented by generated or hand-written struct wrappers
// that want map_row's named-struct path instead of the anonymous-
// record path. This mirrors spec.md's "compile-time interface instead
// of reflection" design note: no struct tags or reflect.Value walking,
// just four methods the target type provides itself.
type RowShape interface {
	// FieldNames lists the struct's fields in declaration order; each
	// name is looked up as a column in the raw row.
	FieldNames() []string
	// FieldTypes lists the codec type tag for each field, same order
	// as FieldNames.
	FieldTypes() []string
	// FieldNullable reports, for each field in FieldNames order,
	// whether the field's Go type models the null/missing sentinel
	// (e.g. a pointer or an interface). MapRow raises NullNotAllowed
	// for any field reported false here that receives a NULL column.
	FieldNullable() []bool
	// FromPositional constructs the shape from decoded field values, in
	// FieldNames order. It returns an error to reject malformed tuples
	// (e.g. a value outside an expected range).
	FromPositional(values []any) (any, error)
}

// MapRow decodes a raw driver row into T. If T implements RowShape, its
// declared fields are looked up by name in raw, decoded through the
// registry, and passed positionally to FromPositional. Otherwise T is
// treated as an anonymous record and raw is returned unchanged (T must
// then be, or be assignable from, map[string]any).
func MapRow[T any](reg *Registry, raw map[string]any) (T, error) {
	var zero T
	if shaped, ok := any(zero).(RowShape); ok {
		names := shaped.FieldNames()
		types := shaped.FieldTypes()
		nullable := shaped.FieldNullable()
		values := make([]any, len(names))
		for i, name := range names {
			wire, present := raw[name]
			if !present {
				return zero, &rqerrors.DecodeError{Kind: rqerrors.MissingColumn, Field: name}
			}
			c, ok := reg.GetCodec(types[i])
			if !ok {
				return zero, &rqerrors.DecodeError{Kind: rqerrors.NoCodec, Field: name, Type: types[i]}
			}
			if wire == nil && (i >= len(nullable) || !nullable[i]) {
				return zero, &rqerrors.DecodeError{Kind: rqerrors.NullNotAllowed, Field: name, Type: types[i]}
			}
			decoded, err := Decode(c, wire)
			if err != nil {
				return zero, &rqerrors.DecodeError{Kind: rqerrors.DecodeFailed, Field: name, Type: types[i], Detail: err.Error()}
			}
			values[i] = decoded
		}
		result, err := shaped.FromPositional(values)
		if err != nil {
			return zero, &rqerrors.DecodeError{Kind: rqerrors.ConstructorRejected, Detail: err.Error()}
		}
		out, ok := result.(T)
		if !ok {
			return zero, fmt.Errorf("codec: FromPositional returned %T, want %T", result, zero)
		}
		return out, nil
	}

	out, ok := any(raw).(T)
	if !ok {
		return zero, fmt.Errorf("codec: cannot map row to %T: not an anonymous record and does not implement RowShape", zero)
	}
	return out, nil
}
