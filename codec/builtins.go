package codec

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/constraints"
)

const (
	TagInteger  = "integer"
	TagFloat    = "float"
	TagText     = "text"
	TagBoolean  = "boolean"
	TagDate     = "date"
	TagDateTime = "datetime"
	TagUUID     = "uuid"
	TagJSON     = "json"
	TagBinary   = "binary"
)

func registerBuiltins(r *Registry) {
	r.Register(TagInteger, numericCodec[int64](TagInteger))
	r.Register(TagFloat, numericCodec[float64](TagFloat))
	r.Register(TagText, textCodec())
	r.Register(TagBoolean, booleanCodec())
	r.Register(TagDate, dateCodec())
	r.Register(TagDateTime, dateTimeCodec())
	r.Register(TagUUID, uuidCodec())
	r.Register(TagJSON, jsonCodec())
	r.Register(TagBinary, binaryCodec())
}

// numericCodec builds a Codec for any integer or floating-point Go
// type, accepting whatever numeric representation the driver handed
// back (int, int64, float64) and converting it to T.
func numericCodec[T constraints.Integer | constraints.Float](typeTag string) Codec {
	convert := func(v any) (T, error) {
		switch n := v.(type) {
		case T:
			return n, nil
		case int:
			return T(n), nil
		case int32:
			return T(n), nil
		case int64:
			return T(n), nil
		case float32:
			return T(n), nil
		case float64:
			return T(n), nil
		default:
			var zero T
			return zero, fmt.Errorf("%s: cannot convert %T", typeTag, v)
		}
	}
	return Codec{
		TypeTag: typeTag,
		Encode:  func(v any) (any, error) { return convert(v) },
		Decode:  func(wire any) (any, error) { return convert(wire) },
	}
}

func textCodec() Codec {
	return Codec{
		TypeTag: TagText,
		Encode: func(v any) (any, error) {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("text: cannot encode %T", v)
			}
			return s, nil
		},
		Decode: func(wire any) (any, error) {
			switch w := wire.(type) {
			case string:
				return w, nil
			case []byte:
				return string(w), nil
			default:
				return nil, fmt.Errorf("text: cannot decode %T", wire)
			}
		},
	}
}

// booleanCodec accepts SQLite's integer 0/1 representation on decode
// in addition to a native bool, per the dialect quirk this registry
// centralizes instead of leaving it to callers.
func booleanCodec() Codec {
	return Codec{
		TypeTag: TagBoolean,
		Encode: func(v any) (any, error) {
			b, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("boolean: cannot encode %T", v)
			}
			return b, nil
		},
		Decode: func(wire any) (any, error) {
			switch w := wire.(type) {
			case bool:
				return w, nil
			case int64:
				return w != 0, nil
			case int:
				return w != 0, nil
			case float64:
				return w != 0, nil
			default:
				return nil, fmt.Errorf("boolean: cannot decode %T", wire)
			}
		},
	}
}

const dateLayout = "2006-01-02"
const dateTimeLayout = "2006-01-02 15:04:05"

func dateCodec() Codec {
	return Codec{
		TypeTag: TagDate,
		Encode: func(v any) (any, error) {
			t, ok := v.(time.Time)
			if !ok {
				return nil, fmt.Errorf("date: cannot encode %T", v)
			}
			return t.Format(dateLayout), nil
		},
		Decode: func(wire any) (any, error) {
			switch w := wire.(type) {
			case time.Time:
				return w, nil
			case string:
				return time.Parse(dateLayout, w)
			default:
				return nil, fmt.Errorf("date: cannot decode %T", wire)
			}
		},
	}
}

func dateTimeCodec() Codec {
	return Codec{
		TypeTag: TagDateTime,
		Encode: func(v any) (any, error) {
			t, ok := v.(time.Time)
			if !ok {
				return nil, fmt.Errorf("datetime: cannot encode %T", v)
			}
			return t.Format(dateTimeLayout), nil
		},
		Decode: func(wire any) (any, error) {
			switch w := wire.(type) {
			case time.Time:
				return w, nil
			case string:
				return time.Parse(dateTimeLayout, w)
			default:
				return nil, fmt.Errorf("datetime: cannot decode %T", wire)
			}
		},
	}
}

// uuidCodec round-trips PostgreSQL's native uuid.UUID representation
// as well as the canonical text form other drivers hand back.
func uuidCodec() Codec {
	return Codec{
		TypeTag: TagUUID,
		Encode: func(v any) (any, error) {
			switch val := v.(type) {
			case uuid.UUID:
				return val.String(), nil
			case string:
				parsed, err := uuid.Parse(val)
				if err != nil {
					return nil, fmt.Errorf("uuid: %w", err)
				}
				return parsed.String(), nil
			default:
				return nil, fmt.Errorf("uuid: cannot encode %T", v)
			}
		},
		Decode: func(wire any) (any, error) {
			switch w := wire.(type) {
			case uuid.UUID:
				return w, nil
			case string:
				return uuid.Parse(w)
			case []byte:
				return uuid.ParseBytes(w)
			default:
				return nil, fmt.Errorf("uuid: cannot decode %T", wire)
			}
		},
	}
}

// jsonCodec round-trips arbitrary JSON-shaped values (map[string]any,
// []any, scalars) as text, the form MySQL and PostgreSQL both accept.
func jsonCodec() Codec {
	return Codec{
		TypeTag: TagJSON,
		Encode: func(v any) (any, error) {
			b, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("json: %w", err)
			}
			return string(b), nil
		},
		Decode: func(wire any) (any, error) {
			var raw string
			switch w := wire.(type) {
			case string:
				raw = w
			case []byte:
				raw = string(w)
			default:
				return nil, fmt.Errorf("json: cannot decode %T", wire)
			}
			var out any
			if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out); err != nil {
				return nil, fmt.Errorf("json: %w", err)
			}
			return out, nil
		},
	}
}

func binaryCodec() Codec {
	return Codec{
		TypeTag: TagBinary,
		Encode: func(v any) (any, error) {
			b, ok := v.([]byte)
			if !ok {
				return nil, fmt.Errorf("binary: cannot encode %T", v)
			}
			return b, nil
		},
		Decode: func(wire any) (any, error) {
			b, ok := wire.([]byte)
			if !ok {
				return nil, fmt.Errorf("binary: cannot decode %T", wire)
			}
			return b, nil
		},
	}
}
