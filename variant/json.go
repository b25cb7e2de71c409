package variant

import (
	"strconv"
	"strings"

	"github.com/purc-run/hvml/herr"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ParseJSON parses s into a Value tree. Object key order is preserved by
// walking gjson's result in source order rather than relying on a Go map,
// which is the detail that makes gjson a better fit here than
// encoding/json: the latter loses insertion order on the way through
// map[string]any.
func ParseJSON(s string) (*Value, error) {
	if !gjson.Valid(s) {
		return nil, herr.New(herr.KindInvalidValue, "invalid JSON")
	}
	return fromGJSON(gjson.Parse(s)), nil
}

func fromGJSON(r gjson.Result) *Value {
	switch r.Type {
	case gjson.Null:
		return NewNull()
	case gjson.False:
		return NewBoolean(false)
	case gjson.True:
		return NewBoolean(true)
	case gjson.Number:
		if r.Num == float64(int64(r.Num)) && !strings.ContainsAny(r.Raw, ".eE") {
			return NewLongInt(int64(r.Num))
		}
		return NewNumber(r.Num)
	case gjson.String:
		return MustString(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			arr := NewArray()
			r.ForEach(func(_, val gjson.Result) bool {
				arr.ArrayAppend(fromGJSON(val))
				return true
			})
			return arr
		}
		obj := NewObject()
		r.ForEach(func(key, val gjson.Result) bool {
			obj.ObjectSet(key.String(), fromGJSON(val))
			return true
		})
		return obj
	default:
		return NewUndefined()
	}
}

// MarshalJSON serializes v to its JSON text form. Containers walk members
// in their own iteration order (preserving object insertion order and set
// membership order); Undefined, Dynamic, Native and Exception values
// serialize as null (a Native's stringify hook is not consulted), matching
// PurC's "non-JSON-expressible values become null" policy for the JSON
// writer.
func MarshalJSON(v *Value) (string, error) {
	var sb strings.Builder
	if err := writeJSON(&sb, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeJSON(sb *strings.Builder, v *Value) error {
	if v == nil {
		sb.WriteString("null")
		return nil
	}
	switch v.kind {
	case Undefined, Null:
		sb.WriteString("null")
	case Boolean:
		if v.b {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case Number, LongDouble:
		sb.WriteString(strconv.FormatFloat(v.f64, 'g', -1, 64))
	case LongInt:
		sb.WriteString(strconv.FormatInt(v.i64, 10))
	case ULongInt:
		sb.WriteString(strconv.FormatUint(v.u64, 10))
	case String, AtomString:
		sb.WriteString(strconv.Quote(v.str))
	case ByteSequence:
		sb.WriteString(strconv.Quote(string(v.bytes)))
	case Object:
		sb.WriteByte('{')
		for i, e := range v.object.order {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Quote(e.key))
			sb.WriteByte(':')
			if err := writeJSON(sb, e.value); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
	case Array:
		sb.WriteByte('[')
		for i, m := range v.array.items {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := writeJSON(sb, m); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	case Tuple:
		sb.WriteByte('[')
		for i, m := range v.tuple {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := writeJSON(sb, m); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	case Set:
		sb.WriteByte('[')
		for i, m := range v.set.order {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := writeJSON(sb, m); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	default:
		sb.WriteString("null")
	}
	return nil
}

// PatchJSON applies an sjson-style set operation at a dotted JSON path to a
// variant tree by round-tripping through text. The update verb does not
// call it; its `at` handling addresses a single key level only.
func PatchJSON(root *Value, path string, newValue *Value) (*Value, error) {
	text, err := MarshalJSON(root)
	if err != nil {
		return nil, err
	}
	patchText, err := MarshalJSON(newValue)
	if err != nil {
		return nil, err
	}
	patched, err := sjson.SetRaw(text, path, patchText)
	if err != nil {
		return nil, herr.Wrap(herr.KindInvalidValue, "json patch failed", err)
	}
	return ParseJSON(patched)
}
