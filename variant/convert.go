package variant

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Numberify best-effort converts v to a float64 per spec §4.1: strings are
// parsed as decimal (non-numeric -> 0, matching "NaN -> 0"), booleans map
// to 0/1, containers report their Size.
func Numberify(v *Value) float64 {
	if v == nil {
		return 0
	}
	switch v.kind {
	case Undefined, Null:
		return 0
	case Boolean:
		if v.b {
			return 1
		}
		return 0
	case Number, LongDouble:
		return v.f64
	case LongInt:
		return float64(v.i64)
	case ULongInt:
		return float64(v.u64)
	case String, AtomString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0
		}
		return f
	case ByteSequence:
		return float64(len(v.bytes))
	case Object, Array, Set, Tuple:
		return float64(v.Size())
	default:
		return 0
	}
}

// CastToInt32 truncates Numberify(v) into an int32, saturating at the
// type's bounds rather than wrapping, matching PurC's defensive casts.
func CastToInt32(v *Value) int32 {
	f := Numberify(v)
	if f >= math.MaxInt32 {
		return math.MaxInt32
	}
	if f <= math.MinInt32 {
		return math.MinInt32
	}
	return int32(f)
}

// CastToULongInt truncates Numberify(v) into a uint64, clamping negatives
// to zero.
func CastToULongInt(v *Value) uint64 {
	f := Numberify(v)
	if f <= 0 {
		return 0
	}
	if f >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(f)
}

// Stringify renders v as its canonical display text. Containers render as
// their JSON form; scalars render as their natural text representation.
func Stringify(v *Value) string {
	if v == nil {
		return ""
	}
	switch v.kind {
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case Boolean:
		if v.b {
			return "true"
		}
		return "false"
	case Number:
		return strconv.FormatFloat(v.f64, 'g', -1, 64)
	case LongInt:
		return strconv.FormatInt(v.i64, 10)
	case ULongInt:
		return strconv.FormatUint(v.u64, 10)
	case LongDouble:
		return strconv.FormatFloat(v.f64, 'g', -1, 64)
	case AtomString, String:
		return v.str
	case ByteSequence:
		return string(v.bytes)
	case Native:
		if v.nativeVT != nil && v.nativeVT.Stringify != nil {
			return v.nativeVT.Stringify(v.native)
		}
		return fmt.Sprintf("%v", v.native)
	case Exception:
		return v.excKind
	default:
		s, _ := MarshalJSON(v)
		return s
	}
}

// Equal reports deep structural equality: same kind family, same scalar
// value, or (for containers) same size and pairwise-equal elements in
// order (objects additionally require matching keys). Two sets are equal
// when they have the same size and b holds a member under each of a's
// members' uniqueness keys, as projected by b's key function; the members
// themselves are not compared.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind {
		return isNumeric(a.kind) && isNumeric(b.kind) && Numberify(a) == Numberify(b)
	}
	switch a.kind {
	case Undefined, Null:
		return true
	case Boolean:
		return a.b == b.b
	case Number, LongDouble:
		return a.f64 == b.f64
	case LongInt:
		return a.i64 == b.i64
	case ULongInt:
		return a.u64 == b.u64
	case AtomString, String:
		return a.str == b.str
	case ByteSequence:
		return string(a.bytes) == string(b.bytes)
	case Object:
		if len(a.object.order) != len(b.object.order) {
			return false
		}
		for _, e := range a.object.order {
			ov := b.ObjectGet(e.key)
			if ov == nil || !Equal(e.value, ov) {
				return false
			}
		}
		return true
	case Array, Tuple:
		ea, eb := elementsOf(a), elementsOf(b)
		if ea == nil {
			ea = a.tuple
		}
		if eb == nil {
			eb = b.tuple
		}
		if len(ea) != len(eb) {
			return false
		}
		for i := range ea {
			if !Equal(ea[i], eb[i]) {
				return false
			}
		}
		return true
	case Set:
		if len(a.set.order) != len(b.set.order) {
			return false
		}
		for _, m := range a.set.order {
			if b.SetGetByKey(b.set.keyFn(m)) == nil {
				return false
			}
		}
		return true
	case Native:
		return a.native == b.native
	case Exception:
		return a.excKind == b.excKind
	default:
		return false
	}
}

func isNumeric(k Kind) bool {
	switch k {
	case Number, LongInt, ULongInt, LongDouble:
		return true
	default:
		return false
	}
}
