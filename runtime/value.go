package cbor

import (
	"bytes"
	"math"
	"math/big"

	"github.com/x448/float16"
)

// ValueKind identifies the variant held by a Value.
type ValueKind uint8

// Value kinds
const (
	NullKind    ValueKind = iota // null (and undefined, which decodes to null)
	BoolKind                     // boolean
	IntegerKind                  // integer in [-2^64, 2^64-1]
	FloatKind                    // float, width-preserving
	BytesKind                    // byte string
	TextKind                     // text string
	ArrayKind                    // array
	MapKind                      // ordered key/value pairs
	TagKind                      // tagged content
	SimpleKind                   // numeric simple value
)

// ValuePair is one entry of a map Value. Insertion order is preserved
// and duplicate keys are retained.
type ValuePair struct {
	Key   Value
	Value Value
}

// Value is a dynamic representation of one CBOR item. The zero Value
// is null.
//
// Integers cover the full wire domain [-2^64, 2^64-1] exactly; floats
// remember the width they were decoded with so re-encoding reproduces
// the original bytes.
type Value struct {
	kind  ValueKind
	neg   bool   // integer is -1-num
	num   uint64 // integer magnitude, float bits, bool, simple value, tag number
	width uint8  // float width in bytes: 2, 4 or 8
	str   []byte // bytes/text payload
	arr   []Value
	pairs []ValuePair
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Bool returns a boolean Value.
func Bool(v bool) Value {
	n := uint64(0)
	if v {
		n = 1
	}
	return Value{kind: BoolKind, num: n}
}

// Int returns an integer Value.
func Int(v int64) Value {
	if v >= 0 {
		return Value{kind: IntegerKind, num: uint64(v)}
	}
	return Value{kind: IntegerKind, neg: true, num: ^uint64(v)}
}

// Uint returns an integer Value.
func Uint(v uint64) Value { return Value{kind: IntegerKind, num: v} }

// NegUint returns the integer Value -1-n, reaching [-2^64, -2^63).
func NegUint(n uint64) Value { return Value{kind: IntegerKind, neg: true, num: n} }

// Float64Value returns a double-width float Value.
func Float64Value(v float64) Value {
	return Value{kind: FloatKind, width: 8, num: math.Float64bits(v)}
}

// Float32Value returns a single-width float Value.
func Float32Value(v float32) Value {
	return Value{kind: FloatKind, width: 4, num: uint64(math.Float32bits(v))}
}

// Float16Value returns a half-width float Value.
func Float16Value(v float16.Float16) Value {
	return Value{kind: FloatKind, width: 2, num: uint64(v.Bits())}
}

// BytesValue returns a byte string Value.
func BytesValue(b []byte) Value { return Value{kind: BytesKind, str: b} }

// TextValue returns a text string Value.
func TextValue(s string) Value { return Value{kind: TextKind, str: []byte(s)} }

// ArrayValue returns an array Value.
func ArrayValue(items ...Value) Value { return Value{kind: ArrayKind, arr: items} }

// MapValue returns a map Value with the given ordered pairs.
func MapValue(pairs ...ValuePair) Value { return Value{kind: MapKind, pairs: pairs} }

// TagValue returns a tagged Value.
func TagValue(tag uint64, content Value) Value {
	return Value{kind: TagKind, num: tag, arr: []Value{content}}
}

// SimpleValue returns a numeric simple Value.
func SimpleValue(v uint8) Value { return Value{kind: SimpleKind, num: uint64(v)} }

// Kind returns the variant held by the Value.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the Value is null.
func (v Value) IsNull() bool { return v.kind == NullKind }

// Bool returns the boolean payload.
func (v Value) Bool() (bool, bool) {
	if v.kind != BoolKind {
		return false, false
	}
	return v.num != 0, true
}

// Int64 returns the integer payload if it fits an int64.
func (v Value) Int64() (int64, bool) {
	if v.kind != IntegerKind || v.num > math.MaxInt64 {
		return 0, false
	}
	if v.neg {
		return -1 - int64(v.num), true
	}
	return int64(v.num), true
}

// Uint64 returns the integer payload if it is non-negative and fits a
// uint64.
func (v Value) Uint64() (uint64, bool) {
	if v.kind != IntegerKind || v.neg {
		return 0, false
	}
	return v.num, true
}

// BigInt returns the integer payload at full width.
func (v Value) BigInt() (*big.Int, bool) {
	if v.kind != IntegerKind {
		return nil, false
	}
	out := new(big.Int).SetUint64(v.num)
	if v.neg {
		out.Add(out, bigOne)
		out.Neg(out)
	}
	return out, true
}

// Float64 returns the float payload widened to float64.
func (v Value) Float64() (float64, bool) {
	if v.kind != FloatKind {
		return 0, false
	}
	switch v.width {
	case 2:
		return float64(float16.Frombits(uint16(v.num)).Float32()), true
	case 4:
		return float64(math.Float32frombits(uint32(v.num))), true
	default:
		return math.Float64frombits(v.num), true
	}
}

// Bytes returns the byte string payload.
func (v Value) Bytes() ([]byte, bool) {
	if v.kind != BytesKind {
		return nil, false
	}
	return v.str, true
}

// Text returns the text string payload.
func (v Value) Text() (string, bool) {
	if v.kind != TextKind {
		return "", false
	}
	return string(v.str), true
}

// Array returns the array elements.
func (v Value) Array() ([]Value, bool) {
	if v.kind != ArrayKind {
		return nil, false
	}
	return v.arr, true
}

// Map returns the ordered map pairs.
func (v Value) Map() ([]ValuePair, bool) {
	if v.kind != MapKind {
		return nil, false
	}
	return v.pairs, true
}

// Tag returns the tag number and content.
func (v Value) Tag() (uint64, Value, bool) {
	if v.kind != TagKind {
		return 0, Value{}, false
	}
	return v.num, v.arr[0], true
}

// Simple returns the numeric simple payload.
func (v Value) Simple() (uint8, bool) {
	if v.kind != SimpleKind {
		return 0, false
	}
	return uint8(v.num), true
}

// Equal reports deep equality. Floats compare bitwise at their stored
// width, so NaN payloads and width differences are significant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case NullKind:
		return true
	case BoolKind, SimpleKind:
		return v.num == o.num
	case IntegerKind:
		return v.neg == o.neg && v.num == o.num
	case FloatKind:
		return v.width == o.width && v.num == o.num
	case BytesKind, TextKind:
		return bytes.Equal(v.str, o.str)
	case ArrayKind:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case MapKind:
		if len(v.pairs) != len(o.pairs) {
			return false
		}
		for i := range v.pairs {
			if !v.pairs[i].Key.Equal(o.pairs[i].Key) || !v.pairs[i].Value.Equal(o.pairs[i].Value) {
				return false
			}
		}
		return true
	case TagKind:
		return v.num == o.num && v.arr[0].Equal(o.arr[0])
	default:
		return false
	}
}

// valueSlotReserve bounds the element reservation of definite arrays
// and maps; larger containers grow as elements actually decode.
const valueSlotReserve = 256

// DecodeValue decodes one CBOR item into a Value. String payloads are
// owned, indefinite strings are collected into one result, undefined
// decodes to null, and tags round-trip verbatim.
func DecodeValue(r Reader) (Value, error) {
	if !r.StepIn() {
		return Value{}, ErrMaxDepthExceeded
	}
	defer r.StepOut()

	b, err := peekOne(r)
	if err != nil {
		return Value{}, err
	}
	switch getMajorType(b) {
	case majorTypeUint:
		n, err := DecodeUint64(r)
		if err != nil {
			return Value{}, err
		}
		return Uint(n), nil
	case majorTypeNegInt:
		n, err := decodeHead(r, "value", majorTypeNegInt)
		if err != nil {
			return Value{}, err
		}
		return NegUint(n), nil
	case majorTypeBytes:
		buf, err := decodeStrOwned(r, "bytes", majorTypeBytes, 0)
		if err != nil {
			return Value{}, err
		}
		return BytesValue(buf), nil
	case majorTypeText:
		buf, err := decodeStrOwned(r, "str", majorTypeText, 0)
		if err != nil {
			return Value{}, err
		}
		if ValidateUTF8OnDecode && !isUTF8Valid(buf) {
			return Value{}, ErrInvalidUTF8
		}
		return Value{kind: TextKind, str: buf}, nil
	case majorTypeArray:
		n, indefinite, err := DecodeArrayHead(r)
		if err != nil {
			return Value{}, err
		}
		items := make([]Value, 0, reserveSlots(n, indefinite))
		for i := 0; indefinite || i < n; i++ {
			if indefinite {
				done, err := DecodeBreak(r)
				if err != nil {
					return Value{}, err
				}
				if done {
					break
				}
			}
			item, err := DecodeValue(r)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return ArrayValue(items...), nil
	case majorTypeMap:
		n, indefinite, err := DecodeMapHead(r)
		if err != nil {
			return Value{}, err
		}
		pairs := make([]ValuePair, 0, reserveSlots(n, indefinite))
		for i := 0; indefinite || i < n; i++ {
			if indefinite {
				done, err := DecodeBreak(r)
				if err != nil {
					return Value{}, err
				}
				if done {
					break
				}
			}
			k, err := DecodeValue(r)
			if err != nil {
				return Value{}, err
			}
			val, err := DecodeValue(r)
			if err != nil {
				return Value{}, err
			}
			pairs = append(pairs, ValuePair{Key: k, Value: val})
		}
		return MapValue(pairs...), nil
	case majorTypeTag:
		tag, err := DecodeTagHead(r)
		if err != nil {
			return Value{}, err
		}
		content, err := DecodeValue(r)
		if err != nil {
			return Value{}, err
		}
		return TagValue(tag, content), nil
	default:
		switch b {
		case makeByte(majorTypeSimple, simpleFalse):
			r.Advance(1)
			return Bool(false), nil
		case makeByte(majorTypeSimple, simpleTrue):
			r.Advance(1)
			return Bool(true), nil
		case makeByte(majorTypeSimple, simpleNull), makeByte(majorTypeSimple, simpleUndefined):
			r.Advance(1)
			return Null(), nil
		case makeByte(majorTypeSimple, simpleFloat16):
			f, err := DecodeFloat16(r)
			if err != nil {
				return Value{}, err
			}
			return Float16Value(f), nil
		case makeByte(majorTypeSimple, simpleFloat32):
			f, err := DecodeFloat32(r)
			if err != nil {
				return Value{}, err
			}
			return Float32Value(f), nil
		case makeByte(majorTypeSimple, simpleFloat64):
			f, err := DecodeFloat64(r)
			if err != nil {
				return Value{}, err
			}
			return Float64Value(f), nil
		case makeByte(majorTypeSimple, simpleBreak):
			return Value{}, ErrBreak
		default:
			s, err := DecodeSimple(r)
			if err != nil {
				return Value{}, err
			}
			return SimpleValue(s), nil
		}
	}
}

func reserveSlots(n int, indefinite bool) int {
	if indefinite {
		return 0
	}
	if n > valueSlotReserve {
		return valueSlotReserve
	}
	return n
}

// EncodeCBOR implements Encodable. Containers are always emitted in
// definite-length form.
func (v Value) EncodeCBOR(w Writer) error {
	switch v.kind {
	case NullKind:
		return EncodeNull(w)
	case BoolKind:
		return EncodeBool(w, v.num != 0)
	case IntegerKind:
		if v.neg {
			return EncodeNegUint64(w, v.num)
		}
		return EncodeUint64(w, v.num)
	case FloatKind:
		switch v.width {
		case 2:
			return EncodeFloat16(w, float16.Frombits(uint16(v.num)))
		case 4:
			return EncodeFloat32(w, math.Float32frombits(uint32(v.num)))
		default:
			return EncodeFloat64(w, math.Float64frombits(v.num))
		}
	case BytesKind:
		return EncodeBytes(w, v.str)
	case TextKind:
		if err := encodeHead(w, majorTypeText, uint64(len(v.str))); err != nil {
			return err
		}
		return w.Push(v.str)
	case ArrayKind:
		if err := EncodeArrayHead(w, len(v.arr)); err != nil {
			return err
		}
		for i := range v.arr {
			if err := v.arr[i].EncodeCBOR(w); err != nil {
				return err
			}
		}
		return nil
	case MapKind:
		if err := EncodeMapHead(w, len(v.pairs)); err != nil {
			return err
		}
		for i := range v.pairs {
			if err := v.pairs[i].Key.EncodeCBOR(w); err != nil {
				return err
			}
			if err := v.pairs[i].Value.EncodeCBOR(w); err != nil {
				return err
			}
		}
		return nil
	case TagKind:
		if err := EncodeTag(w, v.num); err != nil {
			return err
		}
		return v.arr[0].EncodeCBOR(w)
	case SimpleKind:
		return EncodeSimple(w, uint8(v.num))
	default:
		return UnsupportedError{Byte: 0}
	}
}
