package cbor

import (
	"io"
	"math"
	"math/big"
	"reflect"
	"time"
)

// Unmarshal decodes the CBOR item in data into v, which must be a
// non-nil pointer. Input with trailing bytes after the first item is
// rejected.
//
// Decoding mirrors Marshal: null and undefined clear pointers, unknown
// struct map keys are skipped without being materialized, and byte
// strings land in []byte targets zero-copy when the input permits.
// Decoding into *any produces bool, nil, uint64/int64 (*big.Int beyond
// the int64 range), float64, []byte, string, []any and map[any]any;
// tags surface as their content except tags 0 and 1 (time.Time) and
// the bignum tags (*big.Int).
func Unmarshal(data []byte, v any) error {
	r := NewSliceReader(data)
	if err := unmarshalValue(r, reflect.ValueOf(v)); err != nil {
		return err
	}
	if len(r.Rest()) != 0 {
		return ErrTrailingBytes
	}
	return nil
}

// Decoder reads CBOR items from an io.Reader through the reflection
// layer. It is not safe for concurrent use.
type Decoder struct {
	r Reader
}

// NewDecoder constructs a Decoder over r.
func NewDecoder(r io.Reader) *Decoder { return &Decoder{r: NewStreamReader(r)} }

// NewDecoderFromReader constructs a Decoder over an existing cbor
// Reader, retaining its zero-copy and depth characteristics.
func NewDecoderFromReader(r Reader) *Decoder { return &Decoder{r: r} }

// Decode reads one item into v, which must be a non-nil pointer.
func (d *Decoder) Decode(v any) error {
	return unmarshalValue(d.r, reflect.ValueOf(v))
}

func unmarshalValue(r Reader, rv reflect.Value) error {
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		t := reflect.Type(nil)
		if rv.IsValid() {
			t = rv.Type()
		}
		return &ErrUnsupportedType{T: t}
	}
	return unmarshalInto(r, rv.Elem())
}

func unmarshalInto(r Reader, rv reflect.Value) error {
	switch rv.Type() {
	case bigIntType:
		v, err := DecodeBigInt(r)
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(*v))
		return nil
	case timeType:
		t, err := DecodeTime(r)
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(t))
		return nil
	case float16Type:
		f, err := DecodeFloat16(r)
		if err != nil {
			return err
		}
		rv.SetUint(uint64(f))
		return nil
	}
	if rv.CanAddr() {
		pt := rv.Addr().Type()
		if pt.Implements(decodableType) {
			return rv.Addr().Interface().(Decodable).DecodeCBOR(r)
		}
		if pt.Implements(unmarshalerType) {
			// Unmarshaler consumes a byte slice, so capture the item
			// verbatim first. This requires a borrowing reader.
			raw, err := DecodeRawValue(r)
			if err != nil {
				return err
			}
			rest, err := rv.Addr().Interface().(Unmarshaler).UnmarshalCBOR(raw)
			if err != nil {
				return err
			}
			if len(rest) != 0 {
				return ErrTrailingBytes
			}
			return nil
		}
	}

	switch rv.Kind() {
	case reflect.Ptr:
		if ok, err := DecodeNull(r); err != nil {
			return err
		} else if ok {
			rv.Set(reflect.Zero(rv.Type()))
			return nil
		}
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return unmarshalInto(r, rv.Elem())
	case reflect.Bool:
		v, err := DecodeBool(r)
		if err != nil {
			return err
		}
		rv.SetBool(v)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := DecodeInt64(r)
		if err != nil {
			return err
		}
		if rv.OverflowInt(v) {
			return IntOverflow{Value: v, FailedBitsize: rv.Type().Bits()}
		}
		rv.SetInt(v)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		v, err := DecodeUint64(r)
		if err != nil {
			return err
		}
		if rv.OverflowUint(v) {
			return UintOverflow{Value: v, FailedBitsize: rv.Type().Bits()}
		}
		rv.SetUint(v)
		return nil
	case reflect.Float32, reflect.Float64:
		v, err := decodeAnyFloat(r, rv.Type().Bits())
		if err != nil {
			return err
		}
		rv.SetFloat(v)
		return nil
	case reflect.String:
		v, err := DecodeString(r)
		if err != nil {
			return err
		}
		rv.SetString(v)
		return nil
	case reflect.Slice:
		if ok, err := DecodeNull(r); err != nil {
			return err
		} else if ok {
			rv.Set(reflect.Zero(rv.Type()))
			return nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			v, err := DecodeBytes(r)
			if err != nil {
				return err
			}
			if rv.Type() == byteSliceType {
				rv.SetBytes(v)
			} else {
				out := reflect.MakeSlice(rv.Type(), len(v), len(v))
				reflect.Copy(out, reflect.ValueOf(v))
				rv.Set(out)
			}
			return nil
		}
		return unmarshalSlice(r, rv)
	case reflect.Array:
		return unmarshalFixedArray(r, rv)
	case reflect.Map:
		return unmarshalMap(r, rv)
	case reflect.Struct:
		return unmarshalStruct(r, rv)
	case reflect.Interface:
		if rv.NumMethod() != 0 {
			return &ErrUnsupportedType{T: rv.Type()}
		}
		v, err := decodeAny(r)
		if err != nil {
			return err
		}
		if v == nil {
			rv.Set(reflect.Zero(rv.Type()))
		} else {
			rv.Set(reflect.ValueOf(v))
		}
		return nil
	default:
		return &ErrUnsupportedType{T: rv.Type()}
	}
}

// decodeAnyFloat accepts any float width not wider than bits,
// widening half and single precision as needed.
func decodeAnyFloat(r Reader, bits int) (float64, error) {
	b, err := peekOne(r)
	if err != nil {
		return 0, err
	}
	switch b {
	case makeByte(majorTypeSimple, simpleFloat16):
		f, err := DecodeFloat16(r)
		return float64(f.Float32()), err
	case makeByte(majorTypeSimple, simpleFloat32):
		f, err := DecodeFloat32(r)
		return float64(f), err
	case makeByte(majorTypeSimple, simpleFloat64):
		if bits < 64 {
			return 0, badPrefix("f32", b)
		}
		return DecodeFloat64(r)
	default:
		return 0, badPrefix("float", b)
	}
}

func unmarshalSlice(r Reader, rv reflect.Value) error {
	if !r.StepIn() {
		return ErrMaxDepthExceeded
	}
	defer r.StepOut()

	n, indefinite, err := DecodeArrayHead(r)
	if err != nil {
		return err
	}
	out := reflect.MakeSlice(rv.Type(), 0, reserveSlots(n, indefinite))
	elem := rv.Type().Elem()
	for i := 0; indefinite || i < n; i++ {
		if indefinite {
			done, err := DecodeBreak(r)
			if err != nil {
				return err
			}
			if done {
				break
			}
		}
		ev := reflect.New(elem).Elem()
		if err := unmarshalInto(r, ev); err != nil {
			return WrapError(err, i)
		}
		out = reflect.Append(out, ev)
	}
	rv.Set(out)
	return nil
}

func unmarshalFixedArray(r Reader, rv reflect.Value) error {
	if !r.StepIn() {
		return ErrMaxDepthExceeded
	}
	defer r.StepOut()

	if rv.Type().Elem().Kind() == reflect.Uint8 {
		v, err := DecodeBytes(r)
		if err != nil {
			return err
		}
		if len(v) != rv.Len() {
			return LengthOverflowError{Name: "bytes", Len: uint64(len(v)), Limit: uint64(rv.Len())}
		}
		reflect.Copy(rv, reflect.ValueOf(v))
		return nil
	}

	n, indefinite, err := DecodeArrayHead(r)
	if err != nil {
		return err
	}
	if !indefinite && n != rv.Len() {
		return LengthOverflowError{Name: "array", Len: uint64(n), Limit: uint64(rv.Len())}
	}
	for i := 0; indefinite || i < n; i++ {
		if indefinite {
			done, err := DecodeBreak(r)
			if err != nil {
				return err
			}
			if done {
				if i != rv.Len() {
					return LengthOverflowError{Name: "array", Len: uint64(i), Limit: uint64(rv.Len())}
				}
				return nil
			}
			if i >= rv.Len() {
				return LengthOverflowError{Name: "array", Len: uint64(i + 1), Limit: uint64(rv.Len())}
			}
		}
		if err := unmarshalInto(r, rv.Index(i)); err != nil {
			return WrapError(err, i)
		}
	}
	return nil
}

func unmarshalMap(r Reader, rv reflect.Value) error {
	if !r.StepIn() {
		return ErrMaxDepthExceeded
	}
	defer r.StepOut()

	n, indefinite, err := DecodeMapHead(r)
	if err != nil {
		return err
	}
	if rv.IsNil() {
		rv.Set(reflect.MakeMapWithSize(rv.Type(), reserveSlots(n, indefinite)))
	}
	kt, vt := rv.Type().Key(), rv.Type().Elem()
	for i := 0; indefinite || i < n; i++ {
		if indefinite {
			done, err := DecodeBreak(r)
			if err != nil {
				return err
			}
			if done {
				break
			}
		}
		kv := reflect.New(kt).Elem()
		if err := unmarshalInto(r, kv); err != nil {
			return WrapError(err, "map::key")
		}
		vv := reflect.New(vt).Elem()
		if err := unmarshalInto(r, vv); err != nil {
			return WrapError(err, "map::value")
		}
		rv.SetMapIndex(kv, vv)
	}
	return nil
}

func unmarshalStruct(r Reader, rv reflect.Value) error {
	if !r.StepIn() {
		return ErrMaxDepthExceeded
	}
	defer r.StepOut()

	fields := cachedFields(rv.Type())
	byName := make(map[string]int, len(fields))
	for i := range fields {
		byName[fields[i].name] = fields[i].index
	}

	n, indefinite, err := DecodeMapHead(r)
	if err != nil {
		return err
	}
	for i := 0; indefinite || i < n; i++ {
		if indefinite {
			done, err := DecodeBreak(r)
			if err != nil {
				return err
			}
			if done {
				break
			}
		}
		key, err := DecodeString(r)
		if err != nil {
			return WrapError(err, "struct::key")
		}
		idx, ok := byName[key]
		if !ok {
			if err := Skip(r); err != nil {
				return WrapError(err, key)
			}
			continue
		}
		if err := unmarshalInto(r, rv.Field(idx)); err != nil {
			return WrapError(err, key)
		}
	}
	return nil
}

// decodeAny decodes one item into Go-native dynamic storage.
func decodeAny(r Reader) (any, error) {
	if !r.StepIn() {
		return nil, ErrMaxDepthExceeded
	}
	defer r.StepOut()

	b, err := peekOne(r)
	if err != nil {
		return nil, err
	}
	switch getMajorType(b) {
	case majorTypeUint:
		return DecodeUint64(r)
	case majorTypeNegInt:
		n, err := decodeHead(r, "any", majorTypeNegInt)
		if err != nil {
			return nil, err
		}
		if n > math.MaxInt64 {
			v := new(big.Int).SetUint64(n)
			v.Add(v, bigOne)
			return v.Neg(v), nil
		}
		return -1 - int64(n), nil
	case majorTypeBytes:
		return DecodeBytes(r)
	case majorTypeText:
		return DecodeString(r)
	case majorTypeArray:
		n, indefinite, err := DecodeArrayHead(r)
		if err != nil {
			return nil, err
		}
		out := make([]any, 0, reserveSlots(n, indefinite))
		for i := 0; indefinite || i < n; i++ {
			if indefinite {
				done, err := DecodeBreak(r)
				if err != nil {
					return nil, err
				}
				if done {
					break
				}
			}
			item, err := decodeAny(r)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil
	case majorTypeMap:
		n, indefinite, err := DecodeMapHead(r)
		if err != nil {
			return nil, err
		}
		out := make(map[any]any, reserveSlots(n, indefinite))
		for i := 0; indefinite || i < n; i++ {
			if indefinite {
				done, err := DecodeBreak(r)
				if err != nil {
					return nil, err
				}
				if done {
					break
				}
			}
			key, err := decodeAny(r)
			if err != nil {
				return nil, err
			}
			key, err = hashableKey(key)
			if err != nil {
				return nil, err
			}
			val, err := decodeAny(r)
			if err != nil {
				return nil, err
			}
			out[key] = val
		}
		return out, nil
	case majorTypeTag:
		return decodeAnyTag(r)
	default:
		switch b {
		case makeByte(majorTypeSimple, simpleFalse):
			r.Advance(1)
			return false, nil
		case makeByte(majorTypeSimple, simpleTrue):
			r.Advance(1)
			return true, nil
		case makeByte(majorTypeSimple, simpleNull), makeByte(majorTypeSimple, simpleUndefined):
			r.Advance(1)
			return nil, nil
		case makeByte(majorTypeSimple, simpleFloat16):
			f, err := DecodeFloat16(r)
			return float64(f.Float32()), err
		case makeByte(majorTypeSimple, simpleFloat32):
			f, err := DecodeFloat32(r)
			return float64(f), err
		case makeByte(majorTypeSimple, simpleFloat64):
			return DecodeFloat64(r)
		case makeByte(majorTypeSimple, simpleBreak):
			return nil, ErrBreak
		default:
			return DecodeSimple(r)
		}
	}
}

// decodeAnyTag surfaces a tagged item as its content, except for the
// timestamp and bignum tags which have natural Go representations.
// The dynamic layer has no native tag concept; anything else is a
// documented pass-through.
func decodeAnyTag(r Reader) (any, error) {
	tag, err := DecodeTagHead(r)
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagEpochDateTime, tagDateTimeString:
		return decodeTimePayload(r, tag)
	case tagPosBignum, tagNegBignum:
		payload, err := decodeStrOwned(r, "bignum::bytes", majorTypeBytes, 16)
		if err != nil {
			return nil, err
		}
		v := new(big.Int).SetBytes(payload)
		if tag == tagNegBignum {
			v.Add(v, bigOne)
			v.Neg(v)
		}
		return v, nil
	default:
		return decodeAny(r)
	}
}

// decodeTimePayload decodes the content of a tag 0/1 timestamp whose
// tag head is already consumed.
func decodeTimePayload(r Reader, tag uint64) (time.Time, error) {
	switch tag {
	case tagDateTimeString:
		s, err := DecodeString(r)
		if err != nil {
			return time.Time{}, err
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, WrapError(err, "time")
		}
		return t, nil
	default:
		b, err := peekOne(r)
		if err != nil {
			return time.Time{}, err
		}
		switch getMajorType(b) {
		case majorTypeUint, majorTypeNegInt:
			sec, err := DecodeInt64(r)
			if err != nil {
				return time.Time{}, err
			}
			return time.Unix(sec, 0).UTC(), nil
		default:
			f, err := decodeAnyFloat(r, 64)
			if err != nil {
				return time.Time{}, err
			}
			sec, frac := math.Modf(f)
			return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
		}
	}
}

// hashableKey coerces decoded map keys into types that Go maps accept.
// Byte-string keys become strings; aggregate keys are rejected.
func hashableKey(key any) (any, error) {
	switch k := key.(type) {
	case []byte:
		return string(k), nil
	case []any, map[any]any:
		return nil, &ErrUnsupportedType{T: reflect.TypeOf(key)}
	default:
		return key, nil
	}
}
