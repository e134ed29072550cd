package cbor

import (
	"io"
	"math/big"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/x448/float16"
)

// Marshal returns the CBOR encoding of v.
//
// Scalars map one-to-one onto the primitive encoders; nil pointers and
// interfaces encode as null; []byte encodes as a byte string; slices
// and arrays as definite arrays; maps as definite maps with sorted
// string or integer keys; structs as definite maps driven by
// `cbor:"name,omitempty"` tags. *big.Int becomes a plain integer head
// inside the 64-bit range and a bignum (tag 2/3) beyond it, and
// time.Time a tag 1 timestamp. Types implementing Encodable or
// Marshaler take precedence over reflection.
func Marshal(v any) ([]byte, error) {
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)
	if err := marshalValue(bb, reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	out := make([]byte, bb.Len())
	copy(out, bb.Bytes())
	return out, nil
}

// MarshalAppend appends the CBOR encoding of v to b.
func MarshalAppend(b []byte, v any) ([]byte, error) {
	bb := NewByteBuffer(b)
	if err := marshalValue(bb, reflect.ValueOf(v)); err != nil {
		return b, err
	}
	return bb.Bytes(), nil
}

// Encoder writes CBOR items to an io.Writer through the reflection
// layer. It is not safe for concurrent use.
type Encoder struct {
	w Writer
}

// NewEncoder constructs an Encoder over w.
func NewEncoder(w io.Writer) *Encoder { return &Encoder{w: NewStreamWriter(w)} }

// Encode writes one item.
func (e *Encoder) Encode(v any) error {
	return marshalValue(e.w, reflect.ValueOf(v))
}

var (
	encodableType   = reflect.TypeOf((*Encodable)(nil)).Elem()
	marshalerType   = reflect.TypeOf((*Marshaler)(nil)).Elem()
	decodableType   = reflect.TypeOf((*Decodable)(nil)).Elem()
	unmarshalerType = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
	bigIntType      = reflect.TypeOf(big.Int{})
	timeType        = reflect.TypeOf(time.Time{})
	float16Type     = reflect.TypeOf(float16.Float16(0))
	byteSliceType   = reflect.TypeOf([]byte(nil))
)

func marshalValue(w Writer, rv reflect.Value) error {
	if !rv.IsValid() {
		return EncodeNull(w)
	}

	if rv.CanInterface() {
		switch rv.Type() {
		case bigIntType:
			v := rv.Interface().(big.Int)
			return EncodeBigInt(w, &v)
		case timeType:
			return EncodeTime(w, rv.Interface().(time.Time))
		case float16Type:
			return EncodeFloat16(w, rv.Interface().(float16.Float16))
		}
		if rv.Type().Implements(encodableType) {
			if rv.Kind() == reflect.Ptr && rv.IsNil() {
				return EncodeNull(w)
			}
			return rv.Interface().(Encodable).EncodeCBOR(w)
		}
		if rv.Type().Implements(marshalerType) {
			if rv.Kind() == reflect.Ptr && rv.IsNil() {
				return EncodeNull(w)
			}
			out, err := rv.Interface().(Marshaler).MarshalCBOR(nil)
			if err != nil {
				return err
			}
			return w.Push(out)
		}
		if rv.CanAddr() && reflect.PtrTo(rv.Type()).Implements(marshalerType) {
			out, err := rv.Addr().Interface().(Marshaler).MarshalCBOR(nil)
			if err != nil {
				return err
			}
			return w.Push(out)
		}
	}

	switch rv.Kind() {
	case reflect.Bool:
		return EncodeBool(w, rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return EncodeInt64(w, rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return EncodeUint64(w, rv.Uint())
	case reflect.Float32:
		return EncodeFloat32(w, float32(rv.Float()))
	case reflect.Float64:
		return EncodeFloat64(w, rv.Float())
	case reflect.String:
		return EncodeString(w, rv.String())
	case reflect.Slice:
		if rv.IsNil() {
			return EncodeNull(w)
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return EncodeBytes(w, rv.Bytes())
		}
		return marshalArray(w, rv)
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			buf := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(buf), rv)
			return EncodeBytes(w, buf)
		}
		return marshalArray(w, rv)
	case reflect.Map:
		if rv.IsNil() {
			return EncodeNull(w)
		}
		return marshalMap(w, rv)
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return EncodeNull(w)
		}
		return marshalValue(w, rv.Elem())
	case reflect.Struct:
		return marshalStruct(w, rv)
	default:
		return &ErrUnsupportedType{T: rv.Type()}
	}
}

func marshalArray(w Writer, rv reflect.Value) error {
	n := rv.Len()
	if err := EncodeArrayHead(w, n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := marshalValue(w, rv.Index(i)); err != nil {
			return WrapError(err, i)
		}
	}
	return nil
}

// marshalMap emits a definite map. String and integer keys are sorted
// so the output is reproducible across runs.
func marshalMap(w Writer, rv reflect.Value) error {
	keys := rv.MapKeys()
	switch rv.Type().Key().Kind() {
	case reflect.String:
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Int() < keys[j].Int() })
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Uint() < keys[j].Uint() })
	}
	if err := EncodeMapHead(w, len(keys)); err != nil {
		return err
	}
	for _, k := range keys {
		if err := marshalValue(w, k); err != nil {
			return WrapError(err, "map::key")
		}
		if err := marshalValue(w, rv.MapIndex(k)); err != nil {
			return WrapError(err, "map::value")
		}
	}
	return nil
}

func marshalStruct(w Writer, rv reflect.Value) error {
	fields := cachedFields(rv.Type())
	n := 0
	for i := range fields {
		fv := rv.Field(fields[i].index)
		if fields[i].omitEmpty && isEmptyValue(fv) {
			continue
		}
		n++
	}
	if err := EncodeMapHead(w, n); err != nil {
		return err
	}
	for i := range fields {
		fv := rv.Field(fields[i].index)
		if fields[i].omitEmpty && isEmptyValue(fv) {
			continue
		}
		if err := EncodeString(w, fields[i].name); err != nil {
			return err
		}
		if err := marshalValue(w, fv); err != nil {
			return WrapError(err, fields[i].name)
		}
	}
	return nil
}

// structField describes one encodable struct field.
type structField struct {
	name      string
	index     int
	omitEmpty bool
}

var fieldCache sync.Map // reflect.Type -> []structField

// cachedFields parses and caches the `cbor` tags of a struct type.
func cachedFields(t reflect.Type) []structField {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]structField)
	}
	var fields []structField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" { // unexported
			continue
		}
		name := f.Name
		omitEmpty := false
		if tag, ok := f.Tag.Lookup("cbor"); ok {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "omitempty" {
					omitEmpty = true
				}
			}
		}
		fields = append(fields, structField{name: name, index: i, omitEmpty: omitEmpty})
	}
	fieldCache.Store(t, fields)
	return fields
}

func isEmptyValue(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.String:
		return rv.Len() == 0
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
