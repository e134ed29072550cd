package cbor

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"strconv"
)

// ToJSONBytes converts one CBOR item into its JSON encoding. Byte
// strings become base64 text (base64url under tag 21, hex-free; the
// std alphabet otherwise), text and containers map naturally, floats
// widen to float64, and NaN/Inf - which JSON cannot express - fail.
// Tags other than the expected-encoding tags are unwrapped to their
// content. Non-string map keys are rendered through their JSON form
// and quoted.
func ToJSONBytes(b []byte) ([]byte, error) {
	r := NewSliceReader(b)
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)
	if err := toJSON(bb, r); err != nil {
		return nil, err
	}
	if len(r.Rest()) != 0 {
		return nil, ErrTrailingBytes
	}
	out := make([]byte, bb.Len())
	copy(out, bb.Bytes())
	return out, nil
}

func toJSON(buf *ByteBuffer, r Reader) error {
	if !r.StepIn() {
		return ErrMaxDepthExceeded
	}
	defer r.StepOut()

	b, err := peekOne(r)
	if err != nil {
		return err
	}
	switch getMajorType(b) {
	case majorTypeUint:
		u, err := DecodeUint64(r)
		if err != nil {
			return err
		}
		buf.WriteString(strconv.FormatUint(u, 10))
		return nil
	case majorTypeNegInt:
		n, err := decodeHead(r, "json", majorTypeNegInt)
		if err != nil {
			return err
		}
		if n > math.MaxInt64 {
			buf.WriteString(formatNegUint(n))
			return nil
		}
		buf.WriteString(strconv.FormatInt(-1-int64(n), 10))
		return nil
	case majorTypeBytes:
		bs, err := DecodeBytes(r)
		if err != nil {
			return err
		}
		buf.WriteString("\"")
		encodeBase64Std(buf, bs)
		buf.WriteString("\"")
		return nil
	case majorTypeText:
		s, err := DecodeString(r)
		if err != nil {
			return err
		}
		js, err := json.Marshal(s)
		if err != nil {
			return err
		}
		buf.Write(js)
		return nil
	case majorTypeArray:
		n, indefinite, err := DecodeArrayHead(r)
		if err != nil {
			return err
		}
		buf.WriteString("[")
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
			if i > 0 {
				buf.WriteString(",")
			}
			if err := toJSON(buf, r); err != nil {
				return err
			}
		}
		buf.WriteString("]")
		return nil
	case majorTypeMap:
		n, indefinite, err := DecodeMapHead(r)
		if err != nil {
			return err
		}
		buf.WriteString("{")
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
			if i > 0 {
				buf.WriteString(",")
			}
			if err := toJSONKey(buf, r); err != nil {
				return err
			}
			buf.WriteString(":")
			if err := toJSON(buf, r); err != nil {
				return err
			}
		}
		buf.WriteString("}")
		return nil
	case majorTypeTag:
		tag, err := DecodeTagHead(r)
		if err != nil {
			return err
		}
		if tag == tagBase64URL {
			if bs, err := DecodeBytes(r); err == nil {
				buf.WriteString("\"")
				encodeBase64RawURL(buf, bs)
				buf.WriteString("\"")
				return nil
			} else {
				return err
			}
		}
		// other tags are transparent
		return toJSON(buf, r)
	default:
		switch b {
		case makeByte(majorTypeSimple, simpleFalse):
			r.Advance(1)
			buf.WriteString("false")
			return nil
		case makeByte(majorTypeSimple, simpleTrue):
			r.Advance(1)
			buf.WriteString("true")
			return nil
		case makeByte(majorTypeSimple, simpleNull), makeByte(majorTypeSimple, simpleUndefined):
			r.Advance(1)
			buf.WriteString("null")
			return nil
		default:
			f, err := decodeAnyFloat(r, 64)
			if err != nil {
				return err
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return &ErrUnsupportedType{}
			}
			buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
			return nil
		}
	}
}

// toJSONKey renders a map key. Text keys pass through; anything else
// is rendered to JSON and wrapped in quotes so the object stays valid.
func toJSONKey(buf *ByteBuffer, r Reader) error {
	b, err := peekOne(r)
	if err != nil {
		return err
	}
	if getMajorType(b) == majorTypeText {
		s, err := DecodeString(r)
		if err != nil {
			return err
		}
		js, err := json.Marshal(s)
		if err != nil {
			return err
		}
		buf.Write(js)
		return nil
	}
	inner := GetByteBuffer()
	defer PutByteBuffer(inner)
	if err := toJSON(inner, r); err != nil {
		return err
	}
	js, err := json.Marshal(string(inner.Bytes()))
	if err != nil {
		return err
	}
	buf.Write(js)
	return nil
}

// formatNegUint renders -1-n for n above the int64 range. n+1 wraps
// only at n == MaxUint64, where the result is -2^64.
func formatNegUint(n uint64) string {
	if n == math.MaxUint64 {
		return "-18446744073709551616"
	}
	return "-" + strconv.FormatUint(n+1, 10)
}

func encodeBase64Std(buf *ByteBuffer, src []byte) {
	n := base64.StdEncoding.EncodedLen(len(src))
	dst := buf.Extend(n)
	base64.StdEncoding.Encode(dst, src)
}

func encodeBase64RawURL(buf *ByteBuffer, src []byte) {
	n := base64.RawURLEncoding.EncodedLen(len(src))
	dst := buf.Extend(n)
	base64.RawURLEncoding.Encode(dst, src)
}
