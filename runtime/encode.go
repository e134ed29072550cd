package cbor

import (
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/x448/float16"
)

// EncodeUint64 encodes an unsigned integer at minimal head width.
func EncodeUint64(w Writer, v uint64) error {
	return encodeHead(w, majorTypeUint, v)
}

// EncodeInt64 encodes a signed integer: major type 0 for v >= 0,
// major type 1 with argument -1-v otherwise.
func EncodeInt64(w Writer, v int64) error {
	if v >= 0 {
		return encodeHead(w, majorTypeUint, uint64(v))
	}
	return encodeHead(w, majorTypeNegInt, ^uint64(v))
}

// EncodeNegUint64 encodes the negative integer -1-n. It reaches the
// values in [-2^64, -2^63) that EncodeInt64 cannot express.
func EncodeNegUint64(w Writer, n uint64) error {
	return encodeHead(w, majorTypeNegInt, n)
}

// EncodeBigInt encodes an integer of arbitrary width. Values inside
// the major type 0/1 domain use a plain head; anything wider becomes a
// bignum (tag 2/3) with a right-trimmed big-endian payload.
func EncodeBigInt(w Writer, v *big.Int) error {
	if v.Sign() >= 0 {
		if v.IsUint64() {
			return EncodeUint64(w, v.Uint64())
		}
		if err := EncodeTag(w, tagPosBignum); err != nil {
			return err
		}
		return EncodeBytes(w, v.Bytes())
	}
	// n = -1 - v
	n := new(big.Int).Neg(v)
	n.Sub(n, bigOne)
	if n.IsUint64() {
		return encodeHead(w, majorTypeNegInt, n.Uint64())
	}
	if err := EncodeTag(w, tagNegBignum); err != nil {
		return err
	}
	return EncodeBytes(w, n.Bytes())
}

// EncodeFloat64 encodes a double-precision float. The width is exactly
// what the caller chose; no preferred-encoding minimization happens.
func EncodeFloat64(w Writer, v float64) error {
	var buf [9]byte
	buf[0] = makeByte(majorTypeSimple, simpleFloat64)
	be.PutUint64(buf[1:], math.Float64bits(v))
	return w.Push(buf[:])
}

// EncodeFloat32 encodes a single-precision float.
func EncodeFloat32(w Writer, v float32) error {
	var buf [5]byte
	buf[0] = makeByte(majorTypeSimple, simpleFloat32)
	be.PutUint32(buf[1:], math.Float32bits(v))
	return w.Push(buf[:])
}

// EncodeFloat16 encodes a half-precision float.
func EncodeFloat16(w Writer, v float16.Float16) error {
	var buf [3]byte
	buf[0] = makeByte(majorTypeSimple, simpleFloat16)
	be.PutUint16(buf[1:], v.Bits())
	return w.Push(buf[:])
}

// EncodeBool encodes a boolean.
func EncodeBool(w Writer, v bool) error {
	var buf [1]byte
	if v {
		buf[0] = makeByte(majorTypeSimple, simpleTrue)
	} else {
		buf[0] = makeByte(majorTypeSimple, simpleFalse)
	}
	return w.Push(buf[:])
}

// EncodeNull encodes null.
func EncodeNull(w Writer) error {
	return w.Push([]byte{makeByte(majorTypeSimple, simpleNull)})
}

// EncodeUndefined encodes undefined. It is distinct from null on the
// wire even though the decoders alias the two.
func EncodeUndefined(w Writer) error {
	return w.Push([]byte{makeByte(majorTypeSimple, simpleUndefined)})
}

// EncodeSimple encodes a numeric simple value: 0..23 in the head,
// 24..31 are reserved, and 32..255 behind the 0xf8 prefix.
func EncodeSimple(w Writer, v uint8) error {
	if v <= addInfoDirect {
		return w.Push([]byte{makeByte(majorTypeSimple, v)})
	}
	if v < 32 {
		return UnsupportedError{Byte: v}
	}
	return w.Push([]byte{makeByte(majorTypeSimple, addInfoUint8), v})
}

// EncodeBytes encodes a definite-length byte string.
func EncodeBytes(w Writer, v []byte) error {
	if err := encodeHead(w, majorTypeBytes, uint64(len(v))); err != nil {
		return err
	}
	return w.Push(v)
}

// EncodeString encodes a definite-length text string.
func EncodeString(w Writer, v string) error {
	if err := encodeHead(w, majorTypeText, uint64(len(v))); err != nil {
		return err
	}
	return w.Push(unsafeStrBytes(v))
}

// EncodeBytesIndefinite opens an indefinite-length byte string. The
// caller emits definite chunks with EncodeBytes and closes with
// EncodeBreak.
func EncodeBytesIndefinite(w Writer) error {
	return w.Push([]byte{makeByte(majorTypeBytes, addInfoIndefinite)})
}

// EncodeStringIndefinite opens an indefinite-length text string. The
// caller emits definite chunks with EncodeString and closes with
// EncodeBreak.
func EncodeStringIndefinite(w Writer) error {
	return w.Push([]byte{makeByte(majorTypeText, addInfoIndefinite)})
}

// EncodeArrayHead opens a definite array of n elements.
func EncodeArrayHead(w Writer, n int) error {
	return encodeHead(w, majorTypeArray, uint64(n))
}

// EncodeArrayIndefinite opens an indefinite array; close with EncodeBreak.
func EncodeArrayIndefinite(w Writer) error {
	return w.Push([]byte{makeByte(majorTypeArray, addInfoIndefinite)})
}

// EncodeMapHead opens a definite map of n pairs.
func EncodeMapHead(w Writer, n int) error {
	return encodeHead(w, majorTypeMap, uint64(n))
}

// EncodeMapIndefinite opens an indefinite map; close with EncodeBreak.
func EncodeMapIndefinite(w Writer) error {
	return w.Push([]byte{makeByte(majorTypeMap, addInfoIndefinite)})
}

// EncodeBreak closes an indefinite-length container or string.
func EncodeBreak(w Writer) error {
	return w.Push([]byte{makeByte(majorTypeSimple, simpleBreak)})
}

// EncodeTag encodes a tag head. The tagged content follows as the next
// item emitted by the caller.
func EncodeTag(w Writer, tag uint64) error {
	return encodeHead(w, majorTypeTag, tag)
}

// EncodeTime encodes a tag 1 epoch timestamp. Whole seconds encode as
// an integer; sub-second precision falls back to a float payload.
func EncodeTime(w Writer, t time.Time) error {
	if err := EncodeTag(w, tagEpochDateTime); err != nil {
		return err
	}
	if t.Nanosecond() == 0 {
		return EncodeInt64(w, t.Unix())
	}
	return EncodeFloat64(w, float64(t.UnixNano())/1e9)
}

// EncodeDisplay encodes the formatted form of v as a text string
// without revalidating UTF-8. It first formats into a small stack
// buffer and emits a single definite text string; if the output
// overflows the buffer, it switches to an indefinite-length text
// string, streams the remaining output in chunks, and closes with a
// break.
func EncodeDisplay(w Writer, v fmt.Stringer) error {
	var buf [displayBufSize]byte
	c := displayCollector{buf: buf[:0]}
	if _, err := fmt.Fprintf(&c, "%s", v); err != nil {
		return err
	}
	return c.finish(w)
}

// displayCollector buffers formatter output up to displayBufSize bytes
// and spills the rest to owned storage.
type displayCollector struct {
	buf      []byte
	overflow []byte
}

func (c *displayCollector) Write(p []byte) (int, error) {
	if c.overflow == nil {
		if len(c.buf)+len(p) <= cap(c.buf) {
			c.buf = append(c.buf, p...)
			return len(p), nil
		}
		c.overflow = append(c.overflow, p...)
		return len(p), nil
	}
	c.overflow = append(c.overflow, p...)
	return len(p), nil
}

func (c *displayCollector) finish(w Writer) error {
	if c.overflow == nil {
		if err := encodeHead(w, majorTypeText, uint64(len(c.buf))); err != nil {
			return err
		}
		return w.Push(c.buf)
	}
	if err := EncodeStringIndefinite(w); err != nil {
		return err
	}
	if len(c.buf) > 0 {
		if err := encodeHead(w, majorTypeText, uint64(len(c.buf))); err != nil {
			return err
		}
		if err := w.Push(c.buf); err != nil {
			return err
		}
	}
	for off := 0; off < len(c.overflow); off += displayBufSize {
		end := off + displayBufSize
		if end > len(c.overflow) {
			end = len(c.overflow)
		}
		if err := encodeHead(w, majorTypeText, uint64(end-off)); err != nil {
			return err
		}
		if err := w.Push(c.overflow[off:end]); err != nil {
			return err
		}
	}
	return EncodeBreak(w)
}
