package cbor

import (
	"math"
	"math/big"
	"time"

	"github.com/x448/float16"
)

// DecodeUint64 decodes an unsigned integer.
func DecodeUint64(r Reader) (uint64, error) {
	return decodeHead(r, "u64", majorTypeUint)
}

// DecodeUint32 decodes an unsigned integer into a uint32.
func DecodeUint32(r Reader) (uint32, error) {
	v, err := decodeHead(r, "u32", majorTypeUint)
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, UintOverflow{Value: v, FailedBitsize: 32}
	}
	return uint32(v), nil
}

// DecodeUint16 decodes an unsigned integer into a uint16.
func DecodeUint16(r Reader) (uint16, error) {
	v, err := decodeHead(r, "u16", majorTypeUint)
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint16 {
		return 0, UintOverflow{Value: v, FailedBitsize: 16}
	}
	return uint16(v), nil
}

// DecodeUint8 decodes an unsigned integer into a uint8.
func DecodeUint8(r Reader) (uint8, error) {
	v, err := decodeHead(r, "u8", majorTypeUint)
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint8 {
		return 0, UintOverflow{Value: v, FailedBitsize: 8}
	}
	return uint8(v), nil
}

// decodeInt decodes a signed integer whose magnitude must fit bitsize
// bits. The negative path forms -1-n, which touches the 2^64 boundary,
// so the check happens on the unsigned magnitude before narrowing.
func decodeInt(r Reader, name string, bitsize int) (int64, error) {
	b, err := pullOne(r)
	if err != nil {
		return 0, err
	}
	switch getMajorType(b) {
	case majorTypeUint:
		n, err := decodeHeadArg(r, name, majorTypeUint, b)
		if err != nil {
			return 0, err
		}
		if n > uint64(math.MaxInt64) || int64(n) > maxIntOf(bitsize) {
			return 0, UintOverflow{Value: n, FailedBitsize: bitsize}
		}
		return int64(n), nil
	case majorTypeNegInt:
		n, err := decodeHeadArg(r, name, majorTypeNegInt, b)
		if err != nil {
			return 0, err
		}
		// value = -1 - n; representable iff n <= 2^(bitsize-1) - 1
		if n > uint64(maxIntOf(bitsize)) {
			return 0, ArithmeticOverflowError{Name: name}
		}
		return -1 - int64(n), nil
	default:
		return 0, badPrefix(name, b)
	}
}

func maxIntOf(bitsize int) int64 {
	if bitsize >= 64 {
		return math.MaxInt64
	}
	return int64(1)<<(bitsize-1) - 1
}

// DecodeInt64 decodes a signed integer (major type 0 or 1).
func DecodeInt64(r Reader) (int64, error) { return decodeInt(r, "i64", 64) }

// DecodeInt32 decodes a signed integer into an int32.
func DecodeInt32(r Reader) (int32, error) {
	v, err := decodeInt(r, "i32", 32)
	return int32(v), err
}

// DecodeInt16 decodes a signed integer into an int16.
func DecodeInt16(r Reader) (int16, error) {
	v, err := decodeInt(r, "i16", 16)
	return int16(v), err
}

// DecodeInt8 decodes a signed integer into an int8.
func DecodeInt8(r Reader) (int8, error) {
	v, err := decodeInt(r, "i8", 8)
	return int8(v), err
}

// DecodeBigInt decodes an integer of arbitrary width: a direct major
// type 0/1 head, or a bignum (tag 2/3) whose payload is a big-endian
// byte string of at most 16 bytes. Longer payloads fail with
// LengthOverflowError so a forged prefix cannot drive the allocation.
func DecodeBigInt(r Reader) (*big.Int, error) {
	b, err := peekOne(r)
	if err != nil {
		return nil, err
	}
	switch getMajorType(b) {
	case majorTypeUint:
		n, err := decodeHead(r, "bignum", majorTypeUint)
		if err != nil {
			return nil, err
		}
		return new(big.Int).SetUint64(n), nil
	case majorTypeNegInt:
		n, err := decodeHead(r, "bignum", majorTypeNegInt)
		if err != nil {
			return nil, err
		}
		v := new(big.Int).SetUint64(n)
		v.Add(v, bigOne)
		return v.Neg(v), nil
	case majorTypeTag:
		tag, err := decodeHead(r, "bignum", majorTypeTag)
		if err != nil {
			return nil, err
		}
		if tag != tagPosBignum && tag != tagNegBignum {
			return nil, badPrefix("bignum", b)
		}
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
		return nil, badPrefix("bignum", b)
	}
}

var bigOne = big.NewInt(1)

// DecodeFloat64 decodes a double-precision float. The exact 0xfb
// marker is required; no width coercion happens on decode.
func DecodeFloat64(r Reader) (float64, error) {
	b, err := pullOne(r)
	if err != nil {
		return 0, err
	}
	if b != makeByte(majorTypeSimple, simpleFloat64) {
		return 0, badPrefix("f64", b)
	}
	var buf [8]byte
	if err := pullExact(r, buf[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(be.Uint64(buf[:])), nil
}

// DecodeFloat32 decodes a single-precision float (exact 0xfa marker).
func DecodeFloat32(r Reader) (float32, error) {
	b, err := pullOne(r)
	if err != nil {
		return 0, err
	}
	if b != makeByte(majorTypeSimple, simpleFloat32) {
		return 0, badPrefix("f32", b)
	}
	var buf [4]byte
	if err := pullExact(r, buf[:]); err != nil {
		return 0, err
	}
	return math.Float32frombits(be.Uint32(buf[:])), nil
}

// DecodeFloat16 decodes a half-precision float (exact 0xf9 marker).
// Widen with Float32() as needed.
func DecodeFloat16(r Reader) (float16.Float16, error) {
	b, err := pullOne(r)
	if err != nil {
		return 0, err
	}
	if b != makeByte(majorTypeSimple, simpleFloat16) {
		return 0, badPrefix("f16", b)
	}
	var buf [2]byte
	if err := pullExact(r, buf[:]); err != nil {
		return 0, err
	}
	return float16.Frombits(be.Uint16(buf[:])), nil
}

// DecodeBool decodes a boolean.
func DecodeBool(r Reader) (bool, error) {
	b, err := pullOne(r)
	if err != nil {
		return false, err
	}
	switch b {
	case makeByte(majorTypeSimple, simpleTrue):
		return true, nil
	case makeByte(majorTypeSimple, simpleFalse):
		return false, nil
	default:
		return false, badPrefix("bool", b)
	}
}

// DecodeNull probes for null or undefined. It consumes the marker and
// reports true on a match; any other initial byte is left unconsumed.
func DecodeNull(r Reader) (bool, error) {
	b, err := peekOne(r)
	if err != nil {
		return false, err
	}
	switch b {
	case makeByte(majorTypeSimple, simpleNull), makeByte(majorTypeSimple, simpleUndefined):
		r.Advance(1)
		return true, nil
	default:
		return false, nil
	}
}

// DecodeSimple decodes a numeric simple value: 0..23 directly, or
// 32..255 following the 0xf8 prefix. Float markers are rejected.
func DecodeSimple(r Reader) (uint8, error) {
	b, err := pullOne(r)
	if err != nil {
		return 0, err
	}
	if getMajorType(b) != majorTypeSimple {
		return 0, badPrefix("simple", b)
	}
	info := getAddInfo(b)
	switch {
	case info <= addInfoDirect:
		return info, nil
	case info == addInfoUint8:
		v, err := pullOne(r)
		if err != nil {
			return 0, err
		}
		if v < 32 {
			return 0, UnsupportedError{Byte: v}
		}
		return v, nil
	default:
		return 0, badPrefix("simple", b)
	}
}

// DecodeBreak probes for a break (0xff), consuming it on a match.
func DecodeBreak(r Reader) (bool, error) {
	b, err := peekOne(r)
	if err != nil {
		return false, err
	}
	if b == makeByte(majorTypeSimple, simpleBreak) {
		r.Advance(1)
		return true, nil
	}
	return false, nil
}

// decodeStrDefiniteZC reads a definite-length payload of n bytes as a
// single long reference into the input.
func decodeStrDefiniteZC(r Reader, name string, n int) ([]byte, error) {
	ref, err := r.Fill(n)
	if err != nil {
		return nil, err
	}
	if !ref.Long() {
		return nil, ErrRequireBorrowed
	}
	if ref.Len() < n {
		return nil, RequireLengthError{Name: name, Expect: n, Got: ref.Len()}
	}
	out := ref.Bytes()[:n:n]
	r.Advance(n)
	return out, nil
}

// decodeStrZC decodes a string of the given major type as a borrowed
// view into the input. Indefinite-length strings span multiple chunks
// and cannot be borrowed as one reference.
func decodeStrZC(r Reader, name string, major uint8) ([]byte, error) {
	n, indefinite, err := decodeLen(r, name, major)
	if err != nil {
		return nil, err
	}
	if indefinite {
		return nil, ErrRequireBorrowed
	}
	return decodeStrDefiniteZC(r, name, n)
}

// copyPayload appends n payload bytes from the reader to dst, looping
// over however the reader chooses to chunk them.
func copyPayload(r Reader, dst []byte, n int) ([]byte, error) {
	for n > 0 {
		ref, err := r.Fill(n)
		if err != nil {
			return nil, err
		}
		if ref.Len() == 0 {
			return nil, ErrShortBytes
		}
		take := ref.Len()
		if take > n {
			take = n
		}
		dst = append(dst, ref.Bytes()[:take]...)
		r.Advance(take)
		n -= take
	}
	return dst, nil
}

// decodeStrOwned decodes a string of the given major type into owned
// storage. The up-front reservation is capped at maxReserve so a forged
// length prefix cannot reserve unbounded memory; larger payloads grow
// as bytes actually arrive. A non-zero maxLen bounds the total length
// with LengthOverflowError before the payload (for an indefinite string,
// the chunk) that would exceed it is copied.
// Indefinite-length strings are a sequence of definite same-major
// chunks closed by a break; nested indefinite chunks are rejected.
func decodeStrOwned(r Reader, name string, major uint8, maxLen uint64) ([]byte, error) {
	n, indefinite, err := decodeLen(r, name, major)
	if err != nil {
		return nil, err
	}
	if !indefinite {
		if maxLen > 0 && uint64(n) > maxLen {
			return nil, LengthOverflowError{Name: name, Len: uint64(n), Limit: maxLen}
		}
		return copyPayload(r, make([]byte, 0, reserve(n)), n)
	}
	var out []byte
	for {
		done, err := DecodeBreak(r)
		if err != nil {
			return nil, err
		}
		if done {
			if out == nil {
				out = []byte{}
			}
			return out, nil
		}
		// decodeHead rejects a nested indefinite marker.
		chunk, err := decodeHead(r, name, major)
		if err != nil {
			return nil, err
		}
		if chunk > math.MaxInt {
			return nil, LengthOverflowError{Name: name, Len: chunk, Limit: math.MaxInt}
		}
		if maxLen > 0 && uint64(len(out))+chunk > maxLen {
			return nil, LengthOverflowError{Name: name, Len: uint64(len(out)) + chunk, Limit: maxLen}
		}
		if out == nil {
			out = make([]byte, 0, reserve(int(chunk)))
		}
		out, err = copyPayload(r, out, int(chunk))
		if err != nil {
			return nil, err
		}
	}
}

func reserve(n int) int {
	if n > maxReserve {
		return maxReserve
	}
	return n
}

// DecodeBytes decodes a byte string into owned storage, except that a
// definite-length payload served as one long reference is returned
// zero-copy, aliasing the input.
func DecodeBytes(r Reader) ([]byte, error) {
	if zc, ok, err := tryStrZC(r, "bytes", majorTypeBytes); err != nil {
		return nil, err
	} else if ok {
		return zc, nil
	}
	return decodeStrOwned(r, "bytes", majorTypeBytes, 0)
}

// tryStrZC attempts the zero-copy path for an owned-string decode
// without consuming anything on failure. It peeks the head and, for a
// definite length fully visible as a long reference, consumes the whole
// item and returns the aliasing slice.
func tryStrZC(r Reader, name string, major uint8) ([]byte, bool, error) {
	b, err := peekOne(r)
	if err != nil {
		return nil, false, err
	}
	if getMajorType(b) != major || getAddInfo(b) > addInfoUint64 {
		return nil, false, nil
	}
	headLen := 1
	switch getAddInfo(b) {
	case addInfoUint8:
		headLen = 2
	case addInfoUint16:
		headLen = 3
	case addInfoUint32:
		headLen = 5
	case addInfoUint64:
		headLen = 9
	}
	ref, err := r.Fill(headLen)
	if err != nil {
		return nil, false, err
	}
	if !ref.Long() || ref.Len() < headLen {
		return nil, false, nil
	}
	head := ref.Bytes()
	var n uint64
	switch headLen {
	case 1:
		n = uint64(getAddInfo(b))
	case 2:
		n = uint64(head[1])
	case 3:
		n = uint64(be.Uint16(head[1:]))
	case 5:
		n = uint64(be.Uint32(head[1:]))
	case 9:
		n = be.Uint64(head[1:])
	}
	if n > math.MaxInt-uint64(headLen) {
		return nil, false, nil
	}
	total := headLen + int(n)
	ref, err = r.Fill(total)
	if err != nil {
		return nil, false, err
	}
	if !ref.Long() || ref.Len() < total {
		return nil, false, nil
	}
	out := ref.Bytes()[headLen:total:total]
	r.Advance(total)
	return out, true, nil
}

// DecodeBytesZC decodes a byte string as a borrowed view into the
// input. Readers that only serve short references fail with
// ErrRequireBorrowed; indefinite-length strings cannot be borrowed.
func DecodeBytesZC(r Reader) ([]byte, error) {
	return decodeStrZC(r, "bytes", majorTypeBytes)
}

// DecodeString decodes a text string into an owned string, validating
// UTF-8 unless ValidateUTF8OnDecode is disabled.
func DecodeString(r Reader) (string, error) {
	var buf []byte
	if zc, ok, err := tryStrZC(r, "str", majorTypeText); err != nil {
		return "", err
	} else if ok {
		buf = zc
		if ValidateUTF8OnDecode && !isUTF8Valid(buf) {
			return "", ErrInvalidUTF8
		}
		if UnsafeStringDecode {
			return UnsafeString(buf), nil
		}
		return string(buf), nil
	}
	buf, err := decodeStrOwned(r, "str", majorTypeText, 0)
	if err != nil {
		return "", err
	}
	if ValidateUTF8OnDecode && !isUTF8Valid(buf) {
		return "", ErrInvalidUTF8
	}
	return string(buf), nil
}

// DecodeStringZC decodes a text string as a borrowed view into the
// input, validating UTF-8 unless ValidateUTF8OnDecode is disabled.
func DecodeStringZC(r Reader) ([]byte, error) {
	buf, err := decodeStrZC(r, "str", majorTypeText)
	if err != nil {
		return nil, err
	}
	if ValidateUTF8OnDecode && !isUTF8Valid(buf) {
		return nil, ErrInvalidUTF8
	}
	return buf, nil
}

// DecodeStringUnchecked decodes a text string without UTF-8 validation,
// for protocols that tolerate invalid text payloads.
func DecodeStringUnchecked(r Reader) (string, error) {
	buf, err := decodeStrOwned(r, "str", majorTypeText, 0)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// DecodeArrayHead decodes an array head. It returns the element count
// for a definite array, or indefinite=true when elements run until a
// break.
func DecodeArrayHead(r Reader) (n int, indefinite bool, err error) {
	return decodeLen(r, "array", majorTypeArray)
}

// DecodeMapHead decodes a map head. It returns the pair count for a
// definite map, or indefinite=true when pairs run until a break.
func DecodeMapHead(r Reader) (n int, indefinite bool, err error) {
	return decodeLen(r, "map", majorTypeMap)
}

// DecodeTagHead decodes a tag head and returns the tag number. The
// tagged content follows as the next item.
func DecodeTagHead(r Reader) (uint64, error) {
	return decodeHead(r, "tag", majorTypeTag)
}

// DecodeTime decodes a tag 0 (RFC3339 text) or tag 1 (epoch seconds,
// integer or float) timestamp.
func DecodeTime(r Reader) (time.Time, error) {
	tag, err := DecodeTagHead(r)
	if err != nil {
		return time.Time{}, err
	}
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
	case tagEpochDateTime:
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
		case majorTypeSimple:
			f, err := DecodeFloat64(r)
			if err != nil {
				return time.Time{}, err
			}
			sec, frac := math.Modf(f)
			return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
		default:
			return time.Time{}, badPrefix("time", b)
		}
	default:
		return time.Time{}, TypeMismatchError{Name: "time", Byte: makeByte(majorTypeTag, 0)}
	}
}

// Skip consumes exactly one CBOR item without materializing it. It
// respects the reader's recursion budget for nested containers and
// tags.
func Skip(r Reader) error {
	if !r.StepIn() {
		return ErrMaxDepthExceeded
	}
	defer r.StepOut()

	b, err := pullOne(r)
	if err != nil {
		return err
	}
	switch getMajorType(b) {
	case majorTypeUint, majorTypeNegInt:
		_, err := decodeHeadArg(r, "skip", getMajorType(b), b)
		return err
	case majorTypeBytes, majorTypeText:
		return skipString(r, getMajorType(b), b)
	case majorTypeArray:
		return skipMany(r, b, majorTypeArray, 1)
	case majorTypeMap:
		return skipMany(r, b, majorTypeMap, 2)
	case majorTypeTag:
		if _, err := decodeHeadArg(r, "skip", majorTypeTag, b); err != nil {
			return err
		}
		return Skip(r)
	default:
		return skipSimple(r, b)
	}
}

func skipString(r Reader, major uint8, b byte) error {
	if b == makeByte(major, addInfoIndefinite) {
		for {
			done, err := DecodeBreak(r)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			n, err := decodeHead(r, "skip", major)
			if err != nil {
				return err
			}
			if err := skipPayload(r, n); err != nil {
				return err
			}
		}
	}
	n, err := decodeHeadArg(r, "skip", major, b)
	if err != nil {
		return err
	}
	return skipPayload(r, n)
}

func skipMany(r Reader, b byte, major uint8, per int) error {
	if b == makeByte(major, addInfoIndefinite) {
		for {
			done, err := DecodeBreak(r)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			if err := Skip(r); err != nil {
				return err
			}
		}
	}
	n, err := decodeHeadArg(r, "skip", major, b)
	if err != nil {
		return err
	}
	for i := uint64(0); i < n; i++ {
		for j := 0; j < per; j++ {
			if err := Skip(r); err != nil {
				return err
			}
		}
	}
	return nil
}

func skipSimple(r Reader, b byte) error {
	switch getAddInfo(b) {
	case addInfoUint8:
		_, err := pullOne(r)
		return err
	case simpleFloat16:
		var buf [2]byte
		return pullExact(r, buf[:])
	case simpleFloat32:
		var buf [4]byte
		return pullExact(r, buf[:])
	case simpleFloat64:
		var buf [8]byte
		return pullExact(r, buf[:])
	case simpleBreak:
		return ErrBreak
	default:
		if getAddInfo(b) <= addInfoDirect {
			return nil
		}
		return UnsupportedError{Byte: b}
	}
}

func skipPayload(r Reader, n uint64) error {
	for n > 0 {
		want := n
		if want > maxReserve {
			want = maxReserve
		}
		ref, err := r.Fill(int(want))
		if err != nil {
			return err
		}
		if ref.Len() == 0 {
			return ErrShortBytes
		}
		take := uint64(ref.Len())
		if take > n {
			take = n
		}
		r.Advance(int(take))
		n -= take
	}
	return nil
}
