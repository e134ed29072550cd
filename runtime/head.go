package cbor

import (
	"encoding/binary"
	"math"
)

var be = binary.BigEndian

// pullOne consumes and returns the next byte.
func pullOne(r Reader) (byte, error) {
	ref, err := r.Fill(1)
	if err != nil {
		return 0, err
	}
	if ref.Len() < 1 {
		return 0, ErrShortBytes
	}
	b := ref.Bytes()[0]
	r.Advance(1)
	return b, nil
}

// peekOne returns the next byte without consuming it.
func peekOne(r Reader) (byte, error) {
	ref, err := r.Fill(1)
	if err != nil {
		return 0, err
	}
	if ref.Len() < 1 {
		return 0, ErrShortBytes
	}
	return ref.Bytes()[0], nil
}

// pullExact fills dst from the reader, consuming exactly len(dst) bytes.
// The reader must expose them in a single reference.
func pullExact(r Reader, dst []byte) error {
	ref, err := r.Fill(len(dst))
	if err != nil {
		return err
	}
	if ref.Len() < len(dst) {
		return ErrShortBytes
	}
	copy(dst, ref.Bytes())
	r.Advance(len(dst))
	return nil
}

// decodeHeadArg decodes the argument of a head whose initial byte has
// already been consumed. It verifies the major type and reads the 0, 1,
// 2, 4 or 8 trailing big-endian argument bytes. The indefinite marker
// is rejected here; callers that permit it use decodeLen.
func decodeHeadArg(r Reader, name string, major uint8, b byte) (uint64, error) {
	if getMajorType(b) != major {
		return 0, badPrefix(name, b)
	}
	info := getAddInfo(b)
	switch {
	case info <= addInfoDirect:
		return uint64(info), nil
	case info == addInfoUint8:
		v, err := pullOne(r)
		return uint64(v), err
	case info == addInfoUint16:
		var buf [2]byte
		if err := pullExact(r, buf[:]); err != nil {
			return 0, err
		}
		return uint64(be.Uint16(buf[:])), nil
	case info == addInfoUint32:
		var buf [4]byte
		if err := pullExact(r, buf[:]); err != nil {
			return 0, err
		}
		return uint64(be.Uint32(buf[:])), nil
	case info == addInfoUint64:
		var buf [8]byte
		if err := pullExact(r, buf[:]); err != nil {
			return 0, err
		}
		return be.Uint64(buf[:]), nil
	case info == addInfoIndefinite:
		return 0, badPrefix(name, b)
	default:
		// reserved additional info 28-30
		return 0, UnsupportedError{Byte: b}
	}
}

// decodeHead consumes a complete head of the expected major type and
// returns its argument.
func decodeHead(r Reader, name string, major uint8) (uint64, error) {
	b, err := pullOne(r)
	if err != nil {
		return 0, err
	}
	return decodeHeadArg(r, name, major, b)
}

// decodeLen consumes a complete head of the expected major type and
// probes for the indefinite-length marker. It returns (0, true) after
// consuming the marker, or (n, false) for a definite length. Lengths
// that do not fit an int fail with LengthOverflowError.
func decodeLen(r Reader, name string, major uint8) (int, bool, error) {
	b, err := pullOne(r)
	if err != nil {
		return 0, false, err
	}
	if b == makeByte(major, addInfoIndefinite) {
		return 0, true, nil
	}
	arg, err := decodeHeadArg(r, name, major, b)
	if err != nil {
		return 0, false, err
	}
	if arg > math.MaxInt {
		return 0, false, LengthOverflowError{Name: name, Len: arg, Limit: math.MaxInt}
	}
	return int(arg), false, nil
}

// encodeHead emits the smallest head encoding that fits the argument:
// 1, 2, 3, 5 or 9 bytes.
func encodeHead(w Writer, major uint8, arg uint64) error {
	var buf [9]byte
	switch {
	case arg <= addInfoDirect:
		buf[0] = makeByte(major, uint8(arg))
		return w.Push(buf[:1])
	case arg <= math.MaxUint8:
		buf[0] = makeByte(major, addInfoUint8)
		buf[1] = uint8(arg)
		return w.Push(buf[:2])
	case arg <= math.MaxUint16:
		buf[0] = makeByte(major, addInfoUint16)
		be.PutUint16(buf[1:], uint16(arg))
		return w.Push(buf[:3])
	case arg <= math.MaxUint32:
		buf[0] = makeByte(major, addInfoUint32)
		be.PutUint32(buf[1:], uint32(arg))
		return w.Push(buf[:5])
	default:
		buf[0] = makeByte(major, addInfoUint64)
		be.PutUint64(buf[1:], arg)
		return w.Push(buf[:9])
	}
}
