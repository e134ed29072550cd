package cbor

import "io"

// NextType returns the type of the next item in the slice.
func NextType(b []byte) Type {
	if len(b) == 0 {
		return InvalidType
	}
	return getType(b[0])
}

// Require ensures that b has capacity for at least n additional bytes
// without reallocation. It returns a slice that shares the original
// contents and has sufficient capacity for appending n bytes.
func Require(b []byte, n int) []byte {
	if cap(b)-len(b) >= n {
		return b
	}
	nb := make([]byte, len(b), len(b)+n)
	copy(nb, b)
	return nb
}

// Encode writes e to w as a single CBOR item.
func Encode(w io.Writer, e Encodable) error {
	return e.EncodeCBOR(NewStreamWriter(w))
}

// Decode reads a single CBOR item from r into d.
func Decode(r io.Reader, d Decodable) error {
	return d.DecodeCBOR(NewStreamReader(r))
}

// Valid reports whether b contains exactly one well-formed CBOR item
// with no trailing bytes. Nesting is bounded by the default recursion
// budget.
func Valid(b []byte) error {
	r := NewSliceReader(b)
	if err := Skip(r); err != nil {
		return err
	}
	if len(r.Rest()) != 0 {
		return ErrTrailingBytes
	}
	return nil
}
