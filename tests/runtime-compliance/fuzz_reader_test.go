package tests

import (
	"bytes"
	"testing"

	cbor "github.com/synadia-labs/cbor-stream/runtime"
)

// FuzzDecodeValue checks that arbitrary input never panics, that a
// successful decode re-encodes to something the decoder accepts again,
// and that Skip agrees with DecodeValue about item boundaries.
func FuzzDecodeValue(f *testing.F) {
	seeds := []string{
		"00", "1bffffffffffffffff", "3bffffffffffffffff",
		"43010203", "5f44aabbccdd43eeff99ff",
		"6449455446", "7f6673747265616d63696e67ff",
		"83010203", "9f010203ff",
		"a2616101616202", "bf6161019f0203ffff",
		"c249010000000000000000", "c349010000000000000000",
		"f4", "f6", "f7", "f8ff", "f93c00", "fa47c35000", "fb3ff199999999999a",
		"ff", "1c", "5fff", "7f41ffff",
	}
	for _, s := range seeds {
		b := make([]byte, len(s)/2)
		for i := 0; i < len(b); i++ {
			b[i] = hexNibble(s[2*i])<<4 | hexNibble(s[2*i+1])
		}
		f.Add(b)
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		r := cbor.NewSliceReader(data)
		v, err := cbor.DecodeValue(r)
		if err != nil {
			return
		}
		consumed := r.Pos()

		// Skip must consume the exact same span.
		rs := cbor.NewSliceReader(data)
		if err := cbor.Skip(rs); err != nil {
			t.Fatalf("Skip failed where DecodeValue succeeded: %v", err)
		}
		if rs.Pos() != consumed {
			t.Fatalf("Skip consumed %d, DecodeValue consumed %d", rs.Pos(), consumed)
		}

		// Re-encode and decode back to the same value.
		bb := cbor.NewByteBuffer(nil)
		if err := v.EncodeCBOR(bb); err != nil {
			t.Fatalf("re-encode failed: %v", err)
		}
		v2, err := cbor.DecodeValue(cbor.NewSliceReader(bb.Bytes()))
		if err != nil {
			t.Fatalf("decode of re-encoding failed: %v", err)
		}
		if !v.Equal(v2) {
			t.Fatal("re-encode round trip changed the value")
		}

		// RawValue must capture exactly the decoded span.
		raw, err := cbor.DecodeRawValue(cbor.NewSliceReader(data))
		if err != nil {
			t.Fatalf("DecodeRawValue failed where DecodeValue succeeded: %v", err)
		}
		if !bytes.Equal(raw, data[:consumed]) {
			t.Fatal("raw span differs from decoded span")
		}
	})
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
