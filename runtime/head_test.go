package cbor

import (
	"bytes"
	"testing"
)

func TestEncodeHeadMinimalWidths(t *testing.T) {
	cases := []struct {
		arg  uint64
		want []byte
	}{
		{0, []byte{0x00}},
		{23, []byte{0x17}},
		{24, []byte{0x18, 24}},
		{255, []byte{0x18, 255}},
		{256, []byte{0x19, 0x01, 0x00}},
		{65535, []byte{0x19, 0xff, 0xff}},
		{65536, []byte{0x1a, 0x00, 0x01, 0x00, 0x00}},
		{1 << 32, []byte{0x1b, 0, 0, 0, 1, 0, 0, 0, 0}},
	}
	for _, tc := range cases {
		bb := NewByteBuffer(nil)
		if err := encodeHead(bb, majorTypeUint, tc.arg); err != nil {
			t.Fatalf("encodeHead(%d): %v", tc.arg, err)
		}
		if !bytes.Equal(bb.Bytes(), tc.want) {
			t.Fatalf("encodeHead(%d) = %x, want %x", tc.arg, bb.Bytes(), tc.want)
		}

		got, err := decodeHead(NewSliceReader(tc.want), "u64", majorTypeUint)
		if err != nil {
			t.Fatalf("decodeHead(%x): %v", tc.want, err)
		}
		if got != tc.arg {
			t.Fatalf("decodeHead(%x) = %d", tc.want, got)
		}
	}
}

func TestDecodeHeadMismatchAndReserved(t *testing.T) {
	if _, err := decodeHead(NewSliceReader([]byte{0x40}), "u64", majorTypeUint); err == nil {
		t.Fatal("major mismatch accepted")
	}
	for _, b := range []byte{0x1c, 0x1d, 0x1e} {
		if _, err := decodeHead(NewSliceReader([]byte{b}), "u64", majorTypeUint); err == nil {
			t.Fatalf("reserved info %#x accepted", b)
		}
	}
	// The indefinite marker is rejected by plain head decode...
	if _, err := decodeHead(NewSliceReader([]byte{0x5f}), "bytes", majorTypeBytes); err == nil {
		t.Fatal("indefinite marker accepted by decodeHead")
	}
	// ...and consumed by the length probe.
	r := NewSliceReader([]byte{0x5f})
	n, indefinite, err := decodeLen(r, "bytes", majorTypeBytes)
	if err != nil || !indefinite || n != 0 {
		t.Fatalf("decodeLen probe: %d, %v, %v", n, indefinite, err)
	}
	if r.Pos() != 1 {
		t.Fatal("probe did not consume the marker")
	}
}

func TestProxyReaderMeasuresWithoutConsuming(t *testing.T) {
	input := []byte{0x83, 0x01, 0x02, 0x03, 0xaa}
	r := NewSliceReader(input)
	p := proxyReader{r: r}
	if err := Skip(&p); err != nil {
		t.Fatalf("Skip over proxy: %v", err)
	}
	if p.offset != 4 {
		t.Fatalf("proxy measured %d bytes", p.offset)
	}
	if r.Pos() != 0 {
		t.Fatal("proxy consumed from the underlying reader")
	}
}
