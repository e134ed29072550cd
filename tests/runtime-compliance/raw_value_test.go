package tests

import (
	"bytes"
	"errors"
	"testing"

	cbor "github.com/synadia-labs/cbor-stream/runtime"
)

func TestRawValueIdentity(t *testing.T) {
	vectors := []string{
		"00",
		"3bffffffffffffffff",
		"43010203",
		"5f44aabbccdd43eeff99ff",
		"83010203",
		"9f010203ff",
		"a2616101616202",
		"c11a514b67b0",
		"f6",
		"fb3ff199999999999a",
	}
	for _, h := range vectors {
		msg := mustHex(t, h)
		// Trailing garbage must not leak into the captured span.
		input := append(append([]byte{}, msg...), 0xde, 0xad)

		r := cbor.NewSliceReader(input)
		raw, err := cbor.DecodeRawValue(r)
		if err != nil {
			t.Fatalf("DecodeRawValue(%s) error: %v", h, err)
		}
		if !bytes.Equal(raw, msg) {
			t.Fatalf("raw span mismatch for %s: got %x", h, raw)
		}
		if rest := r.Rest(); len(rest) != 2 {
			t.Fatalf("reader advanced wrong: %d trailing", len(rest))
		}

		// Re-emission is byte identical.
		bb := cbor.NewByteBuffer(nil)
		if err := raw.EncodeCBOR(bb); err != nil {
			t.Fatalf("EncodeCBOR error: %v", err)
		}
		if !bytes.Equal(bb.Bytes(), msg) {
			t.Fatalf("re-emit mismatch for %s", h)
		}
	}
}

func TestRawValueAliasesInput(t *testing.T) {
	msg := mustHex(t, "83010203")
	raw, err := cbor.DecodeRawValue(cbor.NewSliceReader(msg))
	if err != nil {
		t.Fatalf("DecodeRawValue error: %v", err)
	}
	if &raw[0] != &msg[0] {
		t.Fatal("raw value did not alias the input")
	}
	clone := raw.Clone()
	if &clone[0] == &raw[0] {
		t.Fatal("Clone still aliases the input")
	}
	if !bytes.Equal(clone, raw) {
		t.Fatal("Clone content differs")
	}
}

func TestRawValueRequiresBorrowingReader(t *testing.T) {
	msg := mustHex(t, "83010203")
	r := cbor.NewStreamReader(bytes.NewReader(msg))
	_, err := cbor.DecodeRawValue(r)
	if !errors.Is(err, cbor.ErrRequireBorrowed) {
		t.Fatalf("want ErrRequireBorrowed, got %v", err)
	}
}

func TestRawValueOf(t *testing.T) {
	v := cbor.MapValue(
		cbor.ValuePair{Key: cbor.TextValue("a"), Value: cbor.Uint(1)},
		cbor.ValuePair{Key: cbor.TextValue("b"), Value: cbor.Uint(2)},
	)
	raw, err := cbor.RawValueOf(v)
	if err != nil {
		t.Fatalf("RawValueOf error: %v", err)
	}
	if !bytes.Equal(raw, mustHex(t, "a2616101616202")) {
		t.Fatalf("got %x", raw)
	}
}

func TestRawValueThroughUnmarshal(t *testing.T) {
	type wrapper struct {
		ID   int           `cbor:"id"`
		Body cbor.RawValue `cbor:"body"`
	}
	in := wrapper{ID: 7, Body: cbor.RawValue(mustHex(t, "83010203"))}
	enc, err := cbor.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	var out wrapper
	if err := cbor.Unmarshal(enc, &out); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if out.ID != 7 || !bytes.Equal(out.Body, in.Body) {
		t.Fatalf("got %+v", out)
	}
}
