package tests

import (
	"bytes"
	"errors"
	"testing"
	"testing/iotest"

	cbor "github.com/synadia-labs/cbor-stream/runtime"
)

func TestStreamReaderDecodesAcrossChunkBoundaries(t *testing.T) {
	msg := mustHex(t, "a26161016162820203")
	want := cbor.MapValue(
		cbor.ValuePair{Key: cbor.TextValue("a"), Value: cbor.Uint(1)},
		cbor.ValuePair{Key: cbor.TextValue("b"), Value: cbor.ArrayValue(cbor.Uint(2), cbor.Uint(3))},
	)

	// One byte at a time forces every head and payload to straddle a
	// refill.
	r := cbor.NewStreamReader(iotest.OneByteReader(bytes.NewReader(msg)))
	got, err := cbor.DecodeValue(r)
	if err != nil {
		t.Fatalf("DecodeValue error: %v", err)
	}
	if !got.Equal(want) {
		t.Fatal("value mismatch over one-byte stream")
	}
}

func TestStreamReaderReferencesAreShort(t *testing.T) {
	msg := mustHex(t, "43010203")
	r := cbor.NewStreamReader(bytes.NewReader(msg))

	if _, err := cbor.DecodeBytesZC(r); !errors.Is(err, cbor.ErrRequireBorrowed) {
		t.Fatalf("want ErrRequireBorrowed, got %v", err)
	}

	// The failed borrowed attempt already consumed the head, so the
	// owned decoder reads a fresh stream and copies the payload.
	r = cbor.NewStreamReader(bytes.NewReader(msg))
	out, err := cbor.DecodeBytes(r)
	if err != nil {
		t.Fatalf("DecodeBytes error: %v", err)
	}
	if !bytes.Equal(out, []byte{1, 2, 3}) {
		t.Fatalf("got %x", out)
	}
}

func TestStreamReaderLargePayload(t *testing.T) {
	// A payload larger than the read-ahead bound must stream through
	// in pieces.
	payload := bytes.Repeat([]byte{0xab}, 100_000)
	bb := cbor.NewByteBuffer(nil)
	if err := cbor.EncodeBytes(bb, payload); err != nil {
		t.Fatalf("EncodeBytes error: %v", err)
	}

	r := cbor.NewStreamReader(bytes.NewReader(bb.Bytes()))
	out, err := cbor.DecodeBytes(r)
	if err != nil {
		t.Fatalf("DecodeBytes error: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatal("large payload mismatch")
	}
}

func TestStreamReaderEOF(t *testing.T) {
	r := cbor.NewStreamReader(bytes.NewReader(mustHex(t, "1b0000")))
	if _, err := cbor.DecodeUint64(r); !errors.Is(err, cbor.ErrShortBytes) {
		t.Fatalf("want ErrShortBytes, got %v", err)
	}
}

func TestStreamReaderDepthBudget(t *testing.T) {
	deep := append(bytes.Repeat([]byte{0x81}, 8), 0x80)
	r := cbor.NewStreamReader(bytes.NewReader(deep))
	r.SetMaxDepth(4)
	if _, err := cbor.DecodeValue(r); !errors.Is(err, cbor.ErrMaxDepthExceeded) {
		t.Fatalf("want ErrMaxDepthExceeded, got %v", err)
	}
}

func TestEncodeDecodeOverIOStreams(t *testing.T) {
	var sink bytes.Buffer
	v := cbor.ArrayValue(cbor.Uint(1), cbor.TextValue("two"), cbor.Bool(true))
	if err := cbor.Encode(&sink, v); err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	var raw cbor.RawValue
	err := cbor.Decode(bytes.NewReader(sink.Bytes()), &raw)
	if !errors.Is(err, cbor.ErrRequireBorrowed) {
		t.Fatalf("raw decode over stream: want ErrRequireBorrowed, got %v", err)
	}

	got, err := cbor.DecodeValue(cbor.NewStreamReader(bytes.NewReader(sink.Bytes())))
	if err != nil {
		t.Fatalf("DecodeValue error: %v", err)
	}
	if !got.Equal(v) {
		t.Fatal("round trip over io streams mismatch")
	}
}
