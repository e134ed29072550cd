package interop

import (
	"encoding/hex"
	"reflect"
	"testing"

	fxcbor "github.com/fxamacker/cbor/v2"

	cbor "github.com/synadia-labs/cbor-stream/runtime"
)

// Differential corpus: vectors where both implementations define the
// same dynamic mapping (no tags, whose models diverge by design).
var differentialVectors = []string{
	"00", "0a", "17", "1818", "18ff", "190100", "1a00010000", "1bffffffffffffffff",
	"20", "37", "3818", "390100", "3a00010000",
	"40", "43010203",
	"60", "6161", "6449455446",
	"80", "83010203", "8301820203820405", "9f010203ff",
	"a0", "a2616101616202", "bf61610161629f0203ffff",
	"f4", "f5", "f6",
	"f93c00", "fa47c35000", "fb3ff199999999999a",
}

func TestDynamicDecodeMatchesFxamacker(t *testing.T) {
	for _, h := range differentialVectors {
		h := h
		t.Run(h, func(t *testing.T) {
			msg, err := hex.DecodeString(h)
			if err != nil {
				t.Fatalf("bad hex: %v", err)
			}

			var theirs any
			if err := fxcbor.Unmarshal(msg, &theirs); err != nil {
				t.Fatalf("fxamacker failed on shared vector: %v", err)
			}

			var ours any
			if err := cbor.Unmarshal(msg, &ours); err != nil {
				t.Fatalf("our Unmarshal failed: %v", err)
			}

			if !dynEqual(ours, theirs) {
				t.Fatalf("dynamic mismatch:\n ours:   %#v\n theirs: %#v", ours, theirs)
			}
		})
	}
}

// dynEqual compares the two dynamic models deeply, comparing []byte
// values by content; map keys must match exactly.
func dynEqual(a, b any) bool {
	switch x := a.(type) {
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !dynEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	case map[any]any:
		y, ok := b.(map[any]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, v := range x {
			yv, ok := y[k]
			if !ok || !dynEqual(v, yv) {
				return false
			}
		}
		return true
	case []byte:
		y, ok := b.([]byte)
		return ok && string(x) == string(y)
	default:
		return reflect.DeepEqual(a, b)
	}
}

func TestStructCrossLibrary(t *testing.T) {
	type record struct {
		Name string  `cbor:"name"`
		Age  int     `cbor:"age"`
		Tags []int   `cbor:"tags"`
		Bio  *string `cbor:"bio"`
	}
	bio := "hi"
	in := record{Name: "Ada", Age: 36, Tags: []int{1, 2, 3}, Bio: &bio}

	// Our encoding must be readable by fxamacker.
	enc, err := cbor.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	var viaTheirs record
	if err := fxcbor.Unmarshal(enc, &viaTheirs); err != nil {
		t.Fatalf("fxamacker could not read our struct encoding: %v", err)
	}
	if !reflect.DeepEqual(in, viaTheirs) {
		t.Fatalf("got %+v", viaTheirs)
	}

	// And theirs by us.
	enc2, err := fxcbor.Marshal(in)
	if err != nil {
		t.Fatalf("fxamacker Marshal error: %v", err)
	}
	var viaOurs record
	if err := cbor.Unmarshal(enc2, &viaOurs); err != nil {
		t.Fatalf("we could not read fxamacker's struct encoding: %v", err)
	}
	if !reflect.DeepEqual(in, viaOurs) {
		t.Fatalf("got %+v", viaOurs)
	}
}
