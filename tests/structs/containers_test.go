package structs

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cbor "github.com/synadia-labs/cbor-stream/runtime"
)

func TestSliceAndMapRoundTrip(t *testing.T) {
	type nested struct {
		Names  []string          `cbor:"names"`
		Counts map[string]uint32 `cbor:"counts"`
		Grid   [][]int           `cbor:"grid"`
		Fixed  [3]byte           `cbor:"fixed"`
	}
	orig := nested{
		Names:  []string{"a", "b", "c"},
		Counts: map[string]uint32{"x": 1, "y": 2},
		Grid:   [][]int{{1, 2}, {3}},
		Fixed:  [3]byte{7, 8, 9},
	}

	enc, err := cbor.Marshal(orig)
	require.NoError(t, err)

	var got nested
	require.NoError(t, cbor.Unmarshal(enc, &got))
	assert.Equal(t, orig, got)
}

func TestIndefiniteContainersIntoTypedTargets(t *testing.T) {
	// [_ 1, 2, 3]
	msg, err := hex.DecodeString("9f010203ff")
	require.NoError(t, err)
	var ints []int
	require.NoError(t, cbor.Unmarshal(msg, &ints))
	assert.Equal(t, []int{1, 2, 3}, ints)

	// {_ "a": 1, "b": 2}
	msg, err = hex.DecodeString("bf616101616202ff")
	require.NoError(t, err)
	var m map[string]int
	require.NoError(t, cbor.Unmarshal(msg, &m))
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, m)
}

func TestNilSliceEncodesNull(t *testing.T) {
	type holder struct {
		V []int `cbor:"v"`
	}
	enc, err := cbor.Marshal(holder{})
	require.NoError(t, err)
	// {"v": null}
	assert.Equal(t, "a16176f6", hex.EncodeToString(enc))

	var got holder
	require.NoError(t, cbor.Unmarshal(enc, &got))
	assert.Nil(t, got.V)
}

func TestFixedArrayLengthMismatch(t *testing.T) {
	msg, err := hex.DecodeString("820102") // [1, 2]
	require.NoError(t, err)
	var three [3]int
	require.Error(t, cbor.Unmarshal(msg, &three))
}

func TestMapSortedKeysDeterministic(t *testing.T) {
	in := map[string]int{"b": 2, "a": 1, "c": 3}
	first, err := cbor.Marshal(in)
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		again, err := cbor.Marshal(in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	// a3 6161 01 6162 02 6163 03
	assert.Equal(t, "a3616101616202616303", hex.EncodeToString(first))
}

func TestDeepNestingHitsBudgetViaUnmarshal(t *testing.T) {
	deep := make([]byte, 0, 600)
	for i := 0; i < 300; i++ {
		deep = append(deep, 0x81)
	}
	deep = append(deep, 0x01)

	var out any
	require.Error(t, cbor.Unmarshal(deep, &out))
}
