package tests

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cbor "github.com/synadia-labs/cbor-stream/runtime"
)

func fromHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestToJSON(t *testing.T) {
	cases := []struct {
		name string
		hex  string
		want string
	}{
		{"zero", "00", "0"},
		{"neg", "3903e7", "-1000"},
		{"neg-two-pow-64", "3bffffffffffffffff", "-18446744073709551616"},
		{"text", "6449455446", `"IETF"`},
		{"bytes-base64", "43010203", `"AQID"`},
		{"array", "83010203", "[1,2,3]"},
		{"indef-array", "9f010203ff", "[1,2,3]"},
		{"map", "a2616101616202", `{"a":1,"b":2}`},
		{"bool", "f5", "true"},
		{"null", "f6", "null"},
		{"undefined", "f7", "null"},
		{"float", "f93e00", "1.5"},
		{"tag-transparent", "c11a514b67b0", "1363896240"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := cbor.ToJSONBytes(fromHex(t, tc.hex))
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(got))
		})
	}
}

func TestToJSONIntegerKeysCoerced(t *testing.T) {
	// {1: "a"} -> {"1":"a"}, keys must stay valid JSON strings.
	got, err := cbor.ToJSONBytes(fromHex(t, "a1016161"))
	require.NoError(t, err)
	assert.True(t, json.Valid(got), "output %s is not valid JSON", got)
	assert.Equal(t, `{"1":"a"}`, string(got))
}

func TestFromJSON(t *testing.T) {
	cases := []struct {
		name string
		js   string
		hex  string
	}{
		{"zero", "0", "00"},
		{"neg", "-1000", "3903e7"},
		{"float", "1.5", "fb3ff8000000000000"},
		{"text", `"IETF"`, "6449455446"},
		{"array", "[1,2,3]", "83010203"},
		{"map", `{"a":1,"b":2}`, "a2616101616202"},
		{"null", "null", "f6"},
		{"bool", "true", "f5"},
		{"epoch-wrapper", `{"$epoch":1363896240}`, "c11a514b67b0"},
		{"base64-wrapper", `{"$base64":"AQID"}`, "43010203"},
		{"tag-wrapper", `{"$tag":42,"$":[1]}`, "d82a8101"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := cbor.FromJSONBytes([]byte(tc.js))
			require.NoError(t, err)
			assert.Equal(t, tc.hex, hex.EncodeToString(got))
		})
	}
}

func TestJSONRoundTripThroughCBOR(t *testing.T) {
	js := `{"name":"Ada","tags":[1,2,3],"ok":true,"meta":{"depth":-2}}`
	enc, err := cbor.FromJSONBytes([]byte(js))
	require.NoError(t, err)

	back, err := cbor.ToJSONBytes(enc)
	require.NoError(t, err)

	var a, b any
	require.NoError(t, json.Unmarshal([]byte(js), &a))
	require.NoError(t, json.Unmarshal(back, &b))
	assert.Equal(t, a, b)
}

func TestToJSONRejectsNaN(t *testing.T) {
	// f64 NaN has no JSON form.
	_, err := cbor.ToJSONBytes(fromHex(t, "fb7ff8000000000000"))
	require.Error(t, err)
}
