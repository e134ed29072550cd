package structs

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cbor "github.com/synadia-labs/cbor-stream/runtime"
)

func TestPersonRoundTrip(t *testing.T) {
	email := "ada@example.com"
	orig := Person{
		Name:   "Ada",
		Age:    36,
		Data:   []byte{1, 2, 3},
		Email:  &email,
		Joined: time.Unix(1700000000, 0).UTC(),
		Manager: &Person{
			Name:   "Grace",
			Joined: time.Unix(1600000000, 0).UTC(),
		},
	}

	enc, err := cbor.Marshal(orig)
	require.NoError(t, err)

	var got Person
	require.NoError(t, cbor.Unmarshal(enc, &got))

	assert.Equal(t, orig.Name, got.Name)
	assert.Equal(t, orig.Age, got.Age)
	assert.Equal(t, orig.Data, got.Data)
	require.NotNil(t, got.Email)
	assert.Equal(t, email, *got.Email)
	assert.True(t, orig.Joined.Equal(got.Joined))
	require.NotNil(t, got.Manager)
	assert.Equal(t, "Grace", got.Manager.Name)
	assert.Nil(t, got.Manager.Manager)
}

func TestPersonOmitEmpty(t *testing.T) {
	p := Person{Name: "Bob", Data: []byte{9}, Joined: time.Unix(0, 0).UTC()}

	enc, err := cbor.Marshal(p)
	require.NoError(t, err)

	v, err := cbor.DecodeValue(cbor.NewSliceReader(enc))
	require.NoError(t, err)

	pairs, ok := v.Map()
	require.True(t, ok)
	keys := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		k, ok := pair.Key.Text()
		require.True(t, ok)
		keys = append(keys, k)
	}
	// age, email and manager are zero and tagged omitempty; the
	// skipped field never appears.
	assert.Equal(t, []string{"name", "data", "joined"}, keys)
}

func TestPersonUnknownFieldsSkipped(t *testing.T) {
	// {"name":"Eve", "unknown":[1,[2,3]], "age":9}
	enc, err := cbor.Marshal(map[string]any{
		"name":    "Eve",
		"unknown": []any{uint64(1), []any{uint64(2), uint64(3)}},
		"age":     9,
	})
	require.NoError(t, err)

	var got Person
	require.NoError(t, cbor.Unmarshal(enc, &got))
	assert.Equal(t, "Eve", got.Name)
	assert.Equal(t, 9, got.Age)
}

func TestPersonNullClearsPointer(t *testing.T) {
	// Explicit null for a pointer field decodes to nil.
	enc, err := cbor.Marshal(map[string]any{"name": "Zed", "email": nil})
	require.NoError(t, err)

	email := "stale"
	got := Person{Email: &email}
	require.NoError(t, cbor.Unmarshal(enc, &got))
	assert.Nil(t, got.Email)
}

func TestDecoderEncoderStreaming(t *testing.T) {
	people := []Person{
		{Name: "A", Joined: time.Unix(1, 0).UTC()},
		{Name: "B", Age: 2, Joined: time.Unix(2, 0).UTC()},
		{Name: "C", Data: []byte{3}, Joined: time.Unix(3, 0).UTC()},
	}

	var buf bytes.Buffer
	enc := cbor.NewEncoder(&buf)
	for i := range people {
		require.NoError(t, enc.Encode(people[i]))
	}

	dec := cbor.NewDecoder(&buf)
	for i := range people {
		var got Person
		require.NoError(t, dec.Decode(&got))
		assert.Equal(t, people[i].Name, got.Name)
		assert.Equal(t, people[i].Age, got.Age)
	}
}
