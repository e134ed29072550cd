package cbor

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"sort"
	"strings"
)

// FromJSONBytes converts a JSON document into CBOR bytes:
//
//   - null/bool/number/string/array/object map naturally to CBOR
//     null/bool/int-or-float/text/array/map.
//   - Numbers without a fraction or exponent encode as integers;
//     everything else as float64.
//   - Wrapper objects are recognized and mapped to semantic tags:
//     {"$rfc3339": string}      -> tag(0) RFC3339 time string
//     {"$epoch": number}        -> tag(1) epoch seconds (int or float)
//     {"$base64url": string}    -> byte string (base64url payload)
//     {"$base64": string}       -> byte string (base64 std payload)
//     {"$tag":N, "$":value}     -> generic tag N
func FromJSONBytes(js []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)
	if err := jsonToCBOR(bb, v); err != nil {
		return nil, err
	}
	out := make([]byte, bb.Len())
	copy(out, bb.Bytes())
	return out, nil
}

func jsonToCBOR(w Writer, v any) error {
	switch x := v.(type) {
	case nil:
		return EncodeNull(w)
	case bool:
		return EncodeBool(w, x)
	case json.Number:
		// Prefer integers when possible, otherwise float64.
		if !strings.ContainsAny(string(x), ".eE") {
			if i, err := x.Int64(); err == nil {
				return EncodeInt64(w, i)
			}
		}
		f, err := x.Float64()
		if err != nil {
			return err
		}
		return EncodeFloat64(w, f)
	case string:
		return EncodeString(w, x)
	case []any:
		if err := EncodeArrayHead(w, len(x)); err != nil {
			return err
		}
		for _, item := range x {
			if err := jsonToCBOR(w, item); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		if handled, err := tryWrapper(w, x); handled || err != nil {
			return err
		}
		if err := EncodeMapHead(w, len(x)); err != nil {
			return err
		}
		for _, key := range sortedKeys(x) {
			if err := EncodeString(w, key); err != nil {
				return err
			}
			if err := jsonToCBOR(w, x[key]); err != nil {
				return err
			}
		}
		return nil
	default:
		return &ErrUnsupportedType{}
	}
}

// tryWrapper recognizes the wrapper-object conventions documented on
// FromJSONBytes. It reports whether the map was consumed as a wrapper.
func tryWrapper(w Writer, m map[string]any) (bool, error) {
	if len(m) == 1 {
		if s, ok := m["$rfc3339"].(string); ok {
			if err := EncodeTag(w, tagDateTimeString); err != nil {
				return true, err
			}
			return true, EncodeString(w, s)
		}
		if n, ok := m["$epoch"].(json.Number); ok {
			if err := EncodeTag(w, tagEpochDateTime); err != nil {
				return true, err
			}
			return true, jsonToCBOR(w, n)
		}
		if s, ok := m["$base64url"].(string); ok {
			bs, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
			if err != nil {
				return true, err
			}
			return true, EncodeBytes(w, bs)
		}
		if s, ok := m["$base64"].(string); ok {
			bs, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return true, err
			}
			return true, EncodeBytes(w, bs)
		}
	}
	if len(m) == 2 {
		if n, ok := m["$tag"].(json.Number); ok {
			if inner, ok := m["$"]; ok {
				tag, err := n.Int64()
				if err != nil || tag < 0 {
					return false, nil
				}
				if err := EncodeTag(w, uint64(tag)); err != nil {
					return true, err
				}
				return true, jsonToCBOR(w, inner)
			}
		}
	}
	return false, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
