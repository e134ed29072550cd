package cbor

import "unsafe"

// UnsafeString returns a string that shares the same underlying
// memory as b. It must only be used in trusted decode paths where
// the backing buffer is immutable for the lifetime of the string.
func UnsafeString(b []byte) string {
	return *(*string)(unsafe.Pointer(&b))
}

// UnsafeBytes returns the string as a byte slice. It is
// equivalent to []byte(s) and retained for compatibility.
func UnsafeBytes(s string) []byte { return []byte(s) }

// unsafeStrBytes views a string as bytes without copying. The result
// must not be modified or retained past the call it is passed to.
func unsafeStrBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
