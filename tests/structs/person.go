package structs

import "time"

// Person is a simple example type used to exercise struct semantics
// of the reflection layer (map encoding, omitempty, pointers).
type Person struct {
	Name    string     `cbor:"name"`
	Age     int        `cbor:"age,omitempty"`
	Data    []byte     `cbor:"data"`
	Email   *string    `cbor:"email,omitempty"`
	Joined  time.Time  `cbor:"joined"`
	Manager *Person    `cbor:"manager,omitempty"`
	Skipped string     `cbor:"-"`
}

// Scalars exercises every scalar kind the reflection layer maps.
type Scalars struct {
	S   string  `cbor:"s"`
	B   bool    `cbor:"b"`
	I   int     `cbor:"i"`
	I8  int8    `cbor:"i8"`
	I16 int16   `cbor:"i16"`
	I32 int32   `cbor:"i32"`
	I64 int64   `cbor:"i64"`
	U   uint    `cbor:"u"`
	U8  uint8   `cbor:"u8"`
	U16 uint16  `cbor:"u16"`
	U32 uint32  `cbor:"u32"`
	U64 uint64  `cbor:"u64"`
	F32 float32 `cbor:"f32"`
	F64 float64 `cbor:"f64"`
	By  []byte  `cbor:"by"`
}
