// Package cbor implements a streaming CBOR (RFC 8949) codec.
//
// The package is organized around two small capabilities:
//
//   - Reader: a pluggable byte source (Fill/Advance) with a recursion
//     gate (StepIn/StepOut). SliceReader serves in-memory buffers and
//     enables zero-copy decoding; StreamReader serves arbitrary io.Readers.
//   - Writer: a pluggable byte sink (Push). ByteBuffer collects output
//     in memory; StreamWriter forwards to an io.Writer.
//
// On top of those, the package defines two function families:
//
//   - EncodeXxxx(w Writer, v) emits one CBOR item to a Writer.
//   - DecodeXxxx(r Reader) consumes exactly one CBOR item from a Reader.
//
// Types that satisfy the Encodable and Decodable interfaces can be
// written and read through arbitrary io.Writers and io.Readers using
//
//	cbor.Encode(io.Writer, cbor.Encodable)
//
// and
//
//	cbor.Decode(io.Reader, cbor.Decodable)
//
// Marshal, Unmarshal, Encoder and Decoder provide a reflection-driven
// convenience layer over the same primitives.
package cbor

const (
	// DefaultMaxDepth is the default recursion budget of SliceReader and
	// StreamReader. Nesting beyond the budget fails with ErrMaxDepthExceeded
	// instead of exhausting the goroutine stack on adversarial input.
	DefaultMaxDepth = 256

	// maxReserve caps a single length-prefix-driven allocation. Declared
	// lengths above the cap grow incrementally as payload bytes actually
	// arrive, so a forged 4 GiB prefix cannot reserve 4 GiB up front.
	maxReserve = 16 * 1024

	// displayBufSize is the stack buffer used by EncodeDisplay before it
	// falls back to an indefinite-length text string.
	displayBufSize = 256
)

// CBOR major types (3 bits)
const (
	majorTypeUint   = 0 // unsigned integer
	majorTypeNegInt = 1 // negative integer
	majorTypeBytes  = 2 // byte string
	majorTypeText   = 3 // text string (UTF-8)
	majorTypeArray  = 4 // array
	majorTypeMap    = 5 // map
	majorTypeTag    = 6 // semantic tag
	majorTypeSimple = 7 // float, simple values, break
)

// Additional info values (5 bits)
const (
	// 0-23: literal value
	addInfoDirect     = 23 // max direct value
	addInfoUint8      = 24 // 1-byte uint8 follows
	addInfoUint16     = 25 // 2-byte uint16 follows
	addInfoUint32     = 26 // 4-byte uint32 follows
	addInfoUint64     = 27 // 8-byte uint64 follows
	addInfoIndefinite = 31 // indefinite length (for bytes, text, array, map)
)

// Simple values in major type 7
const (
	simpleFalse     = 20
	simpleTrue      = 21
	simpleNull      = 22
	simpleUndefined = 23
	simpleFloat16   = 25
	simpleFloat32   = 26
	simpleFloat64   = 27
	simpleBreak     = 31
)

// Common CBOR semantic tags
const (
	tagDateTimeString   = 0     // RFC3339 date/time string
	tagEpochDateTime    = 1     // Unix timestamp (int or float)
	tagPosBignum        = 2     // Positive bignum
	tagNegBignum        = 3     // Negative bignum
	tagBase64URL        = 21    // Expected base64url encoding
	tagBase64           = 22    // Expected base64 encoding
	tagCBOR             = 24    // Embedded CBOR data item
	tagSelfDescribeCBOR = 55799 // Self-describe CBOR (0xd9d9f7)
)

// makeByte creates a CBOR initial byte from major type and additional info
func makeByte(majorType, addInfo uint8) byte {
	return byte((majorType << 5) | addInfo)
}

// getMajorType extracts the major type from a CBOR initial byte
func getMajorType(b byte) uint8 {
	return (b >> 5) & 0x07
}

// getAddInfo extracts the additional info from a CBOR initial byte
func getAddInfo(b byte) uint8 {
	return b & 0x1f
}

// Type represents CBOR data types
type Type byte

// CBOR Types
const (
	InvalidType Type = iota

	StrType     // text string
	BinType     // byte string
	MapType     // map
	ArrayType   // array
	Float64Type // float64
	Float32Type // float32
	Float16Type // float16
	BoolType    // bool
	IntType     // signed integer
	UintType    // unsigned integer
	NilType     // null or undefined
	SimpleType  // numeric simple value
	TagType     // tagged value
)

// String implements fmt.Stringer
func (t Type) String() string {
	switch t {
	case StrType:
		return "str"
	case BinType:
		return "bin"
	case MapType:
		return "map"
	case ArrayType:
		return "array"
	case Float64Type:
		return "float64"
	case Float32Type:
		return "float32"
	case Float16Type:
		return "float16"
	case BoolType:
		return "bool"
	case UintType:
		return "uint"
	case IntType:
		return "int"
	case TagType:
		return "tag"
	case NilType:
		return "nil"
	case SimpleType:
		return "simple"
	default:
		return "<invalid>"
	}
}

// getType returns the CBOR type for an initial byte.
func getType(b byte) Type {
	switch getMajorType(b) {
	case majorTypeUint:
		return UintType
	case majorTypeNegInt:
		return IntType
	case majorTypeBytes:
		return BinType
	case majorTypeText:
		return StrType
	case majorTypeArray:
		return ArrayType
	case majorTypeMap:
		return MapType
	case majorTypeTag:
		return TagType
	case majorTypeSimple:
		switch getAddInfo(b) {
		case simpleTrue, simpleFalse:
			return BoolType
		case simpleNull, simpleUndefined:
			return NilType
		case simpleFloat16:
			return Float16Type
		case simpleFloat32:
			return Float32Type
		case simpleFloat64:
			return Float64Type
		case addInfoIndefinite:
			return InvalidType
		default:
			return SimpleType
		}
	}
	return InvalidType
}

// Encodable is the interface implemented by types that can write
// themselves as a single CBOR item to a Writer.
type Encodable interface {
	EncodeCBOR(w Writer) error
}

// Decodable is the interface implemented by types that can read
// themselves from a single CBOR item on a Reader.
type Decodable interface {
	DecodeCBOR(r Reader) error
}

// Marshaler is the interface implemented by types that know how to marshal
// themselves as CBOR. MarshalCBOR appends the marshalled form to the provided
// byte slice, returning the extended slice and any errors encountered.
type Marshaler interface {
	MarshalCBOR([]byte) ([]byte, error)
}

// Unmarshaler is the interface fulfilled by objects that know how to unmarshal
// themselves from CBOR. UnmarshalCBOR unmarshals the object from binary,
// returning any leftover bytes and any errors encountered.
type Unmarshaler interface {
	UnmarshalCBOR([]byte) ([]byte, error)
}

// ValidateUTF8OnDecode controls whether text string decoders validate UTF-8.
// Enabled by default for spec compliance; can be disabled in hot paths.
var ValidateUTF8OnDecode = true

// UnsafeStringDecode controls whether DecodeString converts zero-copy using
// UnsafeString (unsafe) instead of allocating a new string. Disabled by default.
var UnsafeStringDecode = false
