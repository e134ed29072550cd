package cbor

import (
	"errors"
	"reflect"
	"strconv"
)

const resumableDefault = false

var (
	// ErrShortBytes is returned when the input ends before the
	// current CBOR item is complete.
	ErrShortBytes error = errShort{}

	// ErrMaxDepthExceeded is returned when nesting exceeds the reader's
	// recursion budget. This should only realistically be seen on
	// adversarial data trying to exhaust the stack.
	ErrMaxDepthExceeded error = errDepth{}

	// ErrRequireBorrowed is returned when a zero-copy destination was
	// requested but the reader can only serve transient (Short) references.
	ErrRequireBorrowed error = errors.New("cbor: zero-copy decode requires a borrowing reader")

	// ErrInvalidUTF8 is returned when a text string contains invalid UTF-8.
	ErrInvalidUTF8 error = errors.New("cbor: invalid UTF-8 in text string")

	// ErrBreak is returned when a break (0xff) appears where an item
	// was expected, outside of any indefinite-length context.
	ErrBreak error = errors.New("cbor: unexpected break code")

	// ErrNotNil is returned when expecting null or undefined.
	ErrNotNil error = errors.New("cbor: not nil")

	// ErrTrailingBytes is returned by Valid when input continues past
	// the first complete item.
	ErrTrailingBytes error = errors.New("cbor: trailing bytes after item")
)

// Error is the interface satisfied
// by all of the errors that originate
// from this package.
type Error interface {
	error

	// Resumable returns whether
	// or not decoding can continue
	// after the error; false means
	// the stream of data is malformed
	// and the information is unrecoverable.
	Resumable() bool
}

// contextError allows Error instances to be enhanced with additional
// context about their origin.
type contextError interface {
	Error

	// withContext must not modify the error instance - it must clone and
	// return a new error with the context added.
	withContext(ctx string) error
}

// Cause returns the underlying cause of an error that has been wrapped
// with additional context.
func Cause(e error) error {
	out := e
	if e, ok := e.(errWrapped); ok && e.cause != nil {
		out = e.cause
	}
	return out
}

// Resumable returns whether or not decoding can continue after the error;
// false means the stream of data is malformed and the information is
// unrecoverable.
func Resumable(e error) bool {
	if e, ok := e.(Error); ok {
		return e.Resumable()
	}
	return resumableDefault
}

// WrapError wraps an error with additional context that allows the part of the
// serialized type that caused the problem to be identified. Underlying errors
// can be retrieved using Cause()
//
// The input error is not modified - a new error should be returned.
//
// ErrShortBytes is not wrapped with any context due to backward compatibility
// issues with the public API.
func WrapError(err error, ctx ...any) error {
	switch e := err.(type) {
	case errShort:
		return e
	case contextError:
		return e.withContext(ctxString(ctx))
	default:
		return errWrapped{cause: err, ctx: ctxString(ctx)}
	}
}

func ctxString(ctx []any) string {
	out := ""
	for _, c := range ctx {
		s := ""
		switch v := c.(type) {
		case string:
			s = v
		case int:
			s = strconv.Itoa(v)
		default:
			continue
		}
		if out == "" {
			out = s
		} else {
			out += "/" + s
		}
	}
	return out
}

func addCtx(ctx, add string) string {
	if ctx != "" {
		return add + "/" + ctx
	}
	return add
}

// errWrapped allows arbitrary errors passed to WrapError to be enhanced with
// context and unwrapped with Cause()
type errWrapped struct {
	cause error
	ctx   string
}

func (e errWrapped) Error() string {
	if e.ctx != "" {
		return e.cause.Error() + " at " + e.ctx
	}
	return e.cause.Error()
}

func (e errWrapped) Resumable() bool {
	if e, ok := e.cause.(Error); ok {
		return e.Resumable()
	}
	return resumableDefault
}

// Unwrap returns the cause.
func (e errWrapped) Unwrap() error { return e.cause }

type errShort struct{}

func (e errShort) Error() string   { return "cbor: too few bytes left to read object" }
func (e errShort) Resumable() bool { return false }

type errDepth struct{}

func (e errDepth) Error() string   { return "cbor: max depth exceeded" }
func (e errDepth) Resumable() bool { return false }

// ReadError wraps an error reported by the underlying Reader. The
// core never retries; the wrapped error is returned verbatim through
// Unwrap.
type ReadError struct {
	Err error
}

// Error implements the error interface
func (e ReadError) Error() string { return "cbor: read: " + e.Err.Error() }

// Unwrap returns the reader's error.
func (e ReadError) Unwrap() error { return e.Err }

// Resumable returns 'false' for ReadErrors
func (e ReadError) Resumable() bool { return false }

// WriteError wraps an error reported by the underlying Writer.
type WriteError struct {
	Err error
}

// Error implements the error interface
func (e WriteError) Error() string { return "cbor: write: " + e.Err.Error() }

// Unwrap returns the writer's error.
func (e WriteError) Unwrap() error { return e.Err }

// Resumable returns 'false' for WriteErrors
func (e WriteError) Resumable() bool { return false }

// TypeMismatchError is returned when the head byte's major type or
// marker does not match what the decoder was asked for. Name is a
// static label identifying the construct being decoded.
type TypeMismatchError struct {
	Name string
	Byte byte

	ctx string
}

// Error implements the error interface
func (t TypeMismatchError) Error() string {
	out := "cbor: decoding " + quoteStr(t.Name) + ": unexpected initial byte 0x" +
		strconv.FormatUint(uint64(t.Byte), 16) + " (" + getType(t.Byte).String() + ")"
	if t.ctx != "" {
		out += " at " + t.ctx
	}
	return out
}

// Resumable returns 'true' for TypeMismatchErrors
func (t TypeMismatchError) Resumable() bool { return true }

func (t TypeMismatchError) withContext(ctx string) error { t.ctx = addCtx(t.ctx, ctx); return t }

// UnsupportedError is returned for head bytes using reserved
// additional-info codes (28-30) or markers this decoder does not handle.
type UnsupportedError struct {
	Byte byte
}

// Error implements the error interface
func (u UnsupportedError) Error() string {
	return "cbor: unsupported initial byte 0x" + strconv.FormatUint(uint64(u.Byte), 16)
}

// Resumable returns 'false' for UnsupportedErrors
func (u UnsupportedError) Resumable() bool { return false }

// RequireLengthError is returned when a zero-copy destination needed a
// single contiguous reference of Expect bytes but the reader could only
// produce Got.
type RequireLengthError struct {
	Name   string
	Expect int
	Got    int
}

// Error implements the error interface
func (r RequireLengthError) Error() string {
	return "cbor: decoding " + quoteStr(r.Name) + ": require contiguous " +
		strconv.Itoa(r.Expect) + " bytes, reader exposed " + strconv.Itoa(r.Got)
}

// Resumable returns 'false' for RequireLengthErrors
func (r RequireLengthError) Resumable() bool { return false }

// LengthOverflowError is returned when a declared length exceeds what the
// target type or a configured bound can hold (e.g. a bignum byte string
// longer than 16 bytes).
type LengthOverflowError struct {
	Name  string
	Len   uint64
	Limit uint64
}

// Error implements the error interface
func (l LengthOverflowError) Error() string {
	return "cbor: decoding " + quoteStr(l.Name) + ": length " + strconv.FormatUint(l.Len, 10) +
		" exceeds limit " + strconv.FormatUint(l.Limit, 10)
}

// Resumable returns 'true' for LengthOverflowErrors
func (l LengthOverflowError) Resumable() bool { return true }

// IntOverflow is returned when a call
// would downcast an integer to a type
// with too few bits to hold its value.
type IntOverflow struct {
	Value         int64 // the value of the integer
	FailedBitsize int   // the bit size that the int64 could not fit into
	ctx           string
}

// Error implements the error interface
func (i IntOverflow) Error() string {
	str := "cbor: " + strconv.FormatInt(i.Value, 10) + " overflows int" + strconv.Itoa(i.FailedBitsize)
	if i.ctx != "" {
		str += " at " + i.ctx
	}
	return str
}

// Resumable is always 'true' for overflows
func (i IntOverflow) Resumable() bool { return true }

func (i IntOverflow) withContext(ctx string) error { i.ctx = addCtx(i.ctx, ctx); return i }

// UintOverflow is returned when a call
// would downcast an unsigned integer to a type
// with too few bits to hold its value
type UintOverflow struct {
	Value         uint64 // value of the uint
	FailedBitsize int    // the bit size that couldn't fit the value
	ctx           string
}

// Error implements the error interface
func (u UintOverflow) Error() string {
	str := "cbor: " + strconv.FormatUint(u.Value, 10) + " overflows uint" + strconv.Itoa(u.FailedBitsize)
	if u.ctx != "" {
		str += " at " + u.ctx
	}
	return str
}

// Resumable is always 'true' for overflows
func (u UintOverflow) Resumable() bool { return true }

func (u UintOverflow) withContext(ctx string) error { u.ctx = addCtx(u.ctx, ctx); return u }

// ArithmeticOverflowError is returned when forming -1-n for a negative
// integer leaves the representable range of the target type.
type ArithmeticOverflowError struct {
	Name string
}

// Error implements the error interface
func (a ArithmeticOverflowError) Error() string {
	return "cbor: decoding " + quoteStr(a.Name) + ": arithmetic overflow"
}

// Resumable returns 'true' for ArithmeticOverflowErrors
func (a ArithmeticOverflowError) Resumable() bool { return true }

// ErrUnsupportedType is returned when a bad argument is supplied to
// a function that accepts arbitrary values.
type ErrUnsupportedType struct {
	T reflect.Type

	ctx string
}

// Error implements error
func (e *ErrUnsupportedType) Error() string {
	name := "<nil>"
	if e.T != nil {
		name = e.T.String()
	}
	out := "cbor: type " + quoteStr(name) + " not supported"
	if e.ctx != "" {
		out += " at " + e.ctx
	}
	return out
}

// Resumable returns 'true' for ErrUnsupportedType
func (e *ErrUnsupportedType) Resumable() bool { return true }

func (e *ErrUnsupportedType) withContext(ctx string) error {
	o := *e
	o.ctx = addCtx(o.ctx, ctx)
	return &o
}

// badPrefix builds the mismatch error for a head byte that carries the
// wrong major type for the construct identified by name.
func badPrefix(name string, b byte) error {
	return TypeMismatchError{Name: name, Byte: b}
}

func quoteStr(s string) string { return "\"" + s + "\"" }
