package cbor

// Reference is a byte view handed out by a Reader's Fill. A long
// reference aliases the reader's whole input and stays valid for the
// input's lifetime, which lets decoders return it to callers without
// copying. A short reference is only valid until the next call on the
// reader and forces copy-on-read.
type Reference struct {
	buf  []byte
	long bool
}

// LongReference wraps bytes that alias the reader's input.
func LongReference(b []byte) Reference { return Reference{buf: b, long: true} }

// ShortReference wraps bytes that are only valid until the next reader call.
func ShortReference(b []byte) Reference { return Reference{buf: b} }

// Bytes returns the referenced bytes regardless of provenance.
func (r Reference) Bytes() []byte { return r.buf }

// Long reports whether the bytes alias the reader's input.
func (r Reference) Long() bool { return r.long }

// Len returns the number of referenced bytes.
func (r Reference) Len() int { return len(r.buf) }

// Reader is the byte-source capability consumed by all decoders.
//
// Fill exposes at least zero and normally at most want unread bytes
// without consuming them; implementations may expose more. An empty
// reference means the input is exhausted. Advance consumes n bytes
// previously exposed by Fill; n must not exceed what Fill made visible.
//
// StepIn and StepOut gate recursion. Each nested container or tag
// acquires the gate on entry and releases it on every exit path; a
// false return from StepIn aborts the decode with ErrMaxDepthExceeded.
type Reader interface {
	Fill(want int) (Reference, error)
	Advance(n int)
	StepIn() bool
	StepOut()
}

// SliceReader is a Reader over an in-memory buffer. All references it
// returns are long, so string and raw-value decoders can alias the
// input without copying.
//
// A SliceReader is not safe for concurrent use.
type SliceReader struct {
	buf      []byte
	pos      int
	depth    int
	maxDepth int
}

// NewSliceReader constructs a SliceReader over b with the default
// recursion budget.
func NewSliceReader(b []byte) *SliceReader {
	return &SliceReader{buf: b, maxDepth: DefaultMaxDepth}
}

// SetMaxDepth configures the recursion budget. A value of zero or less
// disables the limit.
func (r *SliceReader) SetMaxDepth(n int) { r.maxDepth = n }

// Rest returns the unread portion of the underlying buffer.
func (r *SliceReader) Rest() []byte { return r.buf[r.pos:] }

// Pos returns the number of bytes consumed so far.
func (r *SliceReader) Pos() int { return r.pos }

// Fill implements Reader. The returned reference is always long.
func (r *SliceReader) Fill(want int) (Reference, error) {
	rest := r.buf[r.pos:]
	if want < len(rest) {
		rest = rest[:want]
	}
	return LongReference(rest), nil
}

// Advance implements Reader.
func (r *SliceReader) Advance(n int) { r.pos += n }

// StepIn implements Reader.
func (r *SliceReader) StepIn() bool {
	if r.maxDepth > 0 && r.depth >= r.maxDepth {
		return false
	}
	r.depth++
	return true
}

// StepOut implements Reader.
func (r *SliceReader) StepOut() { r.depth-- }
