package cbor

import "io"

// StreamReader adapts an io.Reader into a Reader. References point into
// the internal read-ahead buffer and are therefore short: decoders copy
// out of them, and zero-copy destinations fail with ErrRequireBorrowed.
//
// A StreamReader is not safe for concurrent use.
type StreamReader struct {
	r        io.Reader
	buf      []byte
	start    int
	end      int
	err      error
	depth    int
	maxDepth int
}

// NewStreamReader constructs a StreamReader over r with the default
// read-ahead buffer and recursion budget.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		r:        r,
		buf:      make([]byte, 4096),
		maxDepth: DefaultMaxDepth,
	}
}

// SetMaxDepth configures the recursion budget. A value of zero or less
// disables the limit.
func (s *StreamReader) SetMaxDepth(n int) { s.maxDepth = n }

// Buffered returns the number of unread bytes currently held in the
// read-ahead buffer.
func (s *StreamReader) Buffered() int { return s.end - s.start }

// Fill implements Reader. It buffers up to want bytes (capped at the
// read-ahead bound; decoders loop over larger payloads) and returns a
// short reference into the buffer, which the next call invalidates.
// A reference shorter than want (or than the read-ahead bound, when
// want exceeds it) means the source hit EOF.
func (s *StreamReader) Fill(want int) (Reference, error) {
	target := want
	if target > maxReserve {
		target = maxReserve
	}
	for s.end-s.start < target && s.err == nil {
		s.refill(target)
	}
	if s.end-s.start < target && s.err != nil && s.err != io.EOF {
		return Reference{}, ReadError{Err: s.err}
	}
	n := s.end - s.start
	if n > want {
		n = want
	}
	return ShortReference(s.buf[s.start : s.start+n]), nil
}

// refill compacts and grows the buffer as needed, then reads once from
// the source.
func (s *StreamReader) refill(target int) {
	if s.start > 0 {
		copy(s.buf, s.buf[s.start:s.end])
		s.end -= s.start
		s.start = 0
	}
	if len(s.buf) < target {
		nb := make([]byte, target)
		copy(nb, s.buf[:s.end])
		s.buf = nb
	}
	n, err := s.r.Read(s.buf[s.end:])
	s.end += n
	if err != nil {
		s.err = err
	} else if n == 0 {
		s.err = io.ErrNoProgress
	}
}

// Advance implements Reader.
func (s *StreamReader) Advance(n int) { s.start += n }

// StepIn implements Reader.
func (s *StreamReader) StepIn() bool {
	if s.maxDepth > 0 && s.depth >= s.maxDepth {
		return false
	}
	s.depth++
	return true
}

// StepOut implements Reader.
func (s *StreamReader) StepOut() { s.depth-- }
