package cbor

// RawValue is the verbatim byte span of exactly one CBOR item,
// captured for later re-emission. A decoded RawValue aliases the
// reader's input; use Clone to detach it.
type RawValue []byte

// DecodeRawValue captures the next item's exact bytes without parsing
// it into a value. The reader must be able to expose the whole item as
// one long reference, so only borrowing readers (e.g. SliceReader)
// qualify.
//
// The item's length is discovered by running Skip against a proxy that
// records advances without consuming anything; the recorded span is
// then re-filled on the real reader and consumed in one step.
func DecodeRawValue(r Reader) (RawValue, error) {
	p := proxyReader{r: r}
	if err := Skip(&p); err != nil {
		return nil, err
	}
	n := p.offset
	ref, err := r.Fill(n)
	if err != nil {
		return nil, err
	}
	if !ref.Long() {
		return nil, ErrRequireBorrowed
	}
	if ref.Len() < n {
		return nil, RequireLengthError{Name: "raw value", Expect: n, Got: ref.Len()}
	}
	out := ref.Bytes()[:n:n]
	r.Advance(n)
	return RawValue(out), nil
}

// EncodeCBOR implements Encodable by emitting the captured bytes
// verbatim.
func (rv RawValue) EncodeCBOR(w Writer) error { return w.Push(rv) }

// DecodeCBOR implements Decodable.
func (rv *RawValue) DecodeCBOR(r Reader) error {
	v, err := DecodeRawValue(r)
	if err != nil {
		return err
	}
	*rv = v
	return nil
}

// Clone copies the span into owned storage so it can outlive the
// original input.
func (rv RawValue) Clone() RawValue {
	out := make([]byte, len(rv))
	copy(out, rv)
	return out
}

// RawValueOf encodes v into private storage and returns it as a
// RawValue.
func RawValueOf(v Value) (RawValue, error) {
	bb := NewByteBuffer(nil)
	if err := v.EncodeCBOR(bb); err != nil {
		return nil, err
	}
	return RawValue(bb.Bytes()), nil
}

// proxyReader forwards fills to an underlying reader while recording
// advances as a monotonically increasing offset instead of consuming
// anything. After a Skip it has measured the byte length of exactly
// one item without moving the underlying cursor.
type proxyReader struct {
	r      Reader
	offset int
}

// Fill serves want bytes past the recorded offset by over-filling the
// underlying reader and re-slicing.
func (p *proxyReader) Fill(want int) (Reference, error) {
	ref, err := p.r.Fill(p.offset + want)
	if err != nil {
		return Reference{}, err
	}
	if ref.Len() <= p.offset {
		if ref.Long() {
			return LongReference(nil), nil
		}
		return ShortReference(nil), nil
	}
	buf := ref.Bytes()[p.offset:]
	if ref.Long() {
		return LongReference(buf), nil
	}
	return ShortReference(buf), nil
}

// Advance records consumption without forwarding it.
func (p *proxyReader) Advance(n int) { p.offset += n }

// StepIn forwards the recursion gate.
func (p *proxyReader) StepIn() bool { return p.r.StepIn() }

// StepOut forwards the recursion gate.
func (p *proxyReader) StepOut() { p.r.StepOut() }
