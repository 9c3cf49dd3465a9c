package parcel

import "github.com/ehrlich-b/gobinder/internal/errs"

// BeginSizedRegion writes a placeholder 4-byte total-size prefix and returns
// a token identifying where to patch it once the region's payload has been
// written, per spec §4.1: "a region used for parcelable structs ... is
// encoded as [total_size:i32][payload...] where total_size includes
// itself."
func (p *Parcel) BeginSizedRegion() int {
	mark := len(p.buf)
	p.WriteInt32(0) // patched by EndSizedRegion
	return mark
}

// EndSizedRegion patches the size prefix written by BeginSizedRegion with
// the actual total size (prefix + payload).
func (p *Parcel) EndSizedRegion(mark int) {
	total := len(p.buf) - mark
	hostOrder.PutUint32(p.buf[mark:mark+4], uint32(total))
}

// sizedRegion tracks the bounds of a sized sub-parcel currently being read,
// so HasMoreData-style forward compatibility can be offered within it.
type sizedRegion struct {
	end int // absolute offset in the parent buffer where this region ends
}

// BeginReadSizedRegion reads the total-size prefix and returns a sizedRegion
// whose End bounds the payload; the caller then reads fields as usual and
// finishes with EndReadSizedRegion, which skips any unconsumed trailing
// bytes -- this is the forward-compatibility behavior spec §4.1 requires
// ("decoders MUST skip unknown trailing bytes").
func (p *Parcel) BeginReadSizedRegion() (sizedRegion, error) {
	start := p.pos
	total, err := p.ReadInt32()
	if err != nil {
		return sizedRegion{}, err
	}
	if total < 4 {
		return sizedRegion{}, errs.Newf("parcel.readSizedRegion", errs.UnexpectedSize, "region size %d smaller than its own prefix", total)
	}
	end := start + int(total)
	if end > len(p.buf) {
		return sizedRegion{}, errs.Newf("parcel.readSizedRegion", errs.NotEnoughData, "region end %d beyond buffer length %d", end, len(p.buf))
	}
	return sizedRegion{end: end}, nil
}

// RegionHasMoreData reports whether the cursor is still short of the
// region's end -- the region-scoped analogue of HasMoreData.
func (p *Parcel) RegionHasMoreData(r sizedRegion) bool {
	return p.pos < r.end
}

// EndReadSizedRegion advances the cursor to the region's end, silently
// discarding any fields a newer writer appended that this reader doesn't
// know about.
func (p *Parcel) EndReadSizedRegion(r sizedRegion) {
	p.pos = r.end
}

// --- optional values (spec §4.1) ---

// WriteOptionalInt32 writes the has-value flag followed by the value if present.
func (p *Parcel) WriteOptionalInt32(v *int32) {
	p.WriteBool(v != nil)
	if v != nil {
		p.WriteInt32(*v)
	}
}

// ReadOptionalInt32 reads a has-value-prefixed optional int32.
func (p *Parcel) ReadOptionalInt32() (*int32, error) {
	has, err := p.ReadBool()
	if err != nil || !has {
		return nil, err
	}
	v, err := p.ReadInt32()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// WriteOptionalParcelable writes the has-value prefix, and if present, a
// sized sub-parcel built by writeFn (spec §4.1: "Recursive/optional-boxed
// fields: encoded as has-value prefix followed by a sized sub-parcel when
// present").
func (p *Parcel) WriteOptionalParcelable(present bool, writeFn func(*Parcel) error) error {
	p.WriteBool(present)
	if !present {
		return nil
	}
	mark := p.BeginSizedRegion()
	if err := writeFn(p); err != nil {
		return err
	}
	p.EndSizedRegion(mark)
	return nil
}

// ReadOptionalParcelable reads the has-value prefix, and if present, opens a
// sized region with BeginReadSizedRegion, hands readFn this same parcel, and
// closes the region with EndReadSizedRegion so trailing unknown fields are
// skipped automatically. readFn's reads are not bounded to the region. ok is
// false when absent.
func (p *Parcel) ReadOptionalParcelable(readFn func(*Parcel) error) (ok bool, err error) {
	has, err := p.ReadBool()
	if err != nil || !has {
		return false, err
	}
	region, err := p.BeginReadSizedRegion()
	if err != nil {
		return false, err
	}
	if err := readFn(p); err != nil {
		return false, err
	}
	p.EndReadSizedRegion(region)
	return true, nil
}

// --- homogeneous sequences (spec §4.1) ---

// WriteInt32Sequence writes a 4-byte count followed by each element, or the
// null-sequence sentinel (-1) when vs is nil.
func (p *Parcel) WriteInt32Sequence(vs []int32) {
	if vs == nil {
		p.WriteInt32(nullLength)
		return
	}
	p.WriteInt32(int32(len(vs)))
	for _, v := range vs {
		p.WriteInt32(v)
	}
}

// ReadInt32Sequence reads a sequence written by WriteInt32Sequence. A nil
// return with ok=false denotes a null sequence.
func (p *Parcel) ReadInt32Sequence() (vs []int32, ok bool, err error) {
	n, err := p.ReadInt32()
	if err != nil {
		return nil, false, err
	}
	if n == nullLength {
		return nil, false, nil
	}
	if n < 0 {
		return nil, false, errs.Newf("parcel.readInt32Sequence", errs.BadValue, "negative sequence length %d", n)
	}
	out := make([]int32, n)
	for i := range out {
		out[i], err = p.ReadInt32()
		if err != nil {
			return nil, false, err
		}
	}
	return out, true, nil
}

// WriteStringSequence writes a 4-byte count followed by each UTF-16LE string.
func (p *Parcel) WriteStringSequence(vs []string) {
	if vs == nil {
		p.WriteInt32(nullLength)
		return
	}
	p.WriteInt32(int32(len(vs)))
	for _, v := range vs {
		p.WriteString(v)
	}
}

// ReadStringSequence reads a sequence written by WriteStringSequence.
func (p *Parcel) ReadStringSequence() (vs []string, ok bool, err error) {
	n, err := p.ReadInt32()
	if err != nil {
		return nil, false, err
	}
	if n == nullLength {
		return nil, false, nil
	}
	if n < 0 {
		return nil, false, errs.Newf("parcel.readStringSequence", errs.BadValue, "negative sequence length %d", n)
	}
	out := make([]string, n)
	for i := range out {
		s, strOK, err := p.ReadString()
		if err != nil {
			return nil, false, err
		}
		if !strOK {
			return nil, false, errs.New("parcel.readStringSequence", errs.UnexpectedNull, "null element in non-null string sequence")
		}
		out[i] = s
	}
	return out, true, nil
}

// --- tagged unions (spec §4.1) ---

// WriteTag writes a union's discriminant, always the first field of an
// encoded tagged union: "[tag:i32][value-of-selected-arm]".
func (p *Parcel) WriteTag(tag int32) {
	p.WriteInt32(tag)
}

// ReadTag reads a union's discriminant. Callers dispatch to the arm decoder
// matching the returned tag and must treat any unrecognized tag as
// ErrBadValue (spec §4.1: "an unknown tag is a bad-value error").
func (p *Parcel) ReadTag() (int32, error) {
	return p.ReadInt32()
}

// ErrUnknownUnionTag builds the bad-value error for an unrecognized tagged-union arm.
func ErrUnknownUnionTag(tag int32) error {
	return errs.Newf("parcel.readTag", errs.BadValue, "unknown union tag %d", tag)
}
