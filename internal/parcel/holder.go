package parcel

// Holder lazily boxes a parcelable value that is written and read as a
// sized sub-parcel (spec §4.1's recursive/optional-boxed field encoding),
// deferring the actual marshal/unmarshal work until the value is touched.
// A Holder with neither a decoded value nor raw bytes set encodes as absent.
type Holder struct {
	decoded  bool
	present  bool
	raw      []byte
	writeFn  func(*Parcel) error
	readInto func(*Parcel) error
}

// NewHolder returns an empty Holder ready to either Set a value for later
// writing, or to be filled by ReadFrom.
func NewHolder() *Holder {
	return &Holder{}
}

// Set stages writeFn to be invoked the next time this Holder is written to a
// Parcel, replacing any previously staged or decoded value.
func (h *Holder) Set(writeFn func(*Parcel) error) {
	h.writeFn = writeFn
	h.present = true
	h.decoded = true
	h.raw = nil
}

// IsPresent reports whether this Holder carries a value, whether or not it
// has been decoded yet.
func (h *Holder) IsPresent() bool {
	return h.present
}

// WriteTo encodes this Holder into p following the has-value-prefix plus
// sized-sub-parcel convention WriteOptionalParcelable uses directly; Holder
// exists so the payload can be captured once and re-encoded without the
// caller re-running its own marshal logic on every write.
func (h *Holder) WriteTo(p *Parcel) error {
	if !h.present {
		p.WriteBool(false)
		return nil
	}
	p.WriteBool(true)
	mark := p.BeginSizedRegion()
	if h.writeFn != nil {
		if err := h.writeFn(p); err != nil {
			return err
		}
	} else {
		p.WriteRaw(h.raw)
	}
	p.EndSizedRegion(mark)
	return nil
}

// ReadFrom decodes the has-value prefix out of p and, if present, captures
// the boxed sub-parcel's raw bytes without decoding them -- the "lazy"
// half of Holder. Call Decode with a matching readInto function to actually
// populate a value on first typed access.
func (h *Holder) ReadFrom(p *Parcel) error {
	has, err := p.ReadBool()
	if err != nil {
		return err
	}
	if !has {
		h.present = false
		h.decoded = false
		h.raw = nil
		return nil
	}
	region, err := p.BeginReadSizedRegion()
	if err != nil {
		return err
	}
	start := p.pos
	h.raw = append([]byte(nil), p.buf[start:region.end]...)
	p.EndReadSizedRegion(region)
	h.present = true
	h.decoded = false
	h.writeFn = nil
	return nil
}

// Decode lazily unmarshals the raw bytes captured by ReadFrom using readInto,
// memoizing the result so a second Decode call with the same shape is free.
// It is a no-op if the Holder is absent or was set directly via Set.
func (h *Holder) Decode(readInto func(*Parcel) error) error {
	if !h.present || h.decoded {
		return nil
	}
	sub := &Parcel{buf: h.raw}
	if err := readInto(sub); err != nil {
		return err
	}
	h.decoded = true
	h.readInto = readInto
	return nil
}
