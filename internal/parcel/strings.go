package parcel

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/ehrlich-b/gobinder/internal/errs"
)

// nullLength is the 4-byte length value that marks a null string/sequence.
const nullLength int32 = -1

// WriteString writes a UTF-16LE-encoded string: a 4-byte length in UTF-16
// code units, followed by 2*(n+1) bytes of UTF-16LE including a terminating
// code unit (spec §4.1), padded to a 4-byte boundary. An empty Go string
// takes the ordinary non-null path; use WriteNullString for an explicit
// absent value.
func (p *Parcel) WriteString(s string) {
	units := utf16.Encode([]rune(s))
	p.WriteInt32(int32(len(units)))
	for _, u := range units {
		p.writeUTF16Unit(u)
	}
	p.writeUTF16Unit(0) // terminating code unit
	p.align4()
	p.pos = len(p.buf)
}

// WriteNullString writes the length=-1 sentinel for an absent string.
func (p *Parcel) WriteNullString() {
	p.WriteInt32(nullLength)
}

func (p *Parcel) writeUTF16Unit(u uint16) {
	// Code units are packed two bytes apart; WriteString pads the whole run
	// to a 4-byte boundary once the terminator is written.
	var tmp [2]byte
	hostOrder.PutUint16(tmp[:], u)
	p.buf = append(p.buf, tmp[:]...)
	p.pos = len(p.buf)
}

// ReadString reads a UTF-16LE string written by WriteString. ok is false if
// the encoded length was the null sentinel.
func (p *Parcel) ReadString() (s string, ok bool, err error) {
	n, err := p.ReadInt32()
	if err != nil {
		return "", false, err
	}
	if n == nullLength {
		return "", false, nil
	}
	if n < 0 {
		return "", false, errs.Newf("parcel.readString", errs.BadValue, "negative string length %d", n)
	}

	units := make([]uint16, n+1) // +1 for the terminating code unit
	for i := range units {
		u, err := p.readUTF16Unit()
		if err != nil {
			return "", false, err
		}
		units[i] = u
	}
	p.alignReadCursor()
	return string(utf16.Decode(units[:n])), true, nil
}

func (p *Parcel) readUTF16Unit() (uint16, error) {
	if err := p.need(2); err != nil {
		return 0, err
	}
	v := hostOrder.Uint16(p.buf[p.pos : p.pos+2])
	p.pos += 2
	return v, nil
}

// WriteUTF8String writes the legacy length-prefixed UTF-8 interop path: a
// 4-byte byte-length followed by the raw UTF-8 bytes, 4-byte aligned.
func (p *Parcel) WriteUTF8String(s string) {
	b := []byte(s)
	p.WriteInt32(int32(len(b)))
	p.WriteRaw(b)
	p.align4()
	p.pos = len(p.buf)
}

// WriteNullUTF8String writes the length=-1 sentinel for an absent legacy string.
func (p *Parcel) WriteNullUTF8String() {
	p.WriteInt32(nullLength)
}

// ReadUTF8String reads the legacy length-prefixed UTF-8 interop path.
func (p *Parcel) ReadUTF8String() (s string, ok bool, err error) {
	n, err := p.ReadInt32()
	if err != nil {
		return "", false, err
	}
	if n == nullLength {
		return "", false, nil
	}
	if n < 0 {
		return "", false, errs.Newf("parcel.readUTF8String", errs.BadValue, "negative string length %d", n)
	}
	b, err := p.ReadRaw(int(n))
	if err != nil {
		return "", false, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	p.alignReadCursor()
	if !utf8.Valid(out) {
		return "", false, errs.New("parcel.readUTF8String", errs.BadValue, "invalid UTF-8 payload")
	}
	return string(out), true, nil
}
