// Package parcel implements the binder Parcel wire format (spec §4.1): a
// growable byte buffer with a position cursor, an ordered sidecar table of
// flat-object offsets, and a sidecar list of owned file descriptors.
//
// The read and write sides share one cursor-based Parcel type, the way
// go-ublk's uapi layer marshals a single struct type in both directions --
// except here the buffer is variable-length and self-describing rather than
// a fixed kernel struct.
package parcel

import (
	"math"
	"os"

	"github.com/ehrlich-b/gobinder/internal/errs"
)

// ownedFd is a file descriptor a Parcel has taken ownership of: it will be
// closed when the Parcel is released unless the caller detaches it first.
type ownedFd struct {
	fd       int
	detached bool
}

// Parcel is a growable byte buffer plus a read/write cursor and the two
// sidecar tables described in spec §3/§4.1.
type Parcel struct {
	buf []byte
	pos int

	// objects holds, in ascending order, the byte offset of every
	// flat-object descriptor written into buf.
	objects []int

	// fds holds every file descriptor this parcel currently owns.
	fds []*ownedFd

	// noFds marks a parcel whose originating transaction declared
	// "no-fds": reading (or writing) a file-descriptor object is then
	// rejected with ErrFdsNotAllowed (spec §7).
	noFds bool
}

// New returns an empty, writable Parcel.
func New() *Parcel {
	return &Parcel{}
}

// FromBytes wraps an existing buffer for reading; the returned Parcel's
// cursor starts at zero. Used to decode a parcel delivered by the driver,
// whose object-offset table arrives as a separate array (see WithObjects).
func FromBytes(buf []byte) *Parcel {
	return &Parcel{buf: buf}
}

// WithObjects installs a pre-known set of object offsets (e.g. the offsets
// array the driver hands back alongside a transaction's data buffer),
// replacing whatever offsets had been recorded locally.
func (p *Parcel) WithObjects(offsets []int) *Parcel {
	p.objects = append([]int(nil), offsets...)
	return p
}

// SetNoFds marks the parcel as belonging to a transaction that declared
// accept-fds=false; subsequent fd reads/writes fail with ErrFdsNotAllowed.
func (p *Parcel) SetNoFds() {
	p.noFds = true
}

// Bytes returns the parcel's current backing buffer. Callers must not retain
// it past the parcel's lifetime if the parcel is reused.
func (p *Parcel) Bytes() []byte {
	return p.buf
}

// Len returns the number of bytes written so far.
func (p *Parcel) Len() int {
	return len(p.buf)
}

// Objects returns the recorded flat-object offsets, in ascending order.
func (p *Parcel) Objects() []int {
	return p.objects
}

// Position returns the current cursor offset.
func (p *Parcel) Position() int {
	return p.pos
}

// SetPosition moves the read/write cursor. Used to rewind for a second pass
// (e.g. patching a sized-region's length prefix after the fact).
func (p *Parcel) SetPosition(pos int) {
	p.pos = pos
}

// HasMoreData reports whether the cursor is short of the buffer's end. This
// is also the "has_more_data()" check spec §4.1 uses to define forward
// compatibility for sized sub-parcels.
func (p *Parcel) HasMoreData() bool {
	return p.pos < len(p.buf)
}

// Reset empties the parcel for reuse, releasing any still-owned fds.
func (p *Parcel) Reset() error {
	if err := p.closeOwnedFds(); err != nil {
		return err
	}
	p.buf = p.buf[:0]
	p.pos = 0
	p.objects = p.objects[:0]
	p.fds = nil
	p.noFds = false
	return nil
}

// Close releases every file descriptor the parcel still owns (spec §5: "File
// descriptors embedded in received parcels: owned by the parcel ... unless
// the user explicitly detaches them").
func (p *Parcel) Close() error {
	return p.closeOwnedFds()
}

func (p *Parcel) closeOwnedFds() error {
	var firstErr error
	for _, f := range p.fds {
		if f.detached {
			continue
		}
		if err := os.NewFile(uintptr(f.fd), "").Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// align4 pads the buffer with zero bytes until its length is a multiple of
// four, per spec §3: "all typed writes align the cursor to 4 bytes before
// appending."
func (p *Parcel) align4() {
	for len(p.buf)%4 != 0 {
		p.buf = append(p.buf, 0)
	}
}

// alignReadCursor advances a read cursor the same way align4 pads a write.
func (p *Parcel) alignReadCursor() {
	if m := p.pos % 4; m != 0 {
		p.pos += 4 - m
	}
}

func (p *Parcel) need(n int) error {
	if p.pos+n > len(p.buf) {
		return errs.Newf("parcel.read", errs.NotEnoughData, "need %d bytes at offset %d, have %d", n, p.pos, len(p.buf))
	}
	return nil
}

// --- primitive writes ---

// WriteByte appends a single byte, padded to a 4-byte slot.
func (p *Parcel) WriteByte(v byte) {
	p.align4()
	p.buf = append(p.buf, v, 0, 0, 0)
	p.pos = len(p.buf)
}

// WriteInt32 appends a host-endian 4-byte signed integer.
func (p *Parcel) WriteInt32(v int32) {
	p.WriteUint32(uint32(v))
}

// WriteUint32 appends a host-endian 4-byte unsigned integer.
func (p *Parcel) WriteUint32(v uint32) {
	p.align4()
	var tmp [4]byte
	hostOrder.PutUint32(tmp[:], v)
	p.buf = append(p.buf, tmp[:]...)
	p.pos = len(p.buf)
}

// WriteInt64 appends a host-endian 8-byte signed integer.
func (p *Parcel) WriteInt64(v int64) {
	p.WriteUint64(uint64(v))
}

// WriteUint64 appends a host-endian 8-byte unsigned integer.
func (p *Parcel) WriteUint64(v uint64) {
	p.align4()
	var tmp [8]byte
	hostOrder.PutUint64(tmp[:], v)
	p.buf = append(p.buf, tmp[:]...)
	p.pos = len(p.buf)
}

// WriteInt16 appends a 2-byte signed integer, padded to a 4-byte slot.
func (p *Parcel) WriteInt16(v int16) {
	p.WriteUint32(uint32(uint16(v)))
}

// WriteFloat32 appends an IEEE-754 single-precision float.
func (p *Parcel) WriteFloat32(v float32) {
	p.WriteUint32(math.Float32bits(v))
}

// WriteFloat64 appends an IEEE-754 double-precision float.
func (p *Parcel) WriteFloat64(v float64) {
	p.WriteUint64(math.Float64bits(v))
}

// WriteBool appends a boolean as a 4-byte 0/1 (spec §4.1).
func (p *Parcel) WriteBool(v bool) {
	if v {
		p.WriteUint32(1)
	} else {
		p.WriteUint32(0)
	}
}

// WriteRaw appends len(b) raw bytes without alignment or length framing;
// used internally by string/object encoding.
func (p *Parcel) WriteRaw(b []byte) {
	p.buf = append(p.buf, b...)
	p.pos = len(p.buf)
}

// --- primitive reads ---

// ReadByte reads a 4-byte-padded single byte.
func (p *Parcel) ReadByte() (byte, error) {
	v, err := p.ReadUint32()
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}

// ReadInt32 reads a host-endian 4-byte signed integer.
func (p *Parcel) ReadInt32() (int32, error) {
	v, err := p.ReadUint32()
	return int32(v), err
}

// ReadUint32 reads a host-endian 4-byte unsigned integer.
func (p *Parcel) ReadUint32() (uint32, error) {
	p.alignReadCursor()
	if err := p.need(4); err != nil {
		return 0, err
	}
	v := hostOrder.Uint32(p.buf[p.pos : p.pos+4])
	p.pos += 4
	return v, nil
}

// ReadInt64 reads a host-endian 8-byte signed integer.
func (p *Parcel) ReadInt64() (int64, error) {
	v, err := p.ReadUint64()
	return int64(v), err
}

// ReadUint64 reads a host-endian 8-byte unsigned integer.
func (p *Parcel) ReadUint64() (uint64, error) {
	p.alignReadCursor()
	if err := p.need(8); err != nil {
		return 0, err
	}
	v := hostOrder.Uint64(p.buf[p.pos : p.pos+8])
	p.pos += 8
	return v, nil
}

// ReadInt16 reads a 2-byte signed integer stored in a 4-byte slot.
func (p *Parcel) ReadInt16() (int16, error) {
	v, err := p.ReadUint32()
	if err != nil {
		return 0, err
	}
	return int16(uint16(v)), nil
}

// ReadFloat32 reads an IEEE-754 single-precision float.
func (p *Parcel) ReadFloat32() (float32, error) {
	v, err := p.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFloat64 reads an IEEE-754 double-precision float.
func (p *Parcel) ReadFloat64() (float64, error) {
	v, err := p.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadBool reads a 4-byte 0/1 boolean.
func (p *Parcel) ReadBool() (bool, error) {
	v, err := p.ReadUint32()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// ReadRaw reads exactly n raw bytes without alignment, advancing the cursor.
func (p *Parcel) ReadRaw(n int) ([]byte, error) {
	if err := p.need(n); err != nil {
		return nil, err
	}
	out := p.buf[p.pos : p.pos+n]
	p.pos += n
	return out, nil
}
