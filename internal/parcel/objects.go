package parcel

import (
	"github.com/ehrlich-b/gobinder/internal/errs"
	"github.com/ehrlich-b/gobinder/internal/uapi"
)

// ObjectKind identifies which arm of the flat-object union a descriptor
// holds (spec §4.1: "remote handle, local binder, file descriptor, parcel
// file descriptor").
type ObjectKind int

const (
	ObjectHandle ObjectKind = iota
	ObjectLocalBinder
	ObjectFd
	ObjectParcelFd
)

// Object is the decoded form of a flat-object descriptor: the variant tag
// plus whichever fields that variant carries.
type Object struct {
	Kind ObjectKind

	Handle uint32 // ObjectHandle
	Binder uint64 // ObjectLocalBinder
	Cookie uint64 // ObjectLocalBinder

	Fd             int  // ObjectFd, ObjectParcelFd
	TakesOwnership bool // ObjectParcelFd

	Flags     uint32
	Stability uint32
}

const flatObjectSize = 24 // unsafe.Sizeof(uapi.FlatBinderObject{})

// WriteObject appends a flat-object descriptor at the current (aligned)
// position and records its offset in the object-offset sidecar table, per
// spec §4.1: "Writing an object appends its offset to the offset table."
func (p *Parcel) WriteObject(o Object) error {
	p.align4()
	offset := len(p.buf)

	fbo := uapi.FlatBinderObject{
		Flags:  o.Flags | (o.Stability << uapi.FlatBinderFlagSchedPolicyShift),
		Cookie: o.Cookie,
	}

	switch o.Kind {
	case ObjectHandle:
		fbo.Type = uapi.BinderTypeHandle
		fbo.SetHandle(o.Handle)
	case ObjectLocalBinder:
		fbo.Type = uapi.BinderTypeBinder
		fbo.SetBinder(o.Binder)
	case ObjectFd:
		fbo.Type = uapi.BinderTypeFd
		fbo.SetHandle(uint32(o.Fd))
	case ObjectParcelFd:
		fbo.Type = uapi.BinderTypeFda
		fbo.SetHandle(uint32(o.Fd))
		if o.TakesOwnership {
			fbo.Flags |= uapi.FlatBinderFlagAcceptFds
		}
	default:
		return errs.Newf("parcel.writeObject", errs.BadType, "unknown object kind %d", o.Kind)
	}

	p.WriteUint32(fbo.Type)
	p.WriteUint32(fbo.Flags)
	p.WriteUint64(fbo.Value)
	p.WriteUint64(fbo.Cookie)

	p.objects = append(p.objects, offset)

	if o.Kind == ObjectFd || o.Kind == ObjectParcelFd {
		if p.noFds {
			return errs.New("parcel.writeObject", errs.FdsNotAllowed, "fd object written to a no-fds transaction")
		}
		p.fds = append(p.fds, &ownedFd{fd: o.Fd})
	}

	return nil
}

// ReadObjectAt decodes the flat-object descriptor at byte offset off without
// moving the parcel's main cursor; used when iterating the object-offset
// table directly (e.g. to close owned fds on release).
func (p *Parcel) ReadObjectAt(off int) (Object, error) {
	if off < 0 || off+flatObjectSize > len(p.buf) {
		return Object{}, errs.Newf("parcel.readObject", errs.BadIndex, "object offset %d out of range", off)
	}

	typ := hostOrder.Uint32(p.buf[off : off+4])
	flags := hostOrder.Uint32(p.buf[off+4 : off+8])
	value := hostOrder.Uint64(p.buf[off+8 : off+16])
	cookie := hostOrder.Uint64(p.buf[off+16 : off+24])

	stability := (flags & uapi.FlatBinderFlagSchedPolicyMask) >> uapi.FlatBinderFlagSchedPolicyShift

	switch typ {
	case uapi.BinderTypeHandle, uapi.BinderTypeWeakHandle:
		return Object{Kind: ObjectHandle, Handle: uint32(value), Cookie: cookie, Flags: flags, Stability: stability}, nil
	case uapi.BinderTypeBinder, uapi.BinderTypeWeakBinder:
		return Object{Kind: ObjectLocalBinder, Binder: value, Cookie: cookie, Flags: flags, Stability: stability}, nil
	case uapi.BinderTypeFd:
		return Object{Kind: ObjectFd, Fd: int(uint32(value)), Flags: flags, Stability: stability}, nil
	case uapi.BinderTypeFda:
		return Object{Kind: ObjectParcelFd, Fd: int(uint32(value)), TakesOwnership: flags&uapi.FlatBinderFlagAcceptFds != 0, Flags: flags, Stability: stability}, nil
	default:
		return Object{}, errs.Newf("parcel.readObject", errs.BadType, "unrecognized flat-object type 0x%x", typ)
	}
}

// ReadObject decodes a flat-object descriptor at the current cursor,
// verifying its offset is one of the parcel's recorded object offsets
// (spec §3: "every entry in a parcel's object-offset table points to a
// location inside the buffer whose bytes decode as a flat-object
// descriptor"), and advances the cursor past it.
func (p *Parcel) ReadObject() (Object, error) {
	p.alignReadCursor()
	off := p.pos

	if !p.isRecordedObjectOffset(off) {
		return Object{}, errs.Newf("parcel.readObject", errs.BadType, "offset %d is not a recorded object offset", off)
	}

	obj, err := p.ReadObjectAt(off)
	if err != nil {
		return Object{}, err
	}
	p.pos += flatObjectSize

	if obj.Kind == ObjectFd || obj.Kind == ObjectParcelFd {
		if p.noFds {
			return Object{}, errs.New("parcel.readObject", errs.FdsNotAllowed, "fd object read from a no-fds transaction")
		}
		p.fds = append(p.fds, &ownedFd{fd: obj.Fd})
	}

	return obj, nil
}

func (p *Parcel) isRecordedObjectOffset(off int) bool {
	for _, o := range p.objects {
		if o == off {
			return true
		}
	}
	return false
}

// TakeFd detaches ownership of the i'th fd this parcel owns (in the order
// objects were written/read), so the parcel no longer closes it.
func (p *Parcel) TakeFd(i int) (int, error) {
	if i < 0 || i >= len(p.fds) {
		return -1, errs.Newf("parcel.takeFd", errs.BadIndex, "fd index %d out of range (have %d)", i, len(p.fds))
	}
	f := p.fds[i]
	if f.detached {
		return -1, errs.Newf("parcel.takeFd", errs.BadValue, "fd index %d already detached", i)
	}
	f.detached = true
	return f.fd, nil
}
