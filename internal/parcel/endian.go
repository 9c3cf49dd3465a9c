package parcel

import (
	"encoding/binary"
	"unsafe"
)

// hostOrder is the byte order primitives are encoded with (spec §4.1: "data
// endianness=host"). go-ublk's uapi layer hard-codes LittleEndian because
// ublk's wire format is defined that way; the binder parcel format instead
// tracks the host, so it is detected once here the way low-level Go code
// typically probes endianness when encoding/binary offers no native-order
// constant.
var hostOrder binary.ByteOrder = func() binary.ByteOrder {
	var probe uint16 = 1
	if *(*byte)(unsafe.Pointer(&probe)) == 1 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}()

// HostOrder exposes the detected native byte order for callers outside this
// package that build driver-facing buffers the parcel type doesn't own
// directly (e.g. the offsets array alongside a transaction's data buffer).
func HostOrder() binary.ByteOrder {
	return hostOrder
}
