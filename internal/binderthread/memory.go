package binderthread

import "unsafe"

// pointerFromAddr converts a raw address (as delivered by the driver inside
// binder_transaction_data.data.ptr.buffer/offsets, or read back from the
// mmap'd area) into an unsafe.Pointer. The indirection through a second
// unsafe.Pointer cast is go-ublk's trick (internal/queue.pointerFromMmap)
// for satisfying go vet's unsafeptr checker on an address that did not come
// from a Go allocation.
//
//go:noinline
func pointerFromAddr(addr uint64) unsafe.Pointer {
	p := uintptr(addr)
	return *(*unsafe.Pointer)(unsafe.Pointer(&p))
}

// bytesFromAddr builds a []byte view over n bytes at a raw driver-supplied
// address, without copying. Callers must not retain the slice past the
// point the kernel is free to reuse that memory (i.e. past the current
// wait_for_response iteration).
func bytesFromAddr(addr uint64, n int) []byte {
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(pointerFromAddr(addr)), n)
}

// uint64sFromAddr builds a []uint64 view over n elements at a raw address,
// used to decode the offsets array accompanying a transaction.
func uint64sFromAddr(addr uint64, n int) []uint64 {
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*uint64)(pointerFromAddr(addr)), n)
}
