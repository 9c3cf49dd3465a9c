package errs

import (
	"errors"
	"syscall"
	"testing"
)

func TestMapErrno(t *testing.T) {
	cases := []struct {
		errno    syscall.Errno
		expected Code
	}{
		{syscall.ENOENT, NameNotFound},
		{syscall.ENOMEM, NoMemory},
		{syscall.EINVAL, BadValue},
		{syscall.EPERM, PermissionDenied},
		{syscall.EACCES, PermissionDenied},
		{syscall.EAGAIN, WouldBlock},
		{syscall.ETIMEDOUT, TimedOut},
		{syscall.ENOSYS, NotAllowed},
		{syscall.ECONNREFUSED, DeadObject},
	}

	for _, tc := range cases {
		got := mapErrno(tc.errno)
		if got != tc.expected {
			t.Errorf("mapErrno(%v) = %s, want %s", tc.errno, got, tc.expected)
		}
	}
}

func TestWrapPreservesErrnoChain(t *testing.T) {
	err := Wrap("ioctl", syscall.EIO)
	if !errors.Is(err, syscall.EIO) {
		t.Error("Wrap should preserve the errno for errors.Is")
	}
}

func TestWrapNilIsNil(t *testing.T) {
	if Wrap("op", nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestIsHelper(t *testing.T) {
	err := New("parcel.readString", BadType, "expected string arm")
	if !Is(err, BadType) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, BadValue) {
		t.Error("Is should not match an unrelated code")
	}
}
