package gobinder

import "github.com/ehrlich-b/gobinder/internal/parcel"

// Parcel is the wire codec every Transact call and OnTransact handler reads
// and writes (spec.md §3/§4.1). It is a type alias, not a wrapper, so
// callers get the full read/write method set without an extra import.
type Parcel = parcel.Parcel

// NewParcel returns an empty, writable Parcel.
func NewParcel() *Parcel {
	return parcel.New()
}
