package gobinder

import "github.com/ehrlich-b/gobinder/internal/parcel"

// Holder is a lazily-boxed parcelable field: its payload is captured as raw
// bytes on read and only unmarshaled when a typed accessor calls Decode
// (spec.md §4.1's recursive/optional-boxed field encoding, generalized into
// a reusable type).
type Holder = parcel.Holder

// NewHolder returns an empty Holder ready for Set or ReadFrom.
func NewHolder() *Holder {
	return parcel.NewHolder()
}
