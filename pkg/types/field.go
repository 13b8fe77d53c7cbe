package types

import "io"

// Field is a single typed value inside a tuple. Implementations serialize
// to a fixed number of bytes determined by their Type so that records have
// a fixed on-disk width.
type Field interface {
	// Serialize writes exactly Type().Size() bytes to w.
	Serialize(w io.Writer) error

	// Type returns the type tag of this field.
	Type() Type

	// Equals reports whether other holds the same type and value.
	Equals(other Field) bool

	// String returns the display form of the value.
	String() string
}
