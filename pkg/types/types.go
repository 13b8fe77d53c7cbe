package types

// Type enumerates the field types a tuple schema can carry.
type Type int

const (
	IntType Type = iota
	StringType
)

const (
	// IntSize is the serialized width of an integer field in bytes.
	IntSize = 4

	// StringMaxSize is the fixed maximum payload of a string field. Every
	// string field occupies StringMaxSize bytes on disk plus a 4-byte
	// length prefix, regardless of the actual value length.
	StringMaxSize = 128

	// StringSize is the serialized width of a string field in bytes.
	StringSize = StringMaxSize + 4
)

// Size returns the fixed serialized width of a field of this type.
func (t Type) Size() int {
	switch t {
	case IntType:
		return IntSize
	case StringType:
		return StringSize
	default:
		return 0
	}
}

// String returns a string representation of the type.
func (t Type) String() string {
	switch t {
	case IntType:
		return "INT"
	case StringType:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}
