package types

import (
	"encoding/binary"
	"io"

	"github.com/juju/errors"
)

// ParseField reads one field of the given type from r. It consumes exactly
// fieldType.Size() bytes. A string whose length prefix exceeds
// StringMaxSize is malformed.
func ParseField(r io.Reader, fieldType Type) (Field, error) {
	switch fieldType {
	case IntType:
		return parseIntField(r)
	case StringType:
		return parseStringField(r)
	default:
		return nil, errors.Errorf("unknown field type %d", fieldType)
	}
}

func parseIntField(r io.Reader) (*IntField, error) {
	buf := make([]byte, IntSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Annotate(err, "reading int field")
	}
	return NewIntField(int32(binary.BigEndian.Uint32(buf))), nil
}

func parseStringField(r io.Reader) (*StringField, error) {
	lengthBytes := make([]byte, 4)
	if _, err := io.ReadFull(r, lengthBytes); err != nil {
		return nil, errors.Annotate(err, "reading string length")
	}

	length := binary.BigEndian.Uint32(lengthBytes)
	if length > StringMaxSize {
		return nil, errors.Errorf("string length %d exceeds maximum %d", length, StringMaxSize)
	}

	payload := make([]byte, StringMaxSize)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, errors.Annotate(err, "reading string payload")
	}

	return NewStringField(string(payload[:length])), nil
}
