package tuple

import (
	"fmt"
	"strings"

	"github.com/juju/errors"

	"tupledb/pkg/primitives"
	"tupledb/pkg/storage"
	"tupledb/pkg/types"
)

// TupleDescription describes the schema of a tuple: the ordered field types
// and their optional names. It is immutable after construction; every tuple
// of a table shares the table's descriptor.
type TupleDescription struct {
	fieldTypes []types.Type
	fieldNames []string
	size       int
}

// NewTupleDesc creates a descriptor from field types and optional names.
// fieldTypes must contain at least one element; fieldNames, when non-nil,
// must match it in length. The serialized byte width is computed once here.
func NewTupleDesc(fieldTypes []types.Type, fieldNames []string) (*TupleDescription, error) {
	if len(fieldTypes) < 1 {
		return nil, errors.Errorf("must provide at least one field type")
	}

	typesCopy := make([]types.Type, len(fieldTypes))
	copy(typesCopy, fieldTypes)

	var namesCopy []string
	if fieldNames != nil {
		if len(fieldNames) != len(fieldTypes) {
			return nil, errors.Errorf("field names length (%d) must match field types length (%d)",
				len(fieldNames), len(fieldTypes))
		}
		namesCopy = make([]string, len(fieldNames))
		copy(namesCopy, fieldNames)
	}

	size := 0
	for _, t := range typesCopy {
		size += t.Size()
	}

	return &TupleDescription{
		fieldTypes: typesCopy,
		fieldNames: namesCopy,
		size:       size,
	}, nil
}

// NumFields returns the number of fields in the schema.
func (td *TupleDescription) NumFields() int {
	return len(td.fieldTypes)
}

// TypeAtIndex returns the type of the ith field.
func (td *TupleDescription) TypeAtIndex(i primitives.ColumnID) (types.Type, error) {
	if i < 0 || int(i) >= len(td.fieldTypes) {
		return 0, errors.Annotatef(storage.ErrOutOfRange,
			"field index %d not in [0, %d)", i, len(td.fieldTypes))
	}
	return td.fieldTypes[int(i)], nil
}

// FieldNameAt returns the name of the ith field, or the empty string when
// the schema carries no names.
func (td *TupleDescription) FieldNameAt(i primitives.ColumnID) (string, error) {
	if i < 0 || int(i) >= len(td.fieldTypes) {
		return "", errors.Annotatef(storage.ErrOutOfRange,
			"field index %d not in [0, %d)", i, len(td.fieldTypes))
	}
	if td.fieldNames == nil {
		return "", nil
	}
	return td.fieldNames[int(i)], nil
}

// Size returns the fixed serialized width in bytes of a tuple with this
// schema.
func (td *TupleDescription) Size() int {
	return td.size
}

// Equals reports schema compatibility: the type sequences match
// positionally. Field names are metadata and are not compared.
func (td *TupleDescription) Equals(other *TupleDescription) bool {
	if other == nil {
		return false
	}
	if len(td.fieldTypes) != len(other.fieldTypes) {
		return false
	}
	for i, t := range td.fieldTypes {
		if t != other.fieldTypes[i] {
			return false
		}
	}
	return true
}

func (td *TupleDescription) String() string {
	parts := make([]string, len(td.fieldTypes))
	for i, t := range td.fieldTypes {
		name := ""
		if td.fieldNames != nil {
			name = td.fieldNames[i]
		}
		parts[i] = fmt.Sprintf("%s(%s)", t, name)
	}
	return strings.Join(parts, ", ")
}
