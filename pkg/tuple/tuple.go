package tuple

import (
	"strings"

	"tupledb/pkg/types"
)

// Tuple is one row of data: an array of typed field values bound to a
// TupleDescription, plus the locator of its slot once it has been placed in
// storage. A field slot is nil until explicitly written.
//
// A tuple is exclusively owned by whichever component currently holds it;
// it is never mutated from more than one goroutine.
type Tuple struct {
	TupleDesc *TupleDescription
	fields    []types.Field
	RecordID  *RecordID
}

// NewTuple creates an empty tuple bound to the given schema.
func NewTuple(td *TupleDescription) *Tuple {
	return &Tuple{
		TupleDesc: td,
		fields:    make([]types.Field, td.NumFields()),
	}
}

// SetField writes the ith field value. An out-of-range index is a no-op,
// which lets page decoding build partial tuples without special cases.
func (t *Tuple) SetField(i int, f types.Field) {
	if i < 0 || i >= len(t.fields) {
		return
	}
	t.fields[i] = f
}

// GetField returns the ith field value, or nil when the index is out of
// range or the field has not been set.
func (t *Tuple) GetField(i int) types.Field {
	if i < 0 || i >= len(t.fields) {
		return nil
	}
	return t.fields[i]
}

// Fields returns a copy of the field slice, unset slots included.
func (t *Tuple) Fields() []types.Field {
	out := make([]types.Field, len(t.fields))
	copy(out, t.fields)
	return out
}

// ResetDesc rebinds the tuple to a new schema. The field array is
// reallocated to the new width; no prior value survives.
func (t *Tuple) ResetDesc(td *TupleDescription) {
	t.TupleDesc = td
	t.fields = make([]types.Field, td.NumFields())
}

// Clone returns a tuple with the same schema and field values. The locator
// is not copied; a clone has not been placed in storage.
func (t *Tuple) Clone() *Tuple {
	c := NewTuple(t.TupleDesc)
	copy(c.fields, t.fields)
	return c
}

// String joins the fields' display forms with single spaces. Unset fields
// render as the empty string.
func (t *Tuple) String() string {
	parts := make([]string, len(t.fields))
	for i, f := range t.fields {
		if f != nil {
			parts[i] = f.String()
		}
	}
	return strings.Join(parts, " ")
}
