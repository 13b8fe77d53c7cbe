package tuple

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tupledb/pkg/primitives"
	"tupledb/pkg/storage"
	"tupledb/pkg/types"
)

func mustTupleDesc(t *testing.T) *TupleDescription {
	t.Helper()
	td, err := NewTupleDesc(
		[]types.Type{types.IntType, types.StringType},
		[]string{"id", "name"},
	)
	require.NoError(t, err)
	return td
}

func TestNewTupleDescValidation(t *testing.T) {
	tests := []struct {
		name       string
		fieldTypes []types.Type
		fieldNames []string
		wantErr    bool
	}{
		{"valid with names", []types.Type{types.IntType}, []string{"id"}, false},
		{"valid without names", []types.Type{types.IntType, types.StringType}, nil, false},
		{"no fields", []types.Type{}, nil, true},
		{"name count mismatch", []types.Type{types.IntType}, []string{"a", "b"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTupleDesc(tt.fieldTypes, tt.fieldNames)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestTupleDescSize(t *testing.T) {
	td := mustTupleDesc(t)
	require.Equal(t, types.IntSize+types.StringSize, td.Size())
}

func TestTupleDescAccessorsOutOfRange(t *testing.T) {
	td := mustTupleDesc(t)

	_, err := td.TypeAtIndex(-1)
	require.True(t, storage.IsOutOfRange(err))

	_, err = td.TypeAtIndex(primitives.ColumnID(td.NumFields()))
	require.True(t, storage.IsOutOfRange(err))

	_, err = td.FieldNameAt(99)
	require.True(t, storage.IsOutOfRange(err))
}

func TestTupleDescEquals(t *testing.T) {
	td1 := mustTupleDesc(t)
	td2, err := NewTupleDesc([]types.Type{types.IntType, types.StringType}, nil)
	require.NoError(t, err)
	td3, err := NewTupleDesc([]types.Type{types.StringType, types.IntType}, nil)
	require.NoError(t, err)

	// Names are metadata; only the type sequence matters.
	require.True(t, td1.Equals(td2))
	require.False(t, td1.Equals(td3))
	require.False(t, td1.Equals(nil))
}

func TestTupleFieldAccessOutOfRangeIsNoOp(t *testing.T) {
	td := mustTupleDesc(t)
	tup := NewTuple(td)

	tup.SetField(-1, types.NewIntField(1))
	tup.SetField(2, types.NewIntField(1))
	require.Nil(t, tup.GetField(-1))
	require.Nil(t, tup.GetField(2))

	tup.SetField(0, types.NewIntField(7))
	require.True(t, types.NewIntField(7).Equals(tup.GetField(0)))
}

func TestTupleString(t *testing.T) {
	td := mustTupleDesc(t)
	tup := NewTuple(td)
	tup.SetField(0, types.NewIntField(3))

	// Unset fields render empty, joined by a single space.
	require.Equal(t, "3 ", tup.String())

	tup.SetField(1, types.NewStringField("alice"))
	require.Equal(t, "3 alice", tup.String())
}

func TestTupleResetDescDiscardsValues(t *testing.T) {
	td := mustTupleDesc(t)
	tup := NewTuple(td)
	tup.SetField(0, types.NewIntField(3))

	single, err := NewTupleDesc([]types.Type{types.IntType}, nil)
	require.NoError(t, err)

	tup.ResetDesc(single)
	require.Same(t, single, tup.TupleDesc)
	require.Nil(t, tup.GetField(0))
}

func TestTupleFieldsReturnsCopy(t *testing.T) {
	td := mustTupleDesc(t)
	tup := NewTuple(td)
	tup.SetField(0, types.NewIntField(1))

	fields := tup.Fields()
	require.Len(t, fields, 2)
	require.Nil(t, fields[1])

	// Mutating the copy leaves the tuple untouched.
	fields[0] = types.NewIntField(99)
	require.True(t, types.NewIntField(1).Equals(tup.GetField(0)))
}

func TestTupleCloneDropsLocator(t *testing.T) {
	td := mustTupleDesc(t)
	tup := NewTuple(td)
	tup.SetField(0, types.NewIntField(1))
	tup.SetField(1, types.NewStringField("a"))
	tup.RecordID = NewRecordID(fakePageID{1, 0}, 3)

	c := tup.Clone()
	require.Nil(t, c.RecordID)
	require.Same(t, td, c.TupleDesc)
	require.True(t, tup.GetField(0).Equals(c.GetField(0)))
	require.True(t, tup.GetField(1).Equals(c.GetField(1)))
}

type fakePageID struct {
	table primitives.TableID
	page  primitives.PageNumber
}

func (f fakePageID) GetTableID() primitives.TableID { return f.table }
func (f fakePageID) PageNo() primitives.PageNumber  { return f.page }
func (f fakePageID) String() string                 { return "fake" }
func (f fakePageID) Equals(other PageID) bool {
	return other != nil && f.table == other.GetTableID() && f.page == other.PageNo()
}

func TestRecordIDEquals(t *testing.T) {
	a := NewRecordID(fakePageID{1, 2}, 3)
	b := NewRecordID(fakePageID{1, 2}, 3)
	c := NewRecordID(fakePageID{1, 2}, 4)
	d := NewRecordID(fakePageID{9, 2}, 3)

	require.True(t, a.Equals(b))
	require.False(t, a.Equals(c))
	require.False(t, a.Equals(d))
	require.False(t, a.Equals(nil))
}
