package memory

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/require"

	"tupledb/pkg/primitives"
	"tupledb/pkg/storage"
	"tupledb/pkg/storage/heap"
	"tupledb/pkg/storage/page"
	"tupledb/pkg/tuple"
	"tupledb/pkg/types"
)

type mapResolver struct {
	files map[primitives.TableID]page.DbFile
}

func (r *mapResolver) GetFile(id primitives.TableID) (page.DbFile, error) {
	f, ok := r.files[id]
	if !ok {
		return nil, errors.NotFoundf("table %d", id)
	}
	return f, nil
}

type storeFixture struct {
	store *PageStore
	file  *heap.HeapFile
	td    *tuple.TupleDescription
}

func newStoreFixture(t *testing.T) *storeFixture {
	t.Helper()

	td, err := tuple.NewTupleDesc(
		[]types.Type{types.IntType, types.StringType},
		[]string{"id", "name"},
	)
	require.NoError(t, err)

	path := primitives.Filepath(filepath.Join(t.TempDir(), "table.dat"))
	hf, err := heap.NewHeapFile(path, td)
	require.NoError(t, err)
	t.Cleanup(func() { _ = hf.Close() })

	resolver := &mapResolver{files: map[primitives.TableID]page.DbFile{hf.GetID(): hf}}
	store, err := NewPageStore(resolver, 64)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return &storeFixture{store: store, file: hf, td: td}
}

func (fx *storeFixture) newTuple(t *testing.T, id int32, name string) *tuple.Tuple {
	t.Helper()
	tup := tuple.NewTuple(fx.td)
	tup.SetField(0, types.NewIntField(id))
	tup.SetField(1, types.NewStringField(name))
	return tup
}

// scan drains a full table scan under tid and returns the ids seen.
func (fx *storeFixture) scan(t *testing.T, tid *primitives.TransactionID) []int32 {
	t.Helper()

	it := fx.file.Iterator(tid, fx.store)
	require.NoError(t, it.Open())
	defer it.Close()

	var ids []int32
	for {
		hasNext, err := it.HasNext()
		require.NoError(t, err)
		if !hasNext {
			return ids
		}
		tup, err := it.Next()
		require.NoError(t, err)
		ids = append(ids, tup.GetField(0).(*types.IntField).Value)
	}
}

func TestGetPageUnknownTable(t *testing.T) {
	fx := newStoreFixture(t)
	tid := primitives.NewTransactionID()

	_, err := fx.store.GetPage(tid, page.NewPageDescriptor(fx.file.GetID()+1, 0), storage.ReadOnly)
	require.Error(t, err)
}

func TestGetPageGrantsLocks(t *testing.T) {
	fx := newStoreFixture(t)
	tid := primitives.NewTransactionID()

	require.NoError(t, fx.store.InsertTuple(tid, fx.file.GetID(), fx.newTuple(t, 1, "a")))
	require.NoError(t, fx.store.CommitTransaction(tid))

	reader := primitives.NewTransactionID()
	pid := page.NewPageDescriptor(fx.file.GetID(), 0)
	_, err := fx.store.GetPage(reader, pid, storage.ReadOnly)
	require.NoError(t, err)
	require.True(t, fx.store.lockMgr.HoldsLock(reader, pid))

	// A second reader shares the page; a writer must wait.
	reader2 := primitives.NewTransactionID()
	_, err = fx.store.GetPage(reader2, pid, storage.ReadOnly)
	require.NoError(t, err)

	fx.store.lockMgr.timeout = 50 * time.Millisecond
	writer := primitives.NewTransactionID()
	_, err = fx.store.GetPage(writer, pid, storage.ReadWrite)
	require.True(t, IsTransactionAborted(err))
}

func TestGetPageServesSameDirtyPage(t *testing.T) {
	fx := newStoreFixture(t)
	tid := primitives.NewTransactionID()

	tup := fx.newTuple(t, 1, "a")
	require.NoError(t, fx.store.InsertTuple(tid, fx.file.GetID(), tup))

	p, err := fx.store.GetPage(tid, tup.RecordID.PID, storage.ReadWrite)
	require.NoError(t, err)
	require.True(t, tid.Equals(p.IsDirty()))
	require.Equal(t, 1, p.(*heap.HeapPage).NumSlots()-p.(*heap.HeapPage).NumEmptySlots())
}

func TestInsertCommitDurability(t *testing.T) {
	fx := newStoreFixture(t)
	tid := primitives.NewTransactionID()

	for i := int32(1); i <= 3; i++ {
		require.NoError(t, fx.store.InsertTuple(tid, fx.file.GetID(), fx.newTuple(t, i, "row")))
	}
	require.NoError(t, fx.store.CommitTransaction(tid))

	// Commit released every lock and flushed every page.
	require.Empty(t, fx.store.dirty)

	// The records are on disk, bypassing the store entirely.
	p, err := fx.file.ReadPage(page.NewPageDescriptor(fx.file.GetID(), 0))
	require.NoError(t, err)
	require.Equal(t, 3, p.(*heap.HeapPage).NumSlots()-p.(*heap.HeapPage).NumEmptySlots())

	reader := primitives.NewTransactionID()
	require.Equal(t, []int32{1, 2, 3}, fx.scan(t, reader))
}

func TestAbortDiscardsChanges(t *testing.T) {
	fx := newStoreFixture(t)

	setup := primitives.NewTransactionID()
	require.NoError(t, fx.store.InsertTuple(setup, fx.file.GetID(), fx.newTuple(t, 1, "kept")))
	require.NoError(t, fx.store.CommitTransaction(setup))

	tid := primitives.NewTransactionID()
	require.NoError(t, fx.store.InsertTuple(tid, fx.file.GetID(), fx.newTuple(t, 2, "discarded")))
	fx.store.AbortTransaction(tid)
	require.Empty(t, fx.store.dirty)

	// The next fetch rereads the committed state from disk.
	reader := primitives.NewTransactionID()
	require.Equal(t, []int32{1}, fx.scan(t, reader))
}

func TestDeleteCommitFlow(t *testing.T) {
	fx := newStoreFixture(t)

	setup := primitives.NewTransactionID()
	tuples := make([]*tuple.Tuple, 3)
	for i := range tuples {
		tuples[i] = fx.newTuple(t, int32(i), "row")
		require.NoError(t, fx.store.InsertTuple(setup, fx.file.GetID(), tuples[i]))
	}
	require.NoError(t, fx.store.CommitTransaction(setup))

	tid := primitives.NewTransactionID()
	require.NoError(t, fx.store.DeleteTuple(tid, tuples[1]))
	require.NoError(t, fx.store.CommitTransaction(tid))

	reader := primitives.NewTransactionID()
	require.Equal(t, []int32{0, 2}, fx.scan(t, reader))
}

func TestDeleteWithoutLocator(t *testing.T) {
	fx := newStoreFixture(t)
	tid := primitives.NewTransactionID()

	err := fx.store.DeleteTuple(tid, fx.newTuple(t, 1, "a"))
	require.True(t, storage.IsRecordNotFound(err))
}

func TestCommitSetsBeforeImage(t *testing.T) {
	fx := newStoreFixture(t)
	tid := primitives.NewTransactionID()

	tup := fx.newTuple(t, 1, "a")
	require.NoError(t, fx.store.InsertTuple(tid, fx.file.GetID(), tup))

	p, err := fx.store.GetPage(tid, tup.RecordID.PID, storage.ReadWrite)
	require.NoError(t, err)
	require.NoError(t, fx.store.CommitTransaction(tid))

	before := p.GetBeforeImage().(*heap.HeapPage)
	require.Equal(t, 1, before.NumSlots()-before.NumEmptySlots())
}

func TestFlushAllPages(t *testing.T) {
	fx := newStoreFixture(t)
	tid := primitives.NewTransactionID()

	require.NoError(t, fx.store.InsertTuple(tid, fx.file.GetID(), fx.newTuple(t, 1, "a")))
	require.NoError(t, fx.store.FlushAllPages())
	require.Empty(t, fx.store.dirty)

	p, err := fx.file.ReadPage(page.NewPageDescriptor(fx.file.GetID(), 0))
	require.NoError(t, err)
	require.Equal(t, 1, p.(*heap.HeapPage).NumSlots()-p.(*heap.HeapPage).NumEmptySlots())
}
