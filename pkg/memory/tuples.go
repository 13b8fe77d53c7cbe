package memory

import (
	"github.com/juju/errors"

	"tupledb/pkg/primitives"
	"tupledb/pkg/storage"
	"tupledb/pkg/storage/heap"
	"tupledb/pkg/storage/page"
	"tupledb/pkg/tuple"
)

// TupleMutator is the mutation surface a table file exposes. The heap file
// implements it; the store stays agnostic of the storage organization.
type TupleMutator interface {
	InsertTuple(tid *primitives.TransactionID, fetcher heap.PageFetcher, t *tuple.Tuple) ([]page.Page, error)
	DeleteTuple(tid *primitives.TransactionID, fetcher heap.PageFetcher, t *tuple.Tuple) ([]page.Page, error)
}

// InsertTuple adds t to the identified table on behalf of tid and takes
// ownership of the mutated pages until commit or abort.
func (ps *PageStore) InsertTuple(tid *primitives.TransactionID, tableID primitives.TableID, t *tuple.Tuple) error {
	file, err := ps.resolver.GetFile(tableID)
	if err != nil {
		return errors.Annotatef(err, "resolving table %d", tableID)
	}

	mutator, ok := file.(TupleMutator)
	if !ok {
		return errors.Errorf("table %d does not support mutation", tableID)
	}

	pages, err := mutator.InsertTuple(tid, ps, t)
	if err != nil {
		return err
	}

	ps.registerDirty(tid, pages)
	return nil
}

// DeleteTuple removes t from its table on behalf of tid. The tuple must
// carry the locator assigned when it was inserted or scanned.
func (ps *PageStore) DeleteTuple(tid *primitives.TransactionID, t *tuple.Tuple) error {
	if t.RecordID == nil {
		return errors.Annotatef(storage.ErrRecordNotFound, "tuple has no locator")
	}

	tableID := t.RecordID.PID.GetTableID()
	file, err := ps.resolver.GetFile(tableID)
	if err != nil {
		return errors.Annotatef(err, "resolving table %d", tableID)
	}

	mutator, ok := file.(TupleMutator)
	if !ok {
		return errors.Errorf("table %d does not support mutation", tableID)
	}

	pages, err := mutator.DeleteTuple(tid, ps, t)
	if err != nil {
		return err
	}

	ps.registerDirty(tid, pages)
	return nil
}
