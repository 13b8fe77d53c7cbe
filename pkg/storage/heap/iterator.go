package heap

import (
	"github.com/juju/errors"

	"tupledb/pkg/tuple"
)

// HeapPageIterator iterates over the occupied slots of a single page in
// increasing slot order.
type HeapPageIterator struct {
	page    *HeapPage
	tuples  []*tuple.Tuple
	current int
}

// NewHeapPageIterator creates an iterator for the given page.
func NewHeapPageIterator(page *HeapPage) *HeapPageIterator {
	return &HeapPageIterator{
		page:    page,
		current: -1,
	}
}

// Open snapshots the page's occupied slots.
func (it *HeapPageIterator) Open() error {
	it.tuples = it.page.Tuples()
	it.current = -1
	return nil
}

// HasNext reports whether another record remains.
func (it *HeapPageIterator) HasNext() bool {
	return it.current+1 < len(it.tuples)
}

// Next returns the next record.
func (it *HeapPageIterator) Next() (*tuple.Tuple, error) {
	if !it.HasNext() {
		return nil, errors.Errorf("no more tuples on page %s", it.page.GetID())
	}
	it.current++
	return it.tuples[it.current], nil
}

// Rewind resets the iterator to the first record.
func (it *HeapPageIterator) Rewind() error {
	return it.Open()
}

// Close releases the iterator's snapshot.
func (it *HeapPageIterator) Close() {
	it.tuples = nil
	it.current = -1
}
