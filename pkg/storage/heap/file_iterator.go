package heap

import (
	"github.com/juju/errors"

	"tupledb/pkg/primitives"
	"tupledb/pkg/storage"
	"tupledb/pkg/storage/page"
	"tupledb/pkg/tuple"
)

// HeapFileIterator is a lazy forward-only scan over every live record in a
// heap file, in page-number then slot-number order. Pages are fetched one
// at a time through the page fetcher under ReadOnly permission; at most one
// page is logically in use at a time beyond whatever the fetcher retains.
//
// The iterator starts unopened, Open makes it yield records, Close ends the
// stream; a closed iterator yields nothing until Rewind reopens it.
type HeapFileIterator struct {
	file        *HeapFile
	tid         *primitives.TransactionID
	fetcher     PageFetcher
	currentPage primitives.PageNumber
	pageIter    *HeapPageIterator
	opened      bool
}

// NewHeapFileIterator creates an unopened iterator for the given file and
// unit of work.
func NewHeapFileIterator(file *HeapFile, tid *primitives.TransactionID, fetcher PageFetcher) *HeapFileIterator {
	return &HeapFileIterator{
		file:    file,
		tid:     tid,
		fetcher: fetcher,
	}
}

// Open positions the iterator at the first record of page 0. A file with
// zero pages opens into a valid, immediately exhausted state.
func (it *HeapFileIterator) Open() error {
	it.opened = true
	it.currentPage = 0
	it.pageIter = nil

	numPages, err := it.file.NumPages()
	if err != nil {
		return err
	}
	if numPages == 0 {
		return nil
	}

	return it.loadPage(0)
}

func (it *HeapFileIterator) loadPage(pageNo primitives.PageNumber) error {
	pid := page.NewPageDescriptor(it.file.GetID(), pageNo)
	p, err := it.fetcher.GetPage(it.tid, pid, storage.ReadOnly)
	if err != nil {
		return errors.Annotatef(err, "fetching page %d for scan", pageNo)
	}

	hp, ok := p.(*HeapPage)
	if !ok {
		return errors.Annotatef(storage.ErrCorruptPage, "page %s is not a heap page", pid)
	}

	it.currentPage = pageNo
	it.pageIter = hp.Iterator()
	return it.pageIter.Open()
}

// advance moves past exhausted pages until a record is found or the last
// page is exhausted.
func (it *HeapFileIterator) advance() error {
	for it.pageIter != nil && !it.pageIter.HasNext() {
		numPages, err := it.file.NumPages()
		if err != nil {
			return err
		}
		if it.currentPage+1 >= numPages {
			return nil
		}
		if err := it.loadPage(it.currentPage + 1); err != nil {
			return err
		}
	}
	return nil
}

// HasNext reports whether another record remains in the stream.
func (it *HeapFileIterator) HasNext() (bool, error) {
	if !it.opened || it.pageIter == nil {
		return false, nil
	}
	if err := it.advance(); err != nil {
		return false, err
	}
	return it.pageIter.HasNext(), nil
}

// Next returns the next record; it carries its RecordID for later point
// access or mutation.
func (it *HeapFileIterator) Next() (*tuple.Tuple, error) {
	hasNext, err := it.HasNext()
	if err != nil {
		return nil, err
	}
	if !hasNext {
		return nil, errors.Errorf("no more tuples in file %d", it.file.GetID())
	}
	return it.pageIter.Next()
}

// Rewind restarts the stream from the beginning.
func (it *HeapFileIterator) Rewind() error {
	it.Close()
	return it.Open()
}

// Close releases the internal cursor. Closing requests no further pages
// and performs no unpinning; page lifecycle belongs to the fetcher.
func (it *HeapFileIterator) Close() {
	if it.pageIter != nil {
		it.pageIter.Close()
		it.pageIter = nil
	}
	it.opened = false
}
