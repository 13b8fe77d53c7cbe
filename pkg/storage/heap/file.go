package heap

import (
	"github.com/juju/errors"

	"tupledb/pkg/primitives"
	"tupledb/pkg/storage"
	"tupledb/pkg/storage/page"
	"tupledb/pkg/tuple"
)

// HeapFile stores a table's tuples in no particular order, as a flat file
// of fixed-size heap pages. It implements the page.DbFile interface.
//
// ReadPage and WritePage are raw disk I/O; all page access during query
// execution goes through a PageFetcher so that residency and locking stay
// with the page store.
type HeapFile struct {
	*page.BaseFile
	tupleDesc *tuple.TupleDescription
}

// NewHeapFile opens (creating if needed) a heap file at filePath holding
// tuples of the given schema.
func NewHeapFile(filePath primitives.Filepath, td *tuple.TupleDescription) (*HeapFile, error) {
	if td == nil {
		return nil, errors.Errorf("tuple description cannot be nil")
	}

	baseFile, err := page.NewBaseFile(filePath)
	if err != nil {
		return nil, errors.Annotatef(err, "opening heap file")
	}

	return &HeapFile{
		BaseFile:  baseFile,
		tupleDesc: td,
	}, nil
}

// GetTupleDesc returns the schema of the tuples stored in this file.
func (hf *HeapFile) GetTupleDesc() *tuple.TupleDescription {
	return hf.tupleDesc
}

// ReadPage reads the identified page from disk. The page must belong to
// this file and lie within it; a truncated read is an I/O failure.
func (hf *HeapFile) ReadPage(pid tuple.PageID) (page.Page, error) {
	descriptor, err := hf.validatePageID(pid)
	if err != nil {
		return nil, err
	}

	numPages, err := hf.NumPages()
	if err != nil {
		return nil, err
	}
	if descriptor.PageNo() < 0 || descriptor.PageNo() >= numPages {
		return nil, errors.Annotatef(storage.ErrOutOfRange,
			"page %d not in [0, %d)", descriptor.PageNo(), numPages)
	}

	data, err := hf.ReadPageData(descriptor.PageNo())
	if err != nil {
		return nil, err
	}

	return NewHeapPage(descriptor, data, hf.tupleDesc)
}

// WritePage writes p's serialized bytes at its own offset, extending the
// file by one page when p is the current end.
func (hf *HeapFile) WritePage(p page.Page) error {
	if p == nil {
		return errors.Errorf("page cannot be nil")
	}
	return hf.WritePageData(p.GetID().PageNo(), p.GetPageData())
}

func (hf *HeapFile) validatePageID(pid tuple.PageID) (*page.PageDescriptor, error) {
	if pid == nil {
		return nil, errors.Errorf("page ID cannot be nil")
	}

	descriptor, ok := pid.(*page.PageDescriptor)
	if !ok || descriptor == nil {
		return nil, errors.Errorf("invalid page ID type for heap file")
	}

	if descriptor.GetTableID() != hf.GetID() {
		return nil, errors.Annotatef(storage.ErrWrongPage,
			"page %s does not belong to file %d", descriptor, hf.GetID())
	}

	return descriptor, nil
}

// InsertTuple places t in the first existing page with a free slot,
// scanning pages in increasing order through the fetcher under ReadWrite
// permission. When every page is full a new empty page is appended and the
// tuple goes into its slot 0. Returns the pages mutated, for write-back
// bookkeeping. The tuple's schema must match the file's; a mismatch is
// rejected before any page is touched.
func (hf *HeapFile) InsertTuple(tid *primitives.TransactionID, fetcher PageFetcher, t *tuple.Tuple) ([]page.Page, error) {
	if !t.TupleDesc.Equals(hf.tupleDesc) {
		return nil, errors.Annotatef(storage.ErrSchemaMismatch,
			"tuple schema does not match file %d", hf.GetID())
	}

	numPages, err := hf.NumPages()
	if err != nil {
		return nil, err
	}

	for pageNo := primitives.PageNumber(0); pageNo < numPages; pageNo++ {
		pid := page.NewPageDescriptor(hf.GetID(), pageNo)
		p, err := fetcher.GetPage(tid, pid, storage.ReadWrite)
		if err != nil {
			return nil, errors.Annotatef(err, "fetching page %d for insert", pageNo)
		}

		hp, ok := p.(*HeapPage)
		if !ok {
			return nil, errors.Annotatef(storage.ErrCorruptPage,
				"page %s is not a heap page", pid)
		}

		if hp.NumEmptySlots() == 0 {
			continue
		}

		if err := hp.InsertTuple(t); err != nil {
			// Lost a race for the last slot; try the next page.
			if storage.IsPageFull(err) {
				continue
			}
			return nil, err
		}

		hp.MarkDirty(true, tid)
		return []page.Page{hp}, nil
	}

	return hf.appendAndInsert(tid, fetcher, t)
}

// appendAndInsert extends the file with one empty page and inserts t there.
// The blank page is flushed first so the file grows atomically from a
// reader's perspective; the record itself reaches disk through the normal
// dirty-page write-back. The page number comes from the append itself, not
// from the scan's page count, so a concurrent append can never make this
// write land on an existing page.
func (hf *HeapFile) appendAndInsert(tid *primitives.TransactionID, fetcher PageFetcher, t *tuple.Tuple) ([]page.Page, error) {
	// An empty heap page serializes as all zeros.
	pageNo, err := hf.AppendPage(make([]byte, page.PageSize))
	if err != nil {
		return nil, errors.Annotatef(err, "appending page")
	}
	pid := page.NewPageDescriptor(hf.GetID(), pageNo)

	p, err := fetcher.GetPage(tid, pid, storage.ReadWrite)
	if err != nil {
		return nil, errors.Annotatef(err, "fetching appended page %d", pageNo)
	}

	hp, ok := p.(*HeapPage)
	if !ok {
		return nil, errors.Annotatef(storage.ErrCorruptPage, "page %s is not a heap page", pid)
	}

	if err := hp.InsertTuple(t); err != nil {
		return nil, err
	}

	hp.MarkDirty(true, tid)
	return []page.Page{hp}, nil
}

// DeleteTuple resolves t's locator to its page through the fetcher under
// ReadWrite permission and delegates to that page's delete. A tuple with no
// locator, or located in a different file, fails RecordNotFound.
func (hf *HeapFile) DeleteTuple(tid *primitives.TransactionID, fetcher PageFetcher, t *tuple.Tuple) ([]page.Page, error) {
	rid := t.RecordID
	if rid == nil {
		return nil, errors.Annotatef(storage.ErrRecordNotFound, "tuple has no locator")
	}
	if rid.PID.GetTableID() != hf.GetID() {
		return nil, errors.Annotatef(storage.ErrRecordNotFound,
			"tuple is in file %d, not %d", rid.PID.GetTableID(), hf.GetID())
	}

	p, err := fetcher.GetPage(tid, rid.PID, storage.ReadWrite)
	if err != nil {
		return nil, errors.Annotatef(err, "fetching page for delete")
	}

	hp, ok := p.(*HeapPage)
	if !ok {
		return nil, errors.Annotatef(storage.ErrCorruptPage, "page %s is not a heap page", rid.PID)
	}

	if err := hp.DeleteTuple(t); err != nil {
		return nil, err
	}

	hp.MarkDirty(true, tid)
	return []page.Page{hp}, nil
}

// Iterator returns a lazy forward-only scan over all live records in the
// file, fetching pages one at a time through the fetcher under the given
// unit of work. The iterator must be opened before use.
func (hf *HeapFile) Iterator(tid *primitives.TransactionID, fetcher PageFetcher) *HeapFileIterator {
	return NewHeapFileIterator(hf, tid, fetcher)
}
