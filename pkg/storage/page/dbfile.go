package page

import (
	"tupledb/pkg/primitives"
	"tupledb/pkg/tuple"
)

// DbFile is a table's physical storage: a sequence of fixed-size pages in
// one flat file. It is the surface the catalog registers and the page store
// reads through; all page residency decisions happen above this interface.
type DbFile interface {
	// ReadPage reads the identified page from disk. Only the page store
	// should call this; everyone else fetches pages through it.
	ReadPage(pid tuple.PageID) (Page, error)

	// WritePage persists a page at its own offset, extending the file by
	// exactly one page when the page is the current end.
	WritePage(p Page) error

	// GetID returns the stable identifier derived from the backing path.
	GetID() primitives.TableID

	// GetTupleDesc returns the schema of the tuples stored in this file.
	GetTupleDesc() *tuple.TupleDescription

	// NumPages returns the number of whole pages currently in the file.
	NumPages() (primitives.PageNumber, error)

	// Close releases the underlying file handle.
	Close() error
}
