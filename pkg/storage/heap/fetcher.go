package heap

import (
	"tupledb/pkg/primitives"
	"tupledb/pkg/storage"
	"tupledb/pkg/storage/page"
	"tupledb/pkg/tuple"
)

// PageFetcher is the page cache boundary the heap file consumes. The
// fetcher arbitrates access per unit of work, decides residency, and is the
// only component that triggers disk reads during scans and mutations. A
// fetch may block on a lock conflict and may fail with a unit-of-work-abort
// signal; both are opaque to this layer.
type PageFetcher interface {
	GetPage(tid *primitives.TransactionID, pid tuple.PageID, perm storage.Permissions) (page.Page, error)
}
