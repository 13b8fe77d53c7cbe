// Package memory implements the page store: the single component through
// which query execution reaches pages. It arbitrates read/write permission
// per unit of work, keeps clean pages in a drop-anytime cache, owns dirty
// pages until commit, and is the only component that performs disk I/O on
// behalf of query execution.
package memory

import (
	"sync"

	"github.com/juju/errors"

	"tupledb/pkg/logger"
	"tupledb/pkg/primitives"
	"tupledb/pkg/storage"
	"tupledb/pkg/storage/page"
	"tupledb/pkg/tuple"
)

// DefaultCacheCapacity is the clean-page cache size used when the engine
// config does not specify one.
const DefaultCacheCapacity = 1024

// FileResolver resolves a table ID to its backing file. The catalog
// satisfies this.
type FileResolver interface {
	GetFile(id primitives.TableID) (page.DbFile, error)
}

// PageStore implements the page cache boundary (heap.PageFetcher).
//
// Policy: NO-STEAL, dirty pages live in an owned map and are never
// evicted or flushed before their transaction commits. FORCE: commit
// writes a transaction's dirty pages to disk before returning. Clean pages
// live in a ristretto cache that may drop them at will; a miss rereads
// from the file.
type PageStore struct {
	resolver FileResolver
	lockMgr  *LockManager
	clean    PageCache

	mutex sync.Mutex
	dirty map[string]page.Page
}

// NewPageStore creates a page store over the given resolver with a
// clean-page cache of the given capacity.
func NewPageStore(resolver FileResolver, cacheCapacity int64) (*PageStore, error) {
	clean, err := NewRistrettoPageCache(cacheCapacity)
	if err != nil {
		return nil, err
	}

	return &PageStore{
		resolver: resolver,
		lockMgr:  NewLockManager(),
		clean:    clean,
		dirty:    make(map[string]page.Page),
	}, nil
}

// GetPage returns the identified page after granting tid the requested
// permission: a shared lock for ReadOnly, an exclusive lock for ReadWrite.
// The call may block on a lock conflict and fails with the abort signal
// when the wait times out. Dirty pages are served from the store's own
// map; clean pages from the cache or, on a miss, from disk.
func (ps *PageStore) GetPage(tid *primitives.TransactionID, pid tuple.PageID, perm storage.Permissions) (page.Page, error) {
	if err := ps.lockMgr.LockPage(tid, pid, perm == storage.ReadWrite); err != nil {
		return nil, err
	}

	ps.mutex.Lock()
	if p, ok := ps.dirty[pid.String()]; ok {
		ps.mutex.Unlock()
		return p, nil
	}
	ps.mutex.Unlock()

	if p, ok := ps.clean.Get(pid); ok {
		return p, nil
	}

	file, err := ps.resolver.GetFile(pid.GetTableID())
	if err != nil {
		return nil, errors.Annotatef(err, "resolving table %d", pid.GetTableID())
	}

	p, err := file.ReadPage(pid)
	if err != nil {
		return nil, errors.Annotatef(err, "reading %s", pid)
	}

	ps.clean.Put(pid, p)
	return p, nil
}

// registerDirty takes ownership of pages mutated under tid. A dirty page
// must not linger in the clean cache, where it could be dropped.
func (ps *PageStore) registerDirty(tid *primitives.TransactionID, pages []page.Page) {
	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	for _, p := range pages {
		p.MarkDirty(true, tid)
		ps.dirty[p.GetID().String()] = p
		ps.clean.Remove(p.GetID())
	}
}

// CommitTransaction makes tid's changes durable and visible: every page it
// dirtied is written to disk, becomes the new before-image, and returns to
// the clean cache. All of tid's locks are then released.
func (ps *PageStore) CommitTransaction(tid *primitives.TransactionID) error {
	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	for key, p := range ps.dirty {
		if !p.IsDirty().Equals(tid) {
			continue
		}

		if err := ps.flushLocked(key, p); err != nil {
			return errors.Annotatef(err, "committing %s", tid)
		}
		p.SetBeforeImage()
	}

	ps.lockMgr.ReleaseAll(tid)
	return nil
}

// AbortTransaction discards tid's changes: every page it dirtied is
// dropped from the store and from the clean cache, so the next fetch
// rereads the pre-transaction state from disk. All of tid's locks are then
// released.
func (ps *PageStore) AbortTransaction(tid *primitives.TransactionID) {
	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	for key, p := range ps.dirty {
		if !p.IsDirty().Equals(tid) {
			continue
		}
		delete(ps.dirty, key)
		ps.clean.Remove(p.GetID())
	}

	ps.lockMgr.ReleaseAll(tid)
}

// FlushAllPages writes every dirty page to disk regardless of transaction
// state. Crash-consistency escape hatch for shutdown and tests; it breaks
// NO-STEAL for in-flight transactions.
func (ps *PageStore) FlushAllPages() error {
	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	for key, p := range ps.dirty {
		if err := ps.flushLocked(key, p); err != nil {
			return err
		}
	}
	return nil
}

// flushLocked writes one dirty page back to its file and moves it to the
// clean cache. Callers hold ps.mutex.
func (ps *PageStore) flushLocked(key string, p page.Page) error {
	file, err := ps.resolver.GetFile(p.GetID().GetTableID())
	if err != nil {
		return errors.Annotatef(err, "resolving table for %s", p.GetID())
	}

	if err := file.WritePage(p); err != nil {
		return errors.Annotatef(err, "flushing %s", p.GetID())
	}

	p.MarkDirty(false, nil)
	delete(ps.dirty, key)
	ps.clean.Put(p.GetID(), p)

	logger.Debugf("flushed %s", p.GetID())
	return nil
}

// Close flushes all dirty pages and releases the cache.
func (ps *PageStore) Close() error {
	if err := ps.FlushAllPages(); err != nil {
		return err
	}
	ps.clean.Close()
	return nil
}
