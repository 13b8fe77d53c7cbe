package memory

import (
	"sync"
	"time"

	"github.com/juju/errors"

	"tupledb/pkg/primitives"
	"tupledb/pkg/tuple"
)

// DefaultLockTimeout bounds how long a page lock request may wait before
// the unit of work is told to abort. Timeout is the deadlock-breaking
// mechanism: there is no wait-for graph.
const DefaultLockTimeout = 2 * time.Second

// ErrTransactionAborted is the unit-of-work-abort signal surfaced when a
// page cannot be locked in time. The caller is expected to abort the
// transaction and may retry it from scratch.
var ErrTransactionAborted = errors.New("unit of work aborted")

// IsTransactionAborted reports whether err carries the abort signal.
func IsTransactionAborted(err error) bool {
	return errors.Cause(err) == ErrTransactionAborted
}

type pageLock struct {
	holders   map[*primitives.TransactionID]struct{}
	exclusive bool
}

// LockManager grants shared and exclusive page locks to transactions.
// Shared locks coexist; an exclusive lock excludes everyone else. A
// transaction holding the only shared lock on a page may upgrade it.
type LockManager struct {
	mutex   sync.Mutex
	cond    *sync.Cond
	locks   map[string]*pageLock
	timeout time.Duration
}

// NewLockManager creates a lock manager with the default wait timeout.
func NewLockManager() *LockManager {
	lm := &LockManager{
		locks:   make(map[string]*pageLock),
		timeout: DefaultLockTimeout,
	}
	lm.cond = sync.NewCond(&lm.mutex)
	return lm
}

// LockPage blocks until tid holds the requested lock on pid, or until the
// timeout elapses, in which case the abort signal is returned.
func (lm *LockManager) LockPage(tid *primitives.TransactionID, pid tuple.PageID, exclusive bool) error {
	deadline := time.Now().Add(lm.timeout)
	key := pid.String()

	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	for !lm.grant(key, tid, exclusive) {
		if time.Now().After(deadline) {
			return errors.Annotatef(ErrTransactionAborted,
				"%s timed out waiting for %s", tid, key)
		}

		// Wake everyone shortly before the deadline so waiters can
		// observe their own timeout.
		timer := time.AfterFunc(time.Until(deadline), lm.cond.Broadcast)
		lm.cond.Wait()
		timer.Stop()
	}

	return nil
}

// grant acquires the lock if currently possible. Callers hold lm.mutex.
func (lm *LockManager) grant(key string, tid *primitives.TransactionID, exclusive bool) bool {
	l, exists := lm.locks[key]
	if !exists {
		lm.locks[key] = &pageLock{
			holders:   map[*primitives.TransactionID]struct{}{tid: {}},
			exclusive: exclusive,
		}
		return true
	}

	if _, holds := l.holders[tid]; holds {
		if !exclusive || l.exclusive {
			return true
		}
		// Upgrade: only when tid is the sole holder.
		if len(l.holders) == 1 {
			l.exclusive = true
			return true
		}
		return false
	}

	if exclusive || l.exclusive {
		return false
	}

	l.holders[tid] = struct{}{}
	return true
}

// UnlockPage releases tid's lock on pid, if any.
func (lm *LockManager) UnlockPage(tid *primitives.TransactionID, pid tuple.PageID) {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()
	lm.release(pid.String(), tid)
	lm.cond.Broadcast()
}

// ReleaseAll releases every lock held by tid.
func (lm *LockManager) ReleaseAll(tid *primitives.TransactionID) {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	for key := range lm.locks {
		lm.release(key, tid)
	}
	lm.cond.Broadcast()
}

func (lm *LockManager) release(key string, tid *primitives.TransactionID) {
	l, exists := lm.locks[key]
	if !exists {
		return
	}

	// A non-holder must not touch the lock: demoting someone else's
	// exclusive lock would let readers onto a page a writer still holds.
	if _, held := l.holders[tid]; !held {
		return
	}

	delete(l.holders, tid)
	if len(l.holders) == 0 {
		delete(lm.locks, key)
	}
	// An exclusive lock has exactly one holder, so if holders remain the
	// lock was shared and the flag is already clear.
}

// HoldsLock reports whether tid currently holds any lock on pid.
func (lm *LockManager) HoldsLock(tid *primitives.TransactionID, pid tuple.PageID) bool {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	l, exists := lm.locks[pid.String()]
	if !exists {
		return false
	}
	_, holds := l.holders[tid]
	return holds
}
