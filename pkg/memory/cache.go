package memory

import (
	"github.com/dgraph-io/ristretto/v2"
	"github.com/juju/errors"

	"tupledb/pkg/storage/page"
	"tupledb/pkg/tuple"
)

// PageCache stores clean pages in memory. It knows nothing about
// transactions, locks, or durability, and it is allowed to drop any entry
// at any time: a miss simply rereads the page from its file. Dirty pages
// must never be put here.
type PageCache interface {
	Get(pid tuple.PageID) (page.Page, bool)
	Put(pid tuple.PageID, p page.Page)
	Remove(pid tuple.PageID)
	Clear()
	Close()
}

// RistrettoPageCache backs PageCache with a ristretto cache. Ristretto's
// admission policy may reject or evict entries arbitrarily, which is safe
// here precisely because only clean pages are cached.
type RistrettoPageCache struct {
	inner *ristretto.Cache[string, page.Page]
}

// NewRistrettoPageCache creates a cache holding up to capacity pages.
func NewRistrettoPageCache(capacity int64) (*RistrettoPageCache, error) {
	if capacity <= 0 {
		return nil, errors.Errorf("cache capacity must be positive, got %d", capacity)
	}

	inner, err := ristretto.NewCache(&ristretto.Config[string, page.Page]{
		NumCounters: capacity * 10,
		MaxCost:     capacity,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Annotate(err, "creating page cache")
	}

	return &RistrettoPageCache{inner: inner}, nil
}

func (c *RistrettoPageCache) Get(pid tuple.PageID) (page.Page, bool) {
	return c.inner.Get(pid.String())
}

func (c *RistrettoPageCache) Put(pid tuple.PageID, p page.Page) {
	c.inner.Set(pid.String(), p, 1)
}

func (c *RistrettoPageCache) Remove(pid tuple.PageID) {
	c.inner.Del(pid.String())
}

func (c *RistrettoPageCache) Clear() {
	c.inner.Clear()
}

func (c *RistrettoPageCache) Close() {
	c.inner.Close()
}
