// Package catalog tracks the tables available to query execution: for each
// table its name, its backing heap file, its schema, and its primary key
// field.
package catalog

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/juju/errors"

	"tupledb/pkg/logger"
	"tupledb/pkg/primitives"
	"tupledb/pkg/storage/page"
	"tupledb/pkg/tuple"
)

type tableEntry struct {
	file page.DbFile
	name string
	pkey string
}

// Catalog is the concurrent registry mapping table name to table ID to
// physical storage. A single read/write lock guards both maps; they are
// always mutually consistent: every registered name maps to an ID present
// in the entry map, and registering a name again evicts the previous ID's
// entry entirely.
type Catalog struct {
	mutex  sync.RWMutex
	tables map[primitives.TableID]*tableEntry
	names  map[string]primitives.TableID
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		tables: make(map[primitives.TableID]*tableEntry),
		names:  make(map[string]primitives.TableID),
	}
}

// AddTable registers a table under the given name, keyed by the file's ID.
// If the name is already registered the prior entry is removed first: the
// last writer for a name wins and no dangling ID survives the collision.
// pkeyField names the primary key field and may be empty.
func (c *Catalog) AddTable(file page.DbFile, name string, pkeyField string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if prevID, exists := c.names[name]; exists {
		delete(c.tables, prevID)
	}

	id := file.GetID()
	c.names[name] = id
	c.tables[id] = &tableEntry{
		file: file,
		name: name,
		pkey: pkeyField,
	}
}

// AddTableAnonymous registers a table under a random unique name, for
// callers that have none.
func (c *Catalog) AddTableAnonymous(file page.DbFile) {
	c.AddTable(file, randomName(), "")
}

func randomName() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// GetTableID returns the ID registered for a table name.
func (c *Catalog) GetTableID(name string) (primitives.TableID, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	id, exists := c.names[name]
	if name == "" || !exists {
		return 0, errors.NotFoundf("table %q", name)
	}
	return id, nil
}

// GetTupleDesc returns the schema of the identified table.
func (c *Catalog) GetTupleDesc(id primitives.TableID) (*tuple.TupleDescription, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.tables[id]
	if !exists {
		return nil, errors.NotFoundf("table %d", id)
	}
	return entry.file.GetTupleDesc(), nil
}

// GetFile returns the file storing the identified table's contents.
func (c *Catalog) GetFile(id primitives.TableID) (page.DbFile, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.tables[id]
	if !exists {
		return nil, errors.NotFoundf("table %d", id)
	}
	return entry.file, nil
}

// GetPrimaryKey returns the identified table's primary key field name,
// which may be empty.
func (c *Catalog) GetPrimaryKey(id primitives.TableID) (string, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.tables[id]
	if !exists {
		return "", errors.NotFoundf("table %d", id)
	}
	return entry.pkey, nil
}

// GetTableName returns the name the identified table is registered under.
func (c *Catalog) GetTableName(id primitives.TableID) (string, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.tables[id]
	if !exists {
		return "", errors.NotFoundf("table %d", id)
	}
	return entry.name, nil
}

// TableIDs returns a point-in-time snapshot of the registered table IDs.
// The snapshot is safe to iterate while the catalog keeps mutating.
func (c *Catalog) TableIDs() []primitives.TableID {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	ids := make([]primitives.TableID, 0, len(c.tables))
	for id := range c.tables {
		ids = append(ids, id)
	}
	return ids
}

// Clear atomically discards every entry, closing the backing files.
func (c *Catalog) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, entry := range c.tables {
		if entry.file == nil {
			continue
		}
		if err := entry.file.Close(); err != nil {
			logger.Warnf("closing file for table %q: %v", entry.name, err)
		}
	}

	clear(c.tables)
	clear(c.names)
}
