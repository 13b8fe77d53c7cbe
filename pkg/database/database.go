// Package database ties the storage layer together into one explicitly
// constructed context object. Nothing here is a process-wide singleton:
// each Database owns its catalog and page store, is created at process
// start, and is disposed with Close; tests can hold several side by side.
package database

import (
	"github.com/juju/errors"

	"tupledb/pkg/catalog"
	"tupledb/pkg/logger"
	"tupledb/pkg/memory"
)

// Database is the storage layer's root object: the catalog resolving table
// names to files and schemas, and the page store arbitrating all page
// access.
type Database struct {
	config  Config
	catalog *catalog.Catalog
	store   *memory.PageStore
}

// NewDatabase creates a database from the given settings.
func NewDatabase(config Config) (*Database, error) {
	logger.SetLevel(config.LogLevel)

	cat := catalog.NewCatalog()
	store, err := memory.NewPageStore(cat, config.CacheCapacity)
	if err != nil {
		return nil, errors.Annotate(err, "creating page store")
	}

	return &Database{
		config:  config,
		catalog: cat,
		store:   store,
	}, nil
}

// Catalog returns the table registry.
func (db *Database) Catalog() *catalog.Catalog {
	return db.catalog
}

// PageStore returns the page access arbiter.
func (db *Database) PageStore() *memory.PageStore {
	return db.store
}

// LoadSchema populates the catalog from a schema description file. A
// malformed description terminates the process (see catalog.LoadSchema).
func (db *Database) LoadSchema(path string) {
	db.catalog.LoadSchema(path)
}

// Close flushes dirty pages, releases the cache, and closes every table
// file.
func (db *Database) Close() error {
	if err := db.store.Close(); err != nil {
		return errors.Annotate(err, "closing page store")
	}
	db.catalog.Clear()
	logger.Infof("database closed")
	return nil
}
