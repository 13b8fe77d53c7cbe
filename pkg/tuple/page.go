package tuple

import "tupledb/pkg/primitives"

// PageID identifies a page within a table's file. The concrete type lives
// with the storage organization that owns the page layout; record locators
// only need the identity.
type PageID interface {
	// GetTableID returns the ID of the table file holding the page.
	GetTableID() primitives.TableID

	// PageNo returns the page's position within its file.
	PageNo() primitives.PageNumber

	// Equals reports whether both components match.
	Equals(other PageID) bool

	String() string
}
